// Package publish sends finished posts to Medium.
package publish
