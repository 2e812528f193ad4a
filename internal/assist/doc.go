// Package assist asks a language model for a post title and tags.
//
// Three providers are supported: OpenAI, Anthropic and Gemini. Each is a
// Completer wrapping the vendor's Go SDK; Assistant builds the prompts and
// cleans up the answers.
package assist
