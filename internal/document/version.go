package document

import "sync/atomic"

// Version identifies a document state. Versions are strictly increasing
// within one Stamper; the zero Version is never issued.
type Version uint64

// Stamper issues strictly increasing versions.
type Stamper struct {
	last atomic.Uint64
}

// Next returns a version greater than every version returned before.
func (s *Stamper) Next() Version {
	return Version(s.last.Add(1))
}

// Current returns the last issued version, or 0 if none was issued.
func (s *Stamper) Current() Version {
	return Version(s.last.Load())
}

// Snapshot is an immutable copy of the document text at a version.
type Snapshot struct {
	Text    string
	Version Version
}
