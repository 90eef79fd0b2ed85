// Package sink defines the output-sink external collaborator of spec
// section 6: something that accepts successive hierarchy snapshots. The
// rhseg.Hierarchy type is itself a complete, if minimal, implementation —
// this package exists so a caller can depend on the narrow Writer contract
// instead of the concrete gob-backed type.
package sink

import "github.com/arl/rhseg/rhseg"

// Writer accepts hierarchy snapshots as a segmentation run progresses.
type Writer interface {
	Write(snap rhseg.Snapshot) error
	Close() error
}

// Hierarchy adapts *rhseg.Hierarchy to the Writer interface.
type Hierarchy struct {
	H *rhseg.Hierarchy
}

// Write appends snap's already-computed fields directly. Since
// rhseg.Hierarchy.Emit builds a Snapshot from live engine state rather than
// accepting a pre-built one, Write re-encodes snap's fields through the same
// gob.Encoder.
func (h Hierarchy) Write(snap rhseg.Snapshot) error {
	return h.H.WriteSnapshot(snap)
}

// Close flushes any buffered snapshot bytes.
func (h Hierarchy) Close() error {
	return h.H.Flush()
}
