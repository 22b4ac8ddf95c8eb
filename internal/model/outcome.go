package model

import (
	"encoding/json"
	"fmt"
)

// OutcomeKind classifies how a catalog entry ended up after a run.
type OutcomeKind int

const (
	// OutcomeSkipped means the destination file already existed; no request was made.
	OutcomeSkipped OutcomeKind = iota

	// OutcomeSucceeded means the asset was fetched and written.
	OutcomeSucceeded

	// OutcomeFailed means fetching or writing failed; no file was left behind.
	OutcomeFailed
)

// String returns the lower-case name of the kind.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSkipped:
		return "skipped"
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeFailed:
		return "failed"
	default:
		return fmt.Sprintf("OutcomeKind(%d)", int(k))
	}
}

// MarshalJSON encodes the kind as its name.
func (k OutcomeKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// Outcome is the terminal classification of one entry in one run.
//
// Only the field matching Kind is meaningful: ByteSize for OutcomeSucceeded,
// Reason for OutcomeFailed. Construct values with Skipped, Succeeded or Failed.
type Outcome struct {
	Kind     OutcomeKind `json:"kind"`
	ByteSize int64       `json:"byte_size,omitempty"`
	Reason   string      `json:"reason,omitempty"`
}

// Skipped returns the outcome for an entry whose file was already present.
func Skipped() Outcome {
	return Outcome{Kind: OutcomeSkipped}
}

// Succeeded returns the outcome for an entry written with size bytes.
func Succeeded(size int64) Outcome {
	return Outcome{Kind: OutcomeSucceeded, ByteSize: size}
}

// Failed returns the outcome for an entry that could not be materialized.
func Failed(reason string) Outcome {
	return Outcome{Kind: OutcomeFailed, Reason: reason}
}

// HasFile reports whether the entry's file is present after the run.
func (o Outcome) HasFile() bool {
	return o.Kind == OutcomeSkipped || o.Kind == OutcomeSucceeded
}

func (o Outcome) String() string {
	switch o.Kind {
	case OutcomeSucceeded:
		return fmt.Sprintf("succeeded (%d bytes)", o.ByteSize)
	case OutcomeFailed:
		return "failed: " + o.Reason
	default:
		return o.Kind.String()
	}
}
