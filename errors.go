package gomosh

import (
	"fmt"
)

// MalformedContainerError reports a source whose structure cannot be parsed.
type MalformedContainerError struct {
	Reason string
	Err    error
}

func (e *MalformedContainerError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed container: %s: %v", e.Reason, e.Err)
	}
	return "malformed container: " + e.Reason
}

func (e *MalformedContainerError) Unwrap() error {
	return e.Err
}

// UnsupportedTrackKindError reports a track whose codec is outside the supported set.
type UnsupportedTrackKindError struct {
	TrackID uint32
	Format  string
}

func (e *UnsupportedTrackKindError) Error() string {
	return fmt.Sprintf("track %d: unsupported track kind %q", e.TrackID, e.Format)
}

// IOError wraps a failure of the underlying file handles.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// ContractViolationError reports a sample index outside the count the reader
// itself reported. It indicates a defect, not a bad input.
type ContractViolationError struct {
	TrackID uint32
	Index   uint32
	Count   uint32
}

func (e *ContractViolationError) Error() string {
	return fmt.Sprintf("track %d: sample %d requested beyond reported count %d", e.TrackID, e.Index, e.Count)
}

// TrackNotFoundError reports an unknown track id.
type TrackNotFoundError struct {
	TrackID uint32
}

func (e *TrackNotFoundError) Error() string {
	return fmt.Sprintf("track %d not found", e.TrackID)
}

// WriterFinalizedError is returned by writer operations after WriteEnd.
type WriterFinalizedError struct{}

func (WriterFinalizedError) Error() string {
	return "writer already finalized"
}
