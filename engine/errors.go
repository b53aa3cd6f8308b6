// SPDX-License-Identifier: Unlicense OR MIT

package engine

import "fmt"

// InitReason names why Engine construction failed, as a typed reason
// rather than a bare error string.
type InitReason int

const (
	// NoSurface means the host never supplied a drawable surface
	// before New was called.
	NoSurface InitReason = iota
	// NoBackend means render.New failed: no tier's backend could be
	// built, or the glyph atlas or a draw pass could not be set up on
	// the selected one.
	NoBackend
)

func (r InitReason) String() string {
	switch r {
	case NoSurface:
		return "no_surface"
	case NoBackend:
		return "no_backend"
	default:
		return "unknown"
	}
}

// InitError is returned by New when the engine could not be
// constructed at all, as opposed to a per-call LookupError once it is
// running.
type InitError struct {
	Reason InitReason
	Err    error
}

func (e *InitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("engine: init failed (%s): %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("engine: init failed (%s)", e.Reason)
}

func (e *InitError) Unwrap() error { return e.Err }

// LookupReason names why a host-supplied node id could not be
// resolved.
type LookupReason int

const (
	// UnknownId means the id was never present in the decoded graph.
	UnknownId LookupReason = iota
)

func (r LookupReason) String() string {
	switch r {
	case UnknownId:
		return "unknown_id"
	default:
		return "unknown"
	}
}

// LookupError is returned by FocusNode when its host-supplied node id
// does not resolve. HighlightNodes ignores unknown ids and returns no
// error.
type LookupError struct {
	Reason LookupReason
	ID     uint32
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("engine: lookup failed (%s): id %d", e.Reason, e.ID)
}
