// SPDX-License-Identifier: Unlicense OR MIT

package decode

import "fmt"

// Error is a structured decode failure. It always carries enough
// context (offsets, ids, indices) to diagnose the bad payload without
// a second pass, the same positional-detail discipline gio's own
// internal/ops reader panics carry for a malformed op stream.
type Error struct {
	// Kind identifies which validation rule failed.
	Kind ErrorKind
	// Detail is a human readable, kind-specific description.
	Detail string
}

func (e *Error) Error() string {
	return fmt.Sprintf("decode: %s: %s", e.Kind, e.Detail)
}

// ErrorKind enumerates the decode failure taxonomy from spec §7.
type ErrorKind int

const (
	TruncatedHeader ErrorKind = iota
	BadMagic
	UnsupportedVersion
	TruncatedBody
	TrailingBytes
	InvalidLabel
	DuplicateId
	DanglingEdge
	InvalidImportance
)

func (k ErrorKind) String() string {
	switch k {
	case TruncatedHeader:
		return "TruncatedHeader"
	case BadMagic:
		return "BadMagic"
	case UnsupportedVersion:
		return "UnsupportedVersion"
	case TruncatedBody:
		return "TruncatedBody"
	case TrailingBytes:
		return "TrailingBytes"
	case InvalidLabel:
		return "InvalidLabel"
	case DuplicateId:
		return "DuplicateId"
	case DanglingEdge:
		return "DanglingEdge"
	case InvalidImportance:
		return "InvalidImportance"
	default:
		return "Unknown"
	}
}

func errTruncatedHeader(have, want int) *Error {
	return &Error{Kind: TruncatedHeader, Detail: fmt.Sprintf("have %d bytes, need at least %d for the header", have, want)}
}

func errBadMagic(got uint32) *Error {
	return &Error{Kind: BadMagic, Detail: fmt.Sprintf("got magic 0x%08X, want 0x%08X", got, Magic)}
}

func errUnsupportedVersion(v uint16) *Error {
	return &Error{Kind: UnsupportedVersion, Detail: fmt.Sprintf("version %d", v)}
}

func errTruncatedBody(have, want int) *Error {
	return &Error{Kind: TruncatedBody, Detail: fmt.Sprintf("have %d bytes remaining, need %d", have, want)}
}

func errTrailingBytes(extra int) *Error {
	return &Error{Kind: TrailingBytes, Detail: fmt.Sprintf("%d unexpected trailing bytes", extra)}
}

func errInvalidLabel(index int) *Error {
	return &Error{Kind: InvalidLabel, Detail: fmt.Sprintf("label %d is not valid UTF-8 or its offsets are out of range", index)}
}

func errDuplicateId(id uint32) *Error {
	return &Error{Kind: DuplicateId, Detail: fmt.Sprintf("id %d appears more than once", id)}
}

func errDanglingEdge(index int) *Error {
	return &Error{Kind: DanglingEdge, Detail: fmt.Sprintf("edge %d references an id absent from the node table", index)}
}

func errInvalidImportance(index int) *Error {
	return &Error{Kind: InvalidImportance, Detail: fmt.Sprintf("node %d has a non-finite or negative importance", index)}
}
