package state

import "errors"

var (
	// ErrMissingTarget is returned when a command references a scrap the
	// document does not contain. The document is left unchanged.
	ErrMissingTarget = errors.New("scrap not found in document")
	// ErrDuplicateScrap is returned when a scrap ID is already present.
	ErrDuplicateScrap = errors.New("scrap already present in document")
	// ErrUnknownVariant is returned when decoding a command whose signature is
	// absent or not recognized.
	ErrUnknownVariant = errors.New("unknown command variant")
	// ErrMalformedCommand is returned when a command's payload cannot be decoded.
	ErrMalformedCommand = errors.New("malformed command")
)
