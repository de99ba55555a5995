package models

import "errors"

// Error kinds shared by every loader and by the terminal output path.
// They carry no payload; match them with errors.Is and read the wrapped
// message for context.
var (
	// ErrIO reports a failed open, read or write.
	ErrIO = errors.New("i/o failure")

	// ErrParse reports malformed input: a bad numeric field, broken mesh
	// syntax, or a truncated image.
	ErrParse = errors.New("parse failure")

	// ErrUnsupportedFormat reports well-formed input the decoders do not
	// handle, such as a color-mapped TGA.
	ErrUnsupportedFormat = errors.New("unsupported format")
)
