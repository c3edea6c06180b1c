package coco

import (
	"errors"
	"fmt"
)

// Every failure in the conversion pipeline wraps exactly one of these.
// They are all fatal to the clip or merge being processed.
var (
	ErrConfiguration        = errors.New("configuration error")
	ErrSourceRead           = errors.New("source read error")
	ErrMalformedAnnotation  = errors.New("malformed annotation")
	ErrSchemaInvariant      = errors.New("schema invariant violated")
	ErrReferentialIntegrity = errors.New("referential integrity violated")
)

// Errorf wraps kind with a formatted message, so that errors.Is(err, kind) holds.
func Errorf(kind error, format string, args ...any) error {
	return fmt.Errorf("%w: %v", kind, fmt.Sprintf(format, args...))
}

// ClipError attaches the name of the clip (or dataset) that was being processed.
type ClipError struct {
	Clip string
	Err  error
}

func (e *ClipError) Error() string {
	return fmt.Sprintf("clip %v: %v", e.Clip, e.Err)
}

func (e *ClipError) Unwrap() error {
	return e.Err
}

// InClip returns err wrapped in a ClipError, or nil if err is nil.
// An error that already names a clip is returned as-is.
func InClip(clip string, err error) error {
	if err == nil {
		return nil
	}
	var ce *ClipError
	if errors.As(err, &ce) {
		return err
	}
	return &ClipError{Clip: clip, Err: err}
}
