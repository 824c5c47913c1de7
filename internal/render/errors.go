package render

import "github.com/cockroachdb/errors"

// Fatal error classes. Detection sites mark their errors with one of these so
// callers can test with errors.Is while keeping the underlying cause.
var (
	ErrAllocation      = errors.New("no compatible memory type")
	ErrSurfaceCreation = errors.New("presentation surface unusable")
	ErrInvalidGeometry = errors.New("invalid geometry")
	ErrPresentation    = errors.New("presentation failed")
)

func presentationError(err error, format string, args ...interface{}) error {
	return errors.Mark(errors.Wrapf(err, format, args...), ErrPresentation)
}
