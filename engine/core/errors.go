package core

import (
	"errors"
	"fmt"
)

var (
	ErrUnknown = errors.New("unknown")

	// import taxonomy
	ErrContainerFormat    = errors.New("invalid binary container")
	ErrMissingData        = errors.New("missing scene data")
	ErrGeometryMismatch   = errors.New("geometry count mismatch")
	ErrUnsupportedFeature = errors.New("unsupported feature")
	ErrResourceFetch      = errors.New("resource fetch failed")

	// scene graph and geometry
	ErrCyclicHierarchy = errors.New("node cannot be parented to itself or one of its descendants")
	ErrInvalidGeometry = errors.New("invalid geometry")
	ErrIndexOverflow   = errors.New("index does not fit a 16-bit index buffer")
	ErrResourceDeleted = errors.New("resource already deleted")
	ErrSkinMismatch    = errors.New("joint and inverse bind matrix counts differ")

	ErrClipNotFound = errors.New("animation clip not found")
)

// ImportError carries the failing import step next to one of the taxonomy sentinels.
type ImportError struct {
	Kind error
	Op   string
	Err  error
}

func NewImportError(kind error, op string, err error) *ImportError {
	return &ImportError{Kind: kind, Op: op, Err: err}
}

func (e *ImportError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is.
func (e *ImportError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
