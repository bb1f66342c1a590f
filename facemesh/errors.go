package facemesh

import (
	"fmt"

	"github.com/pkg/errors"
)

// GeometryError is returned when a rectangle with non-positive width or height
// reaches an operation that needs a real area (crop mapping, mesh crop).
type GeometryError struct {
	Op   string
	Rect Rect
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("%s: degenerate rect %s (width %.3f, height %.3f)", e.Op, e.Rect, e.Rect.Width(), e.Rect.Height())
}

// ContractViolation means the configuration does not match the collaborators:
// anchor table vs detector output size, malformed model output, bad sizes.
// It is not recoverable by retrying the frame.
type ContractViolation struct {
	Op     string
	Reason string
}

func (e *ContractViolation) Error() string {
	return fmt.Sprintf("%s: contract violation: %s", e.Op, e.Reason)
}

func newGeometryError(op string, rect Rect) error {
	return errors.WithStack(&GeometryError{Op: op, Rect: rect})
}

func newContractViolation(op, format string, args ...any) error {
	return errors.WithStack(&ContractViolation{Op: op, Reason: fmt.Sprintf(format, args...)})
}

// IsGeometryError reports whether any error in the chain is a *GeometryError.
func IsGeometryError(err error) bool {
	var target *GeometryError
	return errors.As(err, &target)
}

// IsContractViolation reports whether any error in the chain is a *ContractViolation.
func IsContractViolation(err error) bool {
	var target *ContractViolation
	return errors.As(err, &target)
}

// checkCropRect fails fast on degenerate rects
func checkCropRect(op string, rect Rect) error {
	if rect.IsDegenerate() {
		return newGeometryError(op, rect)
	}
	return nil
}

// NewContractViolation lets model adapters report output that does not match
// the expected layout with the same error type the core uses.
func NewContractViolation(op, format string, args ...any) error {
	return newContractViolation(op, format, args...)
}
