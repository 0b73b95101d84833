// Package filter - Decision layer of an object detector.
package filter

import "github.com/pkg/errors"

// Sentinel causes for the two caller-contract failure classes. Call sites
// attach detail with errors.Wrapf; callers test with errors.Is.
var (
	// ErrInvalidConfig reports an invalid Config, raised before any
	// computation begins.
	ErrInvalidConfig = errors.New("invalid filter configuration")

	// ErrShapeMismatch reports inputs whose dimensions disagree with each
	// other, raised before any computation begins.
	ErrShapeMismatch = errors.New("input shape mismatch")
)
