package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFitted is returned by operations that need a prior successful fit.
	ErrNotFitted = errors.New("encoder is not fitted; call FitTransform first")
	// ErrDimensionality is returned when a 2-axis reduction is not achievable.
	ErrDimensionality = errors.New("not enough dimensions for a 2D reduction")
	// ErrModelUnavailable is returned when no pretrained model could be acquired.
	ErrModelUnavailable = errors.New("pretrained model unavailable")
)

// DimensionError explains why a batch could not be reduced to two axes.
type DimensionError struct {
	Samples  int
	Features int
	Reason   string
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("%s: %s (samples=%d, features=%d)", ErrDimensionality, e.Reason, e.Samples, e.Features)
}

func (e *DimensionError) Unwrap() error { return ErrDimensionality }

// ModelUnavailableError records both acquisition attempts of a semantic encoder.
type ModelUnavailableError struct {
	Requested string
	Fallback  string
	Err       error
}

func (e *ModelUnavailableError) Error() string {
	return fmt.Sprintf("%s: %q (fallback %q): %v", ErrModelUnavailable, e.Requested, e.Fallback, e.Err)
}

func (e *ModelUnavailableError) Is(target error) bool { return target == ErrModelUnavailable }

func (e *ModelUnavailableError) Unwrap() error { return e.Err }
