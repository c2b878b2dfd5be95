package myerrors

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound covers unknown/inactive vehicles, vehicles with no
	// location data and vehicles with no active route.
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument covers malformed coordinates and missing
	// required fields. Raised before anything is persisted.
	ErrInvalidArgument = errors.New("invalid argument")
)

func NotFound(what string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(what, args...), ErrNotFound)
}

func InvalidArgument(what string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(what, args...), ErrInvalidArgument)
}
