package monitor

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidArgument is matched by every local precondition failure.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFound is matched when a lookup by name finds nothing.
	ErrNotFound = errors.New("not found")
)

// InvalidArgumentError names the arguments that failed a precondition check.
// No remote call is made when it is returned.
type InvalidArgumentError struct {
	Args []string
}

func (e *InvalidArgumentError) Error() string {
	if len(e.Args) == 1 {
		return fmt.Sprintf("%s is invalid: it must be a non-empty string", e.Args[0])
	}
	return fmt.Sprintf("%s are invalid: they must be non-empty strings", strings.Join(e.Args, ", "))
}

func (e *InvalidArgumentError) Unwrap() error { return ErrInvalidArgument }

// BucketNotFoundError reports a bucket name with no case-insensitive match.
type BucketNotFoundError struct {
	Name string
}

func (e *BucketNotFoundError) Error() string {
	return fmt.Sprintf("cannot find a match for '%s'", e.Name)
}

func (e *BucketNotFoundError) Unwrap() error { return ErrNotFound }

// arg pairs an argument name with its value for precondition checks.
type arg struct {
	name  string
	value string
}

// requireNonEmpty returns an *InvalidArgumentError naming every empty argument.
func requireNonEmpty(args ...arg) error {
	var bad []string
	for _, a := range args {
		if a.value == "" {
			bad = append(bad, a.name)
		}
	}
	if len(bad) == 0 {
		return nil
	}
	return &InvalidArgumentError{Args: bad}
}
