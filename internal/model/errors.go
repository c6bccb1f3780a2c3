package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a resource is not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when a resource already exists.
	ErrAlreadyExists = errors.New("already exists")
	// ErrNotValid is returned when a resource is not valid.
	ErrNotValid = errors.New("not valid")
)

var (
	// ErrUnknownAction is returned when an operation references an action ID that is not registered.
	ErrUnknownAction = fmt.Errorf("unknown action: %w", ErrNotFound)
	// ErrDuplicateAction is returned when an action is inserted with an already used ID.
	ErrDuplicateAction = fmt.Errorf("duplicate action: %w", ErrAlreadyExists)
	// ErrInvalidParent is returned when an action is inserted under a parent that is not registered.
	ErrInvalidParent = fmt.Errorf("invalid parent: %w", ErrNotValid)
	// ErrOutOfOrderTransition is returned when a status change doesn't follow pending -> active -> complete.
	ErrOutOfOrderTransition = fmt.Errorf("out of order status transition: %w", ErrNotValid)
)
