package progtree

import (
	"io"

	"github.com/slok/progtree/internal/model"
)

// ActionID identifies an action. IDs are assigned by the application.
type ActionID = model.ActionID

// RootID is the implicit root of every tree. Actions inserted under it are root level actions.
const RootID = model.RootID

// Status is the state of an action.
type Status = model.ActionStatus

const (
	// StatusPending is the initial status of every action.
	StatusPending = model.ActionStatusPending
	// StatusActive is set by [Tracker.BeginStep].
	StatusActive = model.ActionStatusActive
	// StatusComplete is set by [Tracker.CompleteStep].
	StatusComplete = model.ActionStatusComplete
)

// Action is a read-only copy of an action at the time of the call.
type Action = model.Action

// Tree is a read-only copy of the whole tree in pre-order.
type Tree = model.ActionTree

// DetailWriter publishes every line written to it as the detail text of an action.
type DetailWriter interface {
	io.Writer
	// Flush publishes the pending partial line.
	Flush() error
}

var (
	// ErrNotFound is returned when a resource is not found.
	ErrNotFound = model.ErrNotFound
	// ErrAlreadyExists is returned when a resource already exists.
	ErrAlreadyExists = model.ErrAlreadyExists
	// ErrNotValid is returned when a value or request is not valid.
	ErrNotValid = model.ErrNotValid

	// ErrUnknownAction is returned when the action ID is not registered. It matches ErrNotFound.
	ErrUnknownAction = model.ErrUnknownAction
	// ErrDuplicateAction is returned when inserting an already used ID. It matches ErrAlreadyExists.
	ErrDuplicateAction = model.ErrDuplicateAction
	// ErrInvalidParent is returned when inserting under an unknown parent. It matches ErrNotValid.
	ErrInvalidParent = model.ErrInvalidParent
	// ErrOutOfOrderTransition is returned on status changes outside pending -> active -> complete.
	// It matches ErrNotValid.
	ErrOutOfOrderTransition = model.ErrOutOfOrderTransition
)
