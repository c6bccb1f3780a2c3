package model

// ActionID identifies an action item. IDs are assigned by the application.
type ActionID uint32

// RootID is the implicit root of every action tree.
const RootID ActionID = 0

// ActionStatus represents the state of an action item.
type ActionStatus string

const (
	ActionStatusPending  ActionStatus = "pending"
	ActionStatusActive   ActionStatus = "active"
	ActionStatusComplete ActionStatus = "complete"
)

// CanTransitionTo returns true if the status can move to next.
// The only valid path is pending -> active -> complete.
func (s ActionStatus) CanTransitionTo(next ActionStatus) bool {
	switch s {
	case ActionStatusPending:
		return next == ActionStatusActive
	case ActionStatusActive:
		return next == ActionStatusComplete
	default:
		return false
	}
}

// Action is a point in time copy of a single action item.
type Action struct {
	ID        ActionID
	ParentID  ActionID
	SortOrder int
	Text      string
	Status    ActionStatus
	// Progress is in the [0, 1] range.
	Progress float64
	// Detail is the latest line of free text published for the action.
	Detail string
	// Depth is the distance to the root, root level actions have depth 1.
	Depth int
}

// ActionTree is a point in time copy of a whole action tree.
type ActionTree struct {
	// Overall is the aggregated progress of the root.
	Overall float64
	// Actions are the actions in pre-order, siblings sorted by sort order.
	Actions []Action
}

// CountByStatus counts the actions of the tree by status.
func (t ActionTree) CountByStatus() (pending, active, complete int) {
	for _, a := range t.Actions {
		switch a.Status {
		case ActionStatusPending:
			pending++
		case ActionStatusActive:
			active++
		case ActionStatusComplete:
			complete++
		}
	}
	return
}
