package action

// Action is the unit dispatched into the state-management loop.
// Type follows the synthesis rule of the binder and is a stable contract for
// logging and middleware. Deferred, when set, marks the action as a thunk: the
// dispatch loop runs it instead of reducing the action.
type Action struct {
	Type     string
	Payload  any
	Error    bool
	Deferred Thunk
}

// IsDeferred reports whether the action carries a thunk.
func (a Action) IsDeferred() bool { return a.Deferred != nil }

// Thunk is a deferred action invoked by the dispatch loop with explicit
// dispatch and state-read handles.
type Thunk func(dispatch Dispatch, getState GetState)
