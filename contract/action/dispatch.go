package action

import "github.com/next-trace/scg-service-state/promise"

// Dispatch sends an action into the loop. For asynchronous actions the returned
// promise settles after the outcome has been reduced; otherwise it is already
// resolved with the dispatched action.
type Dispatch func(a Action) *promise.Promise

// GetState returns a snapshot of the current root state.
type GetState func() any
