// Package dispatch maps resolved intents to action handlers. The router
// is total over the intent set: construction fails fast when any intent
// is left without an action, so a gap is a startup error rather than a
// silent runtime miss.
package dispatch

import (
	"context"
	"fmt"

	"github.com/campuskit/campus-wabot-go/internal/intent"
	"github.com/campuskit/campus-wabot-go/internal/session"
	"github.com/campuskit/campus-wabot-go/internal/wamsg"
)

// Action builds the outbound payload for one intent.
type Action func(ctx context.Context, student *session.Student, sub intent.Sub) (wamsg.Payload, error)

// Router holds the total intent-to-action table.
type Router struct {
	actions map[intent.Intent]Action
}

// New builds a router over the given table. It returns an error when the
// table misses any intent, binds a nil action, or carries an unknown key.
func New(actions map[intent.Intent]Action) (*Router, error) {
	known := make(map[intent.Intent]bool, len(intent.All()))
	for _, in := range intent.All() {
		known[in] = true
		action, ok := actions[in]
		if !ok {
			return nil, fmt.Errorf("dispatch: no action bound for intent %q", in)
		}
		if action == nil {
			return nil, fmt.Errorf("dispatch: nil action bound for intent %q", in)
		}
	}
	for in := range actions {
		if !known[in] {
			return nil, fmt.Errorf("dispatch: action bound for unknown intent %q", in)
		}
	}

	table := make(map[intent.Intent]Action, len(actions))
	for in, action := range actions {
		table[in] = action
	}
	return &Router{actions: table}, nil
}

// Dispatch runs the action bound to the resolution's intent.
func (r *Router) Dispatch(ctx context.Context, student *session.Student, res intent.Resolution) (wamsg.Payload, error) {
	action, ok := r.actions[res.Intent]
	if !ok {
		// Unreachable for resolutions built from the intent set; kept as
		// a guard against future enum growth without a rebuilt table.
		return wamsg.Payload{}, fmt.Errorf("dispatch: no action for intent %q", res.Intent)
	}
	return action(ctx, student, res.Sub)
}
