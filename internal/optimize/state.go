package optimize

import (
	"context"

	"resume-optimizer/internal/shared/telemetry"
)

// State is a step of one optimize or ingest call.
type State string

const (
	StateIdle          State = "Idle"
	StateIngesting     State = "Ingesting"
	StatePrompting     State = "Prompting"
	StateAwaitingModel State = "AwaitingModel"
	StateValidating    State = "Validating"
	StateDone          State = "Done"
	StateFailed        State = "Failed"
)

func (s State) String() string { return string(s) }

// Observer is notified of every state a call enters.
type Observer func(State)

// run tracks the state of a single call and logs each transition.
type run struct {
	ctx          context.Context
	operation    string
	submissionID string
	state        State
	observer     Observer
}

func newRun(ctx context.Context, operation, submissionID string, observer Observer) *run {
	return &run{ctx: ctx, operation: operation, submissionID: submissionID, state: StateIdle, observer: observer}
}

func (r *run) to(next State) {
	r.log(next, nil)
}

func (r *run) fail(kind Kind, err error) {
	r.log(StateFailed, map[string]any{"kind": string(kind), "err": err.Error()})
}

func (r *run) log(next State, extra map[string]any) {
	fields := map[string]any{
		"request_id":    telemetry.RequestID(r.ctx),
		"submission_id": r.submissionID,
		"operation":     r.operation,
		"from":          r.state.String(),
		"state":         next.String(),
	}
	for k, v := range extra {
		fields[k] = v
	}
	if next == StateFailed {
		telemetry.Warn("optimize.state", fields)
	} else {
		telemetry.Info("optimize.state", fields)
	}
	r.state = next
	if r.observer != nil {
		r.observer(next)
	}
}
