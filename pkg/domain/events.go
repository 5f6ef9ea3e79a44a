package domain

import (
	"context"
	"time"
)

// BatchEvent describes the state after a completed batch.
type BatchEvent struct {
	Key          ProblemKey
	Batch        uint64 // 1-based index within the current invocation
	Steps        uint64 // total steps of the trajectory
	StepsThisRun uint64 // steps taken by the current invocation
	MaxDigits    uint64
	Elapsed      time.Duration
}

// Hooks defines observer callbacks for the engine. They must not mutate engine state,
// and any of them may be nil.
type Hooks struct {
	// OnStart fires once, after resume resolution.
	OnStart func(ctx context.Context, s *State, resumed bool)

	// OnBatch fires after every batch, before the checkpoint is written.
	OnBatch func(ctx context.Context, e *BatchEvent)

	// OnProgress receives the count of steps completed in the current invocation.
	OnProgress func(steps uint64)

	// OnPersistWarning receives non-fatal checkpoint load/save failures.
	OnPersistWarning func(ctx context.Context, key ProblemKey, err error)

	// OnComplete fires when the trajectory reaches 1.
	OnComplete func(ctx context.Context, s *State)
}
