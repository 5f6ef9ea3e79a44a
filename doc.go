/*
Package stoptime computes Collatz stop times of arbitrarily large integers.

A run follows the trajectory of a starting value n down to 1, counting every
elementary step (v/2 for even v, 3v+1 for odd v) and recording the largest
decimal digit count reached along the way. Work proceeds in batches and the
state reached is checkpointed after each one, so a run over a
million-digit value can be interrupted and picked up later where it stopped.

# Concept

Checkpoints are keyed by the digit count of the starting value. A stored
checkpoint is resumed only when its starting value equals n; otherwise the run
starts fresh and overwrites it. Persistence failures are reported through logs
and hooks and never abort a run.

Stores live behind ports.CheckpointStore: memory, file, sqlite and redis
adapters are provided under pkg/adapters.

# Usage

	eng := stoptime.New(
		stoptime.WithStore(file.New(".stoptime/checkpoints")),
		stoptime.WithProgress(func(steps uint64) { log.Println(steps) }),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := eng.Run(ctx, n)
	if err != nil {
		log.Fatal(err)
	}
	if res.Interrupted {
		log.Println("saved at step", res.Steps)
	}
*/
package stoptime
