package domain

const (
	// DefaultBatchSize is the number of elementary steps between two checkpoints.
	DefaultBatchSize uint64 = 100_000

	// DefaultPollInterval is how many elementary steps run between two cancellation checks
	// inside a batch.
	DefaultPollInterval uint64 = 4096

	// CheckpointPrefix and CheckpointSuffix frame the digit count in a checkpoint name.
	CheckpointPrefix = "checkpoint_random_"
	CheckpointSuffix = "digits_latest"
)
