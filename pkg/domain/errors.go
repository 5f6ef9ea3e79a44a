package domain

import "errors"

// ErrInvalidInput is returned when the starting value is not a positive integer.
var ErrInvalidInput = errors.New("invalid input: start value must be a positive integer")

// ErrCheckpointNotFound is returned when no checkpoint exists for a problem key.
var ErrCheckpointNotFound = errors.New("checkpoint not found")

// ErrCorruptCheckpoint is returned when a stored record cannot be decoded or fails validation.
var ErrCorruptCheckpoint = errors.New("corrupt checkpoint")

// ErrLockAcquire is returned when an advisory lock on a problem key cannot be obtained.
var ErrLockAcquire = errors.New("failed to acquire checkpoint lock")
