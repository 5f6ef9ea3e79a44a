package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/aretw0/stoptime/internal/presentation/tui"
	"github.com/aretw0/stoptime/pkg/domain"
	"github.com/aretw0/stoptime/pkg/ports"
)

// ListCheckpoints prints a table of stored checkpoints.
func ListCheckpoints(ctx context.Context, store ports.CheckpointStore, w io.Writer) error {
	keys, err := store.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list checkpoints: %w", err)
	}
	if len(keys) == 0 {
		fmt.Fprintln(w, "No checkpoints found.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tDIGITS\tSTEPS\tMAX DIGITS\tSTATUS")
	for _, key := range keys {
		state, err := store.Load(ctx, key)
		if err != nil {
			status := "unreadable"
			if errors.Is(err, domain.ErrCorruptCheckpoint) {
				status = "corrupt"
			}
			fmt.Fprintf(tw, "%s\t%d\t-\t-\t%s\n", key.Name(), uint64(key), status)
			continue
		}
		status := "in progress"
		if state.Done() {
			status = "complete"
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n", key.Name(), uint64(key),
			tui.FormatCount(state.Steps), tui.FormatCount(state.MaxDigits), status)
	}
	return tw.Flush()
}

// InspectCheckpoint prints the stored record for a digit count as indented JSON.
func InspectCheckpoint(ctx context.Context, store ports.CheckpointStore, digits string, w io.Writer) error {
	key, err := domain.ParseKey(digits)
	if err != nil {
		return err
	}
	state, err := store.Load(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to load checkpoint '%s': %w", key.Name(), err)
	}

	data, err := json.MarshalIndent(domain.NewCheckpoint(state), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode checkpoint: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

// RemoveOptions selects the checkpoints to delete.
type RemoveOptions struct {
	Digits []string
	All    bool
	Yes    bool
	In     io.Reader
	Out    io.Writer
}

// RemoveCheckpoints deletes checkpoints by digit count, or all of them after confirmation.
func RemoveCheckpoints(ctx context.Context, store ports.CheckpointStore, opts RemoveOptions) error {
	var keys []domain.ProblemKey
	if opts.All {
		all, err := store.List(ctx)
		if err != nil {
			return fmt.Errorf("failed to list checkpoints: %w", err)
		}
		if len(all) == 0 {
			fmt.Fprintln(opts.Out, "No checkpoints found.")
			return nil
		}
		if !opts.Yes && !tui.Confirm(opts.In, opts.Out, fmt.Sprintf("Remove %d checkpoints?", len(all))) {
			fmt.Fprintln(opts.Out, "Aborted.")
			return nil
		}
		keys = all
	} else {
		for _, d := range opts.Digits {
			key, err := domain.ParseKey(d)
			if err != nil {
				return err
			}
			keys = append(keys, key)
		}
	}

	var errs []error
	for _, key := range keys {
		if err := store.Delete(ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("failed to remove '%s': %w", key.Name(), err))
			continue
		}
		fmt.Fprintf(opts.Out, "Removed checkpoint '%s'\n", key.Name())
	}
	return errors.Join(errs...)
}
