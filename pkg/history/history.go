// Package history records pacstage runs.
//
// Every resolve, providers and stage invocation produces a [Run]. Runs are
// kept in a [Store]:
//   - file: JSON files in the user's data directory, for the CLI
//   - mongo: one document per run, for shared servers
//   - null: discards everything
//
// # Usage
//
//	store, err := history.NewFileStore("")  // ~/.local/share/pacstage/history
//	run := history.NewRun("resolve", []string{"base"})
//	// ... do the work ...
//	run.Finish(packages, err)
//	store.Save(ctx, run)
//
//	recent, err := store.List(ctx, 10)
package history

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DefaultLimit is the number of runs List returns when limit <= 0.
const DefaultLimit = 20

// Run is one recorded invocation.
type Run struct {
	ID        string        `json:"id" bson:"_id"`
	Command   string        `json:"command" bson:"command"`
	Seeds     []string      `json:"seeds" bson:"seeds"`
	Packages  []string      `json:"packages,omitempty" bson:"packages,omitempty"`
	PlanID    string        `json:"plan_id,omitempty" bson:"plan_id,omitempty"`
	StartedAt time.Time     `json:"started_at" bson:"started_at"`
	Duration  time.Duration `json:"duration" bson:"duration"`
	Error     string        `json:"error,omitempty" bson:"error,omitempty"`
}

// NewRun starts a run with a fresh ID.
func NewRun(command string, seeds []string) *Run {
	return &Run{
		ID:        uuid.NewString(),
		Command:   command,
		Seeds:     seeds,
		StartedAt: time.Now().UTC(),
	}
}

// Finish records the outcome and duration of the run.
func (r *Run) Finish(packages []string, err error) {
	r.Packages = packages
	r.Duration = time.Since(r.StartedAt)
	if err != nil {
		r.Error = err.Error()
	}
}

// Failed reports whether the run ended with an error.
func (r *Run) Failed() bool { return r.Error != "" }

// Store is the interface for run history backends.
type Store interface {
	// Save stores a run, replacing any run with the same ID.
	Save(ctx context.Context, run *Run) error

	// Get retrieves a run by ID.
	// Returns nil, nil if the run doesn't exist.
	Get(ctx context.Context, id string) (*Run, error)

	// List returns up to limit runs, most recent first.
	List(ctx context.Context, limit int) ([]*Run, error)

	// Close releases backend resources.
	Close() error
}
