package history

import "context"

// NullStore discards runs. It is used when history is disabled.
type NullStore struct{}

// NewNullStore creates a store that records nothing.
func NewNullStore() Store { return NullStore{} }

func (NullStore) Save(context.Context, *Run) error          { return nil }
func (NullStore) Get(context.Context, string) (*Run, error) { return nil, nil }
func (NullStore) List(context.Context, int) ([]*Run, error) { return nil, nil }
func (NullStore) Close() error                              { return nil }
