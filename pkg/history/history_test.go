package history

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"
)

func TestRunFinish(t *testing.T) {
	run := NewRun("resolve", []string{"base"})
	if run.ID == "" || run.StartedAt.IsZero() {
		t.Fatalf("NewRun() = %+v", run)
	}

	run.Finish([]string{"base", "glibc"}, nil)
	if run.Failed() {
		t.Error("successful run reported as failed")
	}

	failed := NewRun("stage", []string{"base"})
	failed.Finish(nil, stderrors.New("boom"))
	if !failed.Failed() || failed.Error != "boom" {
		t.Errorf("failed run = %+v", failed)
	}
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "history")
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore() error: %v", err)
	}
	defer s.Close()

	if s.Path() != dir {
		t.Errorf("Path() = %q, want %q", s.Path(), dir)
	}

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var ids []string
	for i := 0; i < 3; i++ {
		run := NewRun("resolve", []string{"pkg"})
		run.StartedAt = base.Add(time.Duration(i) * time.Hour)
		run.Finish([]string{"pkg"}, nil)
		if err := s.Save(ctx, run); err != nil {
			t.Fatalf("Save() error: %v", err)
		}
		ids = append(ids, run.ID)
	}

	got, err := s.Get(ctx, ids[1])
	if err != nil || got == nil {
		t.Fatalf("Get() = %v, %v", got, err)
	}
	if got.Command != "resolve" || !slices.Equal(got.Packages, []string{"pkg"}) {
		t.Errorf("Get() = %+v", got)
	}

	runs, err := s.List(ctx, 2)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != ids[2] || runs[1].ID != ids[1] {
		t.Errorf("List(2) returned %d runs in wrong order", len(runs))
	}

	all, _ := s.List(ctx, 0)
	if len(all) != 3 {
		t.Errorf("List(0) returned %d runs, want 3", len(all))
	}
}

func TestFileStoreGetMissing(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	for _, id := range []string{"nope", "../../etc/passwd", ""} {
		run, err := s.Get(context.Background(), id)
		if err != nil || run != nil {
			t.Errorf("Get(%q) = %v, %v; want nil, nil", id, run, err)
		}
	}
}

func TestFileStoreSkipsCorruptFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(context.Background(), NewRun("resolve", nil)); err != nil {
		t.Fatal(err)
	}

	runs, err := s.List(context.Background(), 10)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("List() returned %d runs, want 1", len(runs))
	}
}

func TestNullStore(t *testing.T) {
	ctx := context.Background()
	s := NewNullStore()

	if err := s.Save(ctx, NewRun("resolve", nil)); err != nil {
		t.Errorf("Save() error: %v", err)
	}
	if run, err := s.Get(ctx, "x"); run != nil || err != nil {
		t.Errorf("Get() = %v, %v", run, err)
	}
	if runs, err := s.List(ctx, 5); len(runs) != 0 || err != nil {
		t.Errorf("List() = %v, %v", runs, err)
	}
}
