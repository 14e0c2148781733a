package application

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestWatcher_DebouncesBursts(t *testing.T) {
	dir := t.TempDir()

	var mu sync.Mutex
	runs := 0
	w := NewWatcher(zap.NewNop(), dir, 0, func(context.Context) {
		mu.Lock()
		runs++
		mu.Unlock()
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	// Let the initial run and the watches settle.
	time.Sleep(500 * time.Millisecond)

	for i := 0; i < 3; i++ {
		f := filepath.Join(dir, "main.tf")
		if err := os.WriteFile(f, []byte("# rev\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	// A non-Terraform file must not trigger a run.
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	time.Sleep(1 * time.Second)
	cancel()

	mu.Lock()
	got := runs
	mu.Unlock()
	if got != 2 {
		t.Fatalf("runs: got %d, want 2 (initial + one debounced)", got)
	}
}
