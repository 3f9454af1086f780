package store

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/nguyentantai21042004/voice-insights/internal/config"
)

func openSinks(t *testing.T) map[string]Sink {
	t.Helper()
	lite, err := New(config.DatabaseConfig{
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "nested", "transcripts.db"),
	})
	if err != nil {
		t.Fatalf("New(sqlite) error = %v", err)
	}
	mem, err := New(config.DatabaseConfig{Driver: "memory"})
	if err != nil {
		t.Fatalf("New(memory) error = %v", err)
	}
	t.Cleanup(func() {
		lite.Close()
		mem.Close()
	})
	return map[string]Sink{"sqlite": lite, "memory": mem}
}

func TestInsertAndListAll(t *testing.T) {
	ctx := context.Background()
	for name, sink := range openSinks(t) {
		t.Run(name, func(t *testing.T) {
			want := []Record{
				{Source: "upload-1", Name: "Alice", Date: "2024-01-01", Text: "great service"},
				{Source: "upload-2", Name: "Bob", Date: "2024-01-02", Text: "slow checkout"},
				{Source: "/in/c.wav", Name: "c", Date: "2024-01-03", Text: "friendly staff"},
			}
			for i, rec := range want {
				got, err := sink.Insert(ctx, rec)
				if err != nil {
					t.Fatalf("Insert() error = %v", err)
				}
				if got.ID == 0 {
					t.Errorf("Insert(%d) left ID unset", i)
				}
				if got.CreatedAt.IsZero() {
					t.Errorf("Insert(%d) left CreatedAt unset", i)
				}
			}

			recs, err := sink.ListAll(ctx)
			if err != nil {
				t.Fatalf("ListAll() error = %v", err)
			}
			if len(recs) != len(want) {
				t.Fatalf("ListAll() returned %d records, want %d", len(recs), len(want))
			}
			for i := range want {
				if recs[i].Name != want[i].Name || recs[i].Date != want[i].Date || recs[i].Text != want[i].Text {
					t.Errorf("record %d = %+v, want %+v", i, recs[i], want[i])
				}
			}
		})
	}
}

func TestInsertIgnoresCallerID(t *testing.T) {
	ctx := context.Background()
	for name, sink := range openSinks(t) {
		t.Run(name, func(t *testing.T) {
			first, err := sink.Insert(ctx, Record{ID: 42, Name: "a", Date: "d", Text: "x"})
			if err != nil {
				t.Fatal(err)
			}
			second, err := sink.Insert(ctx, Record{ID: 42, Name: "b", Date: "d", Text: "y"})
			if err != nil {
				t.Fatal(err)
			}
			if first.ID == second.ID {
				t.Errorf("two inserts share ID %d", first.ID)
			}
		})
	}
}

func TestConcurrentInsert(t *testing.T) {
	ctx := context.Background()
	const n = 20
	for name, sink := range openSinks(t) {
		t.Run(name, func(t *testing.T) {
			var wg sync.WaitGroup
			errs := make(chan error, n)
			for i := range n {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, err := sink.Insert(ctx, Record{Name: fmt.Sprintf("n%d", i), Date: "d", Text: "t"})
					errs <- err
				}()
			}
			wg.Wait()
			close(errs)
			for err := range errs {
				if err != nil {
					t.Fatalf("Insert() error = %v", err)
				}
			}

			recs, err := sink.ListAll(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if len(recs) != n {
				t.Errorf("ListAll() returned %d records, want %d", len(recs), n)
			}
		})
	}
}

func TestNewUnknownDriver(t *testing.T) {
	if _, err := New(config.DatabaseConfig{Driver: "mongo"}); err == nil {
		t.Error("New() error = nil, want error for unknown driver")
	}
}
