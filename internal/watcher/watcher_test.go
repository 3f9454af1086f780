package watcher

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nguyentantai21042004/voice-insights/internal/apperror"
	"github.com/nguyentantai21042004/voice-insights/internal/audio"
	"github.com/nguyentantai21042004/voice-insights/internal/logger"
)

type fakeTicker struct {
	ch chan time.Time
}

func (t *fakeTicker) C() <-chan time.Time { return t.ch }
func (t *fakeTicker) Stop()               {}

type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	ticker *fakeTicker
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now, ticker: &fakeTicker{ch: make(chan time.Time)}}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func (c *fakeClock) NewTicker(time.Duration) Ticker { return c.ticker }

// tick blocks until the watcher loop receives it.
func (c *fakeClock) tick(t *testing.T) {
	t.Helper()
	select {
	case c.ticker.ch <- c.Now():
	case <-time.After(5 * time.Second):
		t.Fatal("watcher loop did not receive tick")
	}
}

var baseTime = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func writeFile(t *testing.T, dir, name string, mod time.Time) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("data-"+name), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(path, mod, mod); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestWatcher(t *testing.T, opts Options, handler EventHandler) *implWatcher {
	t.Helper()
	if handler == nil {
		handler = func(context.Context, audio.Input) error { return nil }
	}
	w, err := New(opts, handler, logger.Nop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return w.(*implWatcher)
}

func filenames(batch []audio.Input) []string {
	out := make([]string, len(batch))
	for i, in := range batch {
		out[i] = in.Filename
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestNextBatch(t *testing.T) {
	dir := t.TempDir()
	old := baseTime.Add(-time.Hour)
	writeFile(t, dir, "b.wav", old)
	writeFile(t, dir, "a.wav", old)
	writeFile(t, dir, "notes.txt", old)
	writeFile(t, dir, ".hidden.wav", old)
	if err := os.Mkdir(filepath.Join(dir, "sub.wav"), 0755); err != nil {
		t.Fatal(err)
	}

	w := newTestWatcher(t, Options{Dir: dir, Clock: newFakeClock(baseTime)}, nil)
	ctx := context.Background()

	batch, err := w.NextBatch(ctx)
	if err != nil {
		t.Fatalf("NextBatch() error = %v", err)
	}
	if got := filenames(batch); !equalStrings(got, []string{"a.wav", "b.wav"}) {
		t.Fatalf("first batch = %v, want [a.wav b.wav]", got)
	}

	writeFile(t, dir, "c.wav", old)
	batch, err = w.NextBatch(ctx)
	if err != nil {
		t.Fatalf("NextBatch() error = %v", err)
	}
	if got := filenames(batch); !equalStrings(got, []string{"c.wav"}) {
		t.Fatalf("second batch = %v, want [c.wav]", got)
	}

	batch, err = w.NextBatch(ctx)
	if err != nil {
		t.Fatalf("NextBatch() error = %v", err)
	}
	if len(batch) != 0 {
		t.Fatalf("third batch = %v, want empty", filenames(batch))
	}
	if w.processed.Len() != 3 {
		t.Errorf("processed = %d, want 3", w.processed.Len())
	}
}

func TestNextBatchInputMetadata(t *testing.T) {
	dir := t.TempDir()
	mod := time.Date(2024, 3, 9, 8, 30, 0, 0, time.Local)
	path := writeFile(t, dir, "Alice Review.WAV", mod)

	w := newTestWatcher(t, Options{Dir: dir, Clock: newFakeClock(mod.Add(time.Hour))}, nil)
	batch, err := w.NextBatch(context.Background())
	if err != nil {
		t.Fatalf("NextBatch() error = %v", err)
	}
	if len(batch) != 1 {
		t.Fatalf("batch len = %d, want 1", len(batch))
	}

	in := batch[0]
	if in.ID != path {
		t.Errorf("ID = %q, want %q", in.ID, path)
	}
	if in.Name != "Alice Review" {
		t.Errorf("Name = %q, want %q", in.Name, "Alice Review")
	}
	if in.Date != "2024-03-09" {
		t.Errorf("Date = %q, want 2024-03-09", in.Date)
	}

	rc, err := in.Open()
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "data-Alice Review.WAV" {
		t.Errorf("payload = %q", data)
	}
}

func TestNextBatchSettle(t *testing.T) {
	dir := t.TempDir()
	clock := newFakeClock(baseTime)
	writeFile(t, dir, "fresh.wav", baseTime.Add(-time.Second))

	w := newTestWatcher(t, Options{Dir: dir, Settle: 10 * time.Second, Clock: clock}, nil)
	ctx := context.Background()

	batch, err := w.NextBatch(ctx)
	if err != nil {
		t.Fatalf("NextBatch() error = %v", err)
	}
	if len(batch) != 0 {
		t.Fatalf("unsettled file yielded: %v", filenames(batch))
	}
	if w.processed.Len() != 0 {
		t.Fatalf("unsettled file was marked")
	}

	clock.Advance(30 * time.Second)
	batch, err = w.NextBatch(ctx)
	if err != nil {
		t.Fatalf("NextBatch() error = %v", err)
	}
	if got := filenames(batch); !equalStrings(got, []string{"fresh.wav"}) {
		t.Fatalf("settled batch = %v, want [fresh.wav]", got)
	}
}

func TestNextBatchMissingDir(t *testing.T) {
	w := newTestWatcher(t, Options{Dir: filepath.Join(t.TempDir(), "gone"), Clock: newFakeClock(baseTime)}, nil)
	if _, err := w.NextBatch(context.Background()); err == nil {
		t.Fatal("NextBatch() on missing dir should fail")
	}
}

func TestNewRequiresDir(t *testing.T) {
	if _, err := New(Options{}, nil, logger.Nop()); err == nil {
		t.Fatal("New() without dir should fail")
	}
}

func TestProcessedSetConcurrent(t *testing.T) {
	s := NewProcessedSet()
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s.MarkIfNew("same") {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if wins != 1 {
		t.Errorf("MarkIfNew won %d times, want 1", wins)
	}
	if !s.Contains("same") || s.Len() != 1 {
		t.Errorf("set state = contains %v len %d", s.Contains("same"), s.Len())
	}
}

type recorder struct {
	mu   sync.Mutex
	seen []string
	ch   chan string
}

func newRecorder() *recorder { return &recorder{ch: make(chan string, 16)} }

func (r *recorder) handle(ctx context.Context, in audio.Input) error {
	r.mu.Lock()
	r.seen = append(r.seen, in.Filename)
	r.mu.Unlock()
	r.ch <- in.Filename
	if in.Filename == "bad.wav" {
		return errors.New("boom")
	}
	return nil
}

func (r *recorder) wait(t *testing.T, n int) []string {
	t.Helper()
	var got []string
	for len(got) < n {
		select {
		case name := <-r.ch:
			got = append(got, name)
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for %d items, got %v", n, got)
		}
	}
	sort.Strings(got)
	return got
}

func TestStart(t *testing.T) {
	dir := t.TempDir()
	old := baseTime.Add(-time.Hour)
	writeFile(t, dir, "a.wav", old)
	writeFile(t, dir, "bad.wav", old)

	clock := newFakeClock(baseTime)
	rec := newRecorder()
	w := newTestWatcher(t, Options{Dir: dir, Clock: clock, MaxConcurrent: 1}, rec.handle)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	if got := rec.wait(t, 2); !equalStrings(got, []string{"a.wav", "bad.wav"}) {
		t.Fatalf("initial cycle = %v", got)
	}

	// A handler error must not stop the loop.
	writeFile(t, dir, "c.wav", old)
	clock.tick(t)
	if got := rec.wait(t, 1); !equalStrings(got, []string{"c.wav"}) {
		t.Fatalf("tick cycle = %v", got)
	}

	clock.tick(t)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Start() error = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Start() did not return after cancel")
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.seen) != 3 {
		t.Errorf("handler calls = %v, want exactly 3", rec.seen)
	}
}

func TestStartDrainsInFlight(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "slow.wav", baseTime.Add(-time.Hour))

	started := make(chan struct{})
	release := make(chan struct{})
	var finished bool
	var handlerCtxErr error
	handler := func(ctx context.Context, in audio.Input) error {
		close(started)
		<-release
		handlerCtxErr = ctx.Err()
		finished = true
		return nil
	}

	w := newTestWatcher(t, Options{Dir: dir, Clock: newFakeClock(baseTime)}, handler)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	<-started
	cancel()

	select {
	case <-done:
		t.Fatal("Start() returned before in-flight item finished")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	<-done
	if !finished {
		t.Fatal("in-flight handler did not finish")
	}
	if handlerCtxErr != nil {
		t.Errorf("handler ctx was cancelled: %v", handlerCtxErr)
	}
}

func TestStartReleasesUndispatched(t *testing.T) {
	dir := t.TempDir()
	first := writeFile(t, dir, "a.wav", baseTime.Add(-time.Hour))
	second := writeFile(t, dir, "b.wav", baseTime.Add(-time.Hour))

	started := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	handler := func(ctx context.Context, in audio.Input) error {
		if calls.Add(1) == 1 {
			close(started)
		}
		<-release
		return nil
	}

	w := newTestWatcher(t, Options{Dir: dir, Clock: newFakeClock(baseTime), MaxConcurrent: 1}, handler)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	<-started
	cancel()

	deadline := time.Now().Add(2 * time.Second)
	for w.processed.Contains(second) {
		if time.Now().After(deadline) {
			t.Fatalf("%s still marked processed after shutdown", second)
		}
		time.Sleep(5 * time.Millisecond)
	}

	close(release)
	<-done

	if got := calls.Load(); got != 1 {
		t.Errorf("handler called %d times, want 1", got)
	}
	if !w.processed.Contains(first) {
		t.Errorf("%s was dispatched and should stay marked", first)
	}

	again, err := w.NextBatch(context.Background())
	if err != nil {
		t.Fatalf("NextBatch() error = %v", err)
	}
	if got := filenames(again); !equalStrings(got, []string{"b.wav"}) {
		t.Errorf("next scan = %v, want [b.wav]", got)
	}
}

func TestAcceptUpload(t *testing.T) {
	tests := []struct {
		name    string
		upload  Upload
		missing string
	}{
		{
			name:    "all missing",
			upload:  Upload{},
			missing: "audioFile, name, date",
		},
		{
			name:    "empty payload",
			upload:  Upload{Filename: "a.wav", Data: []byte{}, Name: "Alice", Date: "2024-01-01"},
			missing: "audioFile",
		},
		{
			name:    "blank name",
			upload:  Upload{Filename: "a.wav", Data: []byte("x"), Name: "  ", Date: "2024-01-01"},
			missing: "name",
		},
		{
			name:    "no date",
			upload:  Upload{Filename: "a.wav", Data: []byte("x"), Name: "Alice"},
			missing: "date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := AcceptUpload(tt.upload)
			if !apperror.Is(err, apperror.KindMissingField) {
				t.Fatalf("AcceptUpload() error = %v, want missing_field", err)
			}
			want := "missing required field(s): " + tt.missing
			if msg := apperror.MessageOf(err); msg != want {
				t.Errorf("message = %q, want %q", msg, want)
			}
		})
	}
}

func TestAcceptUploadValid(t *testing.T) {
	u := Upload{Filename: "rec.wav", Data: []byte("payload"), Name: "Alice", Date: "2024-01-01"}

	a, err := AcceptUpload(u)
	if err != nil {
		t.Fatalf("AcceptUpload() error = %v", err)
	}
	b, _ := AcceptUpload(u)

	if a.ID == b.ID {
		t.Errorf("upload tokens must differ, both %q", a.ID)
	}
	if len(a.ID) <= len("upload-") || a.ID[:len("upload-")] != "upload-" {
		t.Errorf("ID = %q, want upload- prefix", a.ID)
	}
	if a.Name != "Alice" || a.Date != "2024-01-01" || a.Filename != "rec.wav" {
		t.Errorf("metadata = %+v", a)
	}

	rc, err := a.Open()
	if err != nil {
		t.Fatal(err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != "payload" {
		t.Errorf("payload = %q", data)
	}
}
