package calendar

import (
	"context"
	"sync"
	"testing"
	"time"
)

// fakeService is a scriptable Service. All fields are guarded so tests can
// poke at it while the engine runs in goroutines.
type fakeService struct {
	mu sync.Mutex

	calendars []CalendarInfo
	listErr   error
	listCalls int
	listGate  chan struct{} // when non-nil, ListCalendars blocks until closed

	auth    AuthURLResponse
	authErr error

	syncResult SyncResult
	syncErr    error
	syncCalls  int

	discErr   error
	discCalls int
}

func (f *fakeService) ListCalendars(ctx context.Context) ([]CalendarInfo, error) {
	f.mu.Lock()
	f.listCalls++
	gate := f.listGate
	cals, err := f.calendars, f.listErr
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return cals, err
}

func (f *fakeService) AuthURL(ctx context.Context) (AuthURLResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.auth, f.authErr
}

func (f *fakeService) Sync(ctx context.Context) (SyncResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.syncCalls++
	return f.syncResult, f.syncErr
}

func (f *fakeService) Disconnect(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.discCalls++
	return f.discErr
}

func (f *fakeService) listCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls
}

func (f *fakeService) syncCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.syncCalls
}

// fakeStore keeps the persisted state in memory and counts calls.
type fakeStore struct {
	mu      sync.Mutex
	state   *PersistedState
	saveErr error
	saves   int
	deletes int
}

func (f *fakeStore) Save(ctx context.Context, state PersistedState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves++
	if f.saveErr != nil {
		return f.saveErr
	}
	s := state
	f.state = &s
	return nil
}

func (f *fakeStore) Load(ctx context.Context) (*PersistedState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == nil {
		return nil, nil
	}
	s := *f.state
	return &s, nil
}

func (f *fakeStore) Delete(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes++
	f.state = nil
	return nil
}

func (f *fakeStore) saved() *PersistedState {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == nil {
		return nil
	}
	s := *f.state
	return &s
}

// fakeWindow flips closed when the test (or Close) says so.
type fakeWindow struct {
	mu         sync.Mutex
	closed     bool
	closeCalls int
}

func (w *fakeWindow) Closed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}

func (w *fakeWindow) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	w.closeCalls++
}

func (w *fakeWindow) closeByUser() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
}

// fakeLauncher returns a scripted window or error.
type fakeLauncher struct {
	mu      sync.Mutex
	win     *fakeWindow
	err     error
	opened  []string
	lastDim [2]int
}

func (l *fakeLauncher) Open(ctx context.Context, url string, width, height int) (Window, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.opened = append(l.opened, url)
	l.lastDim = [2]int{width, height}
	if l.err != nil {
		return nil, l.err
	}
	if l.win == nil {
		l.win = &fakeWindow{}
	}
	return l.win, nil
}

func (l *fakeLauncher) openCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.opened)
}

type notification struct {
	Kind        string
	Title       string
	Description string
}

// recordingNotifier captures notifications in order.
type recordingNotifier struct {
	mu      sync.Mutex
	entries []notification
}

func (n *recordingNotifier) Success(ctx context.Context, title, description string) {
	n.record("success", title, description)
}

func (n *recordingNotifier) Error(ctx context.Context, title, description string) {
	n.record("error", title, description)
}

func (n *recordingNotifier) Info(ctx context.Context, title, description string) {
	n.record("info", title, description)
}

func (n *recordingNotifier) record(kind, title, description string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.entries = append(n.entries, notification{Kind: kind, Title: title, Description: description})
}

func (n *recordingNotifier) all() []notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notification(nil), n.entries...)
}

func (n *recordingNotifier) has(kind, title string) bool {
	for _, e := range n.all() {
		if e.Kind == kind && e.Title == title {
			return true
		}
	}
	return false
}

// waitFor polls cond until it holds or the test deadline budget runs out.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}
