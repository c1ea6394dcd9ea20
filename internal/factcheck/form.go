// Package factcheck implements the video submission form: it validates the
// URL, asks the backend for video info and then for extracted claims, and
// keeps the resulting view state.
//
// A Form is safe for concurrent use. At most one submission runs at a time;
// a second Submit while loading is rejected without touching state.
package factcheck

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/anatolykoptev/go_factcheck/internal/backend"
	"github.com/anatolykoptev/go_factcheck/internal/engine"
	"github.com/anatolykoptev/go_factcheck/internal/history"
)

// User-visible messages.
const (
	MsgEmptyURL   = "Please enter a YouTube URL"
	MsgLoadFailed = "Failed to load data. Please try again."
)

var (
	// ErrEmptyURL is the validation failure shown as MsgEmptyURL.
	ErrEmptyURL = errors.New(MsgEmptyURL)
	// ErrSubmissionInFlight is returned by Submit while a previous submission is loading.
	ErrSubmissionInFlight = errors.New("factcheck: submission in flight")
	// ErrClosed is returned once the form has been closed.
	ErrClosed = errors.New("factcheck: form closed")
)

const (
	recordTimeout  = 5 * time.Second
	slowSubmission = 30 * time.Second
)

// Option configures a Form.
type Option func(*Form)

// WithRecorder saves every settled submission.
func WithRecorder(r history.Recorder) Option {
	return func(f *Form) { f.recorder = r }
}

// WithObserver registers fn to receive a snapshot after every state change.
// Observers run outside the form's lock, in order of registration.
func WithObserver(fn func(State)) Option {
	return func(f *Form) { f.observers = append(f.observers, fn) }
}

// Form owns one submission state.
type Form struct {
	api       backend.API
	recorder  history.Recorder
	observers []func(State)

	life   context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	state  State
	closed bool
}

// New creates a form in its initial empty state.
func New(api backend.API, opts ...Option) *Form {
	life, cancel := context.WithCancel(context.Background())
	f := &Form{
		api:    api,
		life:   life,
		cancel: cancel,
		state:  newState(),
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Snapshot returns a copy of the current state.
func (f *Form) Snapshot() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.clone()
}

// SetURL updates the input field without submitting.
func (f *Form) SetURL(url string) {
	f.apply(func(s *State) { s.URL = url })
}

// Submit runs one submission to completion and returns the settled state.
// Backend failures are reported through State.Error; the returned error is
// non-nil only when the submission was not admitted or the form was closed
// while it ran.
func (f *Form) Submit(ctx context.Context, url string) (State, error) {
	f.mu.Lock()
	switch {
	case f.closed:
		f.mu.Unlock()
		return State{}, ErrClosed
	case f.state.Loading:
		snap := f.state.clone()
		f.mu.Unlock()
		engine.IncrRejectedSubmissions()
		return snap, ErrSubmissionInFlight
	}
	f.state.URL = url
	if url == "" {
		f.state.invalid(ErrEmptyURL.Error())
	} else {
		f.state.start(url)
	}
	snap := f.state.clone()
	f.mu.Unlock()
	f.notify(snap)

	if url == "" {
		return snap, nil
	}
	engine.IncrSubmissions()

	ctx, stop := f.bind(ctx)
	defer stop()

	err := engine.TrackOperation(ctx, "factcheck.submit", slowSubmission, func(ctx context.Context) error {
		return f.run(ctx, url)
	})
	if err != nil && !errors.Is(err, ErrClosed) {
		if _, ok := f.apply((*State).fail); ok {
			engine.IncrSubmissionErrors()
			slog.Warn("factcheck: submission failed",
				slog.String("url", url),
				slog.Any("error", err),
			)
		}
	}

	final, ok := f.apply((*State).settle)
	if !ok {
		return State{}, ErrClosed
	}
	f.record(ctx, final)
	return final, nil
}

// run issues the two backend calls in order, committing each result before
// the next call starts.
func (f *Form) run(ctx context.Context, url string) error {
	info, err := f.api.VideoInfo(ctx, url)
	if err != nil {
		return err
	}
	if _, ok := f.apply(func(s *State) { s.infoReceived(info) }); !ok {
		return ErrClosed
	}

	res, err := f.api.ExtractClaims(ctx, url)
	if err != nil {
		return err
	}
	if _, ok := f.apply(func(s *State) { s.claimsReceived(res) }); !ok {
		return ErrClosed
	}
	return nil
}

// Close discards the form. In-flight calls are cancelled and their results
// dropped. Close is idempotent.
func (f *Form) Close() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.closed = true
	f.mu.Unlock()
	f.cancel()
}

// Closed reports whether Close has been called.
func (f *Form) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// apply runs a transition unless the form is closed and notifies observers.
func (f *Form) apply(transition func(*State)) (State, bool) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return State{}, false
	}
	transition(&f.state)
	snap := f.state.clone()
	f.mu.Unlock()
	f.notify(snap)
	return snap, true
}

func (f *Form) notify(s State) {
	for _, fn := range f.observers {
		fn(s.clone())
	}
}

// bind derives a context cancelled by either the caller or Close.
func (f *Form) bind(ctx context.Context) (context.Context, func()) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(f.life, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

func (f *Form) record(ctx context.Context, s State) {
	if f.recorder == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()

	_, err := f.recorder.Save(ctx, history.Record{
		URL:          s.URL,
		ThumbnailURL: s.Thumbnail(),
		Claims:       s.Claims,
		Error:        s.ErrorText(),
	})
	if err != nil {
		engine.IncrHistoryErrors()
		slog.Warn("factcheck: history save failed", slog.Any("error", err))
		return
	}
	engine.IncrHistoryWrites()
}
