package factcheck

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_factcheck/internal/backend"
	"github.com/anatolykoptev/go_factcheck/internal/history"
)

// fakeBackend answers the two endpoints with fixed status codes and bodies.
type fakeBackend struct {
	infoStatus   int
	infoBody     string
	claimsStatus int
	claimsBody   string

	mu    sync.Mutex
	paths []string
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.paths = append(f.paths, r.URL.Path)
	status, body := f.infoStatus, f.infoBody
	if r.URL.Path == "/extract-claims" {
		status, body = f.claimsStatus, f.claimsBody
	}
	f.mu.Unlock()
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func (f *fakeBackend) setInfoStatus(code int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.infoStatus = code
}

func (f *fakeBackend) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.paths...)
}

func newForm(t *testing.T, fb *fakeBackend, opts ...Option) *Form {
	t.Helper()
	srv := httptest.NewServer(fb)
	t.Cleanup(srv.Close)
	f := New(backend.New(srv.URL, srv.Client()), opts...)
	t.Cleanup(f.Close)
	return f
}

func ptr(s string) *string { return &s }

func TestInitialState(t *testing.T) {
	f := New(nil)
	assert.Equal(t, State{Claims: []string{}}, f.Snapshot())
}

func TestEmptyURLNoNetwork(t *testing.T) {
	fb := &fakeBackend{infoBody: `{"thumbnail_url":"X"}`, claimsBody: `{"claims":["a"]}`}
	f := newForm(t, fb)

	st, err := f.Submit(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, ptr(MsgEmptyURL), st.Error)
	assert.False(t, st.Loading)
	assert.Empty(t, fb.calls())
}

func TestEmptyURLKeepsPreviousResults(t *testing.T) {
	fb := &fakeBackend{infoBody: `{"thumbnail_url":"X"}`, claimsBody: `{"claims":["a"]}`}
	f := newForm(t, fb)

	_, err := f.Submit(context.Background(), "https://youtu.be/abc")
	require.NoError(t, err)

	st, err := f.Submit(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, MsgEmptyURL, st.ErrorText())
	assert.Equal(t, "X", st.Thumbnail())
	assert.Equal(t, []string{"a"}, st.Claims)
	assert.Len(t, fb.calls(), 2)
}

func TestThumbnail(t *testing.T) {
	tests := []struct {
		name string
		body string
		want *string
	}{
		{"present", `{"thumbnail_url":"X"}`, ptr("X")},
		{"absent", `{}`, nil},
		{"empty", `{"thumbnail_url":""}`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newForm(t, &fakeBackend{infoBody: tt.body, claimsBody: `{}`})
			st, err := f.Submit(context.Background(), "u")
			require.NoError(t, err)
			assert.Equal(t, tt.want, st.ThumbnailURL)
			assert.Nil(t, st.Error)
		})
	}
}

func TestClaims(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{"ordered", `{"claims":["a","b"]}`, []string{"a", "b"}},
		{"reversed", `{"claims":["b","a"]}`, []string{"b", "a"}},
		{"string", `{"claims":"a"}`, []string{}},
		{"missing", `{}`, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newForm(t, &fakeBackend{infoBody: `{}`, claimsBody: tt.body})
			st, err := f.Submit(context.Background(), "u")
			require.NoError(t, err)
			assert.Equal(t, tt.want, st.Claims)
			assert.Nil(t, st.Error)
		})
	}
}

func TestNon2xxIsGenericError(t *testing.T) {
	tests := []struct {
		name      string
		fb        *fakeBackend
		wantCalls []string
		wantThumb *string
	}{
		{
			name:      "video info 500",
			fb:        &fakeBackend{infoStatus: 500},
			wantCalls: []string{"/video-info"},
		},
		{
			name:      "video info 404",
			fb:        &fakeBackend{infoStatus: 404},
			wantCalls: []string{"/video-info"},
		},
		{
			name:      "claims 502 keeps thumbnail",
			fb:        &fakeBackend{infoBody: `{"thumbnail_url":"X"}`, claimsStatus: 502},
			wantCalls: []string{"/video-info", "/extract-claims"},
			wantThumb: ptr("X"),
		},
		{
			name:      "malformed info body",
			fb:        &fakeBackend{infoBody: `<html>`},
			wantCalls: []string{"/video-info"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newForm(t, tt.fb)
			st, err := f.Submit(context.Background(), "u")
			require.NoError(t, err)
			assert.False(t, st.Loading)
			assert.Equal(t, ptr(MsgLoadFailed), st.Error)
			assert.Equal(t, tt.wantThumb, st.ThumbnailURL)
			assert.Empty(t, st.Claims)
			assert.Equal(t, tt.wantCalls, tt.fb.calls())
		})
	}
}

func TestNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	f := New(backend.New(base, nil))
	defer f.Close()
	st, err := f.Submit(context.Background(), "u")
	require.NoError(t, err)
	assert.Equal(t, MsgLoadFailed, st.ErrorText())
	assert.False(t, st.Loading)
}

func TestLoadingOnlyWhileRunning(t *testing.T) {
	var seen []State
	fb := &fakeBackend{infoBody: `{"thumbnail_url":"X"}`, claimsBody: `{"claims":["a"]}`}
	f := newForm(t, fb, WithObserver(func(s State) { seen = append(seen, s) }))

	assert.False(t, f.Snapshot().Loading)
	st, err := f.Submit(context.Background(), "u")
	require.NoError(t, err)
	assert.False(t, st.Loading)
	assert.False(t, f.Snapshot().Loading)

	require.Len(t, seen, 4)
	assert.True(t, seen[0].Loading, "start")
	assert.True(t, seen[1].Loading, "info received")
	assert.Equal(t, "X", seen[1].Thumbnail())
	assert.Empty(t, seen[1].Claims)
	assert.True(t, seen[2].Loading, "claims received")
	assert.Equal(t, []string{"a"}, seen[2].Claims)
	assert.False(t, seen[3].Loading, "settle")
}

func TestStartClearsPreviousResults(t *testing.T) {
	var seen []State
	fb := &fakeBackend{infoBody: `{"thumbnail_url":"X"}`, claimsBody: `{"claims":["a"]}`}
	f := newForm(t, fb)

	_, err := f.Submit(context.Background(), "")
	require.NoError(t, err)
	_, err = f.Submit(context.Background(), "u1")
	require.NoError(t, err)

	f.observers = append(f.observers, func(s State) { seen = append(seen, s) })
	fb.setInfoStatus(http.StatusInternalServerError)
	_, err = f.Submit(context.Background(), "u2")
	require.NoError(t, err)

	require.NotEmpty(t, seen)
	assert.Equal(t, State{URL: "u2", Claims: []string{}, Loading: true}, seen[0])
}

// Scenario: both calls succeed.
func TestScenarioSuccess(t *testing.T) {
	fb := &fakeBackend{
		infoBody:   `{"thumbnail_url":"http://img/t.jpg"}`,
		claimsBody: `{"claims":["Claim 1","Claim 2"]}`,
	}
	f := newForm(t, fb)

	st, err := f.Submit(context.Background(), "https://youtu.be/abc")
	require.NoError(t, err)
	assert.Equal(t, State{
		URL:          "https://youtu.be/abc",
		ThumbnailURL: ptr("http://img/t.jpg"),
		Claims:       []string{"Claim 1", "Claim 2"},
	}, st)
	assert.Equal(t, []string{"/video-info", "/extract-claims"}, fb.calls())
}

// Scenario: video info fails.
func TestScenarioVideoInfo500(t *testing.T) {
	fb := &fakeBackend{infoStatus: 500, claimsBody: `{"claims":["a"]}`}
	f := newForm(t, fb)

	st, err := f.Submit(context.Background(), "https://youtu.be/abc")
	require.NoError(t, err)
	assert.Equal(t, MsgLoadFailed, st.ErrorText())
	assert.Nil(t, st.ThumbnailURL)
	assert.Empty(t, st.Claims)
	assert.False(t, st.Loading)
}

// blockingAPI parks VideoInfo until released or cancelled.
type blockingAPI struct {
	entered chan struct{}
	release chan struct{}
	claims  atomic.Int32
}

func newBlockingAPI() *blockingAPI {
	return &blockingAPI{entered: make(chan struct{}, 1), release: make(chan struct{})}
}

func (b *blockingAPI) VideoInfo(ctx context.Context, _ string) (backend.VideoInfo, error) {
	b.entered <- struct{}{}
	select {
	case <-b.release:
		return backend.VideoInfo{ThumbnailURL: "X"}, nil
	case <-ctx.Done():
		return backend.VideoInfo{}, ctx.Err()
	}
}

func (b *blockingAPI) ExtractClaims(context.Context, string) (backend.ClaimsResult, error) {
	b.claims.Add(1)
	return backend.ClaimsResult{Claims: []string{"a"}}, nil
}

func TestSubmitWhileLoadingRejected(t *testing.T) {
	api := newBlockingAPI()
	f := New(api)
	defer f.Close()

	done := make(chan State, 1)
	go func() {
		st, _ := f.Submit(context.Background(), "first")
		done <- st
	}()
	<-api.entered

	before := f.Snapshot()
	st, err := f.Submit(context.Background(), "second")
	require.ErrorIs(t, err, ErrSubmissionInFlight)
	assert.Equal(t, before, st)
	assert.Equal(t, before, f.Snapshot())
	assert.Equal(t, "first", f.Snapshot().URL)

	close(api.release)
	final := <-done
	assert.Equal(t, "first", final.URL)
	assert.Equal(t, []string{"a"}, final.Claims)
	assert.False(t, final.Loading)
}

func TestCloseDuringFlight(t *testing.T) {
	api := newBlockingAPI()
	var (
		mu   sync.Mutex
		seen []State
	)
	f := New(api, WithObserver(func(s State) {
		mu.Lock()
		seen = append(seen, s)
		mu.Unlock()
	}))

	errc := make(chan error, 1)
	go func() {
		_, err := f.Submit(context.Background(), "u")
		errc <- err
	}()
	<-api.entered
	f.Close()

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, ErrClosed)
	case <-time.After(5 * time.Second):
		t.Fatal("submit did not return after Close")
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, 1, "only the start transition is observed")
	assert.True(t, seen[0].Loading)
	assert.Zero(t, api.claims.Load())

	_, err := f.Submit(context.Background(), "again")
	assert.ErrorIs(t, err, ErrClosed)
	assert.True(t, f.Closed())
}

func TestCallerCancelIsGenericError(t *testing.T) {
	api := newBlockingAPI()
	f := New(api)
	defer f.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan State, 1)
	go func() {
		st, _ := f.Submit(ctx, "u")
		done <- st
	}()
	<-api.entered
	cancel()

	st := <-done
	assert.Equal(t, MsgLoadFailed, st.ErrorText())
	assert.False(t, st.Loading)
}

type recorderFunc func(context.Context, history.Record) (int64, error)

func (fn recorderFunc) Save(ctx context.Context, r history.Record) (int64, error) { return fn(ctx, r) }

func TestRecorder(t *testing.T) {
	var got []history.Record
	rec := recorderFunc(func(_ context.Context, r history.Record) (int64, error) {
		got = append(got, r)
		return int64(len(got)), nil
	})
	fb := &fakeBackend{infoBody: `{"thumbnail_url":"X"}`, claimsBody: `{"claims":["a"]}`}
	f := newForm(t, fb, WithRecorder(rec))

	_, _ = f.Submit(context.Background(), "")
	_, _ = f.Submit(context.Background(), "u")
	fb.setInfoStatus(http.StatusInternalServerError)
	_, _ = f.Submit(context.Background(), "v")

	require.Len(t, got, 2, "empty submissions are not recorded")
	assert.Equal(t, history.Record{URL: "u", ThumbnailURL: "X", Claims: []string{"a"}}, got[0])
	assert.Equal(t, history.Record{URL: "v", Claims: []string{}, Error: MsgLoadFailed}, got[1])
}

func TestRecorderFailureDoesNotAffectState(t *testing.T) {
	rec := recorderFunc(func(context.Context, history.Record) (int64, error) {
		return 0, errors.New("disk full")
	})
	f := newForm(t, &fakeBackend{infoBody: `{}`, claimsBody: `{"claims":["a"]}`}, WithRecorder(rec))

	st, err := f.Submit(context.Background(), "u")
	require.NoError(t, err)
	assert.Nil(t, st.Error)
}

func TestSetURL(t *testing.T) {
	f := New(nil)
	f.SetURL("https://youtu.be/abc")
	assert.Equal(t, "https://youtu.be/abc", f.Snapshot().URL)
	f.Close()
	f.SetURL("ignored")
	assert.Equal(t, "https://youtu.be/abc", f.Snapshot().URL)
}
