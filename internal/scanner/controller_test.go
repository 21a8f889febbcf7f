package scanner

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/presenzahq/presenza/internal/client"
)

type scanCall struct {
	token  string
	userID int64
	action string
}

type fakeSubmitter struct {
	mu     sync.Mutex
	calls  []scanCall
	result *client.ScanResult
	err    error
}

func (s *fakeSubmitter) Scan(ctx context.Context, token string, userID int64, action string) (*client.ScanResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, scanCall{token: token, userID: userID, action: action})
	return s.result, s.err
}

func (s *fakeSubmitter) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func (s *fakeSubmitter) lastCall() scanCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[len(s.calls)-1]
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

// TestControllerScanFlow runs a full capture: start, decode, submit, and
// auto-clear of the success message.
func TestControllerScanFlow(t *testing.T) {
	t.Parallel()

	sub := &fakeSubmitter{result: &client.ScanResult{Message: "checked in", Status: "present"}}
	ctrl := NewController(sub, 7, "punch_in", WithClearDelay(30*time.Millisecond))

	source := &fakeSource{frames: []Frame{Frame("noise"), Frame("tok-1")}}
	ctrl.Start(context.Background(), source, &fakeDecoder{token: "tok-1"})

	waitFor(t, func() bool { return ctrl.Snapshot().Result != nil }, "no result after scan")

	state := ctrl.Snapshot()
	if state.Scanning {
		t.Error("expected session to end after a decode")
	}
	if state.Result.Message != "checked in" {
		t.Errorf("result message = %q", state.Result.Message)
	}
	if got := sub.lastCall(); got != (scanCall{token: "tok-1", userID: 7, action: "punch_in"}) {
		t.Errorf("scan call = %+v", got)
	}
	if n := sub.callCount(); n != 1 {
		t.Errorf("submitted %d times, want 1", n)
	}
	if source.closeCount() == 0 {
		t.Error("expected source to be released")
	}

	waitFor(t, func() bool { return ctrl.Snapshot().Result == nil }, "success message never cleared")
}

// TestControllerStartWhileActive verifies a second Start is a no-op that
// still closes the source it was handed.
func TestControllerStartWhileActive(t *testing.T) {
	t.Parallel()

	sub := &fakeSubmitter{result: &client.ScanResult{}}
	ctrl := NewController(sub, 1, "punch_in")

	first := &fakeSource{}
	ctrl.Start(context.Background(), first, &fakeDecoder{token: "x"})
	if !ctrl.Scanning() {
		t.Fatal("expected an active session")
	}

	second := &fakeSource{}
	ctrl.Start(context.Background(), second, &fakeDecoder{token: "x"})

	if second.closeCount() != 1 {
		t.Error("expected the rejected source to be closed")
	}
	if first.closeCount() != 0 {
		t.Error("active session must keep its source")
	}

	ctrl.Stop()
	waitFor(t, func() bool { return first.closeCount() == 1 }, "source not released on Stop")
	if ctrl.Scanning() {
		t.Error("expected no session after Stop")
	}
}

// TestControllerSubmitManual covers the typed-token fallback, including
// blank input rejected before any request.
func TestControllerSubmitManual(t *testing.T) {
	t.Parallel()

	sub := &fakeSubmitter{result: &client.ScanResult{Message: "ok"}}
	ctrl := NewController(sub, 3, "punch_out", WithClearDelay(time.Hour))

	for _, blank := range []string{"", "   ", "\t\n"} {
		if err := ctrl.SubmitManual(context.Background(), blank); !errors.Is(err, ErrEmptyToken) {
			t.Errorf("SubmitManual(%q) = %v, want ErrEmptyToken", blank, err)
		}
	}
	if n := sub.callCount(); n != 0 {
		t.Fatalf("blank input made %d requests, want 0", n)
	}
	if state := ctrl.Snapshot(); !errors.Is(state.Err, ErrEmptyToken) {
		t.Errorf("state error = %v, want ErrEmptyToken", state.Err)
	}

	if err := ctrl.SubmitManual(context.Background(), "  tok-9  "); err != nil {
		t.Fatalf("SubmitManual: %v", err)
	}
	if got := sub.lastCall(); got.token != "tok-9" || got.action != "punch_out" {
		t.Errorf("scan call = %+v, want trimmed token and punch_out", got)
	}

	state := ctrl.Snapshot()
	if state.Err != nil {
		t.Errorf("expected success to clear the earlier error, got %v", state.Err)
	}
	if state.Result == nil || state.Result.Message != "ok" {
		t.Errorf("result = %+v", state.Result)
	}
}

// TestControllerErrorPersists verifies submission failures stay on screen
// instead of auto-clearing.
func TestControllerErrorPersists(t *testing.T) {
	t.Parallel()

	scanErr := &client.Error{Code: client.CodeIllegalTransition, Message: "already present"}
	sub := &fakeSubmitter{err: scanErr}
	ctrl := NewController(sub, 2, "punch_in", WithClearDelay(10*time.Millisecond))

	if err := ctrl.SubmitManual(context.Background(), "tok-2"); !errors.Is(err, scanErr) {
		t.Fatalf("SubmitManual = %v, want scan error", err)
	}

	time.Sleep(50 * time.Millisecond)
	if state := ctrl.Snapshot(); !errors.Is(state.Err, scanErr) {
		t.Errorf("error cleared, want it to persist until the next attempt")
	}
}

// TestControllerNewResultOutlivesStaleTimer verifies a result submitted
// right before an older clear timer fires is not wiped by it.
func TestControllerNewResultOutlivesStaleTimer(t *testing.T) {
	t.Parallel()

	sub := &fakeSubmitter{result: &client.ScanResult{Message: "first"}}
	ctrl := NewController(sub, 5, "break_start", WithClearDelay(40*time.Millisecond))

	if err := ctrl.SubmitManual(context.Background(), "tok-a"); err != nil {
		t.Fatalf("SubmitManual: %v", err)
	}

	sub.mu.Lock()
	sub.result = &client.ScanResult{Message: "second"}
	sub.mu.Unlock()
	if err := ctrl.SubmitManual(context.Background(), "tok-b"); err != nil {
		t.Fatalf("SubmitManual: %v", err)
	}

	// Well past the first timer, well before the second.
	time.Sleep(20 * time.Millisecond)
	if state := ctrl.Snapshot(); state.Result == nil || state.Result.Message != "second" {
		t.Errorf("result = %+v, want the second submission intact", state.Result)
	}

	waitFor(t, func() bool { return ctrl.Snapshot().Result == nil }, "second result never cleared")
}

// TestControllerSessionErrorShown verifies a camera failure lands in the
// visible state and ends the session.
func TestControllerSessionErrorShown(t *testing.T) {
	t.Parallel()

	camErr := errors.New("device busy")
	sub := &fakeSubmitter{}
	ctrl := NewController(sub, 1, "punch_in")

	source := &failingSource{err: camErr}
	ctrl.Start(context.Background(), source, &fakeDecoder{token: "x"})

	waitFor(t, func() bool { return ctrl.Snapshot().Err != nil }, "camera error never surfaced")

	state := ctrl.Snapshot()
	if !errors.Is(state.Err, camErr) {
		t.Errorf("state error = %v, want camera error", state.Err)
	}
	if state.Scanning {
		t.Error("expected session to end after a source error")
	}
	if n := sub.callCount(); n != 0 {
		t.Errorf("camera failure made %d requests, want 0", n)
	}
	if source.closeCount() == 0 {
		t.Error("expected source to be released")
	}
}

// TestControllerOnChange verifies the change callback fires on the major
// transitions.
func TestControllerOnChange(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var states []State
	sub := &fakeSubmitter{result: &client.ScanResult{Message: "ok"}}
	ctrl := NewController(sub, 1, "punch_in",
		WithClearDelay(time.Hour),
		WithOnChange(func(s State) {
			mu.Lock()
			states = append(states, s)
			mu.Unlock()
		}),
	)

	if err := ctrl.SubmitManual(context.Background(), "tok-1"); err != nil {
		t.Fatalf("SubmitManual: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(states) == 0 {
		t.Fatal("expected at least one state notification")
	}
	last := states[len(states)-1]
	if last.Result == nil || last.Result.Message != "ok" {
		t.Errorf("last notified state = %+v", last)
	}
}
