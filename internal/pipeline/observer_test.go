package pipeline

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
)

type recordingSink struct {
	sendCalls int
	editCalls int
	lastText  string
	sendErr   error
	editErr   error
}

func (r *recordingSink) Send(_ context.Context, _, text string) (string, error) {
	r.sendCalls++
	r.lastText = text
	if r.sendErr != nil {
		return "", r.sendErr
	}
	return "handle-1", nil
}

func (r *recordingSink) Edit(_ context.Context, _, _, text string) error {
	r.editCalls++
	r.lastText = text
	return r.editErr
}

func TestObserver_FirstReportSendsSubsequentReportsEdit(t *testing.T) {
	t.Parallel()
	sink := &recordingSink{}
	obs := newObserver(sink, zap.NewNop())

	obs.report(context.Background(), "chat-1", "first")
	obs.report(context.Background(), "chat-1", "second")
	obs.report(context.Background(), "chat-1", "third")

	if sink.sendCalls != 1 {
		t.Errorf("Send called %d times, want exactly 1", sink.sendCalls)
	}
	if sink.editCalls != 2 {
		t.Errorf("Edit called %d times, want exactly 2", sink.editCalls)
	}
	if sink.lastText != "third" {
		t.Errorf("last reported text = %q, want %q", sink.lastText, "third")
	}
}

func TestObserver_SendFailureIsSwallowedAndRetriesOnNextReport(t *testing.T) {
	t.Parallel()
	sink := &recordingSink{sendErr: errors.New("transport unavailable")}
	obs := newObserver(sink, zap.NewNop())

	obs.report(context.Background(), "chat-1", "first")
	if obs.handle != "" {
		t.Fatal("handle should remain empty after a failed send")
	}

	sink.sendErr = nil
	obs.report(context.Background(), "chat-1", "second")
	if sink.sendCalls != 2 {
		t.Errorf("Send called %d times, want 2 (retry after the failed first attempt)", sink.sendCalls)
	}
	if obs.handle == "" {
		t.Error("handle should be set once a send succeeds")
	}
}

func TestObserver_EditFailureIsSwallowed(t *testing.T) {
	t.Parallel()
	sink := &recordingSink{editErr: errors.New("message not found")}
	obs := newObserver(sink, zap.NewNop())

	obs.report(context.Background(), "chat-1", "first")
	obs.report(context.Background(), "chat-1", "second")

	if sink.editCalls != 1 {
		t.Errorf("Edit called %d times, want 1", sink.editCalls)
	}
}
