package hooks

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alfredjeanlab/casos/internal/events"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestExecute_Output(t *testing.T) {
	res := Execute(context.Background(), "echo hello", 0, nil, nil)
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if res.Output != "hello" {
		t.Errorf("Output = %q, want hello", res.Output)
	}
}

func TestExecute_StderrFallback(t *testing.T) {
	res := Execute(context.Background(), "echo oops >&2; exit 3", 0, nil, nil)
	if res.Err == nil {
		t.Fatal("expected error for non-zero exit")
	}
	if res.Output != "oops" {
		t.Errorf("Output = %q, want stderr text", res.Output)
	}
}

func TestExecute_StdinAndEnv(t *testing.T) {
	res := Execute(context.Background(), `printf '%s:' "$GREETING"; cat`, 0, []byte("body"), map[string]string{"GREETING": "hola"})
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if res.Output != "hola:body" {
		t.Errorf("Output = %q, want hola:body", res.Output)
	}
}

func TestExecute_Timeout(t *testing.T) {
	start := time.Now()
	res := Execute(context.Background(), "sleep 5", 100*time.Millisecond, nil, nil)
	if res.Err == nil {
		t.Fatal("expected timeout error")
	}
	if time.Since(start) > 3*time.Second {
		t.Error("command was not killed at the timeout")
	}
}

func TestHandleEvent_EmptyCommand(t *testing.T) {
	h := NewHandler("", 0, discardLogger())
	res := h.HandleEvent(context.Background(), events.Message{Topic: events.TopicCaseClosed})
	if res.Err != nil || res.Output != "" {
		t.Errorf("empty command should be a no-op, got %+v", res)
	}
}

func TestHandleEvent_PassesEvent(t *testing.T) {
	h := NewHandler(`echo "$`+EnvTopic+` $`+EnvCaseID+` $(cat)"`, time.Second, discardLogger())
	res := h.HandleEvent(context.Background(), events.Message{
		Topic:  events.TopicCaseClosed,
		CaseID: "R-001",
		Data:   []byte(`{"case_id":"R-001"}`),
	})
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	want := events.TopicCaseClosed + ` R-001 {"case_id":"R-001"}`
	if res.Output != want {
		t.Errorf("Output = %q, want %q", res.Output, want)
	}
}

// chanSubscriber hands out a channel the test feeds.
type chanSubscriber struct {
	ch    chan events.Message
	topic string
}

func (c *chanSubscriber) Subscribe(topic string) (<-chan events.Message, func(), error) {
	c.topic = topic
	return c.ch, func() {}, nil
}

func (c *chanSubscriber) Close() error { return nil }

func TestStartSubscriber_RunsInOrder(t *testing.T) {
	out := filepath.Join(t.TempDir(), "log")
	h := NewHandler(`echo "$`+EnvCaseID+`" >> `+out, time.Second, discardLogger())
	sub := &chanSubscriber{ch: make(chan events.Message, 3)}

	sub.ch <- events.Message{Topic: events.TopicChecklistUpdated, CaseID: "R-1"}
	sub.ch <- events.Message{Topic: events.TopicCaseClosed, CaseID: "R-2"}
	close(sub.ch)

	if err := h.StartSubscriber(context.Background(), sub, events.TopicAll); err != nil {
		t.Fatalf("StartSubscriber() = %v", err)
	}
	if sub.topic != events.TopicAll {
		t.Errorf("subscribed to %q, want %q", sub.topic, events.TopicAll)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Fields(string(data)); len(got) != 2 || got[0] != "R-1" || got[1] != "R-2" {
		t.Errorf("hook runs = %v, want [R-1 R-2]", got)
	}
}

func TestStartSubscriber_StopsOnCancel(t *testing.T) {
	h := NewHandler("true", time.Second, discardLogger())
	sub := &chanSubscriber{ch: make(chan events.Message)}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.StartSubscriber(ctx, sub, events.TopicAll) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("StartSubscriber() = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("StartSubscriber did not return after cancel")
	}
}
