package hooks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alfredjeanlab/casos/internal/events"
)

// Environment variables set for every hook run. The event body is written
// to the command's stdin.
const (
	EnvTopic  = "CASOS_EVENT_TOPIC"
	EnvCaseID = "CASOS_EVENT_CASE_ID"
)

// Handler runs one command per received event.
type Handler struct {
	command string
	timeout time.Duration
	logger  *slog.Logger
}

// NewHandler returns a handler that runs command with the given timeout.
func NewHandler(command string, timeout time.Duration, logger *slog.Logger) *Handler {
	return &Handler{command: command, timeout: timeout, logger: logger}
}

// HandleEvent runs the hook for msg. An empty command is a no-op.
func (h *Handler) HandleEvent(ctx context.Context, msg events.Message) Result {
	if h.command == "" {
		return Result{}
	}
	env := map[string]string{
		EnvTopic:  msg.Topic,
		EnvCaseID: msg.CaseID,
	}
	res := Execute(ctx, h.command, h.timeout, msg.Data, env)
	if res.Err != nil {
		h.logger.Warn("hooks: command failed",
			"topic", msg.Topic, "case", msg.CaseID, "err", res.Err, "output", res.Output)
	} else {
		h.logger.Info("hooks: command ran", "topic", msg.Topic, "case", msg.CaseID)
	}
	return res
}

// StartSubscriber runs the hook for every event on topic (NATS wildcards
// allowed). Events are handled one at a time in arrival order. It blocks
// until ctx is cancelled or the subscription closes.
func (h *Handler) StartSubscriber(ctx context.Context, sub events.Subscriber, topic string) error {
	ch, cancel, err := sub.Subscribe(topic)
	if err != nil {
		return fmt.Errorf("hooks: subscribe: %w", err)
	}
	defer cancel()

	h.logger.Info("hooks: subscriber started", "topic", topic)

	for {
		select {
		case <-ctx.Done():
			h.logger.Info("hooks: subscriber stopping")
			return nil
		case msg, ok := <-ch:
			if !ok {
				h.logger.Info("hooks: subscription channel closed")
				return nil
			}
			h.HandleEvent(ctx, msg)
		}
	}
}
