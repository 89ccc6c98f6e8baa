// Package notify announces successful deploys to other systems.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/docpublish/internal/logfields"
)

// DefaultSubject is the NATS subject deploy events are published on.
const DefaultSubject = "docpublish.published"

// Event describes one successful deploy.
type Event struct {
	RunID       string    `json:"run_id"`
	Package     string    `json:"package"`
	Source      string    `json:"source"`
	Destination string    `json:"destination"`
	DryRun      bool      `json:"dry_run,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}

// Notifier receives deploy events.
type Notifier interface {
	Notify(ctx context.Context, ev Event) error
}

// NoopNotifier drops every event.
type NoopNotifier struct{}

func (NoopNotifier) Notify(context.Context, Event) error { return nil }

// NATSNotifier publishes events as JSON on a NATS subject.
type NATSNotifier struct {
	conn    *nats.Conn
	subject string
}

// NewNATSNotifier connects to url.
func NewNATSNotifier(url, subject string) (*NATSNotifier, error) {
	if subject == "" {
		subject = DefaultSubject
	}
	conn, err := nats.Connect(url,
		nats.Name("docpublish"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(2))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	slog.Info("NATS notifier connected", "url", conn.ConnectedUrlRedacted(), "subject", subject)
	return &NATSNotifier{conn: conn, subject: subject}, nil
}

// Message builds the NATS message for ev. The run ID doubles as the
// JetStream de-duplication ID.
func Message(subject string, ev Event) (*nats.Msg, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("marshal deploy event: %w", err)
	}
	msg := nats.NewMsg(subject)
	msg.Data = data
	msg.Header.Set(nats.MsgIdHdr, ev.RunID)
	msg.Header.Set("Docpublish-Package", ev.Package)
	return msg, nil
}

// Notify publishes ev and waits for the server to acknowledge the flush.
func (n *NATSNotifier) Notify(ctx context.Context, ev Event) error {
	msg, err := Message(n.subject, ev)
	if err != nil {
		return err
	}
	if err := n.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("publish deploy event: %w", err)
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
	}
	if err := n.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("flush deploy event: %w", err)
	}
	slog.Debug("Deploy event published", logfields.RunID(ev.RunID), logfields.Package(ev.Package))
	return nil
}

// Close drains and closes the connection.
func (n *NATSNotifier) Close() {
	if n == nil || n.conn == nil {
		return
	}
	if err := n.conn.Drain(); err != nil {
		n.conn.Close()
	}
}
