package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"swap_store/internal/pkg/logger"

	"github.com/nats-io/nats.go"
)

const (
	connectWait   = 5 * time.Second
	maxReconnects = 5
	reconnectWait = 2 * time.Second
)

// NATS publishes events as JSON messages on a NATS connection.
type NATS struct {
	conn *nats.Conn
}

// NewNATS connects to the NATS server at url.
func NewNATS(url string, l *logger.Logger) (*NATS, error) {
	opts := []nats.Option{
		nats.Name("swap-store publisher"),
		nats.Timeout(connectWait),
		nats.MaxReconnects(maxReconnects),
		nats.ReconnectWait(reconnectWait),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				l.Sugar().Warnf("NATS disconnected: %s", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			l.Sugar().Infof("NATS reconnected to %s", nc.ConnectedUrl())
		}),
	}

	conn, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", url, err)
	}
	return &NATS{conn: conn}, nil
}

// Publish encodes payload as JSON and publishes it on subject.
func (p *NATS) Publish(ctx context.Context, subject string, payload any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", subject, err)
	}
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", subject, err)
	}
	return nil
}

// Close drains pending messages and closes the connection.
func (p *NATS) Close() {
	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
	}
}
