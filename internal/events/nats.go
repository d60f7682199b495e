package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/rivermark/aqualink/internal/domain"
)

// SubjectInventoryUpdated is the subject inventory events are published on.
const SubjectInventoryUpdated = "aqualink.inventory.updated"

// NATSPublisher broadcasts inventory events over a NATS connection.
type NATSPublisher struct {
	conn *nats.Conn
}

// NewNATSPublisher connects to the given NATS URL.
func NewNATSPublisher(url string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url, nats.Name("aqualink-server"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NATSPublisher{conn: conn}, nil
}

func (p *NATSPublisher) PublishInventoryUpdated(_ context.Context, event InventoryUpdated) error {
	data, err := json.Marshal(event)
	if err != nil {
		return domain.WrapError(err, domain.EINTERNAL, "events.publish", "failed to encode inventory event")
	}
	if err := p.conn.Publish(SubjectInventoryUpdated, data); err != nil {
		return domain.WrapError(err, domain.EUNAVAILABLE, "events.publish", "failed to publish inventory event")
	}
	return nil
}

// Close drains and closes the NATS connection.
func (p *NATSPublisher) Close() {
	_ = p.conn.Drain()
}
