package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/entrada-hq/entrada/pkg/logger"
	"github.com/nats-io/nats.go"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Close() error
}

type Subscriber interface {
	Subscribe(subject string, handler func(msg *Message)) error
	QueueSubscribe(subject, queue string, handler func(msg *Message)) error
	Close() error
}

type EventBus interface {
	Publisher
	Subscriber
}

type Message struct {
	Subject   string
	Data      []byte
	Timestamp time.Time
}

type NATSEventBus struct {
	conn *nats.Conn
}

func NewNATSEventBus(url string) (*NATSEventBus, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSEventBus{conn: conn}, nil
}

func (n *NATSEventBus) Publish(ctx context.Context, subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	logger.DebugContext(ctx, "Publishing event", "subject", subject, "data", string(payload))

	return n.conn.Publish(subject, payload)
}

func (n *NATSEventBus) Subscribe(subject string, handler func(msg *Message)) error {
	_, err := n.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(&Message{
			Subject:   msg.Subject,
			Data:      msg.Data,
			Timestamp: time.Now(),
		})
	})
	return err
}

func (n *NATSEventBus) QueueSubscribe(subject, queue string, handler func(msg *Message)) error {
	_, err := n.conn.QueueSubscribe(subject, queue, func(msg *nats.Msg) {
		handler(&Message{
			Subject:   msg.Subject,
			Data:      msg.Data,
			Timestamp: time.Now(),
		})
	})
	return err
}

func (n *NATSEventBus) Close() error {
	n.conn.Close()
	return nil
}

// Event subjects
const (
	VisitorCreated  = "visitor.created"
	VisitRegistered = "visit.registered"
	VisitClosed     = "visit.closed"
)

type VisitorCreatedEvent struct {
	VisitorID    int64     `json:"visitor_id"`
	IDCardNumber string    `json:"id_card_number"`
	VenueID      int64     `json:"venue_id"`
	CreatedAt    time.Time `json:"created_at"`
}

type VisitRegisteredEvent struct {
	AccessID       int64     `json:"access_id"`
	VisitorID      int64     `json:"visitor_id"`
	VenueID        int64     `json:"venue_id"`
	LoggedByUserID int64     `json:"logged_by_user_id"`
	EntryTime      time.Time `json:"entry_time"`
	Reason         string    `json:"reason"`
}

type VisitClosedEvent struct {
	AccessID  int64     `json:"access_id"`
	VisitorID int64     `json:"visitor_id"`
	VenueID   int64     `json:"venue_id"`
	ExitTime  time.Time `json:"exit_time"`
}
