package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"estoque/internal/core"
)

// ChangeMessage announces that a row of one of the record tables changed.
// Consumers only use it as a trigger for a full re-read.
type ChangeMessage struct {
	MessageID string    `json:"message_id"`
	Table     string    `json:"table"`
	Op        string    `json:"op"`
	RecordID  int64     `json:"record_id"`
	Timestamp time.Time `json:"timestamp"`
}

// NewChangeMessage wraps a change with a fresh message id and timestamp.
func NewChangeMessage(c core.Change) *ChangeMessage {
	return &ChangeMessage{
		MessageID: uuid.NewString(),
		Table:     c.Table,
		Op:        c.Op,
		RecordID:  c.ID,
		Timestamp: time.Now().UTC(),
	}
}

// Change returns the domain view of the message.
func (m *ChangeMessage) Change() core.Change {
	return core.Change{Table: m.Table, Op: m.Op, ID: m.RecordID}
}

// ToJSON converts the message to JSON bytes
func (m *ChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ChangeMessageFromJSON decodes and checks a message body.
func ChangeMessageFromJSON(data []byte) (*ChangeMessage, error) {
	var msg ChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	switch msg.Table {
	case core.TableReceipts, core.TableWithdrawals, core.TableWithdrawalItems:
	default:
		return nil, fmt.Errorf("unknown table %q", msg.Table)
	}
	return &msg, nil
}
