package amqp

import (
	"encoding/json"
	"time"
)

// Change kinds carried on the wire. They mirror the ledger's mutation set.
const (
	ChangeCreated = "created"
	ChangeUpdated = "updated"
	ChangeDeleted = "deleted"
)

// ActivityChangeMessage is a lightweight notification that one activity of
// one (owner, date) ledger changed. The worker fetches the full day from
// the database, so the message only identifies the selection.
type ActivityChangeMessage struct {
	Owner      string    `json:"owner"`
	Date       string    `json:"date"` // YYYY-MM-DD
	ActivityID string    `json:"activity_id"`
	Change     string    `json:"change"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewActivityChangeMessage creates a change message stamped with now.
func NewActivityChangeMessage(owner, date, activityID, change string) *ActivityChangeMessage {
	return &ActivityChangeMessage{
		Owner:      owner,
		Date:       date,
		ActivityID: activityID,
		Change:     change,
		Timestamp:  time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *ActivityChangeMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ActivityChangeMessageFromJSON creates a message from JSON bytes.
func ActivityChangeMessageFromJSON(data []byte) (*ActivityChangeMessage, error) {
	var msg ActivityChangeMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
