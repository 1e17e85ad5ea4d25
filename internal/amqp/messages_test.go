package amqp

import (
	"testing"
	"time"
)

func TestActivityChangeMessageRoundTrip(t *testing.T) {
	msg := NewActivityChangeMessage("user-1", "2025-03-01", "a1", ChangeCreated)
	if msg.Timestamp.IsZero() {
		t.Fatalf("timestamp not stamped")
	}

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	got, err := ActivityChangeMessageFromJSON(body)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Owner != "user-1" || got.Date != "2025-03-01" || got.ActivityID != "a1" || got.Change != ChangeCreated {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if !got.Timestamp.Truncate(time.Millisecond).Equal(msg.Timestamp.Truncate(time.Millisecond)) {
		t.Fatalf("timestamp mismatch: %v vs %v", got.Timestamp, msg.Timestamp)
	}
}

func TestActivityChangeMessageFromJSONRejectsGarbage(t *testing.T) {
	if _, err := ActivityChangeMessageFromJSON([]byte("{not json")); err == nil {
		t.Fatalf("expected error for malformed body")
	}
}
