package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event kinds emitted by the capture pipeline.
const (
	KindCreated = "created"
	KindUpdated = "updated"
	KindDeleted = "deleted"
)

// TransactionEvent signals that a user's transactions changed upstream
// for a given period. It carries no transaction data; the dashboard
// re-fetches the period on the next read.
type TransactionEvent struct {
	Subject   string    `json:"subject"`
	Month     int       `json:"month"`
	Year      int       `json:"year"`
	Kind      string    `json:"kind"`
	Timestamp time.Time `json:"timestamp"`
}

func NewTransactionEvent(subject string, month, year int, kind string) *TransactionEvent {
	return &TransactionEvent{
		Subject:   subject,
		Month:     month,
		Year:      year,
		Kind:      kind,
		Timestamp: time.Now(),
	}
}

// Validate rejects events that cannot map to a cached period.
func (e *TransactionEvent) Validate() error {
	if e.Subject == "" {
		return fmt.Errorf("event missing subject")
	}
	if e.Month < 1 || e.Month > 12 {
		return fmt.Errorf("event month %d out of range", e.Month)
	}
	switch e.Kind {
	case KindCreated, KindUpdated, KindDeleted:
	default:
		return fmt.Errorf("unknown event kind %q", e.Kind)
	}
	return nil
}

func (e *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var evt TransactionEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		return nil, err
	}
	if err := evt.Validate(); err != nil {
		return nil, err
	}
	return &evt, nil
}
