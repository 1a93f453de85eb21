package amqp

import (
	"encoding/json"
	"time"

	"finfinance/internal/core"
)

// AlertsGeneratedMessage announces that the alerts of a period were
// regenerated. Consumers re-read the period from the store.
type AlertsGeneratedMessage struct {
	Year      int       `json:"year"`
	Month     int       `json:"month"`
	Count     int       `json:"count"`
	High      int       `json:"high_priority"`
	Timestamp time.Time `json:"timestamp"`
}

func NewAlertsGeneratedMessage(year, month int, alerts []core.Alert) *AlertsGeneratedMessage {
	high := 0
	for _, a := range alerts {
		if a.Priority == core.PriorityHigh {
			high++
		}
	}
	return &AlertsGeneratedMessage{
		Year:      year,
		Month:     month,
		Count:     len(alerts),
		High:      high,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *AlertsGeneratedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// AlertsGeneratedMessageFromJSON creates a message from JSON bytes
func AlertsGeneratedMessageFromJSON(data []byte) (*AlertsGeneratedMessage, error) {
	var msg AlertsGeneratedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
