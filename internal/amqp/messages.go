package amqp

import (
	"encoding/json"
	"time"
)

// RowSyncMessage asks the mirror to copy one stored row to the
// spreadsheet. It carries only the row key and version; the worker reads
// the current cells from the database, so replays are idempotent.
// Position -1 denotes the header row.
type RowSyncMessage struct {
	Sheet     string    `json:"sheet"`
	Position  int       `json:"position"`
	Version   int64     `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

func NewRowSyncMessage(sheet string, position int, version int64) *RowSyncMessage {
	return &RowSyncMessage{
		Sheet:     sheet,
		Position:  position,
		Version:   version,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *RowSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// RowSyncMessageFromJSON decodes a message body.
func RowSyncMessageFromJSON(data []byte) (*RowSyncMessage, error) {
	var msg RowSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
