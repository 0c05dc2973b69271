package amqp

import (
	"encoding/json"
	"time"
)

// RefreshMessage tells the notify worker that a username's view changed.
// It carries only the username and the mutation kind; the worker reads the
// current state from the database when it handles the message.
type RefreshMessage struct {
	Username  string    `json:"username"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

func NewRefreshMessage(username, reason string) *RefreshMessage {
	return &RefreshMessage{
		Username:  username,
		Reason:    reason,
		Timestamp: time.Now(),
	}
}

func (m *RefreshMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func RefreshMessageFromJSON(data []byte) (*RefreshMessage, error) {
	var msg RefreshMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Username == "" {
		return nil, errEmptyUsername
	}
	return &msg, nil
}
