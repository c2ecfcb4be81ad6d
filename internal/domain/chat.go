package domain

import (
	"time"

	"github.com/google/uuid"
)

// Chat session states. Transitions move bot -> human -> closed in practice,
// but the store does not enforce monotonicity.
const (
	SessionBot    = "bot"
	SessionHuman  = "human"
	SessionClosed = "closed"
)

// Message senders.
const (
	SenderUser  = "user"
	SenderBot   = "bot"
	SenderAdmin = "admin"
)

// ChatSession is one visitor conversation. Token is the per-session
// capability issued at creation; every subsequent visitor call must present
// it. It is never serialized into list responses.
type ChatSession struct {
	ID            uuid.UUID `json:"id" db:"id"`
	Status        string    `json:"status" db:"status"`
	UserName      string    `json:"user_name,omitempty" db:"user_name"`
	Token         string    `json:"-" db:"token"`
	LastMessageAt time.Time `json:"last_message_at" db:"last_message_at"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// ChatMessage is append-only: no update or delete path exists.
type ChatMessage struct {
	ID        uuid.UUID `json:"id" db:"id"`
	SessionID uuid.UUID `json:"session_id" db:"session_id"`
	Sender    string    `json:"sender" db:"sender"`
	Text      string    `json:"text" db:"text"`
	Options   []string  `json:"options,omitempty" db:"options"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
