// Package messages holds chat messages shown by the console and the bounded
// newest-first buffer they live in.
package messages

import "time"

// MsgType is the content type of a chat message.
type MsgType string

const (
	Text  MsgType = "text"
	Image MsgType = "image"
)

// ChatMessage is one message as returned by GET /messages.
type ChatMessage struct {
	ID        int64     `json:"id"`
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	MsgType   MsgType   `json:"msg_type"`
	CreatedAt time.Time `json:"created_at"`

	// Live marks messages that arrived over the live feed. Their ids are
	// client-assigned and do not share the history id space.
	Live bool `json:"-"`
}
