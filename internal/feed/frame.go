package feed

import (
	"time"

	"github.com/matheus3301/botadmin/internal/messages"
)

// SystemSender is shown for frames that carry no username.
const SystemSender = "system"

// Frame is one live event as broadcast by the backend. The backend encodes
// it with Go's default field names, so it carries no JSON tags.
type Frame struct {
	Platform   string
	PlatformID string
	UserID     string
	Username   string
	Content    string
	MsgType    string
	IsGroup    bool
}

// ToChatMessage maps a frame onto the console's message shape. The backend
// sends no id or timestamp, so both are supplied by the caller.
func ToChatMessage(f Frame, id int64, at time.Time) messages.ChatMessage {
	sender := f.Username
	if sender == "" {
		sender = SystemSender
	}
	msgType := messages.MsgType(f.MsgType)
	if msgType == "" {
		msgType = messages.Text
	}
	return messages.ChatMessage{
		ID:        id,
		Sender:    sender,
		Content:   f.Content,
		MsgType:   msgType,
		CreatedAt: at,
		Live:      true,
	}
}
