package views

import (
	"strings"
	"testing"

	"github.com/matheus3301/botadmin/internal/messages"
	"github.com/matheus3301/botadmin/internal/tui/ui"
)

func TestFormatMessagesOldestFirst(t *testing.T) {
	msgs := []messages.ChatMessage{
		{ID: 2, Sender: "alice", Content: "hey", Live: true},
		{ID: 1, Sender: "bot", Content: "hi [red]"},
	}
	out := FormatMessages(msgs, ui.DefaultTheme())

	bot := strings.Index(out, "bot")
	alice := strings.Index(out, "alice")
	if bot < 0 || alice < 0 || bot > alice {
		t.Errorf("want bot before alice, got:\n%s", out)
	}
	if !strings.Contains(out, "hi [red[]") {
		t.Errorf("content not escaped:\n%s", out)
	}
}

func TestFormatMessagesStripsEscapes(t *testing.T) {
	out := FormatMessages([]messages.ChatMessage{{Sender: "eve\x1b[2J", Content: "hi\x07"}}, ui.DefaultTheme())
	if strings.ContainsAny(out, "\x1b\x07") {
		t.Errorf("control characters reached the view: %q", out)
	}
}
