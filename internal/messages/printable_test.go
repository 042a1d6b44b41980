package messages

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrintable(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"plain", "hello bot", "hello bot"},
		{"keeps newline and tab", "a\n\tb", "a\n\tb"},
		{"crlf", "a\r\nb", "a\nb"},
		{"lone cr", "a\rb", "a\nb"},
		{"ansi escape", "\x1b[31mred\x1b[0m", "[31mred[0m"},
		{"bell and c1", "ding\x07\u009b", "ding"},
		{"skin tone", "\U0001F44D\U0001F3FB", "\U0001F44D"},
		{"zwj", "a\u200db", "ab"},
		{"variation selector", "\u2764\ufe0f", "\u2764"},
		{"invalid utf8", "ok\xffok", "okok"},
		{"cjk", "系统消息", "系统消息"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Printable(tt.in))
		})
	}
}
