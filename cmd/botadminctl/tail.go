package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"

	"github.com/matheus3301/botadmin/internal/bus"
	"github.com/matheus3301/botadmin/internal/messages"
	"github.com/matheus3301/botadmin/internal/status"
)

// tail prints the newest history entries, then every live message until
// SIGINT or the connection drops.
func (c *cli) tail() error {
	if err := c.requireLogin(); err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	events, unsub := c.st.Bus.Subscribe("feed.", tailBuffer)
	defer unsub()

	if err := c.st.ActivateFeed(ctx); err != nil {
		return err
	}
	defer c.st.DeactivateFeed()

	tr := &tracker{dropped: c.st.Bus.Dropped()}
	history := c.st.Messages()
	tr.seen(history)
	for i := len(history) - 1; i >= 0 && i >= len(history)-10; i-- {
		c.printMessage(history[i])
	}
	faint := color.New(color.Faint)
	faint.Fprintf(os.Stderr, "-- following %s (ctrl-c to stop)\n", c.params.Config.Server.FeedURL)

	for {
		select {
		case <-ctx.Done():
			return nil
		case evt := <-events:
			if n := tr.newlyDropped(c.st.Bus.Dropped()); n > 0 {
				color.New(color.FgYellow).Fprintf(os.Stderr, "-- %d events dropped, output may be incomplete\n", n)
			}
			switch evt.Kind {
			case bus.FeedMessage:
				if msg, ok := evt.Payload.(messages.ChatMessage); ok && tr.fresh(msg) {
					c.printMessage(msg)
				}
			case bus.FeedStateChanged:
				if ch, ok := evt.Payload.(status.StatusChange); ok && ch.To == status.Disconnected && !c.st.Feed.Active() {
					return errors.New("live feed closed")
				}
			}
		}
	}
}

const tailBuffer = 1024

// tracker remembers the newest live message already printed, since the
// history snapshot can include frames whose events are still queued, and
// the bus drop count last reported.
type tracker struct {
	lastLive int64
	dropped  uint64
}

func (t *tracker) seen(msgs []messages.ChatMessage) {
	for _, m := range msgs {
		if m.Live && m.ID > t.lastLive {
			t.lastLive = m.ID
		}
	}
}

// fresh reports whether m has not been printed yet and records it.
func (t *tracker) fresh(m messages.ChatMessage) bool {
	if !m.Live {
		return true
	}
	if m.ID <= t.lastLive {
		return false
	}
	t.lastLive = m.ID
	return true
}

// newlyDropped returns how many drops happened since the last call.
func (t *tracker) newlyDropped(total uint64) uint64 {
	n := total - t.dropped
	t.dropped = total
	return n
}

func (c *cli) printMessage(m messages.ChatMessage) {
	if c.json {
		_ = outputJSON(m)
		return
	}
	sender := color.New(color.FgCyan)
	if m.Live {
		sender = color.New(color.FgGreen)
	}
	fmt.Printf("%s ", m.CreatedAt.Local().Format("15:04:05"))
	sender.Printf("%-16s ", messages.Printable(m.Sender))
	fmt.Println(messageText(m.MsgType, m.Content))
}

func messageText(t messages.MsgType, content string) string {
	content = messages.Printable(content)
	if t == messages.Image {
		return "[image] " + content
	}
	return content
}
