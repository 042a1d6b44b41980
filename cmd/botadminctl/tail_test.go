package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/matheus3301/botadmin/internal/bus"
	"github.com/matheus3301/botadmin/internal/messages"
)

func TestTrackerSkipsFramesInSnapshot(t *testing.T) {
	tr := &tracker{}
	tr.seen([]messages.ChatMessage{
		{ID: 2001, Sender: "alice", Live: true},
		{ID: 2000, Sender: "bob", Live: true},
		{ID: 7, Sender: "bot"},
	})

	assert.False(t, tr.fresh(messages.ChatMessage{ID: 2000, Live: true}))
	assert.False(t, tr.fresh(messages.ChatMessage{ID: 2001, Live: true}), "already printed from the snapshot")
	assert.True(t, tr.fresh(messages.ChatMessage{ID: 2002, Live: true}))
	assert.False(t, tr.fresh(messages.ChatMessage{ID: 2002, Live: true}))
	assert.True(t, tr.fresh(messages.ChatMessage{ID: 1}), "history entries are not live")
}

func TestTrackerReportsDrops(t *testing.T) {
	b := bus.New()
	_, unsub := b.Subscribe("feed.", 1)
	defer unsub()
	tr := &tracker{dropped: b.Dropped()}

	b.Emit(bus.FeedMessage, messages.ChatMessage{ID: 1})
	assert.Zero(t, tr.newlyDropped(b.Dropped()))

	b.Emit(bus.FeedMessage, messages.ChatMessage{ID: 2})
	b.Emit(bus.FeedMessage, messages.ChatMessage{ID: 3})
	assert.Equal(t, uint64(2), tr.newlyDropped(b.Dropped()))
	assert.Zero(t, tr.newlyDropped(b.Dropped()))
}
