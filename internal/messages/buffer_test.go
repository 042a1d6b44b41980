package messages

import (
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func msg(id int64) ChatMessage {
	return ChatMessage{ID: id, Sender: fmt.Sprintf("u%d", id), Content: "hi", MsgType: Text}
}

func ids(msgs []ChatMessage) []int64 {
	out := make([]int64, len(msgs))
	for i, m := range msgs {
		out[i] = m.ID
	}
	return out
}

func TestPrependNewestFirst(t *testing.T) {
	b := NewBuffer(3)
	for i := int64(1); i <= 5; i++ {
		b.Prepend(msg(i))
	}
	assert.Equal(t, []int64{5, 4, 3}, ids(b.Snapshot()))
	assert.Equal(t, 3, b.Len())

	newest, ok := b.Newest()
	require.True(t, ok)
	assert.Equal(t, int64(5), newest.ID)
}

func TestCapacityInvariantUnderRandomPrepends(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for round := range 50 {
		b := NewBuffer(DefaultCapacity)
		count := r.IntN(400)
		var all []int64
		for i := range count {
			id := int64(i)
			b.Prepend(msg(id))
			all = append([]int64{id}, all...)
		}

		got := ids(b.Snapshot())
		want := all[:min(len(all), DefaultCapacity)]
		require.Len(t, got, len(want), "round %d", round)
		if len(want) > 0 {
			require.Equal(t, want, got, "round %d", round)
		}
		assert.LessOrEqual(t, b.Len(), b.Cap())
	}
}

func TestReplaceAllThenPrepend(t *testing.T) {
	b := NewBuffer(DefaultCapacity)
	b.Prepend(msg(999))

	history := []ChatMessage{msg(3), msg(2), msg(1)}
	b.ReplaceAll(history)
	assert.Equal(t, []int64{3, 2, 1}, ids(b.Snapshot()))

	b.Prepend(msg(4))
	assert.Equal(t, []int64{4, 3, 2, 1}, ids(b.Snapshot()))
}

func TestReplaceAllTruncates(t *testing.T) {
	b := NewBuffer(2)
	b.ReplaceAll([]ChatMessage{msg(3), msg(2), msg(1)})
	assert.Equal(t, []int64{3, 2}, ids(b.Snapshot()))

	b.ReplaceAll(nil)
	assert.Equal(t, 0, b.Len())
	_, ok := b.Newest()
	assert.False(t, ok)
}

func TestReplaceAllAtCapacityEvictsOnPrepend(t *testing.T) {
	b := NewBuffer(DefaultCapacity)
	full := make([]ChatMessage, DefaultCapacity)
	for i := range full {
		full[i] = msg(int64(DefaultCapacity - i))
	}
	b.ReplaceAll(full)

	b.Prepend(msg(101))
	got := ids(b.Snapshot())
	require.Len(t, got, DefaultCapacity)
	assert.Equal(t, int64(101), got[0])
	assert.Equal(t, int64(2), got[len(got)-1])
}

func TestSnapshotIsACopy(t *testing.T) {
	b := NewBuffer(2)
	b.Prepend(msg(1))
	snap := b.Snapshot()
	snap[0].Content = "changed"

	newest, _ := b.Newest()
	assert.Equal(t, "hi", newest.Content)
}

func TestOrderIsInsertionNotTimestamp(t *testing.T) {
	b := NewBuffer(5)
	now := time.Now()
	older := ChatMessage{ID: 1, CreatedAt: now.Add(-time.Hour)}
	newer := ChatMessage{ID: 2, CreatedAt: now}
	b.Prepend(newer)
	b.Prepend(older)
	assert.Equal(t, []int64{1, 2}, ids(b.Snapshot()))
}

func TestNonPositiveCapacity(t *testing.T) {
	assert.Equal(t, DefaultCapacity, NewBuffer(0).Cap())
	assert.Equal(t, DefaultCapacity, NewBuffer(-1).Cap())
}
