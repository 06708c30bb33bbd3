package input

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dshills/wordevents/internal/input/key"
)

func TestWordBuffer(t *testing.T) {
	b := NewWordBuffer()
	assert.True(t, b.IsEmpty())
	assert.Equal(t, "", b.Word())

	b.Append(key.NewRuneEvent(key.KeyUp, 'a', key.ModNone))
	b.Append(key.NewRuneEvent(key.KeyUp, '1', key.ModNone))
	b.Append(key.NewSpecialEvent(key.KeyUp, key.KeySpace, key.ModNone))

	assert.Equal(t, "a1 ", b.Word())
	assert.Equal(t, 3, b.Len())
	assert.False(t, b.IsEmpty())

	events := b.Events()
	events[0].Rune = 'z'
	assert.Equal(t, 'a', b.Events()[0].Rune, "Events must return a copy")

	b.Reset()
	assert.True(t, b.IsEmpty())
	assert.Equal(t, "", b.Word())
	assert.Empty(t, b.Events())
}
