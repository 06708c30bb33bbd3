package key

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyString(t *testing.T) {
	tests := []struct {
		key  Key
		want string
	}{
		{KeyNone, "None"},
		{KeyEscape, "Escape"},
		{KeyEnter, "Enter"},
		{KeyBackspace, "Backspace"},
		{KeyArrowUp, "Up"},
		{KeyArrowRight, "Right"},
		{KeyF12, "F12"},
		{KeySpace, "Space"},
		{KeyRune, "Rune"},
		{Key(999), "Key(999)"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.key.String())
		})
	}
}

func TestKeyCode(t *testing.T) {
	assert.Equal(t, 13, KeyEnter.Code())
	assert.Equal(t, 27, KeyEscape.Code())
	assert.Equal(t, 32, KeySpace.Code())
	assert.Equal(t, 38, KeyArrowUp.Code())
	assert.Equal(t, 40, KeyArrowDown.Code())
	assert.Equal(t, 112, KeyF1.Code())
	assert.Equal(t, 0, KeyRune.Code())
}

func TestArrowKeysAndEventTypesAreDistinct(t *testing.T) {
	assert.Equal(t, "Up", KeyArrowUp.String())
	assert.Equal(t, "keyup", KeyUp.String())
	assert.Equal(t, "Down", KeyArrowDown.String())
	assert.Equal(t, "keydown", KeyDown.String())

	e := NewSpecialEvent(KeyDown, KeyArrowUp, ModNone)
	assert.Equal(t, KeyDown, e.Type)
	assert.Equal(t, KeyArrowUp, e.Key)
	assert.Equal(t, "keydown:Up", e.String())
}
