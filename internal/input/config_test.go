package input

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/wordevents/internal/input/key"
)

func TestAcceptPresets(t *testing.T) {
	tests := []struct {
		name      string
		event     key.Event
		alnum     bool
		digits    bool
		letters   bool
		printable bool
	}{
		{"lowercase letter", key.NewRuneEvent(key.KeyUp, 'a', key.ModNone), true, false, true, true},
		{"uppercase letter", key.NewRuneEvent(key.KeyUp, 'Z', key.ModNone), true, false, true, true},
		{"digit", key.NewRuneEvent(key.KeyUp, '7', key.ModNone), true, true, false, true},
		{"punctuation", key.NewRuneEvent(key.KeyUp, '!', key.ModNone), false, false, false, true},
		{"ctrl letter", key.NewRuneEvent(key.KeyUp, 'c', key.ModCtrl), true, false, true, false},
		{"space", key.NewSpecialEvent(key.KeyUp, key.KeySpace, key.ModNone), false, false, false, false},
		{"enter", key.NewSpecialEvent(key.KeyUp, key.KeyEnter, key.ModNone), false, false, false, false},
		{"non-ascii letter", key.NewRuneEvent(key.KeyUp, 'é', key.ModNone), false, false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.alnum, AcceptAlnum(tt.event), "alnum")
			assert.Equal(t, tt.digits, AcceptDigits(tt.event), "digits")
			assert.Equal(t, tt.letters, AcceptLetters(tt.event), "letters")
			assert.Equal(t, tt.printable, AcceptPrintable(tt.event), "printable")
		})
	}
}

func TestAcceptPreset(t *testing.T) {
	for _, name := range AcceptPresetNames() {
		fn, err := AcceptPreset(name)
		require.NoError(t, err, name)
		assert.NotNil(t, fn)
	}

	fn, err := AcceptPreset(" Digits ")
	require.NoError(t, err)
	assert.True(t, fn(key.NewRuneEvent(key.KeyUp, '3', key.ModNone)))

	_, err = AcceptPreset("emoji")
	assert.ErrorContains(t, err, "unknown accept preset")
}

func TestConfigDefaults(t *testing.T) {
	c := Config{}.withDefaults()
	assert.Equal(t, DefaultDigitInterval, c.DigitInterval)
	assert.Equal(t, key.KeyUp, c.EventType)
	assert.NotNil(t, c.Accept)
	assert.NotNil(t, c.Clock)
	assert.NotNil(t, c.Logger)
	assert.Nil(t, c.Scheduler)

	c = Config{DigitInterval: time.Second, EventType: key.KeyDown}.withDefaults()
	assert.Equal(t, time.Second, c.DigitInterval)
	assert.Equal(t, key.KeyDown, c.EventType)

	h := NewHandler(nil, Config{})
	assert.NotNil(t, h.Config().Scheduler)
}
