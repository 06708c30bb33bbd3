package key

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModifierHas(t *testing.T) {
	tests := []struct {
		mod    Modifier
		check  Modifier
		expect bool
	}{
		{ModNone, ModCtrl, false},
		{ModCtrl, ModCtrl, true},
		{ModCtrl | ModAlt, ModAlt, true},
		{ModCtrl | ModAlt, ModShift, false},
		{ModCtrl | ModAlt | ModShift | ModMeta, ModMeta, true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expect, tt.mod.Has(tt.check), "Modifier(%d).Has(%d)", tt.mod, tt.check)
	}
}

func TestModifierString(t *testing.T) {
	assert.Equal(t, "", ModNone.String())
	assert.Equal(t, "Ctrl+Alt", (ModAlt | ModCtrl).String())
	assert.Equal(t, "Ctrl+Alt+Shift+Meta", (ModCtrl | ModAlt | ModShift | ModMeta).String())
}

func TestParseModifiers(t *testing.T) {
	assert.Equal(t, ModCtrl|ModShift, ParseModifiers("Ctrl+Shift"))
	assert.Equal(t, ModMeta, ParseModifiers("cmd"))
	assert.Equal(t, ModAlt, ParseModifiers("alt+hyper"))
	assert.Equal(t, ModNone, ParseModifiers(""))
}
