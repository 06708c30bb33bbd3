package main

import (
	"github.com/spf13/pflag"

	"github.com/dshills/wordevents/internal/input"
)

// AcceptPreset is a flag naming a keystroke acceptance preset.
type AcceptPreset string

func (a *AcceptPreset) Set(val string) error {
	if _, err := input.AcceptPreset(val); err != nil {
		return err
	}
	*a = AcceptPreset(val)
	return nil
}

func (a AcceptPreset) String() string {
	return string(a)
}

func (a *AcceptPreset) Type() string {
	return "preset"
}

var _ pflag.Value = (*AcceptPreset)(nil)

func acceptPresets() []string {
	return input.AcceptPresetNames()
}
