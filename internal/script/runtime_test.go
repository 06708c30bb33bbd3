package script

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/wordevents/internal/dictionary"
	"github.com/dshills/wordevents/internal/input"
	"github.com/dshills/wordevents/internal/input/key"
	"github.com/dshills/wordevents/internal/input/source"
	"github.com/dshills/wordevents/internal/input/timing"
)

func newRuntime(t *testing.T, reg Registrar) (*Runtime, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	r, err := New(reg, WithOutput(&out))
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r, &out
}

func runeEvents(word string) []key.Event {
	events := make([]key.Event, 0, len(word))
	for _, r := range word {
		events = append(events, key.NewRuneEvent(key.KeyUp, r, key.ModNone))
	}
	return events
}

// fire resolves word in d and invokes the entry's callback.
func fire(t *testing.T, d *dictionary.Dictionary, word string) (bool, error) {
	t.Helper()
	entry, ok, err := d.Resolve(word)
	require.NoError(t, err)
	if !ok {
		return false, nil
	}
	return true, entry.Callback(dictionary.Match{
		Events:  runeEvents(word),
		Word:    word,
		Matcher: entry.Matcher,
	})
}

func TestNewNilRegistrar(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrNilRegistrar)
}

func TestListenExact(t *testing.T) {
	d := dictionary.New()
	r, out := newRuntime(t, d)

	require.NoError(t, r.LoadString(`
		words.listen("hi", function(events, word)
			print(word, #events, events[1].key, events[1].code, events[2].type)
		end)
	`))

	assert.Equal(t, 1, d.Len())
	ok, err := fire(t, d, "hi")
	require.True(t, ok)
	require.NoError(t, err)
	assert.Equal(t, "hi\t2\th\t72\tkeyup\n", out.String())
}

func TestListenPattern(t *testing.T) {
	d := dictionary.New()
	r, out := newRuntime(t, d)

	require.NoError(t, r.LoadString(`
		local digits = words.pattern("^\\d+$")
		assert(digits:test("123"))
		assert(not digits:test("12a"))
		assert(digits:source() == "^\\d+$")
		assert(tostring(digits) == "/^\\d+$/")
		words.listen(digits, function(events, word) print("number " .. word) end)
	`))

	ok, err := fire(t, d, "2024")
	require.True(t, ok)
	require.NoError(t, err)
	assert.Equal(t, "number 2024\n", out.String())

	ok, _ = fire(t, d, "abc")
	assert.False(t, ok)
}

func TestListenAll(t *testing.T) {
	d := dictionary.New()
	r, out := newRuntime(t, d)

	require.NoError(t, r.LoadString(`
		words.listen({"a", words.pattern("^b+$")}, {
			function() print("A") end,
			function(_, w) print("B" .. #w) end,
		})
	`))

	_, err := fire(t, d, "a")
	require.NoError(t, err)
	_, err = fire(t, d, "bbb")
	require.NoError(t, err)
	assert.Equal(t, "A\nB3\n", out.String())
	assert.Len(t, r.Matchers(), 2)
}

func TestListenAllLengthMismatch(t *testing.T) {
	d := dictionary.New()
	r, _ := newRuntime(t, d)

	err := r.LoadString(`words.listen({"a", "b"}, {function() end})`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid argument")
	assert.Equal(t, 0, d.Len())
	assert.Empty(t, r.Matchers())
}

func TestListenErrors(t *testing.T) {
	tests := []struct {
		name string
		code string
	}{
		{"bad matcher", `words.listen(true, function() end)`},
		{"missing callback", `words.listen("a")`},
		{"bad pattern", `words.pattern("(")`},
		{"bad list entry", `words.listen({"a", {}}, {function() end, function() end})`},
		{"bad callback entry", `words.listen({"a"}, {"nope"})`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := dictionary.New()
			r, _ := newRuntime(t, d)
			assert.Error(t, r.LoadString(tt.code))
			assert.Equal(t, 0, d.Len())
		})
	}
}

func TestUnlisten(t *testing.T) {
	d := dictionary.New()
	r, _ := newRuntime(t, d)

	require.NoError(t, r.LoadString(`
		local p = words.pattern("^x+$")
		words.listen("a", function() end)
		words.listen("b", function() end)
		words.listen(p, function() end)
		words.unlisten("a", p, "never")
	`))

	assert.Equal(t, 1, d.Len())
	require.Len(t, r.Matchers(), 1)
	assert.Equal(t, "b", r.Matchers()[0].Key())
}

func TestCallbackError(t *testing.T) {
	d := dictionary.New()
	r, _ := newRuntime(t, d)

	require.NoError(t, r.LoadString(`words.listen("boom", function() error("kaput") end)`))

	_, err := fire(t, d, "boom")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kaput")
}

func TestCallbackMayRebind(t *testing.T) {
	d := dictionary.New()
	r, out := newRuntime(t, d)

	require.NoError(t, r.LoadString(`
		words.listen("on", function()
			words.listen("go", function() print("go!") end)
		end)
	`))

	_, err := fire(t, d, "on")
	require.NoError(t, err)
	_, err = fire(t, d, "go")
	require.NoError(t, err)
	assert.Equal(t, "go!\n", out.String())
}

func TestSandbox(t *testing.T) {
	d := dictionary.New()
	r, _ := newRuntime(t, d)

	for _, code := range []string{
		`io.write("x")`,
		`os.exit(1)`,
		`dofile("/etc/passwd")`,
		`require("os")`,
		`load("return 1")()`,
	} {
		assert.Error(t, r.LoadString(code), code)
	}
}

func TestExecutionTimeout(t *testing.T) {
	r, err := New(dictionary.New(), WithExecutionTimeout(50*time.Millisecond))
	require.NoError(t, err)
	defer r.Close()

	err = r.LoadString(`while true do end`)
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.lua")
	require.NoError(t, os.WriteFile(path, []byte(`words.listen("hi", function() end)`), 0o644))

	d := dictionary.New()
	r, _ := newRuntime(t, d)
	require.NoError(t, r.LoadFile(path))
	assert.Equal(t, 1, d.Len())

	assert.Error(t, r.LoadFile(filepath.Join(t.TempDir(), "missing.lua")))
}

func TestCloseUnbindsWords(t *testing.T) {
	d := dictionary.New()
	require.NoError(t, d.Listen(dictionary.Exact("keep"), func(dictionary.Match) error { return nil }))

	r, err := New(d)
	require.NoError(t, err)
	require.NoError(t, r.LoadString(`words.listen("drop", function() end)`))
	assert.Equal(t, 2, d.Len())

	require.NoError(t, r.Close())
	assert.Equal(t, 1, d.Len())
	assert.ErrorIs(t, r.LoadString(`x = 1`), ErrStateClosed)
}

func TestRuntimeWithHandler(t *testing.T) {
	clock := timing.NewManual(time.Unix(0, 0))
	config := input.DefaultConfig()
	config.Clock = clock
	config.Scheduler = clock

	h := input.NewHandler(nil, config)
	r, out := newRuntime(t, h)
	require.NoError(t, r.LoadString(`
		words.listen("hi", function(events, word)
			print("typed " .. word .. " with " .. #events .. " keys")
		end)
	`))

	bus := source.NewBus()
	require.NoError(t, h.Activate(bus))
	defer h.Deactivate()

	bus.Publish(key.NewRuneEvent(key.KeyUp, 'h', key.ModNone))
	bus.Publish(key.NewRuneEvent(key.KeyUp, 'i', key.ModNone))
	require.NoError(t, clock.Advance(time.Second))

	assert.Equal(t, "typed hi with 2 keys\n", out.String())
}

func TestCallbackReceivesTarget(t *testing.T) {
	tests := []struct {
		name   string
		target any
		want   string
	}{
		{"string", "editor", "string\teditor\n"},
		{"number", 7, "number\t7\n"},
		{"opaque", source.NewBus(), "userdata\n"},
		{"none", nil, "nil\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := dictionary.New()
			r, out := newRuntime(t, d)
			require.NoError(t, r.LoadString(`
				words.listen("hi", function(events, word, target)
					if type(target) == "userdata" or target == nil then
						print(type(target))
					else
						print(type(target), target)
					end
				end)
			`))

			entry, ok, err := d.Resolve("hi")
			require.NoError(t, err)
			require.True(t, ok)
			require.NoError(t, entry.Callback(dictionary.Match{
				Target:  tt.target,
				Events:  runeEvents("hi"),
				Word:    "hi",
				Matcher: entry.Matcher,
			}))
			assert.Equal(t, tt.want, out.String())
		})
	}
}

func TestRuntimeWithHandlerTarget(t *testing.T) {
	clock := timing.NewManual(time.Unix(0, 0))
	config := input.DefaultConfig()
	config.Clock = clock
	config.Scheduler = clock
	config.Target = "editor"

	h := input.NewHandler(nil, config)
	r, out := newRuntime(t, h)
	require.NoError(t, r.LoadString(`
		words.listen("ok", function(_, word, target) print(word .. "@" .. target) end)
	`))

	bus := source.NewBus()
	require.NoError(t, h.Activate(bus))
	defer h.Deactivate()

	bus.Publish(key.NewRuneEvent(key.KeyUp, 'o', key.ModNone))
	bus.Publish(key.NewRuneEvent(key.KeyUp, 'k', key.ModNone))
	require.NoError(t, clock.Advance(time.Second))

	assert.Equal(t, "ok@editor\n", out.String())
}
