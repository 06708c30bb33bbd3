package script

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/wordevents/internal/dictionary"
)

// Registrar is where scripts register their words. Both
// *dictionary.Dictionary and *input.Handler satisfy it.
type Registrar interface {
	Listen(m dictionary.Matcher, cb dictionary.Callback) error
	ListenAll(matchers []dictionary.Matcher, callbacks []dictionary.Callback) error
	Unlisten(matchers ...dictionary.Matcher)
}

// Runtime runs Lua scripts that bind words to Lua functions through the
// global "words" module:
//
//	words.listen("hi", function(events, word, target) print(word) end)
//	words.listen({"a", words.pattern("^b+$")}, {fnA, fnB})
//	words.unlisten("hi")
//
// Callbacks receive the keystrokes as an array of
// {key=, code=, rune=, type=, modifiers=} tables, the word and the engine's
// target.
type Runtime struct {
	state  *State
	reg    Registrar
	logger *slog.Logger

	mu    sync.Mutex
	bound map[matcherID]dictionary.Matcher
	order []matcherID
}

type matcherID struct {
	pattern bool
	key     string
}

func idOf(m dictionary.Matcher) matcherID {
	return matcherID{pattern: m.IsPattern(), key: m.Key()}
}

// Option configures a Runtime.
type Option func(*options)

type options struct {
	output  io.Writer
	logger  *slog.Logger
	timeout time.Duration
}

// WithOutput sets where Lua print writes. Default: os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(o *options) { o.output = w }
}

// WithLogger sets the runtime logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithExecutionTimeout bounds each load and callback.
// Default: DefaultExecutionTimeout.
func WithExecutionTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// New creates a runtime registering words with reg.
func New(reg Registrar, opts ...Option) (*Runtime, error) {
	if reg == nil {
		return nil, ErrNilRegistrar
	}

	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	r := &Runtime{
		state:  NewState(o.timeout, o.output),
		reg:    reg,
		logger: o.logger,
		bound:  make(map[matcherID]dictionary.Matcher),
	}

	L := r.state.L
	registerPatternType(L)
	L.SetGlobal("words", L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"listen":   r.luaListen,
		"unlisten": r.luaUnlisten,
		"pattern":  r.luaPattern,
	}))

	return r, nil
}

// LoadFile runs the script at path.
func (r *Runtime) LoadFile(path string) error {
	if err := r.state.DoFile(path); err != nil {
		return fmt.Errorf("running %s: %w", path, err)
	}
	r.logger.Debug("script loaded", "path", path, "words", len(r.Matchers()))
	return nil
}

// LoadString runs a Lua chunk.
func (r *Runtime) LoadString(code string) error {
	return r.state.DoString(code)
}

// Matchers returns the matchers currently bound by scripts, in the order
// they were first bound.
func (r *Runtime) Matchers() []dictionary.Matcher {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]dictionary.Matcher, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.bound[id])
	}
	return out
}

// Close unbinds every word the scripts registered and releases the Lua
// state.
func (r *Runtime) Close() error {
	r.reg.Unlisten(r.Matchers()...)

	r.mu.Lock()
	r.bound = make(map[matcherID]dictionary.Matcher)
	r.order = nil
	r.mu.Unlock()

	return r.state.Close()
}

func (r *Runtime) track(matchers []dictionary.Matcher) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range matchers {
		id := idOf(m)
		if _, ok := r.bound[id]; !ok {
			r.order = append(r.order, id)
		}
		r.bound[id] = m
	}
}

func (r *Runtime) untrack(matchers []dictionary.Matcher) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range matchers {
		id := idOf(m)
		if _, ok := r.bound[id]; !ok {
			continue
		}
		delete(r.bound, id)
		for i, o := range r.order {
			if o == id {
				r.order = append(r.order[:i], r.order[i+1:]...)
				break
			}
		}
	}
}

// callback adapts a Lua function to a dictionary callback. A Lua error
// becomes the callback's error.
func (r *Runtime) callback(fn *lua.LFunction) dictionary.Callback {
	return func(m dictionary.Match) error {
		err := r.state.with(func(L *lua.LState) error {
			L.Push(fn)
			L.Push(eventsTable(L, m.Events))
			L.Push(lua.LString(m.Word))
			L.Push(targetValue(L, m.Target))
			return L.PCall(3, 0, nil)
		})
		if err != nil {
			return fmt.Errorf("lua callback for %s: %w", m.Matcher, err)
		}
		return nil
	}
}

// words.listen(matcher, fn) or words.listen({matchers}, {fns})
func (r *Runtime) luaListen(L *lua.LState) int {
	if list, ok := L.Get(1).(*lua.LTable); ok {
		fns := L.CheckTable(2)

		var matchers []dictionary.Matcher
		for i, lv := range tableArray(list) {
			m, ok := toMatcher(lv)
			if !ok {
				L.ArgError(1, fmt.Sprintf("entry %d: expected word or pattern, got %s", i+1, lv.Type()))
			}
			matchers = append(matchers, m)
		}

		var callbacks []dictionary.Callback
		for i, lv := range tableArray(fns) {
			fn, ok := lv.(*lua.LFunction)
			if !ok {
				L.ArgError(2, fmt.Sprintf("entry %d: expected function, got %s", i+1, lv.Type()))
			}
			callbacks = append(callbacks, r.callback(fn))
		}

		if err := r.reg.ListenAll(matchers, callbacks); err != nil {
			L.RaiseError("%s", err.Error())
		}
		r.track(matchers)
		return 0
	}

	m, ok := toMatcher(L.Get(1))
	if !ok {
		L.ArgError(1, "expected word or pattern")
	}
	fn := L.CheckFunction(2)

	if err := r.reg.Listen(m, r.callback(fn)); err != nil {
		L.RaiseError("%s", err.Error())
	}
	r.track([]dictionary.Matcher{m})
	return 0
}

// words.unlisten(matcher...)
func (r *Runtime) luaUnlisten(L *lua.LState) int {
	var matchers []dictionary.Matcher
	for i := 1; i <= L.GetTop(); i++ {
		m, ok := toMatcher(L.Get(i))
		if !ok {
			L.ArgError(i, "expected word or pattern")
		}
		matchers = append(matchers, m)
	}

	r.reg.Unlisten(matchers...)
	r.untrack(matchers)
	return 0
}

// words.pattern(source)
func (r *Runtime) luaPattern(L *lua.LState) int {
	m, err := dictionary.Pattern(L.CheckString(1))
	if err != nil {
		L.RaiseError("%s", err.Error())
	}
	L.Push(patternValue(L, m))
	return 1
}
