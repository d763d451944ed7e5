// Package script loads expansion rules written in Lua.
//
// Rule files call the rule builder once per rule:
//
//	rule{
//		name = "frac",
//		trigger = "\\\\frac",
//		expand = "\\frac{}{}",
//		mode = "back",
//		offset = 3,
//	}
//
//	rule{
//		name = "shout",
//		trigger = "([a-z]+)!!",
//		expand = function(token, caps)
//			return string.upper(caps[1])
//		end,
//	}
//
// Triggers use Go regular expression syntax, not Lua patterns. An
// expand function receives the matched token and a table of capture
// groups; returning nil declines the match.
//
// Scripts run in a sandbox with only the base, table, string, and math
// libraries available.
package script

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/snipline/snipline/internal/expand"
	"github.com/snipline/snipline/internal/log"
)

// DefaultTimeout bounds how long a rule file may run while loading.
const DefaultTimeout = 5 * time.Second

// Runtime is a sandboxed Lua interpreter that produces expansion rules.
// Rules built from Lua functions keep a reference to the runtime, so it
// must stay open for as long as those rules are in use.
type Runtime struct {
	mu      sync.Mutex
	L       *lua.LState
	log     *log.Logger
	timeout time.Duration
	pending []*expand.Rule
	closed  bool
}

// Option configures a runtime.
type Option func(*Runtime)

// WithLogger sets the logger used for script diagnostics.
func WithLogger(logger *log.Logger) Option {
	return func(rt *Runtime) {
		if logger != nil {
			rt.log = logger
		}
	}
}

// WithTimeout sets the execution time limit for loading a rule file.
func WithTimeout(d time.Duration) Option {
	return func(rt *Runtime) {
		if d > 0 {
			rt.timeout = d
		}
	}
}

// NewRuntime creates a sandboxed runtime.
func NewRuntime(opts ...Option) *Runtime {
	rt := &Runtime{
		log:     log.Null,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(rt)
	}

	rt.L = lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(rt.L)
	removeUnsafeGlobals(rt.L)

	rt.L.SetGlobal("rule", rt.L.NewFunction(rt.luaRule))
	// print would write through the terminal UI, so route it to the log.
	rt.L.SetGlobal("print", rt.L.NewFunction(rt.luaPrint))

	return rt
}

func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// unsafeGlobals are base-library functions that load arbitrary code.
var unsafeGlobals = []string{"dofile", "loadfile", "load", "loadstring"}

func removeUnsafeGlobals(L *lua.LState) {
	for _, name := range unsafeGlobals {
		L.SetGlobal(name, lua.LNil)
	}
}

// LoadFile executes a rule file and returns the rules it declared.
func (rt *Runtime) LoadFile(path string) ([]*expand.Rule, error) {
	return rt.load(path, func() error { return rt.L.DoFile(path) })
}

// LoadString executes rule source and returns the rules it declared.
func (rt *Runtime) LoadString(src string) ([]*expand.Rule, error) {
	return rt.load("inline", func() error { return rt.L.DoString(src) })
}

func (rt *Runtime) load(origin string, run func() error) ([]*expand.Rule, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	if rt.closed {
		return nil, ErrRuntimeClosed
	}

	rt.pending = nil

	ctx, cancel := context.WithTimeout(context.Background(), rt.timeout)
	defer cancel()
	rt.L.SetContext(ctx)
	defer rt.L.RemoveContext()

	if err := doWithRecovery(run); err != nil {
		rt.pending = nil
		return nil, &ScriptError{File: origin, Err: err}
	}

	rules := rt.pending
	rt.pending = nil
	return rules, nil
}

// Close shuts down the interpreter. Rules produced by this runtime
// decline all matches afterwards.
func (rt *Runtime) Close() {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	if rt.closed {
		return
	}
	rt.closed = true
	rt.L.Close()
}

// luaRule implements the rule builder global.
func (rt *Runtime) luaRule(L *lua.LState) int {
	tbl := L.CheckTable(1)

	r, err := rt.ruleFromTable(tbl)
	if err != nil {
		L.RaiseError("rule: %v", err)
		return 0
	}

	rt.pending = append(rt.pending, r)
	return 0
}

func (rt *Runtime) ruleFromTable(tbl *lua.LTable) (*expand.Rule, error) {
	name := stringField(tbl, "name")
	trigger := stringField(tbl, "trigger")

	var opts []expand.RuleOption
	if modeName := stringField(tbl, "mode"); modeName != "" {
		mode, err := expand.ParseCursorMode(modeName)
		if err != nil {
			return nil, err
		}
		switch mode {
		case expand.CursorBack:
			opts = append(opts, expand.WithCursorBack(intField(tbl, "offset")))
		case expand.CursorLineBelow:
			opts = append(opts, expand.WithCursorLineBelow())
		}
	}

	switch v := tbl.RawGetString("expand").(type) {
	case lua.LString:
		return expand.NewTemplateRule(name, trigger, string(v), opts...)
	case *lua.LFunction:
		return expand.NewRule(name, trigger, rt.expandFunc(name, v), opts...)
	case *lua.LNilType:
		return nil, fmt.Errorf("%w: rule %q has no expand", ErrInvalidRule, name)
	default:
		return nil, fmt.Errorf("%w: expand must be a string or function, got %s", ErrInvalidRule, v.Type())
	}
}

// expandFunc bridges a Lua function into an expansion callback. Script
// failures decline the match instead of interrupting the edit.
func (rt *Runtime) expandFunc(name string, fn *lua.LFunction) expand.ExpandFunc {
	return func(groups []string) (string, bool) {
		rt.mu.Lock()
		defer rt.mu.Unlock()

		if rt.closed {
			return "", false
		}

		caps := rt.L.NewTable()
		for i, g := range groups[1:] {
			caps.RawSetInt(i+1, lua.LString(g))
		}

		top := rt.L.GetTop()
		err := doWithRecovery(func() error {
			return rt.L.CallByParam(lua.P{
				Fn:      fn,
				NRet:    1,
				Protect: true,
			}, lua.LString(groups[0]), caps)
		})
		if err != nil {
			rt.L.SetTop(top)
			rt.log.Warn("rule %q failed: %v", name, err)
			return "", false
		}

		ret := rt.L.Get(-1)
		rt.L.SetTop(top)

		switch v := ret.(type) {
		case lua.LString:
			return string(v), true
		case *lua.LNilType:
			return "", false
		default:
			rt.log.Warn("rule %q returned %s, want string", name, v.Type())
			return "", false
		}
	}
}

func (rt *Runtime) luaPrint(L *lua.LState) int {
	top := L.GetTop()
	parts := make([]string, 0, top)
	for i := 1; i <= top; i++ {
		parts = append(parts, L.ToStringMeta(L.Get(i)).String())
	}
	rt.log.Info("script: %s", strings.Join(parts, "\t"))
	return 0
}

func stringField(tbl *lua.LTable, key string) string {
	if v, ok := tbl.RawGetString(key).(lua.LString); ok {
		return string(v)
	}
	return ""
}

func intField(tbl *lua.LTable, key string) int {
	if v, ok := tbl.RawGetString(key).(lua.LNumber); ok {
		return int(v)
	}
	return 0
}

func doWithRecovery(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("script panic: %v", r)
		}
	}()
	return fn()
}
