package lua

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"
)

// DefaultExecutionTimeout bounds a single DoString call.
const DefaultExecutionTimeout = 5 * time.Second

// unsafeGlobals are removed after the base library is opened.
var unsafeGlobals = []string{"dofile", "loadfile", "load", "loadstring", "module"}

// State is a sandboxed gopher-lua state. Only the base, package, table,
// string and math libraries are available; modules can be added with
// Preload but nothing is loaded from disk.
//
// gopher-lua's LState is not goroutine-safe. State serialises its own
// methods; code holding the LState from LuaState must do the same.
type State struct {
	mu sync.Mutex
	L  *lua.LState

	timeout time.Duration
	output  io.Writer
	logger  *slog.Logger
	closed  bool
}

// StateOption configures a State.
type StateOption func(*State)

// WithExecutionTimeout sets the deadline for each DoString call. Zero
// disables it.
func WithExecutionTimeout(d time.Duration) StateOption {
	return func(s *State) {
		s.timeout = d
	}
}

// WithOutput redirects print.
func WithOutput(w io.Writer) StateOption {
	return func(s *State) {
		s.output = w
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) StateOption {
	return func(s *State) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewState creates a sandboxed Lua state.
func NewState(opts ...StateOption) *State {
	s := &State{
		timeout: DefaultExecutionTimeout,
		output:  io.Discard,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.L = lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, lib := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.LoadLibName, lua.OpenPackage},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		s.L.Push(s.L.NewFunction(lib.fn))
		s.L.Push(lua.LString(lib.name))
		s.L.Call(1, 0)
	}

	for _, name := range unsafeGlobals {
		s.L.SetGlobal(name, lua.LNil)
	}
	if pkg, ok := s.L.GetGlobal("package").(*lua.LTable); ok {
		s.L.SetField(pkg, "path", lua.LString(""))
		s.L.SetField(pkg, "cpath", lua.LString(""))
	}
	s.L.SetGlobal("print", s.L.NewFunction(s.print))

	return s
}

// print writes its arguments to the configured output, tab separated.
func (s *State) print(L *lua.LState) int {
	n := L.GetTop()
	parts := make([]string, n)
	for i := 1; i <= n; i++ {
		parts[i-1] = L.ToStringMeta(L.Get(i)).String()
	}
	fmt.Fprintln(s.output, strings.Join(parts, "\t"))
	return 0
}

// Preload makes mod available through require(name).
func (s *State) Preload(name string, mod *lua.LTable) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStateClosed
	}
	s.L.PreloadModule(name, func(L *lua.LState) int {
		L.Push(mod)
		return 1
	})
	return nil
}

// DoString runs code as a chunk called name. It returns ErrExecutionTimeout
// when the chunk outlives the configured timeout and ErrCanceled when ctx is
// canceled first.
func (s *State) DoString(ctx context.Context, name, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStateClosed
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	s.L.SetContext(ctx)
	defer s.L.RemoveContext()

	start := time.Now()
	err := s.run(name, code)
	if err != nil {
		switch {
		case errors.Is(ctx.Err(), context.DeadlineExceeded):
			err = fmt.Errorf("%w: %s after %s", ErrExecutionTimeout, name, s.timeout)
		case errors.Is(ctx.Err(), context.Canceled):
			err = fmt.Errorf("%w: %s", ErrCanceled, name)
		}
		s.logger.Debug("lua chunk failed", slog.String("chunk", name), slog.Any("error", err))
		return err
	}

	s.logger.Debug("lua chunk done", slog.String("chunk", name), slog.Duration("elapsed", time.Since(start)))
	return nil
}

// run loads and calls a chunk, converting Go panics raised by module
// functions into errors.
func (s *State) run(name, code string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic in %s: %v", name, r)
		}
	}()

	fn, err := s.L.Load(strings.NewReader(code), name)
	if err != nil {
		return err
	}
	return s.L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true})
}

// GetGlobal returns a global variable, or LNil once closed.
func (s *State) GetGlobal(name string) lua.LValue {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return lua.LNil
	}
	return s.L.GetGlobal(name)
}

// LuaState returns the underlying gopher-lua state.
func (s *State) LuaState() *lua.LState {
	return s.L
}

// Close releases the Lua state. It is safe to call more than once.
func (s *State) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.L.Close()
	s.closed = true
	return nil
}
