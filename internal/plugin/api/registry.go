package api

import (
	"fmt"
	"slices"
	"sync"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/decor/internal/engine/buffer"
	"github.com/dshills/decor/internal/engine/decoration"
)

// LoaderName is the name plugins pass to require to get every module.
const LoaderName = "ks"

// APIVersion is bumped when a module's Lua surface changes incompatibly.
const APIVersion = 1

// Module represents a Lua API module.
type Module interface {
	// Name returns the module name (e.g., "buf", "deco").
	Name() string

	// Register registers the module functions into the Lua state under the
	// _ks_<name> global.
	Register(L *lua.LState) error
}

// Registry manages API modules and their registration.
type Registry struct {
	mu      sync.RWMutex
	modules map[string]Module
}

// NewRegistry creates a new API registry.
func NewRegistry() *Registry {
	return &Registry{
		modules: make(map[string]Module),
	}
}

// Register adds a module to the registry.
func (r *Registry) Register(mod Module) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.modules[mod.Name()]; exists {
		return fmt.Errorf("module %q already registered", mod.Name())
	}
	r.modules[mod.Name()] = mod
	return nil
}

// Get returns a module by name.
func (r *Registry) Get(name string) (Module, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	mod, ok := r.modules[name]
	return mod, ok
}

// List returns the registered module names in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.modules))
	for name := range r.modules {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// InjectAll registers every module into L and makes them available as
// require("ks").<name>.
func (r *Registry) InjectAll(L *lua.LState) error {
	names := r.List()

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, name := range names {
		if err := r.modules[name].Register(L); err != nil {
			return fmt.Errorf("failed to register module %q: %w", name, err)
		}
	}
	installLoader(L, names)
	return nil
}

// installLoader preloads the aggregate module. The _ks_<name> globals stay
// in place so scripts can use either form.
func installLoader(L *lua.LState, names []string) {
	ks := L.NewTable()
	for _, name := range names {
		if val := L.GetGlobal("_ks_" + name); val != lua.LNil {
			L.SetField(ks, name, val)
		}
	}
	L.SetField(ks, "api_version", lua.LNumber(APIVersion))

	L.PreloadModule(LoaderName, func(L *lua.LState) int {
		L.Push(ks)
		return 1
	})
}

// DefaultRegistry creates a registry with the buffer and decoration modules.
func DefaultRegistry(ctx *Context) (*Registry, error) {
	r := NewRegistry()
	for _, mod := range []Module{
		NewBufferModule(ctx),
		NewDecorationModule(ctx),
	} {
		if err := r.Register(mod); err != nil {
			return nil, fmt.Errorf("failed to register module %q: %w", mod.Name(), err)
		}
	}
	return r, nil
}

// Context provides access to the document for API modules.
type Context struct {
	// Document is the document plugins read, edit and decorate.
	Document DocumentProvider

	// Owner is the decoration owner used when a script passes none.
	Owner uint32
}

// DocumentProvider is the document surface exposed to plugins.
// *document.Document satisfies it.
type DocumentProvider interface {
	Text() string
	LineCount() int
	LineContent(line int) string

	Insert(pos buffer.Position, text string) (buffer.EditResult, error)
	Delete(r buffer.Range) (buffer.EditResult, error)
	Replace(r buffer.Range, text string) (buffer.EditResult, error)

	ReplaceDecorations(oldIDs []string, specs []decoration.Spec, owner uint32) ([]string, error)
	RemoveAllForOwner(owner uint32) error
	DecorationsInRange(r buffer.Range, owner uint32, filterValidation bool) []decoration.Decoration
	DecorationsOnLine(line int, owner uint32, filterValidation bool) []decoration.Decoration
	AllDecorations(owner uint32, filterValidation bool) []decoration.Decoration
	DecorationRange(id string) (buffer.Range, bool)
	DecorationOptions(id string) (decoration.Options, bool)
}
