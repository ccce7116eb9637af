package protocol

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/bytepowered/assert"
	"github.com/xsj0jsx/thin"
)

const (
	// Namespace holds the built-in handler types; symbolic names resolve into it.
	Namespace       = "protocols"
	DefaultProtocol = "http"
)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]*Type)
)

func init() {
	MustRegister(HttpType)
	MustRegister(EchoType)
}

// Register adds a handler type under its fully qualified name.
func Register(t *Type) error {
	if t == nil || t.Name == "" || t.New == nil {
		return fmt.Errorf("protocol: register: %w: incomplete type", thin.ErrInvalidProtocol)
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := registry[t.Name]; exists {
		return fmt.Errorf("protocol: register: %w: %s is already registered", thin.ErrInvalidProtocol, t.Name)
	}
	registry[t.Name] = t
	return nil
}

func MustRegister(t *Type) {
	err := Register(t)
	assert.MustNil(err, "protocol: %s", err)
}

// Lookup finds a handler type by its fully qualified name.
func Lookup(name string) (*Type, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	t, ok := registry[name]
	return t, ok
}

// Names returns the registered type names, sorted.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve returns the handler type for a listener. A non-nil typ is used as-is.
// Otherwise spec is either a qualified name ("protocols.Http") or a symbolic
// name ("http") mapped to Namespace + "." + Capitalized. An empty spec means
// DefaultProtocol.
func Resolve(spec string, typ *Type) (*Type, error) {
	if typ != nil {
		return typ, nil
	}
	if spec == "" {
		spec = DefaultProtocol
	}
	name := spec
	if !strings.Contains(spec, ".") {
		name = Namespace + "." + capitalize(spec)
	}
	if t, ok := Lookup(name); ok {
		return t, nil
	}
	return nil, fmt.Errorf("%w %q. Known protocols are: %s", thin.ErrInvalidProtocol, spec, strings.Join(Names(), ", "))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
