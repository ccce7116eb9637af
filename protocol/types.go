package protocol

import (
	"strings"

	"github.com/xsj0jsx/thin"
)

// Type references a protocol handler type. It is resolved once per listener
// and instantiated by the acceptor for every accepted connection.
type Type struct {
	// Name is the fully qualified name, e.g. "protocols.Http".
	Name string
	New  func() thin.Handler
}

// ShortName returns the last segment of Name.
func (t *Type) ShortName() string {
	if i := strings.LastIndexByte(t.Name, '.'); i >= 0 {
		return t.Name[i+1:]
	}
	return t.Name
}

func (t *Type) String() string {
	return t.Name
}
