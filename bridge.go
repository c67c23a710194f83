package xlbridge

import (
	"strings"

	"github.com/McLeodMoores/xl4j-sub002/registry"
	"github.com/McLeodMoores/xl4j-sub002/wire"
)

// Bridge is what a host adapter needs once the export table is built.
type Bridge interface {
	// Exports returns the registered definitions ordered by export ID.
	Exports() []*registry.FunctionDefinition
	// Invoke calls an export. Failures come back as wire errors.
	Invoke(id uint32, args ...wire.Value) wire.Value
}

// Lookup finds an export by name, ignoring case the way the export table
// does.
func Lookup(b Bridge, name string) (*registry.FunctionDefinition, bool) {
	key := strings.ToUpper(name)
	for _, def := range b.Exports() {
		if strings.ToUpper(def.Metadata.Name) == key {
			return def, true
		}
	}
	return nil, false
}
