package config

import (
	"strings"

	"go.uber.org/zap"

	"github.com/McLeodMoores/xl4j-sub002/registry"
)

// Apply returns exports with their configured overrides applied. Function
// blocks that match no export are logged and ignored.
func (c *Config) Apply(exports []registry.Export) []registry.Export {
	out := make([]registry.Export, len(exports))
	used := make(map[string]bool, len(c.Functions))
	for i, exp := range exports {
		key := strings.ToUpper(exp.Metadata.Name)
		if f, ok := c.Functions[key]; ok {
			exp.Metadata = f.Apply(exp.Metadata)
			used[key] = true
		}
		out[i] = exp
	}
	for _, key := range sortedKeys(c.Functions) {
		if !used[key] {
			Logger().Warn("configured function has no export", zap.String("name", c.Functions[key].Name))
		}
	}
	return out
}
