package config

import (
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"go.uber.org/zap/zapcore"

	"github.com/McLeodMoores/xl4j-sub002/errors"
	"github.com/McLeodMoores/xl4j-sub002/invoke"
	"github.com/McLeodMoores/xl4j-sub002/registry"
	"github.com/McLeodMoores/xl4j-sub002/wire"
)

// file is the decoded shape of a configuration file.
type file struct {
	LogLevel          *string          `hcl:"log_level,optional"`
	DefaultResultMode *string          `hcl:"default_result_mode,optional"`
	MaxArguments      *int             `hcl:"max_arguments,optional"`
	Functions         []*functionBlock `hcl:"function,block"`
}

type functionBlock struct {
	Defaults        cty.Value `hcl:"defaults,optional"`
	Category        *string   `hcl:"category,optional"`
	Help            *string   `hcl:"help,optional"`
	ResultMode      *string   `hcl:"result_mode,optional"`
	Volatile        *bool     `hcl:"volatile,optional"`
	ThreadSafe      *bool     `hcl:"thread_safe,optional"`
	MacroEquivalent *bool     `hcl:"macro_equivalent,optional"`
	Name            string    `hcl:"name,label"`
	Args            []string  `hcl:"args,optional"`
	ArgHelp         []string  `hcl:"arg_help,optional"`
}

// Config is a validated add-in configuration.
type Config struct {
	Functions    map[string]*Function // keyed by upper-case name
	LogLevel     zapcore.Level
	ResultMode   invoke.ResultMode
	MaxArguments int
}

// Function overrides the metadata of the export with the same name.
// Nil fields leave the export's own value in place.
type Function struct {
	Defaults        map[string]wire.Value
	Category        *string
	Help            *string
	Volatile        *bool
	ThreadSafe      *bool
	MacroEquivalent *bool
	Name            string
	Args            []string
	ArgHelp         []string
	ResultMode      invoke.ResultMode
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Functions:    make(map[string]*Function),
		LogLevel:     zapcore.InfoLevel,
		ResultMode:   invoke.ResultSimplest,
		MaxArguments: registry.DefaultMaxArguments,
	}
}

// Load reads and validates the HCL file at path.
func Load(path string) (*Config, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.ParseFailed(path, err)
	}
	return Parse(src, path)
}

// Parse validates HCL source. filename is used in diagnostics.
func Parse(src []byte, filename string) (*Config, error) {
	parser := hclparse.NewParser()
	f, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, errors.ParseFailed(filename, diags)
	}

	var raw file
	if diags := gohcl.DecodeBody(f.Body, nil, &raw); diags.HasErrors() {
		return nil, errors.ParseFailed(filename, diags)
	}
	return raw.resolve()
}

func (raw *file) resolve() (*Config, error) {
	cfg := Default()

	if raw.LogLevel != nil {
		lvl, err := zapcore.ParseLevel(*raw.LogLevel)
		if err != nil {
			return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "log_level")
		}
		cfg.LogLevel = lvl
	}
	if raw.DefaultResultMode != nil {
		mode, err := invoke.ParseResultMode(*raw.DefaultResultMode)
		if err != nil {
			return nil, err
		}
		cfg.ResultMode = mode.Or(invoke.ResultSimplest)
	}
	if raw.MaxArguments != nil {
		if *raw.MaxArguments <= 0 || *raw.MaxArguments > registry.DefaultMaxArguments {
			return nil, errors.New(errors.PhaseConfig, errors.KindInvalidInput).
				Value(*raw.MaxArguments).
				Detail("max_arguments must be between 1 and %d", registry.DefaultMaxArguments).
				Build()
		}
		cfg.MaxArguments = *raw.MaxArguments
	}

	for _, fb := range raw.Functions {
		key := strings.ToUpper(fb.Name)
		if _, dup := cfg.Functions[key]; dup {
			return nil, errors.New(errors.PhaseConfig, errors.KindConflict).
				Detail("function %q configured twice", fb.Name).
				Build()
		}
		fn, err := fb.resolve()
		if err != nil {
			return nil, err
		}
		cfg.Functions[key] = fn
	}
	return cfg, nil
}

func (fb *functionBlock) resolve() (*Function, error) {
	fn := &Function{
		Name:            fb.Name,
		Category:        fb.Category,
		Help:            fb.Help,
		Args:            fb.Args,
		ArgHelp:         fb.ArgHelp,
		Volatile:        fb.Volatile,
		ThreadSafe:      fb.ThreadSafe,
		MacroEquivalent: fb.MacroEquivalent,
	}
	if fb.ResultMode != nil {
		mode, err := invoke.ParseResultMode(*fb.ResultMode)
		if err != nil {
			return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "function "+fb.Name)
		}
		fn.ResultMode = mode
	}
	defaults, err := Defaults(fb.Defaults)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "defaults of "+fb.Name)
	}
	fn.Defaults = defaults
	return fn, nil
}

// Apply returns md with f's overrides applied.
func (f *Function) Apply(md registry.Metadata) registry.Metadata {
	if f.Category != nil {
		md.Category = *f.Category
	}
	if f.Help != nil {
		md.Help = *f.Help
	}
	if f.Args != nil {
		md.ArgNames = f.Args
	}
	if f.ArgHelp != nil {
		md.ArgHelp = f.ArgHelp
	}
	if f.Volatile != nil {
		md.Volatile = *f.Volatile
	}
	if f.ThreadSafe != nil {
		md.ThreadSafe = *f.ThreadSafe
	}
	if f.MacroEquivalent != nil {
		md.MacroEquivalent = *f.MacroEquivalent
	}
	if f.ResultMode != invoke.ResultDefault {
		md.Mode = f.ResultMode
	}
	if len(f.Defaults) > 0 {
		merged := make(map[string]wire.Value, len(md.Defaults)+len(f.Defaults))
		for k, v := range md.Defaults {
			merged[k] = v
		}
		for k, v := range f.Defaults {
			merged[k] = v
		}
		md.Defaults = merged
	}
	return md
}

// Function returns the override for name, ignoring case.
func (c *Config) Function(name string) (*Function, bool) {
	f, ok := c.Functions[strings.ToUpper(name)]
	return f, ok
}
