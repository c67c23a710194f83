package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/McLeodMoores/xl4j-sub002/config"
	"github.com/McLeodMoores/xl4j-sub002/registry"
	"github.com/McLeodMoores/xl4j-sub002/runtime"
	"github.com/McLeodMoores/xl4j-sub002/samples"
	"github.com/McLeodMoores/xl4j-sub002/wire"
)

func main() {
	var (
		configFile  = flag.String("config", "", "Path to HCL configuration file")
		funcName    = flag.String("call", "", "Export to call")
		argList     = flag.String("args", "", `Arguments, comma-separated (e.g. 2,"text",{1,2;3,4},@1)`)
		list        = flag.Bool("list", false, "List registered exports and exit")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		verbose     = flag.Bool("v", false, "Debug logging to stderr")
	)
	flag.Parse()

	if !*list && *funcName == "" && !*interactive {
		fmt.Fprintln(os.Stderr, "Usage: xlbridge [-config file.hcl] -list")
		fmt.Fprintln(os.Stderr, "       xlbridge [-config file.hcl] -call Name [-args 1,2]")
		fmt.Fprintln(os.Stderr, "       xlbridge [-config file.hcl] -i  (interactive mode)")
		os.Exit(1)
	}

	if *interactive && !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "Not a terminal, listing exports instead")
		*interactive, *list = false, true
	}

	if *interactive {
		if err := runInteractive(*configFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*configFile, *funcName, *argList, *list, *verbose); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// load registers the sample exports and builds the export table.
func load(ctx context.Context, cfg *config.Config, log *zap.Logger) (*runtime.Runtime, error) {
	rt, err := runtime.New(runtime.WithConfig(cfg), runtime.WithLogger(log))
	if err != nil {
		return nil, fmt.Errorf("create runtime: %w", err)
	}
	if err := samples.Register(rt); err != nil {
		rt.Close()
		return nil, fmt.Errorf("register samples: %w", err)
	}
	if err := rt.Start(ctx, nil); err != nil {
		rt.Close()
		return nil, err
	}
	if err := rt.Wait(ctx); err != nil {
		rt.Close()
		return nil, fmt.Errorf("build export table: %w", err)
	}
	return rt, nil
}

func newLogger(cfg *config.Config, verbose bool) (*zap.Logger, error) {
	zc := zap.NewDevelopmentConfig()
	zc.OutputPaths = []string{"stderr"}
	zc.Level = zap.NewAtomicLevelAt(cfg.LogLevel)
	if verbose {
		zc.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return zc.Build()
}

func run(configFile, funcName, argList string, listOnly, verbose bool) error {
	ctx := context.Background()

	cfg, err := loadConfig(configFile)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg, verbose)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer log.Sync()

	rt, err := load(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer rt.Close()

	if listOnly {
		styled := term.IsTerminal(int(os.Stdout.Fd()))
		fmt.Printf("Exports:\n")
		for _, def := range rt.Exports() {
			fmt.Printf("  %s\n", formatExport(def.Registration(), styled))
		}
		if types := rt.Types(); len(types) > 0 {
			fmt.Printf("\nTypes: %s\n", strings.Join(types, ", "))
		}
		return nil
	}

	args := wire.ParseList(argList)
	fmt.Printf("Calling %s(%s)...\n", funcName, formatArgs(args))
	result := rt.InvokeName(funcName, args...)
	fmt.Printf("Result: %s\n", formatValue(result))
	if result.Kind() == wire.KindError {
		return fmt.Errorf("call %s returned %s", funcName, result)
	}
	return nil
}

func formatExport(r registry.Registration, styled bool) string {
	params := strings.Join(r.ArgNames, ", ")
	if r.Variadic {
		params += "..."
	}
	name := r.Name
	sig := r.Signature
	if styled {
		name = funcStyle.Render(name)
		sig = typeStyle.Render(sig)
	}
	line := fmt.Sprintf("%3d  %s(%s)  %s", r.ExportID, name, params, sig)
	if r.Category != "" {
		line += "  [" + r.Category + "]"
	}
	return line
}

func formatArgs(args []wire.Value) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = formatValue(a)
	}
	return strings.Join(parts, ", ")
}

func formatValue(v wire.Value) string {
	switch v := v.(type) {
	case wire.Text:
		return fmt.Sprintf("%q", string(v))
	case *wire.Array:
		return v.String()
	default:
		if v.Kind() == wire.KindMissing {
			return "<missing>"
		}
		if v.Kind() == wire.KindNil {
			return "<nil>"
		}
		return v.String()
	}
}
