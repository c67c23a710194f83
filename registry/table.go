package registry

import (
	"context"
	"iter"
	"strings"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/McLeodMoores/xl4j-sub002/errors"
	"github.com/McLeodMoores/xl4j-sub002/invoke"
)

// Table is the export table. It is filled once by Build, on its own
// goroutine when started with Start, and is read-only afterwards. Readers
// block until the build has finished.
type Table struct {
	binder  *invoke.Binder
	defs    map[uint32]*FunctionDefinition
	names   map[string]uint32
	ready   chan struct{}
	err     error
	ids     []uint32
	maxArgs int
	nextID  uint32
	once    sync.Once
}

// Option configures a Table.
type Option func(*Table)

// WithMaxArguments sets the host's argument limit used for variadic padding.
func WithMaxArguments(n int) Option {
	return func(t *Table) {
		if n > 0 {
			t.maxArgs = n
		}
	}
}

// NewTable creates an empty table binding members with b.
func NewTable(b *invoke.Binder, opts ...Option) *Table {
	t := &Table{
		binder:  b,
		defs:    make(map[uint32]*FunctionDefinition),
		names:   make(map[string]uint32),
		ready:   make(chan struct{}),
		maxArgs: DefaultMaxArguments,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Start builds the table from exports on a new goroutine and registers
// each definition with host, which may be nil. Only the first call to
// Start or Build has any effect.
func (t *Table) Start(ctx context.Context, exports iter.Seq[Export], host Host) {
	t.once.Do(func() {
		go t.build(ctx, exports, host)
	})
}

// Build is the synchronous form of Start.
func (t *Table) Build(ctx context.Context, exports iter.Seq[Export], host Host) error {
	t.once.Do(func() {
		t.build(ctx, exports, host)
	})
	return t.Wait(ctx)
}

func (t *Table) build(ctx context.Context, exports iter.Seq[Export], host Host) {
	defer close(t.ready)

	for exp := range exports {
		if err := ctx.Err(); err != nil {
			t.err = multierr.Append(t.err, err)
			return
		}
		t.add(ctx, exp, host)
	}
	Logger().Info("export table ready",
		zap.Int("exports", len(t.defs)),
		zap.Int("failures", len(multierr.Errors(t.err))))
}

func (t *Table) add(ctx context.Context, exp Export, host Host) {
	id := t.nextID
	t.nextID++
	name := exp.Metadata.Name

	key := strings.ToUpper(name)
	if first, dup := t.names[key]; dup {
		err := errors.Conflict(name, id)
		Logger().Warn("duplicate export name dropped",
			zap.String("name", name),
			zap.Uint32("export_id", id),
			zap.Uint32("kept_export_id", first))
		t.err = multierr.Append(t.err, err)
		return
	}

	def, err := t.define(id, exp)
	if err != nil {
		Logger().Error("export rejected",
			zap.String("name", name),
			zap.Uint32("export_id", id),
			zap.Error(err))
		t.err = multierr.Append(t.err, err)
		return
	}
	t.names[key] = id
	t.defs[id] = def
	t.ids = append(t.ids, id)

	if host == nil {
		return
	}
	if err := host.Register(ctx, def.Registration()); err != nil {
		Logger().Error("host registration failed",
			zap.String("name", name),
			zap.Uint32("export_id", id),
			zap.Error(err))
		t.err = multierr.Append(t.err, errors.Wrap(errors.PhaseRegister, errors.KindInvocation, err, "register "+name))
	}
}

func (t *Table) define(id uint32, exp Export) (*FunctionDefinition, error) {
	md := exp.Metadata
	if md.Name == "" {
		return nil, errors.InvalidAttributes(md.Name, "empty name")
	}

	target := exp.Target
	if target == nil {
		binder := t.binder.WithMode(md.Mode)
		var err error
		switch len(exp.Members) {
		case 0:
			return nil, errors.InvalidAttributes(md.Name, "no members")
		case 1:
			target, err = NewBound(binder, exp.Members[0])
		default:
			target, err = NewOverloads(binder, exp.Members)
		}
		if err != nil {
			return nil, err
		}
	}

	params, variadic := target.Params()
	sig, err := Signature(md, params, variadic, t.maxArgs)
	if err != nil {
		return nil, err
	}
	return &FunctionDefinition{
		ExportID:  id,
		Metadata:  md,
		Params:    params,
		Variadic:  variadic,
		Signature: sig,
		Target:    target,
	}, nil
}

// Registration returns what the host receives for d.
func (d *FunctionDefinition) Registration() Registration {
	names := make([]string, len(d.Params))
	for i := range names {
		names[i] = d.Metadata.ArgName(i)
	}
	return Registration{
		ExportID:  d.ExportID,
		Name:      d.Metadata.Name,
		Signature: d.Signature,
		Variadic:  d.Variadic,
		Category:  d.Metadata.Category,
		Help:      d.Metadata.Help,
		ArgNames:  names,
		ArgHelp:   d.Metadata.ArgHelp,
	}
}

// Wait blocks until the table is ready or ctx is done.
func (t *Table) Wait(ctx context.Context) error {
	select {
	case <-t.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Ready reports whether the build has finished.
func (t *Table) Ready() bool {
	select {
	case <-t.ready:
		return true
	default:
		return false
	}
}

// Get returns the definition for id, blocking until the table is ready.
func (t *Table) Get(id uint32) (*FunctionDefinition, bool) {
	<-t.ready
	d, ok := t.defs[id]
	return d, ok
}

// Lookup returns the definition registered under name, ignoring case.
func (t *Table) Lookup(name string) (*FunctionDefinition, bool) {
	<-t.ready
	id, ok := t.names[strings.ToUpper(name)]
	if !ok {
		return nil, false
	}
	return t.defs[id], true
}

// Definitions returns every definition in export id order.
func (t *Table) Definitions() []*FunctionDefinition {
	<-t.ready
	out := make([]*FunctionDefinition, len(t.ids))
	for i, id := range t.ids {
		out[i] = t.defs[id]
	}
	return out
}

// Len returns the number of definitions, blocking until ready.
func (t *Table) Len() int {
	<-t.ready
	return len(t.defs)
}

// Err returns every registration failure combined, blocking until ready.
// Failures never stop the build.
func (t *Table) Err() error {
	<-t.ready
	return t.err
}
