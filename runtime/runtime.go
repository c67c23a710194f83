package runtime

import (
	"context"
	"slices"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/McLeodMoores/xl4j-sub002/config"
	"github.com/McLeodMoores/xl4j-sub002/convert"
	"github.com/McLeodMoores/xl4j-sub002/dispatch"
	"github.com/McLeodMoores/xl4j-sub002/errors"
	"github.com/McLeodMoores/xl4j-sub002/heap"
	"github.com/McLeodMoores/xl4j-sub002/invoke"
	"github.com/McLeodMoores/xl4j-sub002/member"
	"github.com/McLeodMoores/xl4j-sub002/registry"
	"github.com/McLeodMoores/xl4j-sub002/wire"
)

// Runtime owns the object heap, the converter registry, the type catalog
// and the export table of one add-in.
type Runtime struct {
	heap    *heap.Heap
	binder  *invoke.Binder
	catalog *member.Catalog
	table   *registry.Table
	handler *dispatch.Handler
	cfg     *config.Config
	exports []registry.Export
	mu      sync.Mutex
	started bool
}

type options struct {
	logger     *zap.Logger
	cfg        *config.Config
	converters []convert.Converter
	mode       invoke.ResultMode
}

// Option configures a Runtime.
type Option func(*options)

// WithLogger routes the logs of every bridge package to l.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithConfig applies a loaded configuration file.
func WithConfig(cfg *config.Config) Option {
	return func(o *options) { o.cfg = cfg }
}

// WithConverters adds converters after the standard set.
func WithConverters(c ...convert.Converter) Option {
	return func(o *options) { o.converters = append(o.converters, c...) }
}

// WithResultMode overrides the default result mode of the configuration.
func WithResultMode(m invoke.ResultMode) Option {
	return func(o *options) { o.mode = m }
}

// New creates a runtime. Exports are added with the Register methods and
// become callable after Start.
func New(opts ...Option) (*Runtime, error) {
	o := options{cfg: config.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger != nil {
		setLoggers(o.logger)
	}

	h := heap.New()
	h.Subscribe(heapLog{})

	conv, err := convert.Default(h, o.converters...)
	if err != nil {
		return nil, err
	}

	binder := invoke.NewBinder(conv, o.mode.Or(o.cfg.ResultMode))
	table := registry.NewTable(binder, registry.WithMaxArguments(o.cfg.MaxArguments))

	return &Runtime{
		heap:    h,
		binder:  binder,
		catalog: member.NewCatalog(),
		table:   table,
		handler: dispatch.NewHandler(table, h),
		cfg:     o.cfg,
	}, nil
}

func setLoggers(l *zap.Logger) {
	SetLogger(l)
	convert.SetLogger(l.Named("convert"))
	invoke.SetLogger(l.Named("invoke"))
	registry.SetLogger(l.Named("registry"))
	dispatch.SetLogger(l.Named("dispatch"))
	config.SetLogger(l.Named("config"))
}

func (r *Runtime) add(exps ...registry.Export) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return errors.New(errors.PhaseRegister, errors.KindUnsupported).
			Detail("runtime already started").
			Build()
	}
	r.exports = append(r.exports, exps...)
	return nil
}

// RegisterFunc exports fn under name.
func (r *Runtime) RegisterFunc(name string, fn any, opts ...ExportOption) error {
	m, err := member.Func(name, fn)
	if err != nil {
		return err
	}
	return r.add(registry.Export{Metadata: metadata(name, opts), Members: []*invoke.Member{m}})
}

// RegisterOverloads exports fns as one overload set under name. A call
// tries the overloads that bind to its argument kinds in candidate order.
func (r *Runtime) RegisterOverloads(name string, fns []any, opts ...ExportOption) error {
	members, err := funcs(name, fns)
	if err != nil {
		return err
	}
	return r.add(registry.Export{Metadata: metadata(name, opts), Members: members})
}

// RegisterMembers exports prepared members, for example the methods of a
// catalog type, under name.
func (r *Runtime) RegisterMembers(name string, members []*invoke.Member, opts ...ExportOption) error {
	if len(members) == 0 {
		return errors.InvalidInput(errors.PhaseRegister, "export "+name+" has no members")
	}
	return r.add(registry.Export{Metadata: metadata(name, opts), Members: members})
}

// RegisterProvider exports the methods of p.
func (r *Runtime) RegisterProvider(p Provider) error {
	exps, err := providerExports(p)
	if err != nil {
		return err
	}
	return r.add(exps...)
}

// RegisterType makes a type reachable through the reflective builtins.
func (r *Runtime) RegisterType(entry *member.TypeEntry) error {
	return r.catalog.Add(entry)
}

// Start freezes the catalog and builds the export table in the
// background, registering each export with host. Invoke blocks until the
// table is ready.
func (r *Runtime) Start(ctx context.Context, host registry.Host) error {
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return errors.New(errors.PhaseRegister, errors.KindUnsupported).
			Detail("runtime already started").
			Build()
	}
	r.started = true
	r.catalog.Freeze()
	exps := append(slices.Clone(r.exports), dispatch.Builtins(r.catalog, r.heap, r.binder)...)
	r.mu.Unlock()

	exps = r.cfg.Apply(exps)
	Logger().Info("starting export table",
		zap.Int("exports", len(exps)),
		zap.Int("types", r.catalog.Len()))
	r.table.Start(ctx, slices.Values(exps), host)
	return nil
}

// Wait blocks until the export table is ready and returns the
// registration errors.
func (r *Runtime) Wait(ctx context.Context) error {
	if err := r.table.Wait(ctx); err != nil {
		return err
	}
	return r.table.Err()
}

// Invoke calls export id. Failures are reported as spreadsheet errors.
func (r *Runtime) Invoke(id uint32, args ...wire.Value) wire.Value {
	return r.handler.Invoke(id, args)
}

// InvokeName calls the export registered under name, ignoring case.
func (r *Runtime) InvokeName(name string, args ...wire.Value) wire.Value {
	return r.handler.InvokeName(name, args)
}

// Exports returns the registered definitions ordered by export ID.
func (r *Runtime) Exports() []*registry.FunctionDefinition {
	return r.table.Definitions()
}

// Types returns the names of the catalog types.
func (r *Runtime) Types() []string {
	names := r.catalog.Names()
	sort.Strings(names)
	return names
}

// Heap returns the object heap.
func (r *Runtime) Heap() *heap.Heap {
	return r.heap
}

// Close releases every live object.
func (r *Runtime) Close() error {
	return r.heap.Close()
}

type heapLog struct{}

func (heapLog) OnHeapEvent(e heap.Event) {
	Logger().Debug("heap",
		zap.Stringer("event", e.Type),
		zap.Uint64("handle", uint64(e.Handle)),
		zap.String("type", e.TypeName))
}
