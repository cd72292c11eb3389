package iterators

import (
	"strconv"

	"github.com/litetable/litetable-scan/internal/data"
)

const negateOption = "negate"

// Predicate decides whether an entry passes a filter.
type Predicate interface {
	Accept(k data.Key, v data.Value) bool
}

// PredicateFunc adapts a plain function to a Predicate.
type PredicateFunc func(k data.Key, v data.Value) bool

// Accept calls f(k, v).
func (f PredicateFunc) Accept(k data.Key, v data.Value) bool {
	return f(k, v)
}

// Configurable is implemented by predicates that take options.
type Configurable interface {
	Configure(options map[string]string, env *Environment) error
}

// Describer is implemented by predicates that document themselves.
type Describer interface {
	Describe() Descriptor
}

// Filter drives a Predicate over a source, skipping every entry it rejects.
//
// The predicate is configured once in Init and shared by clones, so predicates must not change
// after Configure returns.
type Filter struct {
	source Source
	pred   Predicate
	negate bool
}

// NewFilter returns an uninitialised filter operator for pred.
func NewFilter(pred Predicate) *Filter {
	return &Filter{pred: pred}
}

// Where wraps source with a fixed predicate. The result is ready to be seeked.
func Where(source Source, pred Predicate) *Filter {
	return &Filter{source: source, pred: pred}
}

// Init binds the filter to source and configures its predicate. The "negate" option inverts
// the predicate.
func (f *Filter) Init(source Source, options map[string]string, env *Environment) error {
	f.source = source
	f.negate = false

	if raw, ok := options[negateOption]; ok {
		negate, err := strconv.ParseBool(raw)
		if err != nil {
			return newError(ErrInvalidOption, "%s must be a boolean, got %q", negateOption, raw)
		}
		f.negate = negate
	}

	if c, ok := f.pred.(Configurable); ok {
		return c.Configure(options, env)
	}
	return nil
}

// Describe returns the predicate's descriptor with the shared negate option added.
func (f *Filter) Describe() Descriptor {
	d := Descriptor{
		Name:        "filter",
		Description: "skips entries rejected by a predicate",
	}
	if desc, ok := f.pred.(Describer); ok {
		d = desc.Describe()
	}

	named := make(map[string]string, len(d.NamedOptions)+1)
	for k, v := range d.NamedOptions {
		named[k] = v
	}
	named[negateOption] = "default false keeps entries accepted by the filter; true keeps the rest"
	d.NamedOptions = named
	return d
}

func (f *Filter) Seek(r data.Range) error {
	if err := f.source.Seek(r); err != nil {
		return err
	}
	return f.findTop()
}

func (f *Filter) HasTop() bool {
	return f.source.HasTop()
}

func (f *Filter) TopKey() data.Key {
	return f.source.TopKey()
}

func (f *Filter) TopValue() data.Value {
	return f.source.TopValue()
}

func (f *Filter) Next() error {
	if err := f.source.Next(); err != nil {
		return err
	}
	return f.findTop()
}

// Clone copies the filter onto an independent copy of its source.
func (f *Filter) Clone(env *Environment) Source {
	return &Filter{
		source: f.source.Clone(env),
		pred:   f.pred,
		negate: f.negate,
	}
}

// findTop advances the source until the predicate accepts its top entry or it runs dry.
func (f *Filter) findTop() error {
	for f.source.HasTop() {
		if f.pred.Accept(f.source.TopKey(), f.source.TopValue()) != f.negate {
			return nil
		}
		if err := f.source.Next(); err != nil {
			return err
		}
	}
	return nil
}
