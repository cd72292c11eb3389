package iterators

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Factory builds a fresh, uninitialised operator.
type Factory func() Operator

// Setting configures one operator of a stack. Operators are applied in ascending Priority
// order, the lowest priority sitting closest to the data.
type Setting struct {
	Priority int               `json:"priority" yaml:"priority"`
	Name     string            `json:"name" yaml:"name"`
	Type     string            `json:"type" yaml:"type"`
	Options  map[string]string `json:"options,omitempty" yaml:"options,omitempty"`
}

func (s Setting) validate() error {
	var errGrp []error
	if s.Name == "" {
		errGrp = append(errGrp, newError(ErrInvalidOption, "iterator name is required"))
	}
	if s.Type == "" {
		errGrp = append(errGrp, newError(ErrInvalidOption, "iterator %q: type is required", s.Name))
	}
	if s.Priority <= 0 {
		errGrp = append(errGrp, newError(ErrInvalidOption,
			"iterator %q: priority must be greater than 0", s.Name))
	}
	return errors.Join(errGrp...)
}

// Registry maps operator type names to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns a registry holding the built-in operators.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[string]Factory)}
	r.factories[AgeOffType] = NewAgeOff
	r.factories[VersionsType] = NewVersions
	return r
}

// Register adds an operator type. Registering an existing name fails.
func (r *Registry) Register(name string, f Factory) error {
	if name == "" || f == nil {
		return errors.New("operator name and factory are required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("operator %q is already registered", name)
	}
	r.factories[name] = f
	return nil
}

// New returns a fresh operator of the named type.
func (r *Registry) New(name string) (Operator, error) {
	r.mu.RLock()
	f, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, newError(ErrUnknownOperator, "%s", name)
	}
	return f(), nil
}

// Names lists registered operator types in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Describe documents the named operator type.
func (r *Registry) Describe(name string) (Descriptor, error) {
	op, err := r.New(name)
	if err != nil {
		return Descriptor{}, err
	}
	return op.Describe(), nil
}

// Validate checks a single setting against its operator without any live data.
func (r *Registry) Validate(s Setting, env *Environment) error {
	if err := s.validate(); err != nil {
		return err
	}
	op, err := r.New(s.Type)
	if err != nil {
		return newError(ErrInvalidOption, "iterator %q: %v", s.Name, err)
	}
	if err := op.Init(Empty(), s.Options, env); err != nil {
		return fmt.Errorf("iterator %q: %w", s.Name, err)
	}
	return nil
}

// ValidateStack checks every setting and that names and priorities are unique.
func (r *Registry) ValidateStack(settings []Setting, env *Environment) error {
	var errGrp []error
	names := make(map[string]struct{}, len(settings))
	priorities := make(map[int]string, len(settings))
	for _, s := range settings {
		if err := r.Validate(s, env); err != nil {
			errGrp = append(errGrp, err)
			continue
		}
		if _, dup := names[s.Name]; dup {
			errGrp = append(errGrp, newError(ErrInvalidOption, "iterator name %q used twice", s.Name))
		}
		if other, dup := priorities[s.Priority]; dup {
			errGrp = append(errGrp, newError(ErrInvalidOption,
				"iterators %q and %q share priority %d", other, s.Name, s.Priority))
		}
		names[s.Name] = struct{}{}
		priorities[s.Priority] = s.Name
	}
	return errors.Join(errGrp...)
}

// Load stacks the configured operators on top of source in priority order and returns the
// outermost one.
func (r *Registry) Load(source Source, settings []Setting, env *Environment) (Source, error) {
	if err := r.ValidateStack(settings, env); err != nil {
		return nil, err
	}

	ordered := make([]Setting, len(settings))
	copy(ordered, settings)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Priority < ordered[j].Priority })

	top := source
	for _, s := range ordered {
		op, err := r.New(s.Type)
		if err != nil {
			return nil, err
		}
		if err := op.Init(top, s.Options, env); err != nil {
			return nil, fmt.Errorf("iterator %q: %w", s.Name, err)
		}
		top = op
	}
	return top, nil
}
