package iterators

import (
	"math"
	"strconv"

	"github.com/litetable/litetable-scan/internal/data"
)

const (
	// VersionsType is the registry name of the versioning operator.
	VersionsType = "versions"

	maxVersionsOption = "maxVersions"
)

// Versions keeps only the newest maxVersions versions of each column.
type Versions struct {
	source      Source
	maxVersions int

	current data.Key
	seen    int
}

// NewVersions returns a versioning operator awaiting Init.
func NewVersions() Operator {
	return &Versions{maxVersions: 1}
}

func (v *Versions) Init(source Source, options map[string]string, _ *Environment) error {
	v.source = source
	v.maxVersions = 1
	if raw, ok := options[maxVersionsOption]; ok {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return newError(ErrInvalidOption, "%s must be a positive integer, got %q",
				maxVersionsOption, raw)
		}
		v.maxVersions = n
	}
	return nil
}

func (v *Versions) Describe() Descriptor {
	return Descriptor{
		Name:        VersionsType,
		Description: "keeps the newest <maxVersions> versions of each column",
		NamedOptions: map[string]string{
			maxVersionsOption: "number of versions to keep per column (default 1)",
		},
	}
}

// Seek rewinds the source to the start of the column holding r's start key so versions that
// sort before the start are still counted.
func (v *Versions) Seek(r data.Range) error {
	v.seen = 0
	v.current = data.Key{}

	if err := v.source.Seek(columnStart(r)); err != nil {
		return err
	}
	if err := v.settle(); err != nil {
		return err
	}
	for v.source.HasTop() && r.BeforeStart(v.source.TopKey()) {
		if err := v.advance(); err != nil {
			return err
		}
	}
	return nil
}

func (v *Versions) HasTop() bool {
	return v.source.HasTop()
}

func (v *Versions) TopKey() data.Key {
	return v.source.TopKey()
}

func (v *Versions) TopValue() data.Value {
	return v.source.TopValue()
}

func (v *Versions) Next() error {
	return v.advance()
}

func (v *Versions) Clone(env *Environment) Source {
	return &Versions{
		source:      v.source.Clone(env),
		maxVersions: v.maxVersions,
	}
}

func (v *Versions) advance() error {
	if err := v.source.Next(); err != nil {
		return err
	}
	return v.settle()
}

// settle counts the top entry against its column and skips it while the column is over budget.
func (v *Versions) settle() error {
	for v.source.HasTop() {
		top := v.source.TopKey()
		if v.seen == 0 || !top.SameColumn(v.current) {
			v.current = top.Clone()
			v.seen = 0
		}
		v.seen++
		if v.seen <= v.maxVersions {
			return nil
		}
		if err := v.source.Next(); err != nil {
			return err
		}
	}
	return nil
}

// columnStart widens r so that it starts at the newest possible version of its start column.
func columnStart(r data.Range) data.Range {
	if r.Start == nil {
		return r
	}
	widened := r.Clone()
	start := r.Start.Clone()
	start.Timestamp = math.MaxInt64
	start.Deleted = true
	widened.Start = &start
	widened.StartInclusive = true
	return widened
}
