package iterators

import (
	"strconv"

	"github.com/litetable/litetable-scan/internal/data"
)

const (
	// AgeOffType is the registry name of the age-off filter.
	AgeOffType = "ageoff"

	ageOffTTL         = "ttl"
	ageOffCurrentTime = "currentTime"
)

// AgeOff drops entries whose timestamp is more than ttl milliseconds older than currentTime.
// Timestamps are milliseconds since the epoch.
type AgeOff struct {
	ttl         int64
	currentTime int64
}

// NewAgeOff returns an age-off filter operator awaiting Init.
func NewAgeOff() Operator {
	return NewFilter(&AgeOff{})
}

// Accept keeps entries no older than ttl.
func (a *AgeOff) Accept(k data.Key, _ data.Value) bool {
	return a.currentTime-k.Timestamp <= a.ttl
}

// Configure reads ttl (required) and currentTime (optional, defaults to the environment clock).
func (a *AgeOff) Configure(options map[string]string, env *Environment) error {
	raw, ok := options[ageOffTTL]
	if !ok {
		return newError(ErrInvalidOption, "%s must be set for %s", ageOffTTL, AgeOffType)
	}
	ttl, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return newError(ErrInvalidOption, "%s must be an integer number of milliseconds, got %q",
			ageOffTTL, raw)
	}
	if ttl < 0 {
		return newError(ErrInvalidOption, "%s must not be negative, got %d", ageOffTTL, ttl)
	}

	currentTime := env.Clock().UnixMilli()
	if raw, ok := options[ageOffCurrentTime]; ok {
		currentTime, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return newError(ErrInvalidOption, "%s must be an integer number of milliseconds, got %q",
				ageOffCurrentTime, raw)
		}
	}

	a.ttl = ttl
	a.currentTime = currentTime
	return nil
}

func (a *AgeOff) Describe() Descriptor {
	return Descriptor{
		Name:        AgeOffType,
		Description: "removes entries with timestamps more than <ttl> milliseconds old",
		NamedOptions: map[string]string{
			ageOffTTL: "time to live (milliseconds)",
			ageOffCurrentTime: "if set, use the given value as the absolute time in milliseconds " +
				"as the current time of day",
		},
	}
}
