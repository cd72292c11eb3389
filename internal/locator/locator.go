package locator

import (
	"context"
	"errors"
	"fmt"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/samber/mo"
	"sync"
)

//go:generate mockgen -destination=locator_mock.go -package=locator -source=locator.go

// ErrNoLocation is returned when no tablet server is known for a table.
var ErrNoLocation = errors.New("no tablet server location")

// resolver answers where a table is served. An absent option means nobody serves it right now.
type resolver interface {
	Resolve(ctx context.Context, table string) (mo.Option[string], error)
}

// Static resolves tables from a fixed map, falling back to a default tablet server.
type Static struct {
	instanceID     uuid.UUID
	defaultAddress string
	tables         map[string]string
}

type Config struct {
	InstanceID     string
	DefaultAddress string
	Tables         map[string]string
}

func (c *Config) validate() error {
	var errGrp []error
	if c.InstanceID != "" {
		if _, err := uuid.Parse(c.InstanceID); err != nil {
			errGrp = append(errGrp, fmt.Errorf("instance id %q is not a uuid: %w", c.InstanceID, err))
		}
	}
	if c.DefaultAddress == "" && len(c.Tables) == 0 {
		errGrp = append(errGrp, errors.New("a default address or table locations are required"))
	}
	for table, address := range c.Tables {
		if address == "" {
			errGrp = append(errGrp, fmt.Errorf("table %q has an empty address", table))
		}
	}
	return errors.Join(errGrp...)
}

// NewStatic returns a static resolver. Without a configured instance id a random one is used.
func NewStatic(cfg *Config) (*Static, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	id := uuid.New()
	if cfg.InstanceID != "" {
		id = uuid.MustParse(cfg.InstanceID)
	}

	tables := make(map[string]string, len(cfg.Tables))
	for table, address := range cfg.Tables {
		tables[table] = address
	}

	return &Static{
		instanceID:     id,
		defaultAddress: cfg.DefaultAddress,
		tables:         tables,
	}, nil
}

// Resolve returns the address serving table.
func (s *Static) Resolve(_ context.Context, table string) (mo.Option[string], error) {
	if address, ok := s.tables[table]; ok {
		return mo.Some(address), nil
	}
	if s.defaultAddress != "" {
		return mo.Some(s.defaultAddress), nil
	}
	return mo.None[string](), nil
}

// InstanceID identifies the instance the locations belong to.
func (s *Static) InstanceID() uuid.UUID {
	return s.instanceID
}

// Cache remembers resolved locations until they are invalidated.
type Cache struct {
	resolver resolver
	mu       sync.RWMutex
	entries  map[string]string
}

type CacheConfig struct {
	Resolver resolver
}

func (c *CacheConfig) validate() error {
	if c.Resolver == nil {
		return errors.New("resolver is required")
	}
	return nil
}

func NewCache(cfg *CacheConfig) (*Cache, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Cache{
		resolver: cfg.Resolver,
		entries:  make(map[string]string),
	}, nil
}

// LocateTablet returns the address of the tablet server for table.
func (c *Cache) LocateTablet(ctx context.Context, table string) (string, error) {
	c.mu.RLock()
	address, ok := c.entries[table]
	c.mu.RUnlock()
	if ok {
		return address, nil
	}

	location, err := c.resolver.Resolve(ctx, table)
	if err != nil {
		return "", fmt.Errorf("failed to resolve table %s: %w", table, err)
	}
	address, ok = location.Get()
	if !ok {
		return "", fmt.Errorf("%w: table %s", ErrNoLocation, table)
	}

	c.mu.Lock()
	c.entries[table] = address
	c.mu.Unlock()
	return address, nil
}

// Invalidate forgets the cached location of table.
func (c *Cache) Invalidate(table string) {
	c.mu.Lock()
	delete(c.entries, table)
	c.mu.Unlock()
	log.Debug().Str("table", table).Msg("invalidated tablet location")
}
