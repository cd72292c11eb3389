package config

import (
	"errors"
	"fmt"
	"github.com/litetable/litetable-scan/internal/security"
	"github.com/litetable/litetable-scan/internal/tablet"
	"gopkg.in/yaml.v2"
	"os"
	"path/filepath"
	"time"
)

const (
	defaultDir       = ".litetable"
	configFileName   = "tabletscan.yaml"
	defaultAddress   = "127.0.0.1"
	defaultPort      = 9090
	defaultAdmin     = 9091
	defaultDataDir   = "data"
	defaultReaping   = 10 * time.Minute
	defaultTimeout   = 30 * time.Second
	defaultPrincipal = "root"
)

// Config is the process configuration of both the tablet server and the scan client.
type Config struct {
	Debug  bool   `yaml:"debug"`
	Server Server `yaml:"server"`
	Client Client `yaml:"client"`
}

type Server struct {
	Address        string               `yaml:"address"`
	Port           int                  `yaml:"port"`
	AdminPort      int                  `yaml:"admin_port"`
	DataDir        string               `yaml:"data_dir"`
	SessionTTL     time.Duration        `yaml:"session_ttl"`
	ReaperInterval time.Duration        `yaml:"reaper_interval"`
	MaxExamined    int                  `yaml:"max_examined"`
	MaxBatchSize   int                  `yaml:"max_batch_size"`
	Users          []security.User      `yaml:"users"`
	Tables         []tablet.TableConfig `yaml:"tables"`
}

type Client struct {
	InstanceID string `yaml:"instance_id"`
	// DefaultAddress is the tablet server used for tables without an entry in Locations.
	DefaultAddress     string            `yaml:"default_address"`
	Locations          map[string]string `yaml:"locations"`
	Principal          string            `yaml:"principal"`
	Password           string            `yaml:"password"`
	BatchSize          int               `yaml:"batch_size"`
	Timeout            time.Duration     `yaml:"timeout"`
	ReadAheadThreshold int               `yaml:"read_ahead_threshold"`
	PoolIdleTimeout    time.Duration     `yaml:"pool_idle_timeout"`
}

// Dir returns the directory holding configuration and data by default.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, defaultDir), nil
}

// DefaultPath returns where Load looks when no path is given.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// Load reads the YAML file at path and fills in defaults. An empty path means DefaultPath. A
// missing default file is not an error; a missing explicit file is.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist) && !explicit:
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.UnmarshalStrict(raw, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := cfg.defaults(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) defaults() error {
	s := &c.Server
	if s.Address == "" {
		s.Address = defaultAddress
	}
	if s.Port == 0 {
		s.Port = defaultPort
	}
	if s.AdminPort == 0 {
		s.AdminPort = defaultAdmin
	}
	if s.DataDir == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		s.DataDir = filepath.Join(dir, defaultDataDir)
	}
	if s.ReaperInterval == 0 {
		s.ReaperInterval = defaultReaping
	}

	cl := &c.Client
	if cl.DefaultAddress == "" {
		cl.DefaultAddress = fmt.Sprintf("%s:%d", s.Address, s.Port)
	}
	if cl.Principal == "" {
		cl.Principal = defaultPrincipal
	}
	if cl.Timeout == 0 {
		cl.Timeout = defaultTimeout
	}
	return nil
}

func (c *Config) validate() error {
	var errGrp []error
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errGrp = append(errGrp, errors.New("server.port must be between 1 and 65535"))
	}
	if c.Server.AdminPort < 0 || c.Server.AdminPort > 65535 {
		errGrp = append(errGrp, errors.New("server.admin_port must be between 1 and 65535"))
	}
	if c.Server.Port == c.Server.AdminPort {
		errGrp = append(errGrp, errors.New("server.port and server.admin_port must differ"))
	}
	for _, d := range []struct {
		name  string
		value time.Duration
	}{
		{"server.session_ttl", c.Server.SessionTTL},
		{"server.reaper_interval", c.Server.ReaperInterval},
		{"client.timeout", c.Client.Timeout},
		{"client.pool_idle_timeout", c.Client.PoolIdleTimeout},
	} {
		if d.value < 0 {
			errGrp = append(errGrp, fmt.Errorf("%s must not be negative", d.name))
		}
	}
	if c.Client.BatchSize < 0 {
		errGrp = append(errGrp, errors.New("client.batch_size must not be negative"))
	}
	if c.Client.ReadAheadThreshold < 0 {
		errGrp = append(errGrp, errors.New("client.read_ahead_threshold must not be negative"))
	}
	return errors.Join(errGrp...)
}
