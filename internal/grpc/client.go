package grpc

import (
	"context"
	"errors"
	"fmt"
	"github.com/litetable/litetable-scan/internal/security"
	"github.com/rs/zerolog/log"
	grpc2 "google.golang.org/grpc"
	"google.golang.org/grpc/connectivity"
	"google.golang.org/grpc/credentials/insecure"
	_ "google.golang.org/grpc/health"
	"google.golang.org/grpc/keepalive"
	"net"
	"sync"
	"time"
)

// healthServiceConfig turns on client-side health checking so a server that reports NOT_SERVING
// is taken out of rotation before a scan hits it.
const healthServiceConfig = `{"healthCheckConfig": {"serviceName": ""}}`

// Client performs scan round trips, keeping one connection per tablet server address.
type Client struct {
	mu     sync.Mutex
	conns  map[string]*grpc2.ClientConn
	opts   []grpc2.DialOption
	closed bool
}

type ClientConfig struct {
	// KeepaliveTime is how long a connection may sit idle before it is pinged.
	KeepaliveTime time.Duration
	// Dialer replaces the network dialer, mostly for in-memory listeners in tests.
	Dialer func(ctx context.Context, address string) (net.Conn, error)
}

func (c *ClientConfig) validate() error {
	var errGrp []error
	if c.KeepaliveTime < 0 {
		errGrp = append(errGrp, errors.New("keepalive time must not be negative"))
	}
	return errors.Join(errGrp...)
}

// NewClient returns a client. Connections are created lazily on first use.
func NewClient(cfg *ClientConfig) (*Client, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	keepaliveTime := cfg.KeepaliveTime
	if keepaliveTime == 0 {
		keepaliveTime = 30 * time.Second
	}

	opts := []grpc2.DialOption{
		grpc2.WithTransportCredentials(insecure.NewCredentials()),
		grpc2.WithKeepaliveParams(keepalive.ClientParameters{
			Time:                keepaliveTime,
			Timeout:             10 * time.Second,
			PermitWithoutStream: true,
		}),
		grpc2.WithDefaultServiceConfig(healthServiceConfig),
		grpc2.WithDefaultCallOptions(grpc2.CallContentSubtype(CodecName)),
	}
	if cfg.Dialer != nil {
		opts = append(opts, grpc2.WithContextDialer(cfg.Dialer))
	}

	return &Client{
		conns: make(map[string]*grpc2.ClientConn),
		opts:  opts,
	}, nil
}

// Scan sends one scan request to the tablet server at address.
func (c *Client) Scan(ctx context.Context, address string, req *ScanRequest,
	creds security.Credentials) (*ScanResponse, error) {
	conn, err := c.conn(address)
	if err != nil {
		return nil, err
	}

	resp := new(ScanResponse)
	if err := conn.Invoke(ctx, ScanMethod, req, resp, grpc2.PerRPCCredentials(creds)); err != nil {
		return nil, err
	}
	return resp, nil
}

// Forget drops the connection to address, so the next scan against it dials again.
func (c *Client) Forget(address string) {
	c.mu.Lock()
	conn, ok := c.conns[address]
	delete(c.conns, address)
	c.mu.Unlock()

	if ok {
		if err := conn.Close(); err != nil {
			log.Debug().Err(err).Str("address", address).Msg("failed to close connection")
		}
	}
}

// Close closes every connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	var errGrp []error
	for address, conn := range c.conns {
		if err := conn.Close(); err != nil {
			errGrp = append(errGrp, fmt.Errorf("failed to close connection to %s: %w", address, err))
		}
		delete(c.conns, address)
	}
	return errors.Join(errGrp...)
}

func (c *Client) conn(address string) (*grpc2.ClientConn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, errors.New("client is closed")
	}
	if conn, ok := c.conns[address]; ok {
		if conn.GetState() != connectivity.Shutdown {
			return conn, nil
		}
		delete(c.conns, address)
	}

	conn, err := grpc2.NewClient(address, c.opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection to %s: %w", address, err)
	}
	c.conns[address] = conn
	log.Debug().Str("address", address).Msg("connected to tablet server")
	return conn, nil
}
