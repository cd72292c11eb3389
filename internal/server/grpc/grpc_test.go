package grpc

import (
	"context"
	"errors"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/litetable/litetable-scan/internal/data"
	rpc "github.com/litetable/litetable-scan/internal/grpc"
	"github.com/litetable/litetable-scan/internal/iterators"
	"github.com/litetable/litetable-scan/internal/locator"
	"github.com/litetable/litetable-scan/internal/scan"
	"github.com/litetable/litetable-scan/internal/security"
	"github.com/litetable/litetable-scan/internal/tablet"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"net"
	"testing"
	"time"
)

const bufAddress = "passthrough:///bufnet"

var testCreds = security.NewPasswordCredentials("root", "secret")

// serve starts a server for s on an in-memory listener and returns a client dialing it.
func serve(t *testing.T, s scanner) *rpc.Client {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv, err := NewServer(&Config{Scanner: s, Listener: lis})
	require.NoError(t, err)
	require.NoError(t, srv.Start())
	t.Cleanup(func() { _ = srv.Stop() })

	client, err := rpc.NewClient(&rpc.ClientConfig{
		Dialer: func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestNewServer(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	tests := map[string]struct {
		cfg   *Config
		error error
	}{
		"invalid config": {
			cfg:   &Config{},
			error: errors.New("address required\nport required\nscanner required"),
		},
		"listener replaces address": {
			cfg:   &Config{Listener: bufconn.Listen(1024)},
			error: errors.New("scanner required"),
		},
		"valid config": {
			cfg: &Config{
				Address:  "127.0.0.1",
				Port:     0,
				Scanner:  NewMockscanner(ctrl),
				Listener: bufconn.Listen(1024),
			},
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := NewServer(test.cfg)
			req := require.New(t)
			if test.error != nil {
				req.Error(err)
				req.Nil(got)

				req.Equal(test.error.Error(), err.Error())
				return
			}

			req.NoError(err)
			req.NotNil(got)
		})
	}
}

func TestServer_Name(t *testing.T) {
	s := &Server{}
	require.Equal(t, "gRPC Server", s.Name())
}

func TestServer_Start(t *testing.T) {
	t.Run("successful start", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockServer := NewMockgrpcServer(ctrl)
		ml := &mockListener{}

		mockServer.EXPECT().
			Serve(ml).
			DoAndReturn(func(net.Listener) error {
				// Simulate blocking serve
				time.Sleep(600 * time.Millisecond)
				return nil
			})

		s := &Server{
			address:  "127.0.0.1",
			port:     12345,
			server:   mockServer,
			listener: ml,
		}

		err := s.Start()
		require.NoError(t, err)
	})

	t.Run("serve error on start", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		mockServer := NewMockgrpcServer(ctrl)
		ml := &mockListener{}

		mockServer.EXPECT().
			Serve(ml).
			Return(errors.New("bind error"))

		s := &Server{
			address:  "127.0.0.1",
			port:     12345,
			server:   mockServer,
			listener: ml,
		}

		err := s.Start()
		require.Error(t, err)
		require.Contains(t, err.Error(), "bind error")
	})
}

func TestServer_Stop(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockServer := NewMockgrpcServer(ctrl)
	mockServer.EXPECT().GracefulStop().Times(1)

	s := &Server{
		server: mockServer,
	}

	require.NoError(t, s.Stop())
}

func TestTabletService_Scan(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockScanner := NewMockscanner(ctrl)
	mockScanner.EXPECT().
		Scan(gomock.Any(), testCreds, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ security.Credentials, req *rpc.ScanRequest) (*rpc.ScanResponse, error) {
			require.Equal(t, "t1", req.Table)
			require.Equal(t, 10, req.BatchSize)
			return &rpc.ScanResponse{
				Entries: []data.Entry{{Key: data.NewKey("r1", "f", "q", 7), Value: data.Value("v")}},
				More:    true,
			}, nil
		})

	client := serve(t, mockScanner)
	resp, err := client.Scan(context.Background(), bufAddress,
		&rpc.ScanRequest{Table: "t1", BatchSize: 10}, testCreds)
	req := require.New(t)
	req.NoError(err)
	req.True(resp.More)
	req.Len(resp.Entries, 1)
	req.Equal("r1", string(resp.Entries[0].Key.Row))
	req.Equal(int64(7), resp.Entries[0].Key.Timestamp)
	req.Equal("v", string(resp.Entries[0].Value))
}

func TestTabletService_Unauthenticated(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	client := serve(t, NewMockscanner(ctrl))
	_, err := client.Scan(context.Background(), bufAddress,
		&rpc.ScanRequest{Table: "t1"}, security.Credentials{})
	require.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestToStatus(t *testing.T) {
	tests := map[string]struct {
		err          error
		expectedCode codes.Code
		reason       string
	}{
		"table not found": {
			err:          tablet.ErrTableNotFound,
			expectedCode: codes.NotFound,
			reason:       rpc.ReasonTableNotFound,
		},
		"table deleted": {
			err:          tablet.ErrTableDeleted,
			expectedCode: codes.NotFound,
			reason:       rpc.ReasonTableDeleted,
		},
		"table offline": {
			err:          tablet.ErrTableOffline,
			expectedCode: codes.FailedPrecondition,
			reason:       rpc.ReasonTableOffline,
		},
		"served elsewhere": {
			err:          tablet.ErrNotServing,
			expectedCode: codes.FailedPrecondition,
			reason:       rpc.ReasonNotServingTablet,
		},
		"isolation conflict": {
			err:          tablet.ErrIsolationConflict,
			expectedCode: codes.Aborted,
			reason:       rpc.ReasonIsolationConflict,
		},
		"bad option": {
			err:          iterators.ErrInvalidOption,
			expectedCode: codes.InvalidArgument,
			reason:       rpc.ReasonInvalidOption,
		},
		"unknown operator": {
			err:          iterators.ErrUnknownOperator,
			expectedCode: codes.InvalidArgument,
			reason:       rpc.ReasonInvalidOption,
		},
		"permission denied": {
			err:          security.ErrPermissionDenied,
			expectedCode: codes.PermissionDenied,
			reason:       rpc.ReasonPermissionDenied,
		},
		"bad credentials": {
			err:          security.ErrBadCredentials,
			expectedCode: codes.Unauthenticated,
		},
		"deadline": {
			err:          context.DeadlineExceeded,
			expectedCode: codes.DeadlineExceeded,
		},
		"anything else": {
			err:          errors.New("disk on fire"),
			expectedCode: codes.Internal,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			code, reason := rpc.ReasonOf(toStatus(tc.err))
			require.Equal(t, tc.expectedCode, code)
			require.Equal(t, tc.reason, reason)
		})
	}
}

// TestEndToEnd drives the client scan engine against a served tablet manager.
func TestEndToEnd(t *testing.T) {
	req := require.New(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	req.NoError(err)
	auth, err := security.NewAuthenticator(&security.Config{Users: []security.User{
		{Principal: "root", PasswordHash: string(hash), Authorizations: []string{"admin"}},
		{Principal: "reader", PasswordHash: string(hash)},
	}})
	req.NoError(err)

	registry := iterators.NewRegistry()
	m, err := tablet.New(&tablet.Config{
		DataDir:       "/data",
		FS:            vfs.NewMem(),
		Registry:      registry,
		Authenticator: auth,
		Tables:        []tablet.TableConfig{{Name: "t1"}, {Name: "off", State: tablet.Offline}},
		Now:           func() time.Time { return time.UnixMilli(10_000) },
	})
	req.NoError(err)
	t.Cleanup(func() { _ = m.Stop() })

	secret := data.Entry{Key: data.NewKey("r6", "f", "q", 9_500), Value: data.Value("secret")}
	secret.Key.Visibility = []byte("admin")
	req.NoError(m.Put("t1",
		data.Entry{Key: data.NewKey("r1", "f", "q", 9_900), Value: data.Value("v")},
		data.Entry{Key: data.NewKey("r2", "f", "q", 100), Value: data.Value("aged")},
		data.Entry{Key: data.NewKey("r3", "f", "q", 9_800), Value: data.Value("v")},
		data.Entry{Key: data.NewKey("r4", "f", "q", 9_700), Value: data.Value("v")},
		data.Entry{Key: data.NewKey("r5", "f", "q", 9_600), Value: data.Value("v")},
		secret,
	))

	client := serve(t, m)
	static, err := locator.NewStatic(&locator.Config{DefaultAddress: bufAddress})
	req.NoError(err)
	cache, err := locator.NewCache(&locator.CacheConfig{Resolver: static})
	req.NoError(err)
	fetcher, err := scan.NewFetcher(&scan.FetcherConfig{Client: client, Locator: cache, Credentials: testCreds})
	req.NoError(err)
	readerFetcher, err := scan.NewFetcher(&scan.FetcherConfig{Client: client, Locator: cache,
		Credentials: security.NewPasswordCredentials("reader", "secret")})
	req.NoError(err)
	pool, err := scan.NewPool(&scan.PoolConfig{Name: "end-to-end"})
	req.NoError(err)
	req.NoError(pool.Start())
	t.Cleanup(func() { _ = pool.Stop() })

	newScanner := func(f *scan.Fetcher, table string, auths ...string) *scan.Scanner {
		s, err := scan.NewScanner(&scan.Config{
			Fetcher:            f,
			Pool:               pool,
			Registry:           registry,
			Table:              table,
			Authorizations:     data.NewAuthorizations(auths...),
			BatchSize:          2,
			Timeout:            5 * time.Second,
			ReadAheadThreshold: 1,
		})
		req.NoError(err)
		return s
	}
	collect := func(s *scan.Scanner) ([]string, error) {
		it := s.Iterator(context.Background())
		defer it.Close()
		var got []string
		for e, err := range it.All() {
			if err != nil {
				return got, err
			}
			got = append(got, string(e.Key.Row))
		}
		return got, nil
	}

	t.Run("age off", func(t *testing.T) {
		s := newScanner(fetcher, "t1")
		require.NoError(t, s.AddIterator(iterators.Setting{
			Priority: 10, Name: "age", Type: iterators.AgeOffType,
			Options: map[string]string{"ttl": "1000"},
		}))
		got, err := collect(s)
		require.NoError(t, err)
		require.Equal(t, []string{"r1", "r3", "r4", "r5", "r6"}, got)
	})

	t.Run("authorizations", func(t *testing.T) {
		got, err := collect(newScanner(fetcher, "t1", "admin"))
		require.NoError(t, err)
		require.Equal(t, []string{"r1", "r2", "r3", "r4", "r5", "r6"}, got)

		got, err = collect(newScanner(readerFetcher, "t1"))
		require.NoError(t, err)
		require.Equal(t, []string{"r1", "r2", "r3", "r4", "r5"}, got, "labelled data needs the label")
	})

	t.Run("unheld authorizations", func(t *testing.T) {
		_, err := collect(newScanner(readerFetcher, "t1", "admin"))
		require.ErrorIs(t, err, scan.ErrSecurityDenied)
	})

	t.Run("missing table", func(t *testing.T) {
		_, err := collect(newScanner(fetcher, "missing"))
		require.ErrorIs(t, err, scan.ErrTableNotFound)
	})

	t.Run("offline table", func(t *testing.T) {
		_, err := collect(newScanner(fetcher, "off"))
		require.ErrorIs(t, err, scan.ErrTableOffline)
	})
}

type mockListener struct {
	net.Listener
}

func (m *mockListener) Accept() (net.Conn, error) { return nil, nil }
func (m *mockListener) Close() error              { return nil }
func (m *mockListener) Addr() net.Addr            { return &net.TCPAddr{Port: 12345} }
