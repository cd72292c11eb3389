package tablet

import (
	"github.com/cockroachdb/pebble/vfs"
	"github.com/litetable/litetable-scan/internal/data"
	"github.com/litetable/litetable-scan/internal/iterators"
	"github.com/litetable/litetable-scan/internal/security"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"testing"
	"time"
)

var testCreds = security.NewPasswordCredentials("root", "secret")

// allowAll grants whatever authorizations are requested.
func allowAll(ctrl *gomock.Controller) *Mockauthorizer {
	m := NewMockauthorizer(ctrl)
	m.EXPECT().Authorize(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ security.Credentials, requested data.Authorizations) (data.Authorizations, error) {
			return requested, nil
		}).AnyTimes()
	return m
}

func newTestManager(t *testing.T, auth authorizer, tables ...TableConfig) *Manager {
	t.Helper()
	m, err := New(&Config{
		DataDir:       "/data",
		FS:            vfs.NewMem(),
		Registry:      iterators.NewRegistry(),
		Authenticator: auth,
		Tables:        tables,
		Now:           func() time.Time { return time.UnixMilli(10_000) },
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Stop() })
	return m
}

func put(row, family, qualifier string, ts int64, value string) data.Entry {
	return data.Entry{Key: data.NewKey(row, family, qualifier, ts), Value: data.Value(value)}
}

func TestNew(t *testing.T) {
	ctrl := gomock.NewController(t)
	auth := NewMockauthorizer(ctrl)
	reg := iterators.NewRegistry()

	tests := map[string]struct {
		cfg       *Config
		expectErr bool
	}{
		"valid": {
			cfg: &Config{DataDir: "/data", FS: vfs.NewMem(), Registry: reg, Authenticator: auth,
				Tables: []TableConfig{{Name: "t1"}, {Name: "gone", State: Deleted}}},
		},
		"missing dependencies": {
			cfg:       &Config{},
			expectErr: true,
		},
		"duplicate table": {
			cfg: &Config{DataDir: "/data", FS: vfs.NewMem(), Registry: reg, Authenticator: auth,
				Tables: []TableConfig{{Name: "t1"}, {Name: "t1"}}},
			expectErr: true,
		},
		"bad compaction stack": {
			cfg: &Config{DataDir: "/data", FS: vfs.NewMem(), Registry: reg, Authenticator: auth,
				Tables: []TableConfig{{Name: "t1", Compaction: []iterators.Setting{
					{Priority: 1, Name: "age", Type: iterators.AgeOffType},
				}}}},
			expectErr: true,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			m, err := New(tc.cfg)
			if tc.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NoError(t, m.Stop())
		})
	}
}

func TestManager_Tables(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	m := newTestManager(t, allowAll(ctrl), TableConfig{Name: "b"}, TableConfig{Name: "a", State: Offline})

	req.NoError(m.CreateTable("c", nil))
	req.ErrorIs(m.CreateTable("c", nil), ErrTableExists)

	infos := m.Tables()
	req.Len(infos, 3)
	req.Equal("a", infos[0].Name)
	req.Equal(Offline, infos[0].State)

	req.NoError(m.SetState("a", Online))
	req.NoError(m.SetState("c", Deleted))
	req.ErrorIs(m.SetState("c", Online), ErrTableDeleted)
	req.ErrorIs(m.SetState("missing", Online), ErrTableNotFound)
	req.ErrorIs(m.Put("c", put("r", "f", "q", 1, "v")), ErrTableDeleted)
	req.ErrorIs(m.Put("missing", put("r", "f", "q", 1, "v")), ErrTableNotFound)
}

func TestManager_StartStop(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	m := newTestManager(t, allowAll(ctrl), TableConfig{Name: "t1"})

	req.Equal("Tablet Manager", m.Name())
	req.NoError(m.Start())
	req.NoError(m.Stop())
	req.NoError(m.Stop())
}

func TestParseState(t *testing.T) {
	tests := map[string]struct {
		input     string
		expected  State
		expectErr bool
	}{
		"empty is online": {input: "", expected: Online},
		"offline":         {input: "offline", expected: Offline},
		"case blind":      {input: "DELETED", expected: Deleted},
		"unloaded":        {input: "unloaded", expected: Unloaded},
		"unknown":         {input: "sideways", expectErr: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := ParseState(tc.input)
			if tc.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.expected, got)
		})
	}
}
