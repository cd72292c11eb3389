package locator

import (
	"context"
	"errors"
	"github.com/samber/mo"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"testing"
)

func TestNewStatic(t *testing.T) {
	tests := map[string]struct {
		cfg       *Config
		expectErr bool
	}{
		"default address only": {
			cfg: &Config{DefaultAddress: "localhost:9443"},
		},
		"table locations only": {
			cfg: &Config{Tables: map[string]string{"t1": "host:1"}},
		},
		"nothing to resolve": {
			cfg:       &Config{},
			expectErr: true,
		},
		"bad instance id": {
			cfg:       &Config{DefaultAddress: "localhost:9443", InstanceID: "nope"},
			expectErr: true,
		},
		"empty table address": {
			cfg:       &Config{Tables: map[string]string{"t1": ""}},
			expectErr: true,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := NewStatic(tc.cfg)
			if tc.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestStatic_Resolve(t *testing.T) {
	req := require.New(t)
	id := "7f8c7d1e-0c38-4a53-9d1f-0b1c40a3b2aa"

	s, err := NewStatic(&Config{
		InstanceID: id,
		Tables:     map[string]string{"t1": "host:1"},
	})
	req.NoError(err)
	req.Equal(id, s.InstanceID().String())

	got, err := s.Resolve(context.Background(), "t1")
	req.NoError(err)
	req.Equal(mo.Some("host:1"), got)

	got, err = s.Resolve(context.Background(), "t2")
	req.NoError(err)
	req.True(got.IsAbsent())
}

func TestCache_LocateTablet(t *testing.T) {
	tests := map[string]struct {
		mockSetup       func(m *Mockresolver)
		expectedAddress string
		expectedErr     error
	}{
		"resolved once then cached": {
			mockSetup: func(m *Mockresolver) {
				m.EXPECT().Resolve(gomock.Any(), "t1").Return(mo.Some("host:1"), nil).Times(1)
			},
			expectedAddress: "host:1",
		},
		"absent location": {
			mockSetup: func(m *Mockresolver) {
				m.EXPECT().Resolve(gomock.Any(), "t1").Return(mo.None[string](), nil).Times(2)
			},
			expectedErr: ErrNoLocation,
		},
		"resolver failure": {
			mockSetup: func(m *Mockresolver) {
				m.EXPECT().Resolve(gomock.Any(), "t1").Return(mo.None[string](), errors.New("boom")).Times(2)
			},
			expectedErr: errors.New("failed to resolve table t1: boom"),
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			req := require.New(t)
			ctrl := gomock.NewController(t)
			m := NewMockresolver(ctrl)
			tc.mockSetup(m)

			c, err := NewCache(&CacheConfig{Resolver: m})
			req.NoError(err)

			// a second lookup hits the cache on success and the resolver otherwise
			for i := 0; i < 2; i++ {
				address, err := c.LocateTablet(context.Background(), "t1")
				if tc.expectedErr != nil {
					if errors.Is(tc.expectedErr, ErrNoLocation) {
						req.ErrorIs(err, ErrNoLocation)
					} else {
						req.EqualError(err, tc.expectedErr.Error())
					}
					continue
				}
				req.NoError(err)
				req.Equal(tc.expectedAddress, address)
			}
		})
	}
}

func TestCache_Invalidate(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	m := NewMockresolver(ctrl)
	gomock.InOrder(
		m.EXPECT().Resolve(gomock.Any(), "t1").Return(mo.Some("host:1"), nil),
		m.EXPECT().Resolve(gomock.Any(), "t1").Return(mo.Some("host:2"), nil),
	)

	c, err := NewCache(&CacheConfig{Resolver: m})
	req.NoError(err)

	address, err := c.LocateTablet(context.Background(), "t1")
	req.NoError(err)
	req.Equal("host:1", address)

	c.Invalidate("t1")
	address, err = c.LocateTablet(context.Background(), "t1")
	req.NoError(err)
	req.Equal("host:2", address)
}
