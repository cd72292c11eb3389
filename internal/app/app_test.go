package app

import (
	"context"
	"errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"testing"
	"time"
)

func TestCreateApp(t *testing.T) {
	tests := map[string]struct {
		cfg   *Config
		error error
	}{
		"invalid config": {
			cfg:   &Config{},
			error: errors.New("service name is required\nstop timeout is required"),
		},
		"valid config": {
			cfg: &Config{ServiceName: "test", StopTimeout: time.Second},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := CreateApp(tc.cfg)
			req := require.New(t)
			if tc.error != nil {
				req.Error(err)
				req.Equal(tc.error.Error(), err.Error())
				return
			}
			req.NoError(err)
			req.NotNil(got)
		})
	}
}

func TestApp_Run(t *testing.T) {
	t.Run("context cancel stops dependencies newest first", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		first := NewMockDependency(ctrl)
		second := NewMockDependency(ctrl)

		started := make(chan struct{}, 2)
		for _, d := range []*MockDependency{first, second} {
			d.EXPECT().Start().DoAndReturn(func() error {
				started <- struct{}{}
				return nil
			})
		}
		first.EXPECT().Name().Return("first").AnyTimes()
		second.EXPECT().Name().Return("second").AnyTimes()
		gomock.InOrder(
			second.EXPECT().Stop().Return(nil),
			first.EXPECT().Stop().Return(nil),
		)

		a, err := CreateApp(&Config{ServiceName: "test", StopTimeout: time.Second}, first, second)
		req.NoError(err)

		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			<-started
			<-started
			cancel()
		}()
		req.NoError(a.Run(ctx))
		req.EqualError(a.Run(ctx), "run has already been called")
	})

	t.Run("failed start shuts down", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		dep := NewMockDependency(ctrl)
		dep.EXPECT().Name().Return("broken").AnyTimes()
		dep.EXPECT().Start().Return(errors.New("bind error"))
		dep.EXPECT().Stop().Return(nil)

		a, err := CreateApp(&Config{ServiceName: "test", StopTimeout: time.Second}, dep)
		req.NoError(err)

		err = a.Run(context.Background())
		req.Error(err)
		req.Contains(err.Error(), "bind error")
	})

	t.Run("slow stop times out", func(t *testing.T) {
		req := require.New(t)
		ctrl := gomock.NewController(t)
		dep := NewMockDependency(ctrl)
		dep.EXPECT().Name().Return("slow").AnyTimes()
		dep.EXPECT().Start().Return(nil)
		dep.EXPECT().Stop().DoAndReturn(func() error {
			time.Sleep(200 * time.Millisecond)
			return nil
		})

		a, err := CreateApp(&Config{ServiceName: "test", StopTimeout: 20 * time.Millisecond}, dep)
		req.NoError(err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err = a.Run(ctx)
		req.ErrorIs(err, context.DeadlineExceeded)
		time.Sleep(250 * time.Millisecond)
	})
}
