package reaper

import (
	"errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	ctrl := gomock.NewController(t)
	tests := map[string]struct {
		cfg   *Config
		error error
	}{
		"invalid config": {
			cfg:   &Config{Interval: -time.Second},
			error: errors.New("compactor cannot be nil\ninterval must not be negative"),
		},
		"valid config": {
			cfg: &Config{Compactor: NewMockcompactor(ctrl)},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := New(tc.cfg)
			req := require.New(t)
			if tc.error != nil {
				req.Error(err)
				req.Equal(tc.error.Error(), err.Error())
				return
			}
			req.NoError(err)
			req.Equal(defaultInterval, got.reapInterval)
		})
	}
}

func TestReaper_Interval(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := NewMockcompactor(ctrl)

	ran := make(chan string, 8)
	c.EXPECT().CompactionTargets().Return([]string{"t1", "t2"}).MinTimes(1)
	c.EXPECT().Compact(gomock.Any()).DoAndReturn(func(table string) (int, error) {
		select {
		case ran <- table:
		default:
		}
		if table == "t2" {
			return 0, errors.New("disk on fire")
		}
		return 3, nil
	}).MinTimes(2)

	r, err := New(&Config{Compactor: c, Interval: 10 * time.Millisecond})
	require.NoError(t, err)
	require.NoError(t, r.Start())

	require.Equal(t, "t1", <-ran)
	require.Equal(t, "t2", <-ran, "a failing table does not stop the round")
	require.NoError(t, r.Stop())
}

func TestReaper_Reap(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	c := NewMockcompactor(ctrl)

	done := make(chan struct{})
	c.EXPECT().Compact("t1").DoAndReturn(func(string) (int, error) {
		close(done)
		return 1, nil
	})

	r, err := New(&Config{Compactor: c, Interval: time.Hour})
	req.NoError(err)
	req.Equal("Reaper", r.Name())
	req.NoError(r.Start())

	req.NoError(r.Reap("t1"))
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("queued compaction never ran")
	}

	req.NoError(r.Stop())
	req.NoError(r.Stop())
	req.ErrorIs(r.Reap("t1"), ErrStopped)
}

func TestReaper_QueueFull(t *testing.T) {
	ctrl := gomock.NewController(t)
	r, err := New(&Config{Compactor: NewMockcompactor(ctrl)})
	require.NoError(t, err)

	// not started, so nothing drains the queue
	for i := 0; i < queueSize; i++ {
		require.NoError(t, r.Reap("t1"))
	}
	require.ErrorIs(t, r.Reap("t1"), ErrQueueFull)
}
