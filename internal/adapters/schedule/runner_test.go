package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(context.Context, string, ...map[string]interface{})        {}
func (nopLogger) Info(context.Context, string, ...map[string]interface{})         {}
func (nopLogger) Warn(context.Context, string, ...map[string]interface{})         {}
func (nopLogger) Error(context.Context, error, string, ...map[string]interface{}) {}

func TestAddRejectsInvalidSpec(t *testing.T) {
	r := New(nopLogger{}, context.Background(), time.UTC)
	_, err := r.Add("not a cron spec", func(context.Context) {})
	assert.Error(t, err)

	_, err = r.Add("0 9 * * 1", func(context.Context) {})
	assert.NoError(t, err)
}

func TestJobRunsWithBaseContext(t *testing.T) {
	type ctxKey struct{}
	base := context.WithValue(context.Background(), ctxKey{}, "marker")
	r := New(nopLogger{}, base, time.UTC)

	fired := make(chan context.Context, 1)
	_, err := r.Add("@every 10ms", func(ctx context.Context) {
		select {
		case fired <- ctx:
		default:
		}
	})
	require.NoError(t, err)

	r.Start()
	defer r.Stop()

	select {
	case ctx := <-fired:
		assert.Equal(t, "marker", ctx.Value(ctxKey{}))
	case <-time.After(2 * time.Second):
		t.Fatal("scheduled job did not fire")
	}
}

func TestStopWaitsForJobs(t *testing.T) {
	r := New(nopLogger{}, context.Background(), time.UTC)

	started := make(chan struct{})
	done := make(chan struct{})
	_, err := r.Add("@every 10ms", func(context.Context) {
		select {
		case started <- struct{}{}:
		default:
			return // only the first run blocks
		}
		time.Sleep(50 * time.Millisecond)
		close(done)
	})
	require.NoError(t, err)

	r.Start()
	<-started
	r.Stop()

	select {
	case <-done:
	default:
		t.Fatal("Stop returned before the running job finished")
	}
}

func TestNewDefaults(t *testing.T) {
	r := New(nopLogger{}, nil, nil)
	require.NotNil(t, r)
	assert.NotNil(t, r.baseCtx)
}
