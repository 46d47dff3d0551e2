package webclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoWithRetryRetriesServerErrors(t *testing.T) {
	var calls int
	status, body, err := DoWithRetry(context.Background(), 3, time.Millisecond, func() (int, []byte, error) {
		calls++
		if calls < 3 {
			return 503, nil, errors.New("unavailable")
		}
		return 200, []byte("ok"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, 200, status)
	assert.Equal(t, "ok", string(body))
	assert.Equal(t, 3, calls)
}

func TestDoWithRetryStopsOnClientError(t *testing.T) {
	var calls int
	status, _, err := DoWithRetry(context.Background(), 5, time.Millisecond, func() (int, []byte, error) {
		calls++
		return 404, nil, errors.New("missing")
	})
	require.Error(t, err)
	assert.Equal(t, 404, status)
	assert.Equal(t, 1, calls)
}

func TestDoWithRetryHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := DoWithRetry(ctx, 3, time.Hour, func() (int, []byte, error) {
		return 500, nil, errors.New("boom")
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGetJSON(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"name":"Bengal"}]`))
	}))
	defer srv.Close()

	var out []struct {
		Name string `json:"name"`
	}
	err := GetJSON(context.Background(), NewDefault(time.Second), srv.URL, 2, time.Millisecond, &out)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Bengal", out[0].Name)
	assert.EqualValues(t, 2, hits.Load())
}

func TestGetJSONStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	var out any
	err := GetJSON(context.Background(), NewDefault(time.Second), srv.URL, 3, time.Millisecond, &out)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusForbidden, se.Status)
}
