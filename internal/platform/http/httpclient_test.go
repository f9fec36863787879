package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHTTPClient_Timeout(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 5*time.Second, NewHTTPClient(5*time.Second).Timeout)
	assert.Equal(t, 30*time.Second, NewHTTPClient(0).Timeout)

	tr, ok := NewHTTPClient(time.Second).Transport.(*http.Transport)
	require.True(t, ok)
	assert.Equal(t, 10, tr.MaxIdleConnsPerHost)
}

func TestNewHTTPClient_RequestTimesOut(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	_, err := NewHTTPClient(50 * time.Millisecond).Get(srv.URL)
	assert.Error(t, err)
}
