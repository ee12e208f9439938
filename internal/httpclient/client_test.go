package httpclient_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leourb/sdmx-query-tool/internal/httpclient"
)

func TestDefaultClientGet(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, httpclient.UserAgent, r.Header.Get("User-Agent"))
		assert.Equal(t, "application/vnd.sdmx.genericdata+xml", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("<root/>"))
	}))
	defer server.Close()

	client := httpclient.NewDefaultClient()
	resp, err := client.Get(context.Background(), server.URL, map[string]string{
		"Accept": "application/vnd.sdmx.genericdata+xml",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/xml", resp.ContentType)
	assert.Equal(t, []byte("<root/>"), resp.Body)
}

func TestDefaultClientGetNonSuccessStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := httpclient.NewDefaultClient()
	_, err := client.Get(context.Background(), server.URL, nil)

	var retrievalErr *httpclient.RetrievalError
	require.True(t, errors.As(err, &retrievalErr))
	assert.Equal(t, http.StatusNotFound, retrievalErr.StatusCode)
	assert.Equal(t, server.URL, retrievalErr.URL)
}

func TestDefaultClientGetTransportError(t *testing.T) {
	t.Parallel()

	client := httpclient.NewDefaultClient()
	_, err := client.Get(context.Background(), "http://127.0.0.1:1", nil)

	var retrievalErr *httpclient.RetrievalError
	require.True(t, errors.As(err, &retrievalErr))
	assert.Zero(t, retrievalErr.StatusCode)
	assert.Error(t, retrievalErr.Unwrap())
}

func TestDefaultClientRetriesServerErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	client := httpclient.NewDefaultClient(httpclient.WithRetries(3))
	resp, err := client.Get(context.Background(), server.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte("ok"), resp.Body)
	assert.Equal(t, int32(3), calls.Load())
}

func TestDefaultClientDoesNotRetryClientErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := httpclient.NewDefaultClient(httpclient.WithRetries(3))
	_, err := client.Get(context.Background(), server.URL, nil)
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}
