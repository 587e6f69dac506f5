package flux_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bouquet-studio-backend/internal/flux"
)

func noSleep(ctx context.Context, d time.Duration) error { return ctx.Err() }

func instantPoller(attempts int) flux.Poller {
	return flux.Poller{MaxAttempts: attempts, Interval: time.Second, Sleep: noSleep}
}

// fakeBFL serves the submit endpoint and answers polls with statuses in
// order, repeating the last one.
func fakeBFL(t *testing.T, statuses []string, sample string) (*httptest.Server, *int32) {
	t.Helper()
	var polls int32
	mux := http.NewServeMux()
	var server *httptest.Server
	mux.HandleFunc("/flux-kontext-pro", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "test-key", r.Header.Get("x-key"))
		var req flux.SubmitRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.NotEmpty(t, req.Prompt)
		assert.NotEmpty(t, req.InputImage)
		json.NewEncoder(w).Encode(flux.SubmitResponse{ID: "job-1", PollingURL: server.URL + "/poll?id=job-1"})
	})
	mux.HandleFunc("/poll", func(w http.ResponseWriter, r *http.Request) {
		n := int(atomic.AddInt32(&polls, 1))
		status := statuses[min(n, len(statuses))-1]
		body := map[string]any{"id": "job-1", "status": status}
		if status == flux.StatusReady && sample != "" {
			body["result"] = map[string]string{"sample": sample}
		}
		json.NewEncoder(w).Encode(body)
	})
	server = httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, &polls
}

func newClient(baseURL string) *flux.Client {
	c := flux.NewClient(baseURL, "test-key", "")
	c.SetPoller(instantPoller(20))
	c.SetBackoff(0, 0, 0)
	return c
}

func TestClient_GeneratePollsUntilReady(t *testing.T) {
	server, polls := fakeBFL(t, []string{"Pending", "Pending", "Ready"}, "https://delivery.example/sample.png")

	ref, err := newClient(server.URL).Generate(context.Background(), []byte("png"), "a prompt")
	require.NoError(t, err)

	assert.Equal(t, "https://delivery.example/sample.png", ref)
	assert.Equal(t, int32(3), atomic.LoadInt32(polls))
}

func TestClient_FailedStatusAbortsImmediately(t *testing.T) {
	server, polls := fakeBFL(t, []string{"Pending", "Pending", "Failed"}, "")

	_, err := newClient(server.URL).Generate(context.Background(), []byte("png"), "a prompt")

	assert.ErrorIs(t, err, flux.ErrGenerationFailed)
	assert.Equal(t, int32(3), atomic.LoadInt32(polls), "no polling after a failed status")
}

func TestClient_ModeratedIsFailure(t *testing.T) {
	server, _ := fakeBFL(t, []string{flux.StatusContentModerated}, "")

	_, err := newClient(server.URL).Generate(context.Background(), []byte("png"), "a prompt")
	assert.ErrorIs(t, err, flux.ErrGenerationFailed)
}

func TestClient_ReadyWithoutSample(t *testing.T) {
	server, _ := fakeBFL(t, []string{"Ready"}, "")

	_, err := newClient(server.URL).Generate(context.Background(), []byte("png"), "a prompt")
	assert.ErrorIs(t, err, flux.ErrMissingResult)
}

func TestClient_PollingExhausted(t *testing.T) {
	server, polls := fakeBFL(t, []string{"Pending"}, "")
	c := newClient(server.URL)
	c.SetPoller(instantPoller(5))

	_, err := c.Generate(context.Background(), []byte("png"), "a prompt")

	assert.ErrorIs(t, err, flux.ErrPollingExhausted)
	assert.Equal(t, int32(5), atomic.LoadInt32(polls))
}

func TestClient_SubmitFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		fmt.Fprint(w, `{"detail":"insufficient credits"}`)
	}))
	defer server.Close()

	_, err := newClient(server.URL).Generate(context.Background(), []byte("png"), "a prompt")

	assert.ErrorIs(t, err, flux.ErrSubmitFailed)
	assert.Contains(t, err.Error(), "status 402")
}

func TestClient_ImmediateImage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(flux.SubmitResponse{Image: "data:image/png;base64,aGVsbG8="})
	}))
	defer server.Close()

	c := newClient(server.URL)
	ref, err := c.Generate(context.Background(), []byte("png"), "a prompt")
	require.NoError(t, err)

	data, err := c.Download(context.Background(), ref)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestClient_DownloadRetries(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte("image-bytes"))
	}))
	defer server.Close()

	data, err := newClient(server.URL).Download(context.Background(), server.URL+"/sample.png")
	require.NoError(t, err)
	assert.Equal(t, "image-bytes", string(data))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClient_RetryWithBackoff_Exhausted(t *testing.T) {
	c := newClient("https://api.test.com/v1/")

	err := c.RetryWithBackoff(context.Background(), func() error {
		return assert.AnError
	}, 3)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed after 3 retries")
}

func TestClient_RetryWithBackoff_StopsOnCancel(t *testing.T) {
	c := newClient("https://api.test.com/v1/")
	c.SetBackoff(time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	var calls int
	start := time.Now()
	err := c.RetryWithBackoff(ctx, func() error {
		calls++
		cancel()
		return assert.AnError
	}, 3)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
	assert.Less(t, time.Since(start), time.Second)
}
