package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/postpilot/autopost/internal/resilience"
	"github.com/postpilot/autopost/internal/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type graphStub struct {
	mu              sync.Mutex
	createCalls     int
	statusCalls     int
	publishCalls    int
	permalinkCalls  int
	createHandler   func(w http.ResponseWriter)
	statusHandler   func(w http.ResponseWriter)
	publishHandler  func(w http.ResponseWriter)
	permalinkReturn string
}

func (g *graphStub) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		g.mu.Lock()
		defer g.mu.Unlock()

		switch {
		case r.Method == "POST" && strings.HasSuffix(r.URL.Path, "/media"):
			g.createCalls++
			g.createHandler(w)
		case r.Method == "POST" && strings.HasSuffix(r.URL.Path, "/media_publish"):
			g.publishCalls++
			g.publishHandler(w)
		case r.Method == "GET" && r.URL.Query().Get("fields") == "status_code":
			g.statusCalls++
			g.statusHandler(w)
		case r.Method == "GET" && r.URL.Query().Get("fields") == "permalink":
			g.permalinkCalls++
			fmt.Fprintf(w, `{"permalink": %q}`, g.permalinkReturn)
		default:
			http.Error(w, "unexpected request", http.StatusNotFound)
		}
	})
}

func respondJSON(body string) func(w http.ResponseWriter) {
	return func(w http.ResponseWriter) {
		fmt.Fprint(w, body)
	}
}

func respondGraphError(status int, ge transfer.GraphError) func(w http.ResponseWriter) {
	return func(w http.ResponseWriter) {
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]interface{}{"error": ge})
	}
}

func newTestPublisher(t *testing.T, stub *graphStub, retries uint64, pollAttempts int) (*InstagramPublisher, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(stub.handler())
	t.Cleanup(server.Close)

	opts := resilience.Options{
		MaxRetries:      retries,
		InitialInterval: time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
		Timeout:         5 * time.Second,
		FailureRatio:    0.5,
		MinRequests:     1000,
		IsTransient:     IsTransientGraphError,
	}

	p := NewInstagramPublisher(server.URL,
		WithHTTPClient(server.Client()),
		WithPolicy(resilience.NewPolicy("instagram-test", opts)),
		WithPolling(time.Millisecond, pollAttempts),
	)
	return p, server
}

func testRequest() Request {
	return Request{
		BusinessAccountID: "17840001",
		AccessToken:       "token",
		MediaURL:          "https://cdn.example.com/reel.mp4",
		Description:       "caption",
		ShareToFeed:       true,
	}
}

func TestPublishHappyPath(t *testing.T) {
	stub := &graphStub{
		createHandler:   respondJSON(`{"id": "container-1"}`),
		publishHandler:  respondJSON(`{"id": "media-9"}`),
		permalinkReturn: "https://www.instagram.com/reel/abc/",
	}
	polls := 0
	stub.statusHandler = func(w http.ResponseWriter) {
		polls++
		if polls < 3 {
			fmt.Fprint(w, `{"status_code": "IN_PROGRESS"}`)
			return
		}
		fmt.Fprint(w, `{"status_code": "FINISHED"}`)
	}

	p, _ := newTestPublisher(t, stub, 0, 10)

	result, err := p.Publish(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, "media-9", result.ExternalPostID)
	assert.Equal(t, "https://www.instagram.com/reel/abc/", result.PublicURL)
	assert.Equal(t, 1, stub.createCalls)
	assert.Equal(t, 3, stub.statusCalls)
	assert.Equal(t, 1, stub.publishCalls)
	assert.Equal(t, 1, stub.permalinkCalls)
}

func TestPublishRetriesTransientCreateUpToCap(t *testing.T) {
	stub := &graphStub{
		createHandler: respondGraphError(http.StatusBadRequest, transfer.GraphError{
			Message:      "Timeout downloading media",
			Code:         9004,
			ErrorSubcode: 2207003,
		}),
	}

	p, _ := newTestPublisher(t, stub, 2, 10)

	_, err := p.Publish(context.Background(), testRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Timeout downloading media")
	assert.Equal(t, 3, stub.createCalls) // first try + 2 retries
	assert.Equal(t, 0, stub.publishCalls)
}

func TestPublishDoesNotRetryPermanentError(t *testing.T) {
	stub := &graphStub{
		createHandler: respondGraphError(http.StatusBadRequest, transfer.GraphError{
			Message: "Invalid parameter",
			Code:    100,
		}),
	}

	p, _ := newTestPublisher(t, stub, 5, 10)

	_, err := p.Publish(context.Background(), testRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid parameter")
	assert.Equal(t, 1, stub.createCalls)
}

func TestPublishShortCircuitsWithoutContainerID(t *testing.T) {
	stub := &graphStub{
		createHandler: respondJSON(`{}`),
	}

	p, _ := newTestPublisher(t, stub, 2, 10)

	_, err := p.Publish(context.Background(), testRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no container id")
	assert.Equal(t, 0, stub.statusCalls)
	assert.Equal(t, 0, stub.publishCalls)
	assert.Equal(t, 0, stub.permalinkCalls)
}

func TestPublishPollBudgetExhausted(t *testing.T) {
	stub := &graphStub{
		createHandler: respondJSON(`{"id": "container-1"}`),
		statusHandler: respondJSON(`{"status_code": "IN_PROGRESS"}`),
	}

	p, _ := newTestPublisher(t, stub, 0, 3)

	_, err := p.Publish(context.Background(), testRequest())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrContainerTimeout)
	assert.Contains(t, err.Error(), "timed out")
	assert.Equal(t, 3, stub.statusCalls)
	assert.Equal(t, 0, stub.publishCalls)
}

func TestPublishWholeProtocolBoundedByTimeout(t *testing.T) {
	stub := &graphStub{
		createHandler:  respondJSON(`{"id": "container-1"}`),
		statusHandler:  respondJSON(`{"status_code": "IN_PROGRESS"}`),
		publishHandler: respondJSON(`{"id": "media-9"}`),
	}
	server := httptest.NewServer(stub.handler())
	t.Cleanup(server.Close)

	opts := resilience.Options{
		MaxRetries:      0,
		InitialInterval: time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
		Timeout:         50 * time.Millisecond,
		FailureRatio:    0.5,
		MinRequests:     1000,
		IsTransient:     IsTransientGraphError,
	}

	// Poll sleeps alone would take far longer than the timeout.
	p := NewInstagramPublisher(server.URL,
		WithHTTPClient(server.Client()),
		WithPolicy(resilience.NewPolicy("instagram-test", opts)),
		WithPolling(40*time.Millisecond, 9),
	)

	start := time.Now()
	_, err := p.Publish(context.Background(), testRequest())
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, elapsed, 250*time.Millisecond)
	assert.Equal(t, 0, stub.publishCalls)
}

func TestPublishContainerErrorState(t *testing.T) {
	stub := &graphStub{
		createHandler: respondJSON(`{"id": "container-1"}`),
		statusHandler: respondJSON(`{"status_code": "ERROR"}`),
	}

	p, _ := newTestPublisher(t, stub, 0, 10)

	_, err := p.Publish(context.Background(), testRequest())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrContainerTimeout)
	assert.Contains(t, err.Error(), "ERROR")
	assert.Equal(t, 1, stub.statusCalls)
}

func TestIsTransientGraphError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"flagged transient", &transfer.GraphError{IsTransient: true}, true},
		{"server error code", &transfer.GraphError{Code: 2}, true},
		{"media not ready subcode", &transfer.GraphError{ErrorSubcode: 9007}, true},
		{"expired builder subcode", &transfer.GraphError{ErrorSubcode: 2207001}, true},
		{"permanent provider error", &transfer.GraphError{Code: 100}, false},
		{"http 500", &httpStatusError{status: 503}, true},
		{"http 400", &httpStatusError{status: 400}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransientGraphError(tt.err))
		})
	}
}
