package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"djp.chapter42.de/beeper/internal/subscribers"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPendingEventsStreamsUpdates(t *testing.T) {
	reg := subscribers.NewRegistry()
	router := gin.New()
	router.GET("/api/pending-events", NewEventsHandler(reg))

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/pending-events", nil).WithContext(ctx)
	resp := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		router.ServeHTTP(resp, req)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return reg.Count() == 1
	}, time.Second, 10*time.Millisecond)

	reg.Broadcast("update")
	time.Sleep(50 * time.Millisecond)

	cancel()
	<-done

	body := resp.Body.String()
	assert.Equal(t, "text/event-stream", resp.Header().Get("Content-Type"))
	assert.Contains(t, body, ":\n\n")
	assert.Contains(t, body, "data: update\n\n")
	assert.Equal(t, 0, reg.Count())
}

func TestPendingEventsEndsWhenRegistryCloses(t *testing.T) {
	reg := subscribers.NewRegistry()
	router := gin.New()
	router.GET("/api/pending-events", NewEventsHandler(reg))

	req := httptest.NewRequest(http.MethodGet, "/api/pending-events", nil)
	resp := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		router.ServeHTTP(resp, req)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return reg.Count() == 1
	}, time.Second, 10*time.Millisecond)

	reg.CloseAll()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Handler hat den geschlossenen Stream nicht beendet")
	}
}
