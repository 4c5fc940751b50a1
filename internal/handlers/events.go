package handlers

import (
	"fmt"

	"djp.chapter42.de/beeper/internal/subscribers"
	"github.com/gin-gonic/gin"
)

// NewEventsHandler hält eine SSE-Verbindung offen und reicht jedes
// "Liste hat sich geändert"-Signal als schlichtes update-Event durch.
func NewEventsHandler(reg *subscribers.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "text/event-stream")
		c.Writer.Header().Set("Cache-Control", "no-cache")
		c.Writer.Header().Set("Connection", "keep-alive")

		sub := reg.Subscribe()
		defer reg.Unsubscribe(sub)

		// Kommentarzeile als Lebenszeichen, damit der Client die
		// Verbindung als offen erkennt.
		fmt.Fprint(c.Writer, ":\n\n")
		c.Writer.Flush()

		for {
			select {
			case event, ok := <-sub.Events():
				if !ok {
					return
				}
				fmt.Fprintf(c.Writer, "data: %s\n\n", event)
				c.Writer.Flush()
			case <-c.Request.Context().Done():
				return
			}
		}
	}
}
