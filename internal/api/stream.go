package api

import (
	"context"
	"net/http"
	"time"

	"github.com/carnagec43-dot/Rich-player-list-group-roblox/pkg/search"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

// StreamEvent is one websocket message of a streamed search.
type StreamEvent struct {
	Type     string           `json:"type"` // progress, result or error
	Progress *search.Progress `json:"progress,omitempty"`
	Result   *SearchResponse  `json:"result,omitempty"`
	Error    string           `json:"error,omitempty"`
	Status   int              `json:"status,omitempty"`
}

// stream upgrades to a websocket, sends progress events while the search
// runs and finishes with a result or error event. Closing the socket
// cancels the search.
func (s *Server) stream(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Websocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	// The client sends nothing; a read error means it went away.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()
				return
			}
		}
	}()

	send := func(event StreamEvent) {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(event); err != nil {
			s.logger.Debug().Err(err).Msg("Websocket write failed")
			cancel()
		}
	}

	result, snapshotID, err := s.execute(ctx, req, func(p search.Progress) {
		send(StreamEvent{Type: "progress", Progress: &p})
	})
	if err != nil {
		send(StreamEvent{Type: "error", Error: search.UserMessage(err), Status: statusFor(err)})
	} else {
		send(StreamEvent{Type: "result", Result: &SearchResponse{Result: result, SnapshotID: snapshotID}})
	}

	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
}
