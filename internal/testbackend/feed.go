package testbackend

import (
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Frame is the backend's broadcast event encoding.
type Frame struct {
	Platform   string
	PlatformID string
	UserID     string
	Username   string
	Content    string
	MsgType    string
	IsGroup    bool
}

func (s *Server) handleFeed(c *gin.Context) {
	s.mu.Lock()
	code := s.feedCode
	s.mu.Unlock()
	if code != 0 {
		c.AbortWithStatus(code)
		return
	}

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	s.mu.Lock()
	s.conns[conn] = struct{}{}
	s.mu.Unlock()

	// The feed is receive-only for clients; reading only detects the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
	_ = conn.Close()
}

// Broadcast sends f as JSON to every connected feed client.
func (s *Server) Broadcast(f Frame) {
	data, _ := json.Marshal(f)
	s.BroadcastRaw(string(data))
}

// BroadcastRaw sends text verbatim, e.g. a malformed frame.
func (s *Server) BroadcastRaw(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.conns {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(text))
	}
}

// FeedClients returns the number of open feed connections.
func (s *Server) FeedClients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

// WaitForFeedClients polls until exactly n feed clients are connected.
func (s *Server) WaitForFeedClients(n int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if s.FeedClients() == n {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return s.FeedClients() == n
}

// DropFeed closes every feed connection from the server side.
func (s *Server) DropFeed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.conns {
		_ = conn.Close()
	}
}
