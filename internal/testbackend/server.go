// Package testbackend is an in-process stand-in for the bot backend: the
// REST API under /api and the live feed at /ws. Package tests point the
// gateway and feed adapter at it.
package testbackend

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"

	"github.com/matheus3301/botadmin/internal/configtree"
	"github.com/matheus3301/botadmin/internal/messages"
)

// Username and Password are the only accepted login.
const (
	Username = "admin"
	Password = "admin"
)

// Session is the wire shape of GET /api/sessions entries.
type Session struct {
	ID           int64     `json:"id"`
	Platform     string    `json:"platform"`
	PlatformID   string    `json:"platform_id"`
	PlatformName string    `json:"platform_name"`
	LastActive   time.Time `json:"last_active"`
}

// Server is a running fake backend.
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	issued    int
	valid     map[string]bool
	history   []messages.ChatMessage
	config    *configtree.Node
	sessions  []Session
	failures  map[string]int
	holds     map[string]*hold
	feedCode  int
	auths     []string
	feedAuths []string
	conns     map[*websocket.Conn]struct{}

	// Normalize, when set, rewrites every pushed config before it is stored.
	Normalize func(*configtree.Node) *configtree.Node

	upgrader websocket.Upgrader
}

// New starts a backend that is shut down when t finishes.
func New(t testing.TB) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := &Server{
		valid:    make(map[string]bool),
		config:   configtree.NewObject(),
		failures: make(map[string]int),
		holds:    make(map[string]*hold),
		conns:    make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}

	r := gin.New()
	r.Use(s.record, s.inject)
	r.GET("/ws", s.handleFeed)

	api := r.Group("/api")
	api.POST("/login", s.handleLogin)

	authed := api.Group("", s.requireToken)
	authed.GET("/messages", s.handleMessages)
	authed.GET("/config", s.handleGetConfig)
	authed.POST("/config", s.handlePushConfig)
	authed.GET("/sessions", s.handleSessions)

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

// APIURL is the REST base URL.
func (s *Server) APIURL() string { return s.URL + "/api" }

// FeedURL is the websocket URL.
func (s *Server) FeedURL() string {
	return "ws" + strings.TrimPrefix(s.URL, "http") + "/ws"
}

// Close drops feed connections and stops the server.
func (s *Server) Close() {
	s.DropFeed()
	s.Server.Close()
}

// IssueToken mints a valid token without a login round trip.
func (s *Server) IssueToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issueLocked()
}

// Secret signs issued tokens.
var Secret = []byte("testbackend-secret")

// issueLocked signs a token shaped like the real backend's: user_id and
// role claims with a 24 hour expiry.
func (s *Server) issueLocked() string {
	s.issued++
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": 1,
		"role":    "admin",
		"jti":     fmt.Sprintf("t%d", s.issued),
		"iat":     now.Unix(),
		"exp":     now.Add(24 * time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(Secret)
	if err != nil {
		panic(err)
	}
	s.valid[token] = true
	return token
}

// RevokeAll invalidates every issued token.
func (s *Server) RevokeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.valid)
}

// SetHistory sets what GET /messages returns, newest first.
func (s *Server) SetHistory(msgs []messages.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = msgs
}

// SetConfig sets the stored configuration document.
func (s *Server) SetConfig(doc *configtree.Node) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config = doc.Clone()
}

// Config returns a copy of the stored configuration.
func (s *Server) Config() *configtree.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config.Clone()
}

// SetSessions sets what GET /sessions returns.
func (s *Server) SetSessions(sessions []Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = sessions
}

// Fail makes "METHOD /api/path" answer code until cleared with code 0.
func (s *Server) Fail(route string, code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if code == 0 {
		delete(s.failures, route)
		return
	}
	s.failures[route] = code
}

type hold struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

// HoldNext parks the next request to "METHOD /api/path" until release is
// called. entered is closed once that request arrives; later requests pass
// straight through. The server's cleanup releases a hold left open.
func (s *Server) HoldNext(t testing.TB, route string) (entered <-chan struct{}, release func()) {
	h := &hold{entered: make(chan struct{}), release: make(chan struct{})}
	release = func() { h.once.Do(func() { close(h.release) }) }
	t.Cleanup(release)
	s.mu.Lock()
	s.holds[route] = h
	s.mu.Unlock()
	return h.entered, release
}

// RejectFeed makes the websocket handshake answer code. Zero accepts again.
func (s *Server) RejectFeed(code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feedCode = code
}

// Authorizations returns the Authorization header of every REST request in
// arrival order; requests without one record "".
func (s *Server) Authorizations() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.auths...)
}

// FeedAuthorizations returns the Authorization header of each handshake.
func (s *Server) FeedAuthorizations() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.feedAuths...)
}

func (s *Server) record(c *gin.Context) {
	s.mu.Lock()
	if c.Request.URL.Path == "/ws" {
		s.feedAuths = append(s.feedAuths, c.GetHeader("Authorization"))
	} else {
		s.auths = append(s.auths, c.GetHeader("Authorization"))
	}
	s.mu.Unlock()
	c.Next()
}

func (s *Server) inject(c *gin.Context) {
	route := c.Request.Method + " " + c.Request.URL.Path
	s.mu.Lock()
	code := s.failures[route]
	h := s.holds[route]
	delete(s.holds, route)
	s.mu.Unlock()
	if h != nil {
		close(h.entered)
		<-h.release
	}
	if code != 0 {
		c.AbortWithStatusJSON(code, gin.H{"error": http.StatusText(code)})
		return
	}
	c.Next()
}

func (s *Server) requireToken(c *gin.Context) {
	token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
	s.mu.Lock()
	valid := ok && s.valid[token]
	s.mu.Unlock()
	if !valid {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.Next()
}

func (s *Server) handleLogin(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Username != Username || req.Password != Password {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	s.mu.Lock()
	token := s.issueLocked()
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (s *Server) handleMessages(c *gin.Context) {
	s.mu.Lock()
	history := s.history
	s.mu.Unlock()
	if history == nil {
		history = []messages.ChatMessage{}
	}
	c.JSON(http.StatusOK, history)
}

func (s *Server) handleGetConfig(c *gin.Context) {
	s.mu.Lock()
	data, err := s.config.MarshalJSON()
	s.mu.Unlock()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "application/json", data)
}

func (s *Server) handlePushConfig(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	doc, err := configtree.ParseJSON(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if s.Normalize != nil {
		doc = s.Normalize(doc)
	}
	s.mu.Lock()
	s.config = doc
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleSessions(c *gin.Context) {
	s.mu.Lock()
	sessions := s.sessions
	s.mu.Unlock()
	if sessions == nil {
		sessions = []Session{}
	}
	c.JSON(http.StatusOK, sessions)
}
