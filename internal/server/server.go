// Package server exposes the document-QA pipeline over HTTP. Sessions
// are cookie-scoped; every handler operates on the caller's own
// isolated session.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pdf-rag/internal/config"
	"pdf-rag/internal/session"
)

const sessionCookie = "qa_session"

type Server struct {
	cfg      *config.Config
	sessions *session.Manager
	engine   *gin.Engine
}

func New(cfg *config.Config, sessions *session.Manager) *Server {
	s := &Server{cfg: cfg, sessions: sessions}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(s.withSession())

	api := engine.Group("/api")
	{
		api.POST("/documents", s.handleUpload)
		api.POST("/questions", s.handleAsk)
		api.GET("/session", s.handleSessionInfo)
		api.POST("/session/reset", s.handleReset)
		api.GET("/history", s.handleHistory)
		api.DELETE("/history", s.handleClearHistory)
	}

	s.engine = engine
	return s
}

func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

// Handler exposes the router, used by tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// withSession resolves the caller's session from the cookie, minting a
// new id (and setting the cookie) on first contact.
func (s *Server) withSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(sessionCookie)
		if err != nil || id == "" {
			id = s.sessions.NewID()
			c.SetCookie(sessionCookie, id, 0, "/", "", false, true)
		}
		c.Set("session", s.sessions.Get(id))
		c.Next()
	}
}

func currentSession(c *gin.Context) *session.Session {
	return c.MustGet("session").(*session.Session)
}
