package server

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"pdf-rag/internal/models"
	"pdf-rag/internal/pipeline"
	"pdf-rag/internal/session"
)

type askRequest struct {
	Question    string   `json:"question"`
	Model       string   `json:"model"`
	Temperature *float64 `json:"temperature"`
}

type askResponse struct {
	models.Result
	Model string `json:"model,omitempty"`
}

// handleUpload accepts a multipart PDF and runs the ingestion path.
// The PDF-only rule is enforced here, at the presentation boundary.
func (s *Server) handleUpload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file"})
		return
	}

	if !strings.EqualFold(filepath.Ext(header.Filename), ".pdf") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "only PDF files are accepted"})
		return
	}

	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not open upload"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read upload"})
		return
	}
	log.Debug().Str("file", header.Filename).Int("bytes", len(data)).Msg("file uploaded")

	opts := pipeline.IngestOptions{
		ChunkSize:    s.formInt(c, "chunk_size", s.cfg.RAG.ChunkSize),
		ChunkOverlap: s.formInt(c, "chunk_overlap", s.cfg.RAG.ChunkOverlap),
	}

	stats, cached, err := currentSession(c).Upload(c.Request.Context(), data, header.Filename, opts)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, pipeline.ErrInvalidChunking):
			status = http.StatusBadRequest
		case errors.Is(err, pipeline.ErrEmptyDocument), errors.Is(err, pipeline.ErrEmptyChunkSet):
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"file": header.Filename, "cached": cached, "stats": stats})
}

// handleAsk runs the query path. Per-question failures are data, not
// transport errors: they come back as 200 with an error string.
func (s *Server) handleAsk(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if strings.TrimSpace(req.Question) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": session.ErrEmptyQuestion.Error()})
		return
	}

	model := req.Model
	if model == "" {
		model = s.cfg.Chat.DefaultModel
	}
	if !s.cfg.Chat.KnownModel(model) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown model: " + model})
		return
	}

	temperature := s.cfg.Chat.Temperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}
	if temperature < 0 || temperature > 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "temperature must be within [0, 1]"})
		return
	}

	result, err := currentSession(c).Ask(c.Request.Context(), req.Question, pipeline.QueryOptions{
		Model:       model,
		Temperature: temperature,
	})
	if err != nil {
		if errors.Is(err, session.ErrNoIndex) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, askResponse{Result: result, Model: model})
}

func (s *Server) handleSessionInfo(c *gin.Context) {
	c.JSON(http.StatusOK, currentSession(c).Snapshot())
}

func (s *Server) handleReset(c *gin.Context) {
	currentSession(c).Reset()
	c.JSON(http.StatusOK, gin.H{"status": "reset"})
}

// handleHistory returns QA entries newest-first.
func (s *Server) handleHistory(c *gin.Context) {
	history := currentSession(c).History()
	reversed := make([]models.QAEntry, len(history))
	for i, entry := range history {
		reversed[len(history)-1-i] = entry
	}
	c.JSON(http.StatusOK, gin.H{"history": reversed})
}

func (s *Server) handleClearHistory(c *gin.Context) {
	currentSession(c).ClearHistory()
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}

func (s *Server) formInt(c *gin.Context, field string, fallback int) int {
	raw := c.PostForm(field)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
