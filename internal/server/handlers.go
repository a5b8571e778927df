package server

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Sarvveshp/Face-Recognition-Rag/internal/core"
	"github.com/Sarvveshp/Face-Recognition-Rag/internal/core/model"
	"github.com/Sarvveshp/Face-Recognition-Rag/internal/face"
)

const defaultEventsLimit = 100

func (s *Server) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Face Recognition API is running"})
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

type RegisterFaceRequest struct {
	Name     string         `json:"name" binding:"required"`
	Image    string         `json:"image" binding:"required"`
	Metadata model.Metadata `json:"metadata"`
}

func (s *Server) RegisterFace(c *gin.Context) {
	var req RegisterFaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name must not be empty"})
		return
	}

	ctx := c.Request.Context()
	img, err := face.DecodeImage(req.Image)
	if err != nil {
		abort(c, "Failed to decode image", err)
		return
	}
	detections, err := s.Encoder.Encode(ctx, img)
	if err == nil && len(detections) == 0 {
		err = model.ErrNoFace
	}
	if err != nil {
		abort(c, "Failed to encode face", err)
		return
	}

	meta := req.Metadata.Clone()
	meta.Set("registration_time", model.Time(time.Now().UTC()))

	id, err := s.Store.InsertRecord(ctx, name, detections[0].Encoding, meta)
	if err != nil {
		abort(c, "Failed to register face", err)
		return
	}

	resp := gin.H{
		"id":      id,
		"name":    name,
		"message": fmt.Sprintf("Face registered successfully for %s", name),
	}
	s.refreshAfterMutation(c, resp)
	c.JSON(http.StatusOK, resp)
}

type RecognizeFacesRequest struct {
	Image string `json:"image" binding:"required"`
}

func (s *Server) RecognizeFaces(c *gin.Context) {
	var req RecognizeFacesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	ctx := c.Request.Context()
	img, err := face.DecodeImage(req.Image)
	if err != nil {
		abort(c, "Failed to decode image", err)
		return
	}

	faces := []face.Recognition{}
	detections, err := s.Encoder.Encode(ctx, img)
	switch {
	case errors.Is(err, model.ErrNoFace):
	case err != nil:
		abort(c, "Failed to encode faces", err)
		return
	default:
		known, err := s.Store.ListRecords(ctx)
		if err != nil {
			abort(c, "Failed to load known faces", err)
			return
		}
		faces = s.Matcher.Match(detections, known)
	}

	c.JSON(http.StatusOK, gin.H{
		"faces":   faces,
		"message": fmt.Sprintf("Recognized %d faces", len(faces)),
	})
}

func (s *Server) DeleteFace(c *gin.Context) {
	id := c.Param("id")

	ok, err := s.Store.DeleteRecord(c.Request.Context(), id)
	if err != nil {
		abort(c, "Failed to delete face", err)
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Face with ID %s not found or could not be deleted", id)})
		return
	}

	resp := gin.H{
		"success": true,
		"message": fmt.Sprintf("Face with ID %s deleted successfully", id),
	}
	s.refreshAfterMutation(c, resp)
	c.JSON(http.StatusOK, resp)
}

func (s *Server) ListFaces(c *gin.Context) {
	records, err := s.Store.ListRecords(c.Request.Context())
	if err != nil {
		abort(c, "Failed to list faces", err)
		return
	}
	for i := range records {
		records[i].Encoding = nil
	}
	if records == nil {
		records = []model.Record{}
	}
	c.JSON(http.StatusOK, gin.H{"faces": records, "count": len(records)})
}

func (s *Server) ListEvents(c *gin.Context) {
	limit := defaultEventsLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	events, err := s.Store.ListEvents(c.Request.Context(), limit)
	if err != nil {
		abort(c, "Failed to list events", err)
		return
	}
	if events == nil {
		events = []model.Event{}
	}
	c.JSON(http.StatusOK, gin.H{"events": events, "count": len(events)})
}

type QuestionRequest struct {
	Question string `json:"question" binding:"required"`
}

func (s *Server) AnswerQuestion(c *gin.Context) {
	var req QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	ans := s.Engine.Answer(c.Request.Context(), req.Question)
	if ans.Outcome == core.OutcomeDegraded {
		log.Printf("Failed to answer question: %v", ans.Cause)
	}

	sources := ans.Sources
	if sources == nil {
		sources = []model.Source{}
	}
	c.JSON(http.StatusOK, gin.H{
		"question": ans.Question,
		"answer":   ans.Text,
		"sources":  sources,
		"outcome":  ans.Outcome,
	})
}

func (s *Server) RefreshRAG(c *gin.Context) {
	if err := s.Engine.Rebuild(c.Request.Context()); err != nil {
		abort(c, "Failed to refresh RAG engine", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "RAG engine refreshed successfully"})
}

func (s *Server) ClearChatHistory(c *gin.Context) {
	s.Engine.ClearHistory()
	c.JSON(http.StatusOK, gin.H{"message": "Chat history cleared successfully"})
}

func (s *Server) RAGStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.Engine.Status())
}

// refreshAfterMutation rebuilds the index after a committed change. The
// change stands even when the rebuild fails; the failure becomes a warning.
func (s *Server) refreshAfterMutation(c *gin.Context, resp gin.H) {
	if err := s.Engine.Rebuild(c.Request.Context()); err != nil {
		log.Printf("Failed to refresh RAG engine: %v", err)
		resp["warning"] = fmt.Sprintf("index refresh failed: %v", err)
	}
}

func abort(c *gin.Context, msg string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Printf("%s: %v", msg, err)
	}
	c.JSON(status, gin.H{"error": errorMessage(err)})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrDuplicateName):
		return http.StatusConflict
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrNoFace), errors.Is(err, model.ErrInvalidImage):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrRecordStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func errorMessage(err error) string {
	switch {
	case errors.Is(err, model.ErrNoFace):
		return "No face detected in the image"
	case errors.Is(err, model.ErrDuplicateName):
		return "A face with this name already exists"
	default:
		return err.Error()
	}
}
