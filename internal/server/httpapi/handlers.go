package httpapi

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sketchmotion/sketchmotion/internal/server/models"
	"github.com/sketchmotion/sketchmotion/internal/server/services"
)

type signatureRequest struct {
	Params services.UploadParams `json:"params"`
}

func (s *Server) handleUploadSignature(c *gin.Context) {
	identity, ok := IdentityFromContext(c)
	if !ok {
		return
	}

	// The body is optional; an empty request signs a free-form upload into
	// the caller's folder.
	var req signatureRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		WriteErrorCode(c, http.StatusBadRequest, "INVALID_REQUEST", "malformed body")
		return
	}

	sig, err := s.deps.Uploads.IssueSignature(c.Request.Context(), identity.UID, req.Params)
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, sig)
}

type registerClipRequest struct {
	PublicID        string   `json:"publicId"`
	Kind            string   `json:"kind"`
	DeliveryHint    *string  `json:"deliveryHint"`
	DurationSeconds *float64 `json:"durationSeconds"`
	Width           *int64   `json:"width"`
	Height          *int64   `json:"height"`
	SizeBytes       *int64   `json:"sizeBytes"`
	Title           *string  `json:"title"`
}

func (s *Server) handleRegisterClip(c *gin.Context) {
	identity, ok := IdentityFromContext(c)
	if !ok {
		return
	}

	var req registerClipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		WriteErrorCode(c, http.StatusBadRequest, "INVALID_REQUEST", "malformed body")
		return
	}

	clip, err := s.deps.Clips.Register(c.Request.Context(), identity.UID, services.RegisterParams{
		ObjectID:        req.PublicID,
		Kind:            req.Kind,
		DeliveryHint:    req.DeliveryHint,
		DurationSeconds: req.DurationSeconds,
		Width:           req.Width,
		Height:          req.Height,
		SizeBytes:       req.SizeBytes,
		Title:           req.Title,
	})
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, clip)
}

type clipListResponse struct {
	Items []*models.ClipRecord `json:"items"`

	// NextCursor is null on the last page, never absent.
	NextCursor *string `json:"next_cursor"`
	TotalCount int64   `json:"total_count"`
}

func (s *Server) handleListClips(c *gin.Context) {
	identity, ok := IdentityFromContext(c)
	if !ok {
		return
	}

	page, err := s.deps.Clips.List(c.Request.Context(), identity.UID, c.Query("kind"), c.Query("cursor"))
	if err != nil {
		WriteError(c, err)
		return
	}

	resp := clipListResponse{
		Items:      page.Items,
		TotalCount: page.TotalCount,
	}
	if page.NextCursor != "" {
		resp.NextCursor = &page.NextCursor
	}
	c.JSON(http.StatusOK, resp)
}

// handleWatchClips streams ledger snapshots over SSE: the current state
// immediately, then a fresh snapshot after every change to the caller's
// clips. Periodic keep-alive events hold intermediaries open. The loop
// writes and flushes directly; a closed feed or a gone client ends it.
func (s *Server) handleWatchClips(c *gin.Context) {
	identity, ok := IdentityFromContext(c)
	if !ok {
		return
	}

	feed, cancel, err := s.deps.Clips.Subscribe(c.Request.Context(), identity.UID)
	if err != nil {
		WriteError(c, err)
		return
	}
	defer cancel()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	keepAlive := time.NewTicker(watchKeepAlive)
	defer keepAlive.Stop()

	for {
		select {
		case snapshot, open := <-feed:
			if !open {
				return
			}
			c.SSEvent("clips", snapshot)
			c.Writer.Flush()
		case <-keepAlive.C:
			c.SSEvent("ping", time.Now().Unix())
			c.Writer.Flush()
		case <-c.Request.Context().Done():
			return
		}
	}
}

func (s *Server) handlePlaybackURL(c *gin.Context) {
	identity, ok := IdentityFromContext(c)
	if !ok {
		return
	}

	url, err := s.deps.Clips.PlaybackURL(c.Request.Context(), identity.UID, c.Query("publicId"))
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

type deleteClipRequest struct {
	PublicID string `json:"publicId"`
	DocID    string `json:"docId"`
}

func (s *Server) handleDeleteClip(c *gin.Context) {
	identity, ok := IdentityFromContext(c)
	if !ok {
		return
	}

	var req deleteClipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		WriteErrorCode(c, http.StatusBadRequest, "INVALID_REQUEST", "malformed body")
		return
	}

	if err := s.deps.Clips.Delete(c.Request.Context(), identity.UID, req.PublicID, req.DocID); err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) handleBillingPortal(c *gin.Context) {
	identity, ok := IdentityFromContext(c)
	if !ok {
		return
	}

	url, err := s.deps.Billing.OpenPortal(c.Request.Context(), identity.UID, identity.Email)
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

type createJobRequest struct {
	PublicID string `json:"publicId"`
	Kind     string `json:"kind"`
}

func (s *Server) handleCreateJob(c *gin.Context) {
	identity, ok := IdentityFromContext(c)
	if !ok {
		return
	}

	var req createJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		WriteErrorCode(c, http.StatusBadRequest, "INVALID_REQUEST", "malformed body")
		return
	}

	job, err := s.deps.Jobs.CreateJob(c.Request.Context(), identity.UID, req.PublicID, req.Kind)
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}
