// Package httpapi exposes the server's HTTP surface: authenticated JSON
// endpoints for upload signatures, the clip ledger, delivery URLs, billing
// portal sessions and render jobs, plus an SSE feed of ledger changes.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sketchmotion/sketchmotion/internal/logging"
	"github.com/sketchmotion/sketchmotion/internal/server/auth"
	"github.com/sketchmotion/sketchmotion/internal/server/models"
	"github.com/sketchmotion/sketchmotion/internal/server/services"
)

// UploadSigner issues direct-to-storage upload signatures.
type UploadSigner interface {
	IssueSignature(ctx context.Context, uid string, req services.UploadParams) (*services.UploadSignature, error)
}

// ClipLedger is the clip service surface the handlers depend on.
type ClipLedger interface {
	Register(ctx context.Context, uid string, p services.RegisterParams) (*models.ClipRecord, error)
	List(ctx context.Context, uid, kind, cursor string) (*services.ClipPage, error)
	Subscribe(ctx context.Context, uid string) (<-chan []*models.ClipRecord, func(), error)
	PlaybackURL(ctx context.Context, uid, objectID string) (string, error)
	Delete(ctx context.Context, uid, objectID, docID string) error
}

// BillingPortal opens hosted billing sessions.
type BillingPortal interface {
	OpenPortal(ctx context.Context, uid, email string) (string, error)
}

// JobIntake accepts render job requests.
type JobIntake interface {
	CreateJob(ctx context.Context, uid, objectID, kind string) (*models.RenderJob, error)
}

// ServerDeps carries the collaborators of the HTTP layer; tests substitute
// fakes here.
type ServerDeps struct {
	Verifier auth.Verifier
	Uploads  UploadSigner
	Clips    ClipLedger
	Billing  BillingPortal
	Jobs     JobIntake
	Logger   logging.Logger
}

type Server struct {
	r      *gin.Engine
	deps   ServerDeps
	logger logging.Logger
}

func NewServer(deps ServerDeps) *Server {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	s := &Server{r: r, deps: deps, logger: deps.Logger}
	s.routes()
	return s
}

// Handler returns the root http.Handler for mounting on an http.Server.
func (s *Server) Handler() http.Handler {
	return s.r
}

func (s *Server) routes() {
	s.r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := s.r.Group("/api", AuthMiddleware(s.deps.Verifier))
	{
		api.POST("/uploads/signature", s.handleUploadSignature)

		api.POST("/clips", s.handleRegisterClip)
		api.GET("/clips", s.handleListClips)
		api.GET("/clips/watch", s.handleWatchClips)
		api.GET("/clips/url", s.handlePlaybackURL)
		api.POST("/clips/delete", s.handleDeleteClip)

		api.POST("/billing/portal", s.handleBillingPortal)
		api.POST("/jobs", s.handleCreateJob)
	}
}

// watchKeepAlive bounds how long an idle SSE connection stays silent.
const watchKeepAlive = 30 * time.Second
