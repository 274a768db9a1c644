// Package services contains server-side business logic: issuing upload
// signatures, maintaining the ownership ledger, delivery and deletion, the
// billing portal bridge, and render job intake.
package services

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/sketchmotion/sketchmotion/internal/common"
	"github.com/sketchmotion/sketchmotion/internal/ownership"
	"github.com/sketchmotion/sketchmotion/internal/signing"
)

// UploadParams is the allow-listed subset of upload parameters a caller may
// request. Anything else a client sends never reaches the signer: the HTTP
// boundary binds into this struct and unknown keys are dropped there.
type UploadParams struct {
	// Folder is accepted for API compatibility but always overridden with
	// the owner-derived folder, so a caller cannot relocate an upload.
	Folder string `json:"folder"`

	// PublicID optionally fixes the object id of the upload (relative to
	// the forced folder).
	PublicID string `json:"public_id"`
}

// UploadSignature authorizes one direct-to-storage upload. The provider
// recomputes the digest from the replayed parameters and enforces expiry;
// nothing is persisted here.
type UploadSignature struct {
	Signature string `json:"signature"`
	Timestamp int64  `json:"timestamp"`
	APIKey    string `json:"apiKey"`
	CloudName string `json:"cloudName"`
	Folder    string `json:"folder"`
	PublicID  string `json:"publicId,omitempty"`
}

// publicIDPattern constrains caller-chosen object ids to a single flat
// segment; separators would escape the forced per-user folder.
var publicIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// UploadService issues upload signatures. Stateless: a signature is a pure
// function of (uid, allowed params, current time, provider secret).
type UploadService struct {
	cloudName string
	apiKey    string
	apiSecret string
	now       func() time.Time
}

func NewUploadService(cloudName, apiKey, apiSecret string) *UploadService {
	return &UploadService{
		cloudName: cloudName,
		apiKey:    apiKey,
		apiSecret: apiSecret,
		now:       time.Now,
	}
}

// IssueSignature computes a time-boxed signature for a direct upload scoped
// to uid's folder. The destination folder is always derived from uid,
// regardless of what the caller requested.
func (s *UploadService) IssueSignature(ctx context.Context, uid string, req UploadParams) (*UploadSignature, error) {
	if s.cloudName == "" || s.apiKey == "" || s.apiSecret == "" {
		return nil, fmt.Errorf("upload signing credentials missing: %w", common.ErrMisconfigured)
	}

	if req.PublicID != "" && !publicIDPattern.MatchString(req.PublicID) {
		return nil, fmt.Errorf("invalid public_id: %w", common.ErrInvalidRequest)
	}

	ts := s.now().Unix()
	params := map[string]string{
		"folder":    ownership.Folder(uid),
		"timestamp": strconv.FormatInt(ts, 10),
	}
	if req.PublicID != "" {
		params["public_id"] = req.PublicID
	}

	sig, err := signing.Digest(params, s.apiSecret)
	if err != nil {
		return nil, err
	}

	return &UploadSignature{
		Signature: sig,
		Timestamp: ts,
		APIKey:    s.apiKey,
		CloudName: s.cloudName,
		Folder:    params["folder"],
		PublicID:  req.PublicID,
	}, nil
}
