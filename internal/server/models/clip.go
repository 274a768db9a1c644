// Package models defines the persisted row types of the server.
package models

import (
	"strings"
	"time"
)

// Clip kinds accepted by the ledger.
const (
	ClipKindVideo = "video"
	ClipKindImage = "image"
)

// ClipStatusReady is the only status the ledger writes today; uploads are
// registered after the provider has already accepted the bytes.
const ClipStatusReady = "ready"

// DocIDDelimiter replaces path separators in storage object ids so ledger
// keys form a flat namespace. Multi-character on purpose: a raw object id
// can never collide with a transformed one.
const DocIDDelimiter = "__"

// DocIDForObject derives the ledger document id from a storage object id.
// Pure and deterministic, so registering the same object twice always lands
// on the same row (idempotent upserts).
func DocIDForObject(objectID string) string {
	return strings.ReplaceAll(objectID, "/", DocIDDelimiter)
}

// ClipRecord is one ownership-ledger entry: the durable metadata row for a
// single uploaded object, owned by exactly one uid. OwnerUID is immutable
// after creation; all other metadata merges on re-registration.
type ClipRecord struct {
	DocID           string    `json:"docId"`
	OwnerUID        string    `json:"-"`
	ObjectID        string    `json:"publicId"`
	Kind            string    `json:"kind"`
	DeliveryHint    *string   `json:"deliveryHint,omitempty"`
	DurationSeconds *float64  `json:"durationSeconds,omitempty"`
	Width           *int64    `json:"width,omitempty"`
	Height          *int64    `json:"height,omitempty"`
	SizeBytes       *int64    `json:"sizeBytes,omitempty"`
	Title           *string   `json:"title,omitempty"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}
