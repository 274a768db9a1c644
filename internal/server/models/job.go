package models

import "time"

// JobStatusQueued is the status a render job is written with. There is no
// processing pipeline behind it yet; the write is terminal and
// fire-and-forget until the animation worker lands.
const JobStatusQueued = "queued"

// RenderJob records a request to animate an uploaded drawing.
type RenderJob struct {
	ID        string    `json:"id"`
	OwnerUID  string    `json:"-"`
	ObjectID  string    `json:"publicId"`
	Kind      string    `json:"kind"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}
