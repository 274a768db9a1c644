package models

import "time"

// BillingLink maps an owner uid to its external billing customer id.
// At most one customer per uid; created lazily on the first portal request
// and reused afterwards.
type BillingLink struct {
	OwnerUID   string
	CustomerID string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
