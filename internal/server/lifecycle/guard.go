// Package lifecycle holds the pure policy predicate deciding whether a
// stored object may still be served.
package lifecycle

import "github.com/dmitrijs2005/guardianbox/internal/server/models"

// Status is the lifecycle verdict for an object at a point in time.
type Status int

const (
	Active Status = iota
	Expired
	LimitReached
)

func (s Status) String() string {
	switch s {
	case Active:
		return "active"
	case Expired:
		return "expired"
	case LimitReached:
		return "limit reached"
	default:
		return "unknown"
	}
}

// Evaluate applies the object's policy at the given time (unix seconds).
// Expiry takes precedence over the download limit when both conditions
// hold at the same instant.
func Evaluate(obj *models.FileObject, now int64) Status {
	if obj.ExpiresAt != nil && now >= *obj.ExpiresAt {
		return Expired
	}
	if obj.DownloadLimit != nil && obj.DownloadsDone >= *obj.DownloadLimit {
		return LimitReached
	}
	return Active
}
