package lifecycle

import (
	"testing"

	"github.com/dmitrijs2005/guardianbox/internal/server/models"
	"github.com/stretchr/testify/assert"
)

func int64ptr(v int64) *int64 { return &v }

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name string
		obj  models.FileObject
		now  int64
		want Status
	}{
		{
			name: "no policy never expires",
			obj:  models.FileObject{},
			now:  1 << 40,
			want: Active,
		},
		{
			name: "before expiry",
			obj:  models.FileObject{ExpiresAt: int64ptr(100)},
			now:  99,
			want: Active,
		},
		{
			name: "exactly at expiry",
			obj:  models.FileObject{ExpiresAt: int64ptr(100)},
			now:  100,
			want: Expired,
		},
		{
			name: "after expiry",
			obj:  models.FileObject{ExpiresAt: int64ptr(100)},
			now:  101,
			want: Expired,
		},
		{
			name: "below limit",
			obj:  models.FileObject{DownloadLimit: int64ptr(5), DownloadsDone: 4},
			now:  0,
			want: Active,
		},
		{
			name: "at limit",
			obj:  models.FileObject{DownloadLimit: int64ptr(5), DownloadsDone: 5},
			now:  0,
			want: LimitReached,
		},
		{
			name: "nil limit is unlimited",
			obj:  models.FileObject{DownloadsDone: 1 << 30},
			now:  0,
			want: Active,
		},
		{
			name: "expiry wins when both conditions hold",
			obj: models.FileObject{
				ExpiresAt:     int64ptr(100),
				DownloadLimit: int64ptr(1),
				DownloadsDone: 1,
			},
			now:  100,
			want: Expired,
		},
		{
			name: "limit applies while not yet expired",
			obj: models.FileObject{
				ExpiresAt:     int64ptr(100),
				DownloadLimit: int64ptr(1),
				DownloadsDone: 1,
			},
			now:  99,
			want: LimitReached,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(&tt.obj, tt.now))
		})
	}
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "active", Active.String())
	assert.Equal(t, "expired", Expired.String())
	assert.Equal(t, "limit reached", LimitReached.String())
	assert.Equal(t, "unknown", Status(99).String())
}
