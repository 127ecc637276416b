package postgres

import (
	"context"
	"time"

	"github.com/rotekit/rote/internal/store"
)

// CollectionEpoch returns the collection's creation day, the fixed
// point review-card due values are counted from. The singleton
// collection row is created by the initial migration.
func CollectionEpoch(ctx context.Context, db store.DBTX) (time.Time, error) {
	var epoch time.Time
	err := db.QueryRowContext(ctx, `SELECT created_at FROM collection WHERE id = 1`).Scan(&epoch)
	if err != nil {
		return time.Time{}, err
	}
	return epoch.UTC(), nil
}
