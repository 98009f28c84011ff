package ports

import (
	"context"

	"durak/internal/domain"
)

// SnapshotStore persists spectator snapshots of a match.
type SnapshotStore interface {
	// SaveSnapshot overwrites the stored snapshot for matchID.
	SaveSnapshot(ctx context.Context, matchID string, snap domain.Snapshot) error
}
