package nakama

import (
	"context"
	"encoding/json"
	"fmt"

	"durak/internal/domain"
	"durak/internal/ports"

	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"
)

const snapshotCollection = "durak_snapshots"

// storageWriter is the subset of runtime.NakamaModule the snapshot adapter needs.
type storageWriter interface {
	StorageWrite(ctx context.Context, writes []*runtime.StorageWrite) ([]*api.StorageObjectAck, error)
}

// NakamaSnapshotAdapter stores match snapshots as system-owned storage objects.
type NakamaSnapshotAdapter struct {
	nk storageWriter
}

// NewNakamaSnapshotAdapter creates a new snapshot adapter.
func NewNakamaSnapshotAdapter(nk storageWriter) *NakamaSnapshotAdapter {
	return &NakamaSnapshotAdapter{nk: nk}
}

// SaveSnapshot writes snap under the match id, replacing any earlier version.
func (a *NakamaSnapshotAdapter) SaveSnapshot(ctx context.Context, matchID string, snap domain.Snapshot) error {
	if matchID == "" {
		return fmt.Errorf("matchID is required")
	}
	value, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	writes := []*runtime.StorageWrite{
		{
			Collection:      snapshotCollection,
			Key:             matchID,
			UserID:          "",
			Value:           string(value),
			PermissionRead:  runtime.STORAGE_PERMISSION_NO_READ,
			PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
		},
	}
	if _, err := a.nk.StorageWrite(ctx, writes); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

var _ ports.SnapshotStore = (*NakamaSnapshotAdapter)(nil)
