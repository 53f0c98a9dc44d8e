package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/yanqian/aqi-health/internal/domain/airquality"
)

// Archive writes each ranking as a JSON object keyed by its generation time.
type Archive struct {
	storage ObjectStorage
	prefix  string
}

// NewArchive constructs the ranking snapshot archive.
func NewArchive(storage ObjectStorage, prefix string) *Archive {
	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		prefix = "rankings"
	}
	return &Archive{storage: storage, prefix: prefix}
}

// Archive implements airquality.SnapshotArchive.
func (a *Archive) Archive(ctx context.Context, ranking airquality.Ranking) (string, error) {
	payload, err := json.Marshal(ranking)
	if err != nil {
		return "", fmt.Errorf("encode ranking snapshot: %w", err)
	}
	ts := ranking.GeneratedAt.UTC()
	key := path.Join(a.prefix, ts.Format("2006/01/02"), fmt.Sprintf("%s-%s.json", ts.Format("150405"), uuid.NewString()))
	if err := a.storage.Put(ctx, key, payload, "application/json"); err != nil {
		return "", fmt.Errorf("store ranking snapshot: %w", err)
	}
	return key, nil
}

var _ airquality.SnapshotArchive = (*Archive)(nil)
