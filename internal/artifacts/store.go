// Package artifacts stores diagnostic captures taken when a scenario fails:
// always in a local directory, and additionally in S3 when a bucket is
// configured.
package artifacts

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/kuitang/hrm-e2e/internal/config"
	"github.com/kuitang/hrm-e2e/internal/obs"
)

// Sink saves one artifact and returns where it went.
type Sink interface {
	Save(ctx context.Context, name string, data []byte, contentType string) (string, error)
}

// DirStore writes artifacts into a local directory.
type DirStore struct {
	dir string
}

// NewDir returns a store writing into dir, created on first save.
func NewDir(dir string) *DirStore {
	return &DirStore{dir: dir}
}

// Dir returns the target directory.
func (s *DirStore) Dir() string {
	return s.dir
}

// Save writes data to dir/name. Directory components in name are dropped.
func (s *DirStore) Save(ctx context.Context, name string, data []byte, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("artifacts: create %s: %w", s.dir, err)
	}
	file := filepath.Join(s.dir, path.Base(filepath.ToSlash(name)))
	if err := os.WriteFile(file, data, 0o644); err != nil {
		return "", fmt.Errorf("artifacts: write %s: %w", file, err)
	}
	return file, nil
}

// Multi saves to a primary sink and mirrors to the rest. Only a primary
// failure is returned; mirror failures are logged.
type Multi struct {
	Primary Sink
	Mirrors []Sink
}

// Save returns the primary location.
func (m *Multi) Save(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	location, err := m.Primary.Save(ctx, name, data, contentType)
	if err != nil {
		return "", err
	}
	for _, mirror := range m.Mirrors {
		copyAt, err := mirror.Save(ctx, name, data, contentType)
		if err != nil {
			obs.For(ctx, "artifacts").Warn("artifact mirror failed", "name", name, "error", err)
			continue
		}
		obs.For(ctx, "artifacts").Debug("artifact mirrored", "name", name, "location", copyAt)
	}
	return location, nil
}

// Open builds the sink for one run: a directory named after the run under
// cfg.ArtifactsDir, mirrored to S3 under runs/<run id>/ when a bucket is
// configured.
func Open(ctx context.Context, cfg *config.Config, runID string) (*Multi, error) {
	if runID == "" {
		return nil, errors.New("artifacts: run id is required")
	}
	m := &Multi{Primary: NewDir(filepath.Join(cfg.ArtifactsDir, runID))}
	if !cfg.UploadsArtifacts() {
		return m, nil
	}
	store, err := NewS3(ctx, S3Config{
		Endpoint:        cfg.AWSEndpointS3,
		Region:          cfg.AWSRegion,
		AccessKeyID:     cfg.AWSAccessKeyID,
		SecretAccessKey: cfg.AWSSecretAccessKey,
		Bucket:          cfg.ArtifactsBucket,
		Prefix:          path.Join("runs", runID),
		UsePathStyle:    cfg.AWSEndpointS3 != "",
	})
	if err != nil {
		return nil, err
	}
	m.Mirrors = append(m.Mirrors, store)
	obs.For(ctx, "artifacts").Info("artifact upload enabled", "bucket", store.Bucket())
	return m, nil
}
