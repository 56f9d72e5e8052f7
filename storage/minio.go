package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"motionfm/logger"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"golang.org/x/sync/errgroup"
)

// ObjectInfo describes one remote track.
type ObjectInfo struct {
	Key       string
	Size      int64
	LocalPath string
}

// SyncOptions controls a library sync.
type SyncOptions struct {
	Prefix string // only objects below this prefix; it is stripped from local paths
	Jobs   int    // concurrent downloads
	DryRun bool
}

// SyncResult summarises a library sync.
type SyncResult struct {
	Downloaded []ObjectInfo
	Skipped    int
	TotalBytes int64
}

// MinioClient mirrors a bucket into the local music library.
type MinioClient struct {
	client     *minio.Client
	bucketName string
}

// NewMinioClient creates a client for one bucket.
func NewMinioClient(endpoint, accessKey, secretKey, bucketName string, useSSL bool) (*MinioClient, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("MinIO endpoint not configured")
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	return &MinioClient{
		client:     client,
		bucketName: bucketName,
	}, nil
}

// Sync downloads every object below opts.Prefix into destDir, keeping the
// <album>/<file> layout. Files that already exist with the same size are
// left alone. Nothing is ever deleted locally.
func (m *MinioClient) Sync(ctx context.Context, destDir string, opts SyncOptions) (*SyncResult, error) {
	exists, err := m.client.BucketExists(ctx, m.bucketName)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket %s: %w", m.bucketName, err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket %s does not exist", m.bucketName)
	}

	var pending []ObjectInfo
	result := &SyncResult{}

	objectCh := m.client.ListObjects(ctx, m.bucketName, minio.ListObjectsOptions{
		Prefix:    opts.Prefix,
		Recursive: true,
	})
	for object := range objectCh {
		if object.Err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", object.Err)
		}

		local, ok := LocalPath(destDir, opts.Prefix, object.Key)
		if !ok {
			logger.Debug("skipping object outside the album layout", logger.String("key", object.Key))
			continue
		}
		if !NeedsDownload(local, object.Size) {
			result.Skipped++
			continue
		}
		pending = append(pending, ObjectInfo{Key: object.Key, Size: object.Size, LocalPath: local})
	}

	if opts.DryRun {
		result.Downloaded = pending
		for _, o := range pending {
			result.TotalBytes += o.Size
		}
		return result, nil
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = 4
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	for _, object := range pending {
		object := object // per-iteration copy; go.mod targets go1.21 loop semantics
		g.Go(func() error {
			if err := m.download(gctx, object); err != nil {
				return err
			}
			mu.Lock()
			result.Downloaded = append(result.Downloaded, object)
			result.TotalBytes += object.Size
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return result, err
	}
	return result, nil
}

// download writes to a temporary name first so a half-written file never
// shows up in the library folder the player reads from.
func (m *MinioClient) download(ctx context.Context, object ObjectInfo) error {
	if err := os.MkdirAll(filepath.Dir(object.LocalPath), 0755); err != nil {
		return fmt.Errorf("failed to create folder for %s: %w", object.LocalPath, err)
	}

	tmp := filepath.Join(filepath.Dir(object.LocalPath), "."+filepath.Base(object.LocalPath)+".part")
	if err := m.client.FGetObject(ctx, m.bucketName, object.Key, tmp, minio.GetObjectOptions{}); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to download %s: %w", object.Key, err)
	}
	if err := os.Rename(tmp, object.LocalPath); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to move %s into place: %w", object.LocalPath, err)
	}

	logger.Info("downloaded track",
		logger.String("key", object.Key),
		logger.String("path", object.LocalPath),
		logger.Int64("size", object.Size))
	return nil
}

// LocalPath maps an object key to <destDir>/<album>/<file>. Keys that do not
// have exactly that shape below prefix, or that try to escape destDir, are
// rejected.
func LocalPath(destDir, prefix, key string) (string, bool) {
	rel := strings.TrimPrefix(key, prefix)
	rel = strings.TrimPrefix(rel, "/")
	if rel == "" || strings.HasSuffix(rel, "/") {
		return "", false
	}

	clean := path.Clean(rel)
	parts := strings.Split(clean, "/")
	if len(parts) != 2 {
		return "", false
	}
	for _, p := range parts {
		if p == "." || p == ".." || p == "" || strings.HasPrefix(p, ".") {
			return "", false
		}
	}

	return filepath.Join(destDir, parts[0], parts[1]), true
}

// NeedsDownload reports whether the local copy is missing or has a different size.
func NeedsDownload(localPath string, size int64) bool {
	info, err := os.Stat(localPath)
	if err != nil {
		return true
	}
	return info.IsDir() || info.Size() != size
}
