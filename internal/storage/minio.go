package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mindmap/mindmap-server/internal/config"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// markerObject marks an owner's folder as created; object stores have no directories.
const markerObject = ".namespace"

// MinIOResolver stores records as objects "<owner>/mindmaps/<key>" in one bucket.
// A single PutObject is atomic from a reader's point of view.
type MinIOResolver struct {
	client *minio.Client
	bucket string
}

// NewMinIOResolver creates a new MinIO client and ensures the bucket exists.
func NewMinIOResolver(cfg config.MinIOConfig) (*MinIOResolver, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio config missing")
	}
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio new: %w", err)
	}
	r := &MinIOResolver{client: mc, bucket: cfg.Bucket}
	// ensure bucket exists (idempotent)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := mc.MakeBucket(ctx, r.bucket, minio.MakeBucketOptions{}); err != nil {
		exist, xerr := mc.BucketExists(ctx, r.bucket)
		if xerr != nil || !exist {
			return nil, fmt.Errorf("minio bucket ensure: %w", err)
		}
	}
	return r, nil
}

func (r *MinIOResolver) Namespace(_ context.Context, ownerID string) (Namespace, error) {
	if !ValidKey(ownerID) {
		return nil, fmt.Errorf("%w: owner %q", ErrInvalidKey, ownerID)
	}
	return &minioNamespace{client: r.client, bucket: r.bucket, prefix: ownerID + "/" + Folder + "/"}, nil
}

type minioNamespace struct {
	client *minio.Client
	bucket string
	prefix string
}

func isNoSuchKey(err error) bool {
	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}

func (n *minioNamespace) Exists(ctx context.Context) (bool, error) {
	_, err := n.client.StatObject(ctx, n.bucket, n.prefix+markerObject, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if isNoSuchKey(err) {
		return false, nil
	}
	return false, err
}

func (n *minioNamespace) Create(ctx context.Context) error {
	_, err := n.client.PutObject(ctx, n.bucket, n.prefix+markerObject, bytes.NewReader(nil), 0, minio.PutObjectOptions{})
	return err
}

func (n *minioNamespace) Read(ctx context.Context, name string) ([]byte, error) {
	obj, err := n.client.GetObject(ctx, n.bucket, n.prefix+name, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()
	// perform a stat to ensure object exists
	if _, err := obj.Stat(); err != nil {
		if isNoSuchKey(err) {
			return nil, ErrNotExist
		}
		return nil, err
	}
	return io.ReadAll(obj)
}

func (n *minioNamespace) Write(ctx context.Context, name string, data []byte) error {
	if !ValidKey(name) || name == markerObject {
		return fmt.Errorf("%w: %q", ErrInvalidKey, name)
	}
	_, err := n.client.PutObject(ctx, n.bucket, n.prefix+name, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{ContentType: "application/json"})
	return err
}

func (n *minioNamespace) Remove(ctx context.Context, name string) error {
	// RemoveObject succeeds for missing keys, so stat first to report absence.
	if _, err := n.client.StatObject(ctx, n.bucket, n.prefix+name, minio.StatObjectOptions{}); err != nil {
		if isNoSuchKey(err) {
			return ErrNotExist
		}
		return err
	}
	return n.client.RemoveObject(ctx, n.bucket, n.prefix+name, minio.RemoveObjectOptions{})
}

func (n *minioNamespace) List(ctx context.Context) ([]Entry, error) {
	// cancelling stops the lister goroutine when collect returns early
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	return n.collect(n.client.ListObjects(ctx, n.bucket, minio.ListObjectsOptions{Prefix: n.prefix}))
}

// collect drains one listing of the prefix. Without the marker object the
// namespace was never created.
func (n *minioNamespace) collect(objects <-chan minio.ObjectInfo) ([]Entry, error) {
	out := []Entry{}
	marked := false
	for obj := range objects {
		if obj.Err != nil {
			return nil, obj.Err
		}
		name := strings.TrimPrefix(obj.Key, n.prefix)
		if name == markerObject {
			marked = true
			continue
		}
		if name == "" {
			continue
		}
		dir := strings.HasSuffix(name, "/")
		name = strings.TrimSuffix(name, "/")
		out = append(out, Entry{Name: name, Path: n.Path(name), Dir: dir})
	}
	if !marked {
		return nil, ErrNotExist
	}
	return out, nil
}

func (n *minioNamespace) Path(name string) string {
	return "s3://" + n.bucket + "/" + n.prefix + name
}

// Ping reports whether the bucket is reachable.
func (r *MinIOResolver) Ping(ctx context.Context) error {
	ok, err := r.client.BucketExists(ctx, r.bucket)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("bucket %q does not exist", r.bucket)
	}
	return nil
}
