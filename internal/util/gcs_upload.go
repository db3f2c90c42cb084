package util

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

type gcsClient interface {
	Bucket(name string) gcsBucket
	Close() error
}

type gcsBucket interface {
	Object(name string) gcsObject
	Objects(ctx context.Context, prefix string) gcsIterator
}

type gcsObject interface {
	NewWriter(ctx context.Context, contentType string) io.WriteCloser
}

type gcsIterator interface {
	Next() (*storage.ObjectAttrs, error)
}

type realGCSClient struct{ c *storage.Client }
type realGCSBucket struct{ b *storage.BucketHandle }
type realGCSObject struct{ o *storage.ObjectHandle }

func (r realGCSClient) Bucket(name string) gcsBucket { return realGCSBucket{b: r.c.Bucket(name)} }
func (r realGCSClient) Close() error                 { return r.c.Close() }
func (b realGCSBucket) Object(name string) gcsObject { return realGCSObject{o: b.b.Object(name)} }
func (b realGCSBucket) Objects(ctx context.Context, prefix string) gcsIterator {
	return b.b.Objects(ctx, &storage.Query{Prefix: prefix})
}
func (o realGCSObject) NewWriter(ctx context.Context, contentType string) io.WriteCloser {
	w := o.o.NewWriter(ctx)
	w.ContentType = contentType
	return w
}

var newGCSClientHook = func(ctx context.Context) (gcsClient, error) {
	c, err := storage.NewClient(ctx, option.WithUserAgent("portfolio-api"))
	if err != nil {
		return nil, err
	}
	return realGCSClient{c: c}, nil
}

// GCSArchive writes and lists objects in one bucket. The storage client is
// created on first use and shared afterwards.
type GCSArchive struct {
	Bucket string

	mu     sync.Mutex
	client gcsClient
}

func NewGCSArchive(bucket string) *GCSArchive {
	return &GCSArchive{Bucket: bucket}
}

func (a *GCSArchive) bucket(ctx context.Context) (gcsBucket, error) {
	if strings.TrimSpace(a.Bucket) == "" {
		return nil, errors.New("gcs bucket is not configured")
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.client == nil {
		c, err := newGCSClientHook(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage client: %w", err)
		}
		a.client = c
	}
	return a.client.Bucket(a.Bucket), nil
}

// Upload stores data and returns its gs:// URL.
func (a *GCSArchive) Upload(ctx context.Context, objectName, contentType string, data []byte) (string, error) {
	b, err := a.bucket(ctx)
	if err != nil {
		return "", err
	}

	w := b.Object(objectName).NewWriter(ctx, contentType)
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to write %s: %w", objectName, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize %s: %w", objectName, err)
	}

	return fmt.Sprintf("gs://%s/%s", a.Bucket, objectName), nil
}

func (a *GCSArchive) Archive(ctx context.Context, objectName string, wav []byte) error {
	_, err := a.Upload(ctx, objectName, "audio/wav", wav)
	return err
}

// List returns object names under prefix.
func (a *GCSArchive) List(ctx context.Context, prefix string) ([]string, error) {
	b, err := a.bucket(ctx)
	if err != nil {
		return nil, err
	}

	var names []string
	it := b.Objects(ctx, prefix)
	for {
		obj, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		names = append(names, obj.Name)
	}
	return names, nil
}

func (a *GCSArchive) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.client == nil {
		return nil
	}
	err := a.client.Close()
	a.client = nil
	return err
}
