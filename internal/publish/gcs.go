// Package publish copies finished artefacts to remote storage.
package publish

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"cloud.google.com/go/storage"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

// Mirror uploads one local file under the given object key.
type Mirror interface {
	Upload(ctx context.Context, localPath, key string) error
	Close() error
}

// GCS mirrors into a Cloud Storage bucket. Keys are joined onto Prefix.
type GCS struct {
	Bucket string
	Prefix string

	client *storage.Client
	// open is swapped in tests.
	open func(ctx context.Context, name string) io.WriteCloser
}

func NewGCS(ctx context.Context, bucket, prefix, credentialsFile string) (*GCS, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage client: %w", err)
	}

	g := &GCS{Bucket: bucket, Prefix: prefix, client: client}
	g.open = func(ctx context.Context, name string) io.WriteCloser {
		return client.Bucket(bucket).Object(name).NewWriter(ctx)
	}
	return g, nil
}

// ObjectName maps a key like "audio/100000.mp3" to its name in the bucket.
func (g *GCS) ObjectName(key string) string {
	return path.Join(g.Prefix, filepath.ToSlash(key))
}

func (g *GCS) Upload(ctx context.Context, localPath, key string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", localPath, err)
	}
	defer f.Close()

	name := g.ObjectName(key)
	// Cancelling the writer's context aborts the upload; closing it would
	// commit whatever was copied so far.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	w := g.open(ctx, name)
	if written, err := io.Copy(w, f); err != nil {
		cancel()
		return fmt.Errorf("upload %s (%d bytes written): %w", name, written, err)
	}
	// Close finalises the object; an upload is only done once it succeeds.
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalise gs://%s/%s: %w", g.Bucket, name, err)
	}

	log.Debug().Str("path", localPath).Msgf("[*] Mirrored to gs://%s/%s", g.Bucket, name)
	return nil
}

func (g *GCS) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}
