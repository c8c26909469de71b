package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
)

const gcsScheme = "gs://"

// Destination is a parsed export target: either a local path or a GCS object
type Destination struct {
	Path   string
	Bucket string
	Object string
}

// IsGCS reports whether the destination is a Cloud Storage object
func (d Destination) IsGCS() bool {
	return d.Bucket != ""
}

func (d Destination) String() string {
	if d.IsGCS() {
		return gcsScheme + d.Bucket + "/" + d.Object
	}
	return d.Path
}

// ParseDestination parses "gs://bucket/object" or a local file path
func ParseDestination(dest string) (Destination, error) {
	dest = strings.TrimSpace(dest)
	if dest == "" {
		return Destination{}, goerr.New("destination is required")
	}

	if !strings.HasPrefix(dest, gcsScheme) {
		return Destination{Path: dest}, nil
	}

	bucket, object, ok := strings.Cut(strings.TrimPrefix(dest, gcsScheme), "/")
	if !ok || bucket == "" || object == "" || strings.HasSuffix(object, "/") {
		return Destination{}, goerr.New("invalid GCS destination, expected gs://bucket/object", goerr.V("destination", dest))
	}
	return Destination{Bucket: bucket, Object: object}, nil
}

// Sink opens writers for export destinations
type Sink struct {
	gcs *storage.Client
}

type Option func(*Sink)

// WithGCSClient sets the client used for gs:// destinations
func WithGCSClient(client *storage.Client) Option {
	return func(s *Sink) {
		s.gcs = client
	}
}

func New(opts ...Option) *Sink {
	s := &Sink{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create opens dest for writing. The object or file is complete only after
// Close returns nil. contentType is applied to GCS objects.
func (s *Sink) Create(ctx context.Context, dest Destination, contentType string) (io.WriteCloser, error) {
	if !dest.IsGCS() {
		return createFile(dest.Path)
	}

	client := s.gcs
	owned := false
	if client == nil {
		c, err := storage.NewClient(ctx)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create storage client")
		}
		client, owned = c, true
	}

	wctx, cancel := context.WithCancel(ctx)
	w := client.Bucket(dest.Bucket).Object(dest.Object).NewWriter(wctx)
	w.ContentType = contentType

	return &gcsWriter{w: w, cancel: cancel, client: client, owned: owned, dest: dest}, nil
}

// Put writes everything read from r to dest. When copying fails, the partial
// file is removed and the GCS upload is canceled so nothing is committed.
func (s *Sink) Put(ctx context.Context, dest Destination, contentType string, r io.Reader) error {
	w, err := s.Create(ctx, dest, contentType)
	if err != nil {
		return err
	}

	if _, err := io.Copy(w, r); err != nil {
		if a, ok := w.(aborter); ok {
			a.Abort()
		} else {
			_ = w.Close()
		}
		return goerr.Wrap(err, "failed to write report", goerr.V("destination", dest.String()))
	}
	return w.Close()
}

type aborter interface {
	Abort()
}

func createFile(path string) (io.WriteCloser, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, goerr.Wrap(err, "failed to create output directory", goerr.V("dir", dir))
		}
	}

	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create output file", goerr.V("path", path))
	}
	return &fileWriter{File: f}, nil
}

type fileWriter struct {
	*os.File
}

func (f *fileWriter) Abort() {
	_ = f.File.Close()
	_ = os.Remove(f.Name())
}

type gcsWriter struct {
	w      *storage.Writer
	cancel context.CancelFunc
	client *storage.Client
	owned  bool
	dest   Destination
}

func (g *gcsWriter) Write(p []byte) (int, error) {
	return g.w.Write(p)
}

// Abort cancels the upload before the object is finalized
func (g *gcsWriter) Abort() {
	g.cancel()
	_ = g.w.Close()
	if g.owned {
		_ = g.client.Close()
	}
}

func (g *gcsWriter) Close() error {
	err := g.w.Close()
	g.cancel()
	if g.owned {
		_ = g.client.Close()
	}
	if err != nil {
		return goerr.Wrap(err, "failed to upload object", goerr.V("destination", g.dest.String()))
	}
	return nil
}
