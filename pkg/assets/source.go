package assets

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/strada-dev/strada/internal/errors"
)

// HTTPSource fetches module bundles from an HTTP origin.
type HTTPSource struct {
	client   *http.Client
	origin   string
	manifest *Manifest
	logger   *slog.Logger
}

// NewHTTPSource creates a source fetching bundles from origin. A nil
// manifest resolves identities to themselves.
func NewHTTPSource(client *http.Client, origin string, manifest *Manifest, logger *slog.Logger) *HTTPSource {
	if client == nil {
		client = http.DefaultClient
	}
	if manifest == nil {
		manifest = NewManifest()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPSource{
		client:   client,
		origin:   strings.TrimSuffix(origin, "/"),
		manifest: manifest,
		logger:   logger.With("component", "http-source"),
	}
}

// Fetch retrieves the serialized source for a module identity.
func (s *HTTPSource) Fetch(ctx context.Context, id string) ([]byte, error) {
	path := "/" + strings.TrimPrefix(s.manifest.Resolve(id), "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.origin+path, nil)
	if err != nil {
		return nil, errors.New("E301").WithDetail(id).Wrap(err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, errors.New("E101").WithPath(path).WithDetail(id).Wrap(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, errors.New("E301").WithPath(path).WithDetail(id)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.New("E102").WithPath(path).WithDetail(resp.Status)
	}

	source, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.New("E101").WithPath(path).WithDetail(id).Wrap(err)
	}
	s.logger.Debug("bundle fetched", "module", id, "path", path, "bytes", len(source))
	return source, nil
}

// S3API is the slice of the S3 client the source needs.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source fetches module bundles from an S3 bucket, the deployment shape
// where built bundles are pushed to a bucket fronted by a CDN.
//
// Example:
//
//	cfg, _ := config.LoadDefaultConfig(context.Background())
//	source := assets.NewS3Source(s3.NewFromConfig(cfg), "my-bundles", "dist/", manifest, nil)
type S3Source struct {
	client   S3API
	bucket   string
	prefix   string
	manifest *Manifest
	logger   *slog.Logger
}

// NewS3Source creates a source reading bundles under prefix in bucket.
func NewS3Source(client S3API, bucket, prefix string, manifest *Manifest, logger *slog.Logger) *S3Source {
	if manifest == nil {
		manifest = NewManifest()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &S3Source{
		client:   client,
		bucket:   bucket,
		prefix:   prefix,
		manifest: manifest,
		logger:   logger.With("component", "s3-source"),
	}
}

// Fetch retrieves the serialized source for a module identity.
func (s *S3Source) Fetch(ctx context.Context, id string) ([]byte, error) {
	key := s.prefix + strings.TrimPrefix(s.manifest.Resolve(id), "/")
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, errors.New("E301").WithPath(key).WithDetail(id).Wrap(err)
	}
	defer out.Body.Close()

	source, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, errors.New("E101").WithPath(key).WithDetail(id).Wrap(err)
	}
	s.logger.Debug("bundle fetched from bucket", "module", id, "key", key, "bytes", len(source))
	return source, nil
}
