package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// S3Options configures the S3 image store.
type S3Options struct {
	Bucket          string
	Region          string
	Prefix          string
	Endpoint        string // S3-compatible endpoint; enables path-style addressing
	PublicURL       string // base URL for returned links; derived from bucket and region when empty
	AccessKeyID     string // static credentials; the default AWS chain is used when empty
	SecretAccessKey string
}

// objectPutter is the part of the S3 client the store needs.
type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// s3Store implements ImageStore on AWS S3 or an S3-compatible service.
type s3Store struct {
	client  objectPutter
	bucket  string
	prefix  string
	baseURL string
	logger  zerolog.Logger
}

// NewS3Store creates an S3-backed image store.
func NewS3Store(ctx context.Context, opts S3Options, logger zerolog.Logger) (ImageStore, error) {
	logger = logger.With().Str("component", "image-s3-store").Logger()

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(opts.Region)}
	if opts.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}

	// Load AWS configuration
	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		logger.Error().Err(err).Msg("failed to load AWS configuration")
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	logger.Info().
		Str("bucket", opts.Bucket).
		Str("region", opts.Region).
		Str("endpoint", opts.Endpoint).
		Msg("S3 image store initialised")

	return newS3Store(client, opts, logger), nil
}

func newS3Store(client objectPutter, opts S3Options, logger zerolog.Logger) *s3Store {
	return &s3Store{
		client:  client,
		bucket:  opts.Bucket,
		prefix:  opts.Prefix,
		baseURL: publicBaseURL(opts),
		logger:  logger,
	}
}

// publicBaseURL returns the URL prefix under which objects of the bucket are reachable.
func publicBaseURL(opts S3Options) string {
	switch {
	case opts.PublicURL != "":
		return strings.TrimSuffix(opts.PublicURL, "/")
	case opts.Endpoint != "":
		return strings.TrimSuffix(opts.Endpoint, "/") + "/" + opts.Bucket
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", opts.Bucket, opts.Region)
	}
}

// Put uploads the image as an object under the configured prefix.
func (s *s3Store) Put(ctx context.Context, name, contentType string, body io.Reader, size int64) (string, error) {
	key := s.prefix + name

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if size >= 0 {
		input.ContentLength = aws.Int64(size)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		s.logger.Error().
			Err(err).
			Str("bucket", s.bucket).
			Str("key", key).
			Msg("failed to put object to S3")
		return "", fmt.Errorf("failed to put object to S3 (bucket=%s, key=%s): %w", s.bucket, key, err)
	}

	s.logger.Info().
		Str("bucket", s.bucket).
		Str("key", key).
		Int64("bytes", size).
		Msg("image stored in S3")

	return s.baseURL + "/" + escapeKey(key), nil
}

func escapeKey(key string) string {
	segments := strings.Split(key, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return strings.Join(segments, "/")
}

// fallbackStore tries the remote store first, then the local one.
type fallbackStore struct {
	remote ImageStore
	local  ImageStore
	logger zerolog.Logger
}

// NewFallbackStore creates a store that uploads to remote and falls back to
// local when remote is nil or fails. body must be seekable for the retry to
// resend the full image.
func NewFallbackStore(remote, local ImageStore, logger zerolog.Logger) ImageStore {
	return &fallbackStore{
		remote: remote,
		local:  local,
		logger: logger.With().Str("component", "image-fallback-store").Logger(),
	}
}

// Put attempts remote storage first, then falls back to the local store.
func (s *fallbackStore) Put(ctx context.Context, name, contentType string, body io.Reader, size int64) (string, error) {
	if s.remote != nil {
		link, err := s.remote.Put(ctx, name, contentType, body, size)
		if err == nil {
			return link, nil
		}

		s.logger.Warn().
			Err(err).
			Str("name", name).
			Msg("failed to store image remotely, falling back to local disk")

		seeker, ok := body.(io.Seeker)
		if !ok {
			return "", fmt.Errorf("cannot retry upload of %s: %w", name, err)
		}
		if _, seekErr := seeker.Seek(0, io.SeekStart); seekErr != nil {
			return "", fmt.Errorf("cannot rewind upload of %s: %w", name, seekErr)
		}
	} else {
		s.logger.Debug().Msg("remote image store not configured, using local disk")
	}

	return s.local.Put(ctx, name, contentType, body, size)
}
