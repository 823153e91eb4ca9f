// Package artwork stores customer artwork uploads in S3.
package artwork

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"printsociety/internal/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ObjectPutter is the part of the S3 client the store needs. *s3.Client satisfies it.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Accepted content types and the file extension stored for each.
var extensions = map[string]string{
	"image/png":       ".png",
	"image/jpeg":      ".jpg",
	"image/svg+xml":   ".svg",
	"application/pdf": ".pdf",
}

// Upload is the result of storing one artwork file.
type Upload struct {
	Key          string `json:"key"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnailUrl"`
}

// Validate checks an upload's declared type and size against the accepted formats.
func Validate(contentType string, size, maxBytes int64) error {
	if _, ok := extensions[normaliseType(contentType)]; !ok {
		return model.ErrUnsupportedArtwork
	}
	if size <= 0 || size > maxBytes {
		return model.ErrUnsupportedArtwork
	}
	return nil
}

// Store writes artwork to a bucket served from a public base URL.
type Store struct {
	client        ObjectPutter
	bucket        string
	publicBaseURL string
	logger        zerolog.Logger
}

// NewStore creates an artwork store.
func NewStore(client ObjectPutter, bucket, publicBaseURL string, logger zerolog.Logger) *Store {
	return &Store{
		client:        client,
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		logger:        logger.With().Str("component", "artwork-store").Logger(),
	}
}

// Put uploads body for a cart line item. Raster images get a resized thumbnail URL; other
// formats reuse the full URL.
func (s *Store) Put(ctx context.Context, cartID, itemID uuid.UUID, contentType string, size int64, body io.Reader) (Upload, error) {
	contentType = normaliseType(contentType)
	ext, ok := extensions[contentType]
	if !ok {
		return Upload{}, model.ErrUnsupportedArtwork
	}

	key := path.Join("artwork", cartID.String(), itemID.String(), uuid.NewString()+ext)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("bucket", s.bucket).
			Str("key", key).
			Msg("failed to upload artwork")
		return Upload{}, fmt.Errorf("failed to upload artwork (bucket=%s, key=%s): %w", s.bucket, key, err)
	}

	url := s.publicBaseURL + "/" + key
	thumbnail := url
	if contentType == "image/png" || contentType == "image/jpeg" {
		thumbnail = url + "?width=320"
	}

	s.logger.Info().
		Str("key", key).
		Str("content_type", contentType).
		Int64("size", size).
		Msg("artwork uploaded")

	return Upload{Key: key, URL: url, ThumbnailURL: thumbnail}, nil
}

// ErrStorageDisabled is returned by Disabled for every upload.
var ErrStorageDisabled = errors.New("artwork storage is not configured")

// Disabled rejects uploads. It stands in for Store when S3 is switched off.
type Disabled struct{}

// Put always fails with ErrStorageDisabled.
func (Disabled) Put(context.Context, uuid.UUID, uuid.UUID, string, int64, io.Reader) (Upload, error) {
	return Upload{}, ErrStorageDisabled
}

func normaliseType(contentType string) string {
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}
