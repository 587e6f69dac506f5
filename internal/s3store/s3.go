// Package s3store stores design images in an S3 bucket.
package s3store

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"bouquet-studio-backend/internal/models"
)

// API is the part of the S3 client the store uses.
type API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type Store struct {
	client     API
	bucket     string
	publicBase string
}

// New loads the default AWS configuration for region.
func New(ctx context.Context, region, bucket, publicBaseURL string) (*Store, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}
	log.Println("S3 client initialized")
	return NewWithClient(s3.NewFromConfig(cfg), region, bucket, publicBaseURL), nil
}

// NewWithClient builds a store on an existing client. Without a public base
// URL, objects are addressed through the bucket's virtual-hosted endpoint.
func NewWithClient(client API, region, bucket, publicBaseURL string) *Store {
	base := strings.TrimSuffix(publicBaseURL, "/")
	if base == "" {
		base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
	}
	return &Store{client: client, bucket: bucket, publicBase: base}
}

func (s *Store) Upload(ctx context.Context, userID uuid.UUID, data []byte, contentType string) (string, error) {
	key := models.DesignObjectKey(userID, ".png")
	if contentType == "image/jpeg" {
		key = models.DesignObjectKey(userID, ".jpg")
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file to S3: %w", err)
	}

	return key, nil
}

func (s *Store) PublicURL(key string) string {
	return s.publicBase + "/" + key
}

func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file from S3: %w", err)
	}
	return nil
}
