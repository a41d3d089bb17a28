package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"contact-book/internal/config"
)

const avatarPrefix = "avatars/"

var ErrStorageDisabled = errors.New("avatar storage not configured")

var (
	loadDefaultAWSConfig  = awsconfig.LoadDefaultConfig
	newS3ClientFromConfig = s3.NewFromConfig
)

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3AvatarStore guarda avatares en un bucket compatible con S3 (MinIO en local).
// Cada usuario tiene una unica clave; subir de nuevo sobreescribe.
type S3AvatarStore struct {
	client        objectPutter
	bucket        string
	publicBaseURL string
}

func NewS3AvatarStore(ctx context.Context, cfg *config.Config) (*S3AvatarStore, error) {
	if strings.TrimSpace(cfg.S3Bucket) == "" {
		return nil, ErrStorageDisabled
	}
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.S3Region)}
	if cfg.S3AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		))
	}
	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3AvatarStore{
		client:        client,
		bucket:        cfg.S3Bucket,
		publicBaseURL: publicBaseURL(cfg),
	}, nil
}

func publicBaseURL(cfg *config.Config) string {
	if cfg.S3PublicBaseURL != "" {
		return strings.TrimRight(cfg.S3PublicBaseURL, "/")
	}
	if cfg.S3Endpoint != "" {
		return strings.TrimRight(cfg.S3Endpoint, "/") + "/" + cfg.S3Bucket
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.S3Bucket, cfg.S3Region)
}

func AvatarKey(userID string) string {
	return avatarPrefix + userID
}

func (s *S3AvatarStore) UploadAvatar(ctx context.Context, userID string, data []byte, contentType string) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", errors.New("user id is required")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	key := AvatarKey(userID)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("put avatar object: %w", err)
	}
	return s.publicBaseURL + "/" + key, nil
}

// DisabledAvatarStore se usa cuando no hay bucket configurado.
type DisabledAvatarStore struct{}

func NewDisabledAvatarStore() *DisabledAvatarStore {
	return &DisabledAvatarStore{}
}

func (DisabledAvatarStore) UploadAvatar(context.Context, string, []byte, string) (string, error) {
	return "", ErrStorageDisabled
}
