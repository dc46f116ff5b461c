package export

import (
	"bytes"
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/yourname/timesheet/internal"
	"github.com/yourname/timesheet/internal/config"
)

// S3Sink uploads report files to a bucket and returns a presigned GET URL.
// A custom endpoint supports MinIO-compatible stores.
type S3Sink struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
	logger  internal.Logger
}

func NewS3Sink(cfg *config.Config, logger internal.Logger) (*S3Sink, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.S3Region),
	}
	if cfg.S3AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		logger.Errorf("failed to load aws config: %v", err)
		return nil, err
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Sink{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.S3Bucket,
		logger:  logger,
	}, nil
}

func (s *S3Sink) Upload(ctx context.Context, filename string, payload []byte) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(filename),
		Body:        bytes.NewReader(payload),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		s.logger.Errorf("failed to upload %s: %v", filename, err)
		return "", err
	}
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(filename),
	}, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		s.logger.Errorf("failed to presign %s: %v", filename, err)
		return "", err
	}
	return req.URL, nil
}

var _ Sink = (*S3Sink)(nil)
