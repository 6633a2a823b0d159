package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog/log"
)

// ErrNotFound is returned when the requested object does not exist.
var ErrNotFound = errors.New("object not found")

// Options configures an S3Client. Endpoint and static keys are optional and
// mainly serve S3-compatible stores such as MinIO or LocalStack.
type Options struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	PresignTTL      time.Duration
}

// S3Client reads uploaded documents and writes processing results.
type S3Client struct {
	client     *s3.Client
	uploader   *manager.Uploader
	presigner  *s3.PresignClient
	bucketName string
	presignTTL time.Duration
}

// FileMetadata represents metadata about a stored file
type FileMetadata struct {
	OriginalName string            `json:"original_name"`
	ContentType  string            `json:"content_type"`
	Size         int64             `json:"size"`
	Metadata     map[string]string `json:"metadata"`
}

// NewS3Client creates a new S3 client
func NewS3Client(ctx context.Context, opts Options) (*S3Client, error) {
	var loadOpts []func(*awscfg.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, awscfg.WithRegion(opts.Region))
	}
	if opts.AccessKeyID != "" && opts.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, "")))
	}

	cfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	cli := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	ttl := opts.PresignTTL
	if ttl <= 0 {
		ttl = time.Hour
	}

	return &S3Client{
		client:     cli,
		uploader:   manager.NewUploader(cli),
		presigner:  s3.NewPresignClient(cli),
		bucketName: opts.Bucket,
		presignTTL: ttl,
	}, nil
}

// Bucket returns the configured bucket name.
func (s *S3Client) Bucket() string { return s.bucketName }

// PresignTTL returns how long presigned URLs stay valid.
func (s *S3Client) PresignTTL() time.Duration { return s.presignTTL }

// GetDocument downloads an object and its user metadata.
func (s *S3Client) GetDocument(ctx context.Context, key string) ([]byte, *FileMetadata, error) {
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *s3types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, nil, fmt.Errorf("%w: s3://%s/%s", ErrNotFound, s.bucketName, key)
		}
		return nil, nil, fmt.Errorf("failed to download from S3: %w", err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read S3 object: %w", err)
	}

	meta := &FileMetadata{
		ContentType: aws.ToString(result.ContentType),
		Size:        int64(len(data)),
		Metadata:    make(map[string]string, len(result.Metadata)),
	}
	for k, v := range result.Metadata {
		meta.Metadata[strings.ToLower(k)] = v
	}
	// Uploaders record the original filename as x-amz-meta-name.
	if name := meta.Metadata["name"]; name != "" {
		meta.OriginalName = name
	} else {
		meta.OriginalName = path.Base(key)
	}

	log.Debug().
		Str("key", key).
		Str("original_name", meta.OriginalName).
		Int("size", len(data)).
		Msg("downloaded document from S3")

	return data, meta, nil
}

// PutJSON uploads v as a JSON object.
func (s *S3Client) PutJSON(ctx context.Context, key string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	_, err = s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}
	log.Debug().Str("key", key).Int("size", len(body)).Msg("uploaded result to S3")
	return nil
}

// PresignUpload returns a URL that accepts a single PUT of key.
func (s *S3Client) PresignUpload(ctx context.Context, key, contentType string) (string, error) {
	in := &s3.PutObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}
	req, err := s.presigner.PresignPutObject(ctx, in, s3.WithPresignExpires(s.presignTTL))
	if err != nil {
		return "", fmt.Errorf("failed to presign %s: %w", key, err)
	}
	return req.URL, nil
}

// Ping checks that the bucket exists and is reachable.
func (s *S3Client) Ping(ctx context.Context) error {
	if _, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucketName)}); err != nil {
		return fmt.Errorf("head bucket %s: %w", s.bucketName, err)
	}
	return nil
}
