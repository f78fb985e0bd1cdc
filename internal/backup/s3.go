package backup

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const (
	EnvAccessKeyID     = "AWS_ACCESS_KEY_ID"
	EnvSecretAccessKey = "AWS_SECRET_ACCESS_KEY"
	EnvSessionToken    = "AWS_SESSION_TOKEN"
)

// ObjectPutter is the subset of *s3.Client used by S3Sink.
type ObjectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Config struct {
	Bucket string
	Region string
	// Endpoint targets an S3-compatible service and switches to path-style
	// addressing.
	Endpoint string
}

// NewS3Client builds a client that reads static credentials from the
// standard AWS environment variables.
func NewS3Client(cfg S3Config) *s3.Client {
	opts := s3.Options{
		Region:      cfg.Region,
		Credentials: aws.NewCredentialsCache(aws.CredentialsProviderFunc(envCredentials)),
	}
	if endpoint := strings.TrimSpace(cfg.Endpoint); endpoint != "" {
		opts.BaseEndpoint = aws.String(endpoint)
		opts.UsePathStyle = true
	}
	return s3.New(opts)
}

func envCredentials(context.Context) (aws.Credentials, error) {
	id := os.Getenv(EnvAccessKeyID)
	secret := os.Getenv(EnvSecretAccessKey)
	if id == "" || secret == "" {
		return aws.Credentials{}, fmt.Errorf("backup: %s and %s must be set", EnvAccessKeyID, EnvSecretAccessKey)
	}
	return aws.Credentials{
		AccessKeyID:     id,
		SecretAccessKey: secret,
		SessionToken:    os.Getenv(EnvSessionToken),
		Source:          "EnvironmentVariables",
	}, nil
}

// S3Sink uploads objects to one bucket.
type S3Sink struct {
	client ObjectPutter
	bucket string
}

func NewS3Sink(client ObjectPutter, bucket string) *S3Sink {
	return &S3Sink{client: client, bucket: bucket}
}

func (s *S3Sink) Put(ctx context.Context, obj Object) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(obj.Key),
		Body:        bytes.NewReader(obj.Data),
		ContentType: aws.String("application/octet-stream"),
		Metadata: map[string]string{
			"remote-path": obj.Remote,
			"xxhash64":    obj.Digest,
			"backup-time": time.Now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: s3 put %s: %w", ErrStoreFailed, obj.Key, err)
	}
	return "s3://" + s.bucket + "/" + obj.Key, nil
}
