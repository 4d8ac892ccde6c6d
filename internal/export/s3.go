package export

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/alfredjeanlab/casos/internal/model"
)

// Placeholders expanded in an S3 object key on every write.
const (
	KeyModePlaceholder = "{mode}"
	KeyDatePlaceholder = "{date}"
)

// S3Destination writes JSONL data to an S3-compatible bucket.
type S3Destination struct {
	client *s3.Client
	bucket string
	key    string
	mode   func() string
	now    func() time.Time
}

// ObjectKey expands the key placeholders: {mode} becomes mode (the default
// mode when empty) and {date} becomes the UTC date of now as YYYY-MM-DD.
// Validate and test exports therefore land under different keys.
func ObjectKey(key, mode string, now time.Time) string {
	if mode == "" {
		mode = model.DefaultMode.String()
	}
	return strings.NewReplacer(
		KeyModePlaceholder, mode,
		KeyDatePlaceholder, now.UTC().Format(time.DateOnly),
	).Replace(key)
}

// NewS3Destination creates an S3 destination. If endpoint is non-empty,
// path-style addressing is enabled (for MinIO and similar). mode is read on
// every write, so a long-running server follows "casos mode set".
func NewS3Destination(ctx context.Context, bucket, key, region, endpoint string, mode func() string) (*S3Destination, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	var s3opts []func(*s3.Options)
	if endpoint != "" {
		s3opts = append(s3opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		})
	}

	return &S3Destination{
		client: s3.NewFromConfig(cfg, s3opts...),
		bucket: bucket,
		key:    key,
		mode:   mode,
		now:    time.Now,
	}, nil
}

func (d *S3Destination) objectKey() string {
	var mode string
	if d.mode != nil {
		mode = d.mode()
	}
	return ObjectKey(d.key, mode, d.now())
}

func (d *S3Destination) String() string {
	return "s3://" + d.bucket + "/" + d.objectKey()
}

// Write uploads data under the expanded object key.
func (d *S3Destination) Write(ctx context.Context, data []byte) error {
	_, err := d.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(d.bucket),
		Key:         aws.String(d.objectKey()),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(ContentType),
	})
	if err != nil {
		return fmt.Errorf("s3 put object: %w", err)
	}
	return nil
}
