package sync

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Destination writes event-log snapshots to an S3-compatible bucket.
// Each snapshot goes to a date-stamped key under the configured prefix,
// and the same payload is mirrored to <prefix>/latest.jsonl so restore
// tooling has a stable name to fetch.
type S3Destination struct {
	client *s3.Client
	bucket string
	prefix string

	// Now is the clock used to stamp object keys. Tests override it.
	Now func() time.Time
}

// NewS3Destination creates an S3 destination. If endpoint is non-empty,
// path-style addressing is enabled (for MinIO and similar).
func NewS3Destination(ctx context.Context, bucket, prefix, region, endpoint string) (*S3Destination, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
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

	client := s3.NewFromConfig(cfg, s3opts...)
	return &S3Destination{
		client: client,
		bucket: bucket,
		prefix: prefix,
		Now:    time.Now,
	}, nil
}

// snapshotKey builds the date-stamped object key for a snapshot taken at t,
// e.g. "noird/2026/08/28/events-142301.jsonl". Snapshots from the same day
// share a directory so bucket listings group naturally.
func snapshotKey(prefix string, t time.Time) string {
	t = t.UTC()
	return path.Join(prefix, t.Format("2006/01/02"), "events-"+t.Format("150405")+".jsonl")
}

// latestKey is the stable alias for the most recent snapshot.
func latestKey(prefix string) string {
	return path.Join(prefix, "latest.jsonl")
}

// Write uploads the snapshot to its date-stamped key and refreshes the
// latest alias. The stamped object is the durable copy; a failure updating
// the alias is still an error so the scheduler retries the whole write.
func (d *S3Destination) Write(ctx context.Context, data []byte) error {
	if err := d.put(ctx, snapshotKey(d.prefix, d.Now()), data); err != nil {
		return err
	}
	return d.put(ctx, latestKey(d.prefix), data)
}

func (d *S3Destination) put(ctx context.Context, key string, data []byte) error {
	contentType := "application/x-ndjson"
	_, err := d.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(d.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: &contentType,
	})
	if err != nil {
		return fmt.Errorf("s3 put %s: %w", key, err)
	}
	return nil
}
