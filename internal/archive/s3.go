// Package archive keeps a copy of every verified processor event in an
// S3-compatible bucket.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"
)

// Options configures the bucket connection. Endpoint is empty for AWS itself.
type Options struct {
	Endpoint  string
	Region    string
	Bucket    string
	Prefix    string
	AccessKey string
	SecretKey string
}

type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Archiver implements services.EventArchiver.
type S3Archiver struct {
	client putObjectAPI
	bucket string
	prefix string
	now    func() time.Time
	log    *logrus.Entry
}

func New(ctx context.Context, opts Options) (*S3Archiver, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("archive bucket is required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(opts.Region),
	}
	if opts.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load archive config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})
	return newArchiver(client, opts.Bucket, opts.Prefix), nil
}

func newArchiver(client putObjectAPI, bucket, prefix string) *S3Archiver {
	return &S3Archiver{
		client: client,
		bucket: bucket,
		prefix: prefix,
		now:    time.Now,
		log:    logrus.WithField("component", "archive"),
	}
}

// Key returns the object key for an event received at t.
func (a *S3Archiver) Key(eventID, eventType string, t time.Time) string {
	return path.Join(a.prefix, t.UTC().Format("2006/01/02"), eventType, eventID+".json")
}

func (a *S3Archiver) Archive(ctx context.Context, eventID, eventType string, payload []byte) error {
	key := a.Key(eventID, eventType, a.now())
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(payload),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	a.log.WithField("key", key).Debug("event archived")
	return nil
}
