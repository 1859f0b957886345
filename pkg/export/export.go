// Package export writes render snapshots to a directory or to S3.
package export

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vango-dev/vrt/internal/errors"
	"github.com/vango-dev/vrt/pkg/oplog"
)

// Sink stores named objects.
type Sink interface {
	Put(ctx context.Context, name string, body []byte, contentType string) error
}

// Snapshot is the state of a container after a render: its HTML and the
// mutations that produced it.
type Snapshot struct {
	HTML string
	Ops  []oplog.Op
}

// Write stores s as "<name>.html" and "<name>.ops.<ext>" in sink, encoding
// the op log in format f. It returns the object names written.
func (s Snapshot) Write(ctx context.Context, sink Sink, name string, f oplog.Format) ([]string, error) {
	htmlName := name + ".html"
	if err := sink.Put(ctx, htmlName, []byte(s.HTML), "text/html; charset=utf-8"); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := oplog.Encode(&buf, s.Ops, f); err != nil {
		return nil, err
	}
	opsName := name + ".ops." + f.Ext()
	if err := sink.Put(ctx, opsName, buf.Bytes(), f.ContentType()); err != nil {
		return nil, err
	}
	return []string{htmlName, opsName}, nil
}

// FileSink writes objects as files under Dir.
type FileSink struct {
	Dir string
}

// Put implements Sink.
func (s FileSink) Put(_ context.Context, name string, body []byte, _ string) error {
	target := filepath.Join(s.Dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return errors.New("X301").Wrap(err)
	}
	if err := os.WriteFile(target, body, 0o644); err != nil {
		return errors.New("X301").Wrap(err)
	}
	return nil
}

// S3PutObjectAPI is the part of the S3 client S3Sink needs.
// *s3.Client satisfies it.
type S3PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Sink writes objects to an S3 bucket under Prefix.
type S3Sink struct {
	Client S3PutObjectAPI
	Bucket string
	Prefix string
}

// Put implements Sink.
func (s S3Sink) Put(ctx context.Context, name string, body []byte, contentType string) error {
	key := path.Join(s.Prefix, name)
	_, err := s.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
		Metadata: map[string]string{
			"export-time": time.Now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return errors.New("X301").Wrap(fmt.Errorf("s3 put s3://%s/%s: %w", s.Bucket, key, err))
	}
	return nil
}

// Target is a parsed export destination.
type Target struct {
	// Bucket is set for s3:// targets.
	Bucket string

	// Prefix is the key prefix for s3:// targets.
	Prefix string

	// Dir is set for directory targets.
	Dir string
}

// IsS3 reports whether the target is an S3 location.
func (t Target) IsS3() bool {
	return t.Bucket != ""
}

// String returns the target in the form ParseTarget accepts.
func (t Target) String() string {
	if t.IsS3() {
		if t.Prefix == "" {
			return "s3://" + t.Bucket
		}
		return "s3://" + t.Bucket + "/" + t.Prefix
	}
	return t.Dir
}

// ParseTarget parses "s3://bucket/prefix" or a directory path.
func ParseTarget(s string) (Target, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Target{}, errors.New("X300").WithDetail("The export target is empty.")
	}
	if rest, ok := strings.CutPrefix(s, "s3://"); ok {
		bucket, prefix, _ := strings.Cut(rest, "/")
		if bucket == "" {
			return Target{}, errors.New("X300").WithDetailf("%q has no bucket", s)
		}
		return Target{Bucket: bucket, Prefix: strings.Trim(prefix, "/")}, nil
	}
	if strings.Contains(s, "://") {
		return Target{}, errors.New("X300").WithDetailf("unsupported scheme in %q", s)
	}
	return Target{Dir: s}, nil
}

// Sink builds a sink for the target. For S3 targets client is used when
// non-nil; otherwise one is built with NewS3Client.
func (t Target) Sink(client S3PutObjectAPI, region string) (Sink, error) {
	if !t.IsS3() {
		return FileSink{Dir: t.Dir}, nil
	}
	if client == nil {
		c, err := NewS3Client(region)
		if err != nil {
			return nil, err
		}
		client = c
	}
	return S3Sink{Client: client, Bucket: t.Bucket, Prefix: t.Prefix}, nil
}

// NewS3Client builds an S3 client with credentials from AWS_ACCESS_KEY_ID,
// AWS_SECRET_ACCESS_KEY and AWS_SESSION_TOKEN. An empty region falls back
// to AWS_REGION, then AWS_DEFAULT_REGION.
func NewS3Client(region string) (*s3.Client, error) {
	if region == "" {
		region = os.Getenv("AWS_REGION")
	}
	if region == "" {
		region = os.Getenv("AWS_DEFAULT_REGION")
	}
	if region == "" {
		return nil, errors.New("X302").WithSuggestion("Set AWS_REGION")
	}

	creds, err := envCredentials(context.Background())
	if err != nil {
		return nil, err
	}
	provider := aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
		return creds, nil
	})

	return s3.New(s3.Options{
		Region:      region,
		Credentials: aws.NewCredentialsCache(provider),
	}), nil
}

func envCredentials(context.Context) (aws.Credentials, error) {
	id := os.Getenv("AWS_ACCESS_KEY_ID")
	secret := os.Getenv("AWS_SECRET_ACCESS_KEY")
	if id == "" || secret == "" {
		return aws.Credentials{}, errors.New("X302").
			WithSuggestion("Set AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY")
	}
	return aws.Credentials{
		AccessKeyID:     id,
		SecretAccessKey: secret,
		SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
		Source:          "Environment",
	}, nil
}
