// Package backup pushes zstd-compressed SQLite snapshots to S3-compatible
// object storage (Cloudflare R2, MinIO, AWS S3) and restores them.
package backup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
)

// ErrNotFound is returned when no snapshot object exists.
var ErrNotFound = errors.New("backup: snapshot not found")

// Config holds object storage configuration.
type Config struct {
	Endpoint    string // e.g. https://<account>.r2.cloudflarestorage.com
	Region      string // "auto" for R2
	AccessKeyID string
	SecretKey   string
	Bucket      string
	Prefix      string // key prefix, e.g. "backups/"
}

// objectAPI is the subset of *s3.Client used here.
type objectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// Object describes one stored snapshot.
type Object struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// Client reads and writes snapshot objects under one bucket prefix.
type Client struct {
	api    objectAPI
	bucket string
	prefix string
}

// New creates a client for an S3-compatible endpoint with static credentials.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.Endpoint == "" || cfg.AccessKeyID == "" || cfg.SecretKey == "" || cfg.Bucket == "" {
		return nil, errors.New("backup: endpoint, credentials and bucket are required")
	}
	region := cfg.Region
	if region == "" {
		region = "auto"
	}

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretKey,
			"",
		)),
		config.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("backup: load aws config: %w", err)
	}

	api := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true // R2 and MinIO
	})

	return newClient(api, cfg.Bucket, cfg.Prefix), nil
}

func newClient(api objectAPI, bucket, prefix string) *Client {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &Client{api: api, bucket: bucket, prefix: prefix}
}

// Prefix returns the key prefix snapshots are stored under.
func (c *Client) Prefix() string {
	return c.prefix
}

// Upload stores body under key. Returns the object's ETag.
func (c *Client) Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	input := &s3.PutObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	result, err := c.api.PutObject(ctx, input)
	if err != nil {
		return "", fmt.Errorf("backup: upload %q: %w", key, err)
	}
	return trimETag(result.ETag), nil
}

// Download opens the object at key. Caller must close the body.
// Returns ErrNotFound when the key does not exist.
func (c *Client) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	result, err := c.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("backup: download %q: %w", key, err)
	}
	return result.Body, nil
}

// List returns the snapshots under the prefix, newest first. Keys embed a
// UTC timestamp, so key order is creation order.
func (c *Client) List(ctx context.Context) ([]Object, error) {
	var (
		objects []Object
		token   *string
	)
	for {
		out, err := c.api.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(c.bucket),
			Prefix:            aws.String(c.prefix),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("backup: list %q: %w", c.prefix, err)
		}
		for _, o := range out.Contents {
			key := aws.ToString(o.Key)
			if !strings.HasSuffix(key, snapshotSuffix) {
				continue
			}
			objects = append(objects, Object{
				Key:          key,
				Size:         aws.ToInt64(o.Size),
				LastModified: aws.ToTime(o.LastModified),
			})
		}
		if !aws.ToBool(out.IsTruncated) || out.NextContinuationToken == nil {
			break
		}
		token = out.NextContinuationToken
	}

	slices.SortFunc(objects, func(a, b Object) int {
		return strings.Compare(b.Key, a.Key)
	})
	return objects, nil
}

// Latest returns the newest snapshot key, or ErrNotFound.
func (c *Client) Latest(ctx context.Context) (string, error) {
	objects, err := c.List(ctx)
	if err != nil {
		return "", err
	}
	if len(objects) == 0 {
		return "", ErrNotFound
	}
	return objects[0].Key, nil
}

func trimETag(etag *string) string {
	return strings.Trim(aws.ToString(etag), "\"")
}

func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound", "404":
			return true
		}
	}
	var respErr *smithyhttp.ResponseError
	if errors.As(err, &respErr) && respErr.HTTPStatusCode() == 404 {
		return true
	}
	return false
}
