package media

import (
	"bytes"
	"context"
	"net/url"
	"strings"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	goerrors "github.com/goliatone/go-errors"
)

// S3Config holds construction parameters for an S3-compatible bucket.
type S3Config struct {
	Bucket        string
	Region        string
	Endpoint      string // optional, e.g. MinIO
	PathStyle     bool
	PublicBaseURL string // optional, overrides the derived object URL
}

// S3Backend stores objects in a single bucket.
type S3Backend struct {
	client  *s3.Client
	cfg     S3Config
	baseURL string
}

// NewS3Backend loads the default AWS credential chain and builds a client.
func NewS3Backend(ctx context.Context, cfg S3Config) (*S3Backend, error) {
	if cfg.Bucket == "" {
		return nil, goerrors.New("s3 bucket required", goerrors.CategoryBadInput)
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.Region))
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryExternal, "load aws config")
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return NewS3BackendWithClient(client, cfg), nil
}

// NewS3BackendWithClient uses an already configured client.
func NewS3BackendWithClient(client *s3.Client, cfg S3Config) *S3Backend {
	return &S3Backend{client: client, cfg: cfg, baseURL: objectBaseURL(cfg)}
}

// Put uploads body under key and returns its public URL.
func (b *S3Backend) Put(ctx context.Context, key, contentType string, body []byte) (string, error) {
	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.cfg.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", err
	}
	return b.baseURL + "/" + key, nil
}

func objectBaseURL(cfg S3Config) string {
	if cfg.PublicBaseURL != "" {
		return strings.TrimRight(cfg.PublicBaseURL, "/")
	}
	if cfg.Endpoint != "" {
		if u, err := url.Parse(cfg.Endpoint); err == nil && u.Host != "" {
			if cfg.PathStyle {
				return strings.TrimRight(u.String(), "/") + "/" + cfg.Bucket
			}
			return u.Scheme + "://" + cfg.Bucket + "." + u.Host
		}
	}
	return "https://" + cfg.Bucket + ".s3." + cfg.Region + ".amazonaws.com"
}
