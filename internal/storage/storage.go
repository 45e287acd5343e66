package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("object not found")

type Storage struct {
	client *s3.Client
	bucket string
	prefix string
}

type Config struct {
	Endpoint  string
	Bucket    string
	Prefix    string // Key prefix media lives under, e.g. "media/"
	AccessKey string
	SecretKey string
	Region    string
}

type ObjectInfo struct {
	Size         int64
	ContentType  string
	LastModified time.Time
}

func New(ctx context.Context, cfg Config) (*Storage, error) {
	if cfg.Region == "" {
		cfg.Region = "eu-central-1"
	}

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, errors.Wrap(err, "load aws config")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = true
	})

	return &Storage{
		client: client,
		bucket: cfg.Bucket,
		prefix: cfg.Prefix,
	}, nil
}

func (s *Storage) key(name string) string {
	return s.prefix + name
}

// CheckBucket verifies the bucket exists and is reachable with the configured
// credentials.
func (s *Storage) CheckBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		return errors.Wrapf(translate(err), "head bucket %s", s.bucket)
	}
	return nil
}

func (s *Storage) HeadObject(ctx context.Context, name string) (ObjectInfo, error) {
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		return ObjectInfo{}, errors.Wrapf(translate(err), "head object %s", name)
	}

	info := ObjectInfo{}
	if out.ContentLength != nil {
		info.Size = *out.ContentLength
	}
	if out.ContentType != nil {
		info.ContentType = *out.ContentType
	}
	if out.LastModified != nil {
		info.LastModified = *out.LastModified
	}
	return info, nil
}

// GetObjectFrom streams the object starting at offset through to its end.
func (s *Storage) GetObjectFrom(ctx context.Context, name string, offset int64) (io.ReadCloser, error) {
	input := &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	}
	if offset > 0 {
		input.Range = aws.String(rangeFrom(offset))
	}

	out, err := s.client.GetObject(ctx, input)
	if err != nil {
		return nil, errors.Wrapf(translate(err), "get object %s", name)
	}
	return out.Body, nil
}

// List returns the names of all objects under the configured prefix, with the
// prefix removed.
func (s *Storage) List(ctx context.Context) ([]string, error) {
	var names []string
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, errors.Wrap(translate(err), "list objects")
		}
		for _, obj := range page.Contents {
			if obj.Key == nil {
				continue
			}
			name := strings.TrimPrefix(*obj.Key, s.prefix)
			if name == "" || strings.HasSuffix(name, "/") {
				continue
			}
			names = append(names, name)
		}
	}
	return names, nil
}

func rangeFrom(offset int64) string {
	return fmt.Sprintf("bytes=%d-", offset)
}

func translate(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey", "NoSuchBucket":
			return ErrNotFound
		}
	}
	return err
}
