package files

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"

	"github.com/revisehub/revisehub/core"
)

// s3Storage keeps note files in an S3-compatible bucket. A non-empty
// Endpoint points the client at MinIO or another compatible backend.
type s3Storage struct {
	client *s3.Client
	conf   core.S3Config
}

var _ core.FileStorage = (*s3Storage)(nil)

func NewS3Storage(ctx context.Context, conf *core.Config) (*s3Storage, error) {
	s3conf := conf.Storage.S3

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(s3conf.Region),
	}
	if s3conf.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(s3conf.AccessKey, s3conf.SecretKey, ""),
		))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "loading aws config")
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if s3conf.Endpoint != "" {
			o.BaseEndpoint = aws.String(s3conf.Endpoint)
			o.UsePathStyle = true // MinIO
		}
	})
	return &s3Storage{client: client, conf: s3conf}, nil
}

func (st *s3Storage) Save(ctx context.Context, key, contentType string, r io.Reader) error {
	_, err := st.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(st.conf.Bucket),
		Key:         aws.String(key),
		Body:        r,
		ContentType: aws.String(contentType),
	})
	return errors.Wrap(err, "putting object")
}

func (st *s3Storage) Delete(ctx context.Context, key string) error {
	_, err := st.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(st.conf.Bucket),
		Key:    aws.String(key),
	})
	return errors.Wrap(err, "deleting object")
}

func (st *s3Storage) URL(key string) string {
	if st.conf.Endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimRight(st.conf.Endpoint, "/"), st.conf.Bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", st.conf.Bucket, st.conf.Region, key)
}
