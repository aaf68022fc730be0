package output

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/color"
	"log"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// UploadTimeout bounds a single object upload
const UploadTimeout = 30 * time.Second

// ErrNoBucket is returned when uploading without a configured bucket
var ErrNoBucket = errors.New("no S3 bucket configured")

// S3Config holds the connection settings for an S3-compatible object store
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string // Empty for AWS, set for S3-compatible stores
	AccessKey string
	SecretKey string
	ACL       string // Optional canned ACL such as "public-read"
}

// ObjectPutter is the subset of the S3 client used for uploads
type ObjectPutter interface {
	PutObjectWithContext(ctx aws.Context, input *s3.PutObjectInput, opts ...request.Option) (*s3.PutObjectOutput, error)
}

// S3Uploader stores encoded images in a bucket
type S3Uploader struct {
	client ObjectPutter
	bucket string
	acl    string
}

// NewS3Uploader creates an uploader with a new AWS session
func NewS3Uploader(cfg S3Config) (*S3Uploader, error) {
	if cfg.Bucket == "" {
		return nil, ErrNoBucket
	}

	awsConfig := &aws.Config{
		Region:           aws.String(cfg.Region),
		S3ForcePathStyle: aws.Bool(cfg.Endpoint != ""),
	}
	if cfg.AccessKey != "" {
		awsConfig.Credentials = credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, "")
	}
	if cfg.Endpoint != "" {
		awsConfig.Endpoint = aws.String(cfg.Endpoint)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("create S3 session: %w", err)
	}
	return NewS3UploaderWithClient(s3.New(sess), cfg.Bucket, cfg.ACL), nil
}

// NewS3UploaderWithClient creates an uploader around an existing client
func NewS3UploaderWithClient(client ObjectPutter, bucket, acl string) *S3Uploader {
	return &S3Uploader{client: client, bucket: bucket, acl: acl}
}

// Bucket returns the destination bucket
func (u *S3Uploader) Bucket() string {
	return u.bucket
}

// UploadPNG stores data under key
func (u *S3Uploader) UploadPNG(ctx context.Context, key string, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, UploadTimeout)
	defer cancel()

	size := int64(len(data))
	input := &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(size),
		ContentType:   aws.String("image/png"),
	}
	if u.acl != "" {
		input.ACL = aws.String(u.acl)
	}

	if _, err := u.client.PutObjectWithContext(ctx, input); err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}

	log.Printf("Uploaded %s to S3 (%d bytes)", key, size)
	return nil
}

// S3Sink encodes a render into memory and uploads it when closed
type S3Sink struct {
	ctx      context.Context
	uploader *S3Uploader
	key      string
	buf      bytes.Buffer
	png      *PNGSink
}

// NewS3Sink creates a sink that uploads to key
func NewS3Sink(ctx context.Context, uploader *S3Uploader, key string, resize ResizeOptions) *S3Sink {
	s := &S3Sink{ctx: ctx, uploader: uploader, key: key}
	s.png = NewPNGSink(&s.buf, resize)
	return s
}

// Key returns the object key
func (s *S3Sink) Key() string {
	return s.key
}

// Open prepares a width x height image
func (s *S3Sink) Open(width, height int) error {
	return s.png.Open(width, height)
}

// WritePixel appends the next pixel in row-major order
func (s *S3Sink) WritePixel(c color.RGBA) error {
	return s.png.WritePixel(c)
}

// Close encodes and uploads the image. Incomplete renders are not uploaded.
func (s *S3Sink) Close() error {
	if err := s.png.Close(); err != nil {
		return err
	}
	return s.uploader.UploadPNG(s.ctx, s.key, s.buf.Bytes())
}
