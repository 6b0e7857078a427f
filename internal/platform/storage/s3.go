package storage

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config configures the S3 compatible backend.
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// objectPutter and objectPresigner are the subset of the SDK the store needs.
type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type objectPresigner interface {
	PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// S3Store keeps documents in an S3 bucket and serves them via presigned redirects.
type S3Store struct {
	bucket    string
	client    objectPutter
	presigner objectPresigner
	expires   time.Duration
	now       func() time.Time
}

// NewS3Store builds the SDK clients from static credentials when given, falling back
// to the default AWS credential chain otherwise.
func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("platform/storage: load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return newS3Store(cfg.Bucket, client, s3.NewPresignClient(client)), nil
}

func newS3Store(bucket string, client objectPutter, presigner objectPresigner) *S3Store {
	return &S3Store{
		bucket:    bucket,
		client:    client,
		presigner: presigner,
		expires:   15 * time.Minute,
		now:       time.Now,
	}
}

// Save uploads the document to the bucket.
func (s *S3Store) Save(ctx context.Context, up Upload) (string, error) {
	key, err := objectKey(up, s.now())
	if err != nil {
		return "", err
	}
	in := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        up.Body,
		ContentType: aws.String(contentType(up)),
	}
	if up.Size > 0 {
		in.ContentLength = aws.Int64(up.Size)
	}
	if _, err := s.client.PutObject(ctx, in); err != nil {
		return "", fmt.Errorf("platform/storage: put %s: %w", key, err)
	}
	return publicPath(key), nil
}

// Delete removes a saved document from the bucket.
func (s *S3Store) Delete(ctx context.Context, p string) error {
	key, err := keyFromPath(p)
	if err != nil {
		return err
	}
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("platform/storage: delete %s: %w", key, err)
	}
	return nil
}

// Handler redirects to a short lived presigned GET URL.
func (s *S3Store) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimPrefix(r.URL.Path, PublicPrefix)
		if key == "" || strings.Contains(key, "/") {
			http.NotFound(w, r)
			return
		}
		req, err := s.presigner.PresignGetObject(r.Context(), &s3.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		}, s3.WithPresignExpires(s.expires))
		if err != nil {
			http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
			return
		}
		http.Redirect(w, r, req.URL, http.StatusTemporaryRedirect)
	})
}
