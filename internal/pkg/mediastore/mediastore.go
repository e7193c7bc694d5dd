// Package mediastore persists uploaded images either on local disk or in an
// S3 compatible bucket.
package mediastore

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/panotour/core/internal/config"
)

// Store writes objects under slash separated keys and returns the URL the
// object is reachable at.
type Store interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	// Key maps a URL previously returned by Put back to its key.
	Key(publicURL string) (string, bool)
}

// New builds the store selected by cfg.Media.Driver.
func New(cfg *config.AppConfig) (Store, error) {
	switch cfg.Media.Driver {
	case config.MediaS3:
		return NewS3(cfg.Media.S3)
	case "", config.MediaLocal:
		return NewLocal(cfg.StaticDir()), nil
	default:
		return nil, fmt.Errorf("unknown media driver %q", cfg.Media.Driver)
	}
}

// NormalizeKey cleans a user supplied key and rejects keys escaping the root.
func NormalizeKey(key string) (string, error) {
	key = strings.TrimSpace(strings.ReplaceAll(key, "\\", "/"))
	key = strings.TrimPrefix(filepath.ToSlash(filepath.Clean("/"+key)), "/")
	if key == "" || key == "." {
		return "", fmt.Errorf("invalid object key")
	}
	return key, nil
}

// Local stores objects below a directory served as static files.
type Local struct {
	root string
}

func NewLocal(root string) *Local {
	return &Local{root: root}
}

func (l *Local) Root() string { return l.root }

func (l *Local) Put(_ context.Context, key string, body io.Reader, _ int64, _ string) (string, error) {
	key, err := NormalizeKey(key)
	if err != nil {
		return "", err
	}
	target := filepath.Join(l.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", err
	}
	f, err := os.Create(target)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		_ = os.Remove(target)
		return "", err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(target)
		return "", err
	}
	return "/" + key, nil
}

func (l *Local) Delete(_ context.Context, key string) error {
	key, err := NormalizeKey(key)
	if err != nil {
		return err
	}
	err = os.Remove(filepath.Join(l.root, filepath.FromSlash(key)))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (l *Local) Key(publicURL string) (string, bool) {
	if !strings.HasPrefix(publicURL, "/") {
		return "", false
	}
	key, err := NormalizeKey(publicURL)
	return key, err == nil
}

// S3 stores objects in a bucket. Custom endpoints imply path style access.
type S3 struct {
	client *s3.Client
	bucket string
	base   string
}

func NewS3(opts config.S3Options) (*S3, error) {
	if opts.Bucket == "" || opts.Region == "" || opts.AccessKeyID == "" || opts.SecretAccessKey == "" {
		return nil, fmt.Errorf("incomplete s3 config: bucket/region/access_key_id/secret_access_key are required")
	}

	s3opts := s3.Options{
		Region:      opts.Region,
		Credentials: credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
	}
	endpoint := strings.TrimSuffix(strings.TrimSpace(opts.Endpoint), "/")
	if endpoint != "" {
		if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
			endpoint = "https://" + endpoint
		}
		if _, err := url.Parse(endpoint); err != nil {
			return nil, fmt.Errorf("invalid s3 endpoint %q: %w", endpoint, err)
		}
		s3opts.BaseEndpoint = aws.String(endpoint)
		s3opts.UsePathStyle = true
	}
	if opts.PathStyleAccess {
		s3opts.UsePathStyle = true
	}

	base := strings.TrimRight(strings.TrimSpace(opts.CustomDomain), "/")
	switch {
	case base != "":
	case endpoint != "":
		base = endpoint + "/" + opts.Bucket
	default:
		base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", opts.Bucket, opts.Region)
	}

	return &S3{client: s3.New(s3opts), bucket: opts.Bucket, base: base}, nil
}

func (s *S3) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	key, err := NormalizeKey(key)
	if err != nil {
		return "", err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	}
	if size >= 0 {
		input.ContentLength = aws.Int64(size)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("s3 put %s: %w", key, err)
	}
	return s.base + "/" + key, nil
}

func (s *S3) Delete(ctx context.Context, key string) error {
	key, err := NormalizeKey(key)
	if err != nil {
		return err
	}
	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete %s: %w", key, err)
	}
	return nil
}

func (s *S3) Key(publicURL string) (string, bool) {
	rest, ok := strings.CutPrefix(publicURL, s.base+"/")
	if !ok {
		return "", false
	}
	key, err := NormalizeKey(rest)
	return key, err == nil
}
