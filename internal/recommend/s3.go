package recommend

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// ObjectGetter is the part of the S3 API the list source needs. *s3.S3
// implements it.
type ObjectGetter interface {
	GetObjectWithContext(ctx aws.Context, input *s3.GetObjectInput,
		opts ...request.Option) (*s3.GetObjectOutput, error)
}

// S3Source reads the list from an S3 (or S3 compatible) object.
type S3Source struct {
	Bucket string
	Key    string
	Client ObjectGetter
}

// Load fetches the object body.
func (s S3Source) Load(ctx context.Context) ([]byte, error) {
	out, err := s.Client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(s.Key),
	})
	if err != nil {
		return nil, fmt.Errorf("fetch s3://%s/%s: %w", s.Bucket, s.Key,
			err)
	}
	defer out.Body.Close()

	return readList(out.Body)
}

// ParseS3URL splits "s3://bucket/key". ok is false for anything else.
func ParseS3URL(raw string) (bucket, key string, ok bool) {
	rest, found := strings.CutPrefix(raw, "s3://")
	if !found {
		return "", "", false
	}

	bucket, key, found = strings.Cut(rest, "/")
	if !found || bucket == "" || key == "" {
		return "", "", false
	}

	return bucket, key, true
}

// NewS3Client builds a client from the default credential chain. A custom
// endpoint switches to path-style addressing for S3 compatible stores.
func NewS3Client(region, endpoint string) (*s3.S3, error) {
	cfg := &aws.Config{Region: aws.String(region)}
	if endpoint != "" {
		cfg.Endpoint = aws.String(endpoint)
		cfg.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, fmt.Errorf("create aws session: %w", err)
	}

	return s3.New(sess), nil
}
