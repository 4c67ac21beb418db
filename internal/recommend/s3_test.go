package recommend

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/stretchr/testify/require"
)

// fakeObjects serves bodies keyed by "bucket/key".
type fakeObjects map[string]string

func (f fakeObjects) GetObjectWithContext(_ aws.Context,
	in *s3.GetObjectInput, _ ...request.Option) (*s3.GetObjectOutput, error) {

	body, ok := f[aws.StringValue(in.Bucket)+"/"+aws.StringValue(in.Key)]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}

	return &s3.GetObjectOutput{
		Body: io.NopCloser(strings.NewReader(body)),
	}, nil
}

func TestS3Source(t *testing.T) {
	t.Parallel()

	objects := fakeObjects{
		"recs/result.json": `[{"가게":"Cafe","이유":"quiet","리뷰":"good"}]`,
	}

	raw, err := S3Source{
		Bucket: "recs", Key: "result.json", Client: objects,
	}.Load(context.Background())
	require.NoError(t, err)

	items, err := Parse(raw)
	require.NoError(t, err)
	require.Equal(t, []Item{{
		Store: "Cafe", Reason: "quiet", Review: "good",
	}}, items)

	_, err = S3Source{
		Bucket: "recs", Key: "missing.json", Client: objects,
	}.Load(context.Background())
	require.ErrorContains(t, err, "s3://recs/missing.json")
}

func TestParseS3URL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw        string
		wantBucket string
		wantKey    string
		wantOK     bool
	}{
		{"s3://recs/result.json", "recs", "result.json", true},
		{"s3://recs/daily/result.json", "recs", "daily/result.json", true},
		{"s3://recs", "", "", false},
		{"s3:///result.json", "", "", false},
		{"https://example.com/result.json", "", "", false},
	}

	for _, tc := range tests {
		bucket, key, ok := ParseS3URL(tc.raw)
		require.Equal(t, tc.wantOK, ok, tc.raw)
		require.Equal(t, tc.wantBucket, bucket, tc.raw)
		require.Equal(t, tc.wantKey, key, tc.raw)
	}
}
