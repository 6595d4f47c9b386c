package pinning

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
	"github.com/dmitrijs2005/dediary/internal/client/models"
	"github.com/dmitrijs2005/dediary/internal/common"
	"github.com/dmitrijs2005/dediary/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObject struct {
	body     []byte
	meta     map[string]string
	modified time.Time
}

// fakeBucket assigns a CID to every object on upload, as an IPFS-backed
// bucket does.
type fakeBucket struct {
	mu      sync.Mutex
	objects map[string]*fakeObject
	order   []string
	nextCID int
	pageMax int

	listErr error
	headErr error
	putErr  error

	deleted []string
}

func newFakeBucket() *fakeBucket {
	return &fakeBucket{objects: map[string]*fakeObject{}, pageMax: 1000}
}

func (f *fakeBucket) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	b, _ := io.ReadAll(in.Body)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextCID++
	meta := map[string]string{"cid": "bafy" + string(rune('a'+f.nextCID-1))}
	for k, v := range in.Metadata {
		meta[k] = v
	}
	key := aws.ToString(in.Key)
	f.objects[key] = &fakeObject{body: b, meta: meta, modified: time.Date(2024, 5, 1, 0, 0, f.nextCID, 0, time.UTC)}
	f.order = append(f.order, key)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeBucket) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if f.headErr != nil {
		return nil, f.headErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &smithy.GenericAPIError{Code: "NotFound"}
	}
	return &s3.HeadObjectOutput{Metadata: o.meta, LastModified: aws.Time(o.modified)}, nil
}

func (f *fakeBucket) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := aws.ToString(in.Key)
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeBucket) HeadBucket(context.Context, *s3.HeadBucketInput, ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	return &s3.HeadBucketOutput{}, f.listErr
}

func (f *fakeBucket) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	var keys []string
	for _, k := range f.order {
		if _, ok := f.objects[k]; ok && strings.HasPrefix(k, aws.ToString(in.Prefix)) {
			keys = append(keys, k)
		}
	}
	start := 0
	if tok := aws.ToString(in.ContinuationToken); tok != "" {
		for i, k := range keys {
			if k == tok {
				start = i
			}
		}
	}
	end := min(start+f.pageMax, len(keys))

	out := &s3.ListObjectsV2Output{}
	for _, k := range keys[start:end] {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(k)})
	}
	if end < len(keys) {
		out.IsTruncated = aws.Bool(true)
		out.NextContinuationToken = aws.String(keys[end])
	}
	return out, nil
}

func TestS3_UploadAndList(t *testing.T) {
	ctx := context.Background()
	b := newFakeBucket()
	b.pageMax = 1
	c := NewS3Client(b, "diary", logging.Nop())

	c1, err := c.UploadJSON(ctx, "first", "Alice", map[string]string{"title": "a"})
	require.NoError(t, err)
	c2, err := c.UploadJSON(ctx, "second", "bob", map[string]string{"title": "b"})
	require.NoError(t, err)
	c3, err := c.UploadJSON(ctx, "third", "alice", map[string]string{"title": "c"})
	require.NoError(t, err)
	require.NotEqual(t, c1, c2)

	for _, k := range b.order {
		require.True(t, strings.HasPrefix(k, "entries/"), k)
		require.True(t, strings.HasSuffix(k, ".json"), k)
	}
	require.Contains(t, b.order[0], "entries/alice/")

	all, err := c.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)

	mine, err := c.ListByOwner(ctx, " ALICE")
	require.NoError(t, err)
	require.Equal(t, []models.CID{c1, c3}, []models.CID{mine[0].CID, mine[1].CID})
	require.Equal(t, "alice", mine[0].Owner)
	require.Equal(t, "first", mine[0].Name)
	require.False(t, mine[0].PinnedAt.IsZero())
}

func TestS3_ListSkipsUnpinnedObjects(t *testing.T) {
	b := newFakeBucket()
	b.objects["entries/x/pending.json"] = &fakeObject{meta: map[string]string{}}
	b.order = append(b.order, "entries/x/pending.json")
	c := NewS3Client(b, "diary", logging.Nop())

	recs, err := c.ListAll(context.Background())
	require.NoError(t, err)
	require.Empty(t, recs)
}

func TestS3_Unpin(t *testing.T) {
	ctx := context.Background()
	b := newFakeBucket()
	writer := NewS3Client(b, "diary", logging.Nop())
	cid, err := writer.UploadJSON(ctx, "n", "alice", struct{}{})
	require.NoError(t, err)

	// A fresh client has no key index and must list first.
	c := NewS3Client(b, "diary", logging.Nop())
	require.NoError(t, c.Unpin(ctx, cid))
	require.Len(t, b.deleted, 1)

	require.NoError(t, c.Unpin(ctx, "unknown"))
	require.Len(t, b.deleted, 1)
}

func TestS3_ErrorMapping(t *testing.T) {
	respErr := func(code int) error {
		return &smithyhttp.ResponseError{Response: &smithyhttp.Response{Response: &http.Response{StatusCode: code}}, Err: errors.New("x")}
	}
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"access denied", &smithy.GenericAPIError{Code: "AccessDenied"}, common.ErrUnauthorized},
		{"slow down", &smithy.GenericAPIError{Code: "SlowDown"}, common.ErrRateLimited},
		{"403", respErr(http.StatusForbidden), common.ErrUnauthorized},
		{"429", respErr(http.StatusTooManyRequests), common.ErrRateLimited},
		{"503", respErr(http.StatusServiceUnavailable), common.ErrUnavailable},
		{"dial", errors.New("dial tcp: refused"), common.ErrUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newFakeBucket()
			b.listErr = tt.err
			c := NewS3Client(b, "diary", logging.Nop())

			_, err := c.ListAll(context.Background())
			require.ErrorIs(t, err, tt.want)
			require.ErrorIs(t, c.Ping(context.Background()), tt.want)
		})
	}

	require.ErrorIs(t, mapS3Error(context.Canceled), context.Canceled)
	require.NotErrorIs(t, mapS3Error(context.Canceled), common.ErrUnavailable)
	require.NoError(t, mapS3Error(nil))
}

func TestS3_UploadErrors(t *testing.T) {
	b := newFakeBucket()
	b.putErr = &smithy.GenericAPIError{Code: "InvalidAccessKeyId"}
	c := NewS3Client(b, "diary", logging.Nop())
	_, err := c.UploadJSON(context.Background(), "n", "a", struct{}{})
	require.ErrorIs(t, err, common.ErrUnauthorized)

	b = newFakeBucket()
	b.headErr = errors.New("timeout")
	c = NewS3Client(b, "diary", logging.Nop())
	_, err = c.UploadJSON(context.Background(), "n", "a", struct{}{})
	require.ErrorIs(t, err, common.ErrUnavailable)
}

func TestNewS3ClientFromOptions(t *testing.T) {
	origLoad := loadDefaultAWSConfig
	origNew := newS3ClientFromConfig
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNew
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		assert.Equal(t, "us-east-1", lo.Region)
		assert.NotNil(t, lo.Credentials)
		return aws.Config{}, nil
	}

	var endpoint string
	var pathStyle bool
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		var o s3.Options
		for _, fn := range optFns {
			fn(&o)
		}
		endpoint = aws.ToString(o.BaseEndpoint)
		pathStyle = o.UsePathStyle
		return &s3.Client{}
	}

	c, err := NewS3ClientFromOptions(context.Background(), S3Options{
		Endpoint: "https://s3.filebase.com", Region: "us-east-1", Bucket: "diary",
		AccessKey: "k", SecretKey: "s", Timeout: time.Second,
	}, logging.Nop())
	require.NoError(t, err)
	require.NotNil(t, c)
	require.Equal(t, "https://s3.filebase.com", endpoint)
	require.True(t, pathStyle)

	_, err = NewS3ClientFromOptions(context.Background(), S3Options{}, logging.Nop())
	require.Error(t, err)

	loadDefaultAWSConfig = func(context.Context, ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("bad profile")
	}
	_, err = NewS3ClientFromOptions(context.Background(), S3Options{Bucket: "b"}, logging.Nop())
	require.ErrorContains(t, err, "bad profile")
}
