package pinning

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/dediary/internal/client/models"
	"github.com/dmitrijs2005/dediary/internal/client/wallet"
	"github.com/dmitrijs2005/dediary/internal/common"
	"github.com/dmitrijs2005/dediary/internal/logging"
)

const (
	entriesPrefix  = "entries/"
	anonymousOwner = "anonymous"

	metaCID   = "cid"
	metaName  = "name"
	metaOwner = "owner"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// S3API is the part of *s3.Client used by S3Client.
type S3API interface {
	s3.ListObjectsV2APIClient
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// S3Options configures an S3-compatible pinning bucket.
type S3Options struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	Timeout   time.Duration
}

// S3Client implements Service over an S3-compatible bucket that pins every
// uploaded object to IPFS and reports the CID as object metadata.
type S3Client struct {
	api    S3API
	bucket string
	logger logging.Logger

	mu   sync.Mutex
	keys map[models.CID]string
}

func NewS3Client(api S3API, bucket string, logger logging.Logger) *S3Client {
	return &S3Client{
		api:    api,
		bucket: bucket,
		logger: logger.With("module", "s3pinning"),
		keys:   make(map[models.CID]string),
	}
}

// NewS3ClientFromOptions builds the AWS SDK client with static credentials
// and path-style addressing against opts.Endpoint.
func NewS3ClientFromOptions(ctx context.Context, opts S3Options, logger logging.Logger) (*S3Client, error) {
	if opts.Bucket == "" {
		return nil, errors.New("s3 bucket is not configured")
	}
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(opts.Region),
		config.WithHTTPClient(&http.Client{Timeout: opts.Timeout}),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			opts.AccessKey,
			opts.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = true
	})
	return NewS3Client(client, opts.Bucket, logger), nil
}

func ownerSegment(owner string) string {
	o := wallet.NormalizeAddress(owner)
	if o == "" || strings.Contains(o, "/") {
		return anonymousOwner
	}
	return o
}

func objectKey(owner string) string {
	return entriesPrefix + ownerSegment(owner) + "/" + uuid.NewString() + ".json"
}

func (c *S3Client) UploadJSON(ctx context.Context, name, owner string, document any) (models.CID, error) {
	body, err := json.Marshal(document)
	if err != nil {
		return "", fmt.Errorf("marshal document: %w", err)
	}
	key := objectKey(owner)

	_, err = c.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
		Metadata: map[string]string{
			metaName:  name,
			metaOwner: wallet.NormalizeAddress(owner),
		},
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, mapS3Error(err))
	}

	rec, ok, err := c.head(ctx, key)
	if err != nil {
		return "", fmt.Errorf("head object %s: %w", key, err)
	}
	if !ok {
		return "", fmt.Errorf("object %s has no cid metadata: %w", key, common.ErrUnavailable)
	}
	return rec.CID, nil
}

func (c *S3Client) ListAll(ctx context.Context) ([]models.PinRecord, error) {
	return c.list(ctx, entriesPrefix)
}

// ListByOwner lists only the owner's key prefix.
func (c *S3Client) ListByOwner(ctx context.Context, owner string) ([]models.PinRecord, error) {
	if wallet.NormalizeAddress(owner) == "" {
		return c.ListAll(ctx)
	}
	return c.list(ctx, entriesPrefix+ownerSegment(owner)+"/")
}

func (c *S3Client) list(ctx context.Context, prefix string) ([]models.PinRecord, error) {
	p := s3.NewListObjectsV2Paginator(c.api, &s3.ListObjectsV2Input{
		Bucket: aws.String(c.bucket),
		Prefix: aws.String(prefix),
	})

	var out []models.PinRecord
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list objects: %w", mapS3Error(err))
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			rec, ok, err := c.head(ctx, key)
			if err != nil {
				return nil, fmt.Errorf("head object %s: %w", key, err)
			}
			if !ok {
				c.logger.Debug(ctx, "object not pinned yet", "key", key)
				continue
			}
			if rec.PinnedAt.IsZero() {
				rec.PinnedAt = aws.ToTime(obj.LastModified)
			}
			out = append(out, rec)
		}
	}
	return out, nil
}

// head reads the pin metadata of key. ok is false when the object carries no
// CID yet.
func (c *S3Client) head(ctx context.Context, key string) (models.PinRecord, bool, error) {
	out, err := c.api.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return models.PinRecord{}, false, mapS3Error(err)
	}

	cid, err := models.ParseCID(out.Metadata[metaCID])
	if err != nil {
		return models.PinRecord{}, false, nil
	}

	c.mu.Lock()
	c.keys[cid] = key
	c.mu.Unlock()

	return models.PinRecord{
		CID:      cid,
		Owner:    out.Metadata[metaOwner],
		Name:     out.Metadata[metaName],
		PinnedAt: aws.ToTime(out.LastModified),
	}, true, nil
}

// Unpin deletes the object holding cid. Unknown CIDs are looked up with a
// full listing first; a CID that is not in the bucket is not an error.
func (c *S3Client) Unpin(ctx context.Context, cid models.CID) error {
	key, ok := c.keyFor(cid)
	if !ok {
		if _, err := c.ListAll(ctx); err != nil {
			return fmt.Errorf("unpin %s: %w", cid, err)
		}
		if key, ok = c.keyFor(cid); !ok {
			return nil
		}
	}

	_, err := c.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("unpin %s: %w", cid, mapS3Error(err))
	}

	c.mu.Lock()
	delete(c.keys, cid)
	c.mu.Unlock()
	return nil
}

func (c *S3Client) keyFor(cid models.CID) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	k, ok := c.keys[cid]
	return k, ok
}

func (c *S3Client) Ping(ctx context.Context) error {
	_, err := c.api.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(c.bucket)})
	if err != nil {
		return mapS3Error(err)
	}
	return nil
}

// mapS3Error wraps SDK errors with the transport sentinels used by the HTTP
// providers.
func mapS3Error(err error) error {
	if err == nil || errors.Is(err, context.Canceled) {
		return err
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch", "ExpiredToken":
			return fmt.Errorf("%w: %w", common.ErrUnauthorized, err)
		case "SlowDown", "TooManyRequests", "Throttling":
			return fmt.Errorf("%w: %w", common.ErrRateLimited, err)
		}
	}

	var respErr *smithyhttp.ResponseError
	if errors.As(err, &respErr) {
		switch code := respErr.HTTPStatusCode(); {
		case code == http.StatusUnauthorized, code == http.StatusForbidden:
			return fmt.Errorf("%w: %w", common.ErrUnauthorized, err)
		case code == http.StatusTooManyRequests:
			return fmt.Errorf("%w: %w", common.ErrRateLimited, err)
		case code >= 400 && code < 500:
			return err
		}
	}

	return fmt.Errorf("%w: %w", common.ErrUnavailable, err)
}
