package objectclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Presigned URL lifetimes.
const (
	ObjectURLExpiry = 300 * time.Second
	PartURLExpiry   = 3600 * time.Second
)

// MaxPartNumber is the highest part number S3 accepts in one upload.
const MaxPartNumber = 10000

const defaultContentType = "application/octet-stream"

// S3Client implements ObjectStorage against Amazon S3 or an S3-compatible service.
type S3Client struct {
	api       S3API
	presigner Presigner
	uploader  *manager.Uploader
	keys      *KeyGenerator
	log       zerolog.Logger

	bucket   string
	region   string
	endpoint string
}

// Option customizes an S3Client.
type Option func(*S3Client)

// WithLogger sets the logger used for per-request debug output.
func WithLogger(l zerolog.Logger) Option {
	return func(c *S3Client) { c.log = l }
}

// WithKeyGenerator replaces the key generator derived from the config.
func WithKeyGenerator(g *KeyGenerator) Option {
	return func(c *S3Client) { c.keys = g }
}

// NewS3Client validates cfg and builds a client bound to its credentials and region.
func NewS3Client(ctx context.Context, cfg StorageConfig, opts ...Option) (*S3Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	awsCfg, err := config.LoadDefaultConfig(
		ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		),
	)
	if err != nil {
		return nil, configurationError(fmt.Errorf("load aws config: %w", err))
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.ForcePathStyle
	})

	return NewS3ClientWithAPI(cfg, client, s3.NewPresignClient(client), opts...)
}

// NewS3ClientWithAPI wraps already constructed SDK clients. Tests use it with fakes.
func NewS3ClientWithAPI(cfg StorageConfig, api S3API, presigner Presigner, opts ...Option) (*S3Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &S3Client{
		api:       api,
		presigner: presigner,
		uploader:  manager.NewUploader(api),
		keys:      NewKeyGenerator(cfg.KeyStrategy),
		log:       zerolog.Nop(),
		bucket:    cfg.BucketName,
		region:    cfg.Region,
		endpoint:  strings.TrimRight(cfg.Endpoint, "/"),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With().Str("component", "objectclient").Str("bucket", c.bucket).Logger()
	return c, nil
}

// Bucket returns the bucket the client writes to.
func (c *S3Client) Bucket() string { return c.bucket }

// ObjectURL returns the public location of key. AWS gets the virtual-hosted
// form; a custom endpoint gets the path-style form.
func (c *S3Client) ObjectURL(key string) string {
	if c.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", c.endpoint, c.bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", c.bucket, c.region, key)
}

// UploadFile uploads one file under folder and returns its key and URL.
func (c *S3Client) UploadFile(ctx context.Context, file File, folder string) (*UploadedObject, error) {
	key := c.keys.Generate(folder, file.Name)

	contentType := file.ContentType
	if contentType == "" {
		contentType = defaultContentType
	}

	_, err := c.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(file.Body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, storageError("upload file", err)
	}
	c.log.Debug().Str("key", key).Int("size", len(file.Body)).Msg("object uploaded")

	return &UploadedObject{Key: key, Location: c.ObjectURL(key)}, nil
}

// UploadFiles uploads files one at a time, in order. The first failure aborts
// the batch; files already written stay in the bucket.
func (c *S3Client) UploadFiles(ctx context.Context, files []File, folder string) ([]UploadedObject, error) {
	results := make([]UploadedObject, 0, len(files))
	for i, f := range files {
		obj, err := c.UploadFile(ctx, f, folder)
		if err != nil {
			var e *Error
			if errors.As(err, &e) {
				e.Op = fmt.Sprintf("upload file %d (%s)", i, f.Name)
			}
			return nil, err
		}
		results = append(results, *obj)
	}
	return results, nil
}

// ListFiles returns one page of up to limit objects under prefix. A limit
// above MaxListLimit is clamped to it.
func (c *S3Client) ListFiles(ctx context.Context, prefix string, limit int, continuationToken string) (*ListPage, error) {
	switch {
	case limit <= 0:
		limit = DefaultListLimit
	case limit > MaxListLimit:
		limit = MaxListLimit
	}
	input := &s3.ListObjectsV2Input{
		Bucket:  aws.String(c.bucket),
		Prefix:  aws.String(prefix),
		MaxKeys: aws.Int32(int32(limit)),
	}
	if continuationToken != "" {
		input.ContinuationToken = aws.String(continuationToken)
	}

	out, err := c.api.ListObjectsV2(ctx, input)
	if err != nil {
		return nil, storageError("list files", err)
	}
	c.log.Debug().Str("prefix", prefix).Int("count", len(out.Contents)).Msg("objects listed")

	return &ListPage{
		Items:                 summarize(out.Contents),
		IsTruncated:           aws.ToBool(out.IsTruncated),
		NextContinuationToken: out.NextContinuationToken,
	}, nil
}

// ListRootObjects lists the immediate folders and files under prefix.
func (c *S3Client) ListRootObjects(ctx context.Context, prefix string) (*RootListing, error) {
	out, err := c.api.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:    aws.String(c.bucket),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String("/"),
	})
	if err != nil {
		return nil, storageError("list root objects", err)
	}

	folders := make([]string, 0, len(out.CommonPrefixes))
	for _, p := range out.CommonPrefixes {
		folders = append(folders, aws.ToString(p.Prefix))
	}
	return &RootListing{Folders: folders, Files: summarize(out.Contents)}, nil
}

// DeleteFile removes key. Deleting a key that does not exist succeeds.
func (c *S3Client) DeleteFile(ctx context.Context, key string) error {
	if key == "" {
		return invalidInput("delete file", "key is required")
	}
	_, err := c.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil && !isNotFound(err) {
		return storageError("delete file", err)
	}
	c.log.Debug().Str("key", key).Msg("object deleted")
	return nil
}

// GenerateUploadURL returns a presigned PUT URL for a freshly generated key.
func (c *S3Client) GenerateUploadURL(ctx context.Context, fileName, folder string) (*PresignedUpload, error) {
	if fileName == "" {
		return nil, invalidInput("generate upload url", "fileName is required")
	}
	key := c.keys.Generate(folder, fileName)
	req, err := c.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(defaultContentType),
	}, s3.WithPresignExpires(ObjectURLExpiry))
	if err != nil {
		return nil, storageError("generate upload url", err)
	}
	return &PresignedUpload{UploadURL: req.URL, FileKey: key}, nil
}

// GenerateDownloadURL returns a presigned GET URL for key.
func (c *S3Client) GenerateDownloadURL(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", invalidInput("generate download url", "key is required")
	}
	req, err := c.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ObjectURLExpiry))
	if err != nil {
		return "", storageError("generate download url", err)
	}
	return req.URL, nil
}

// InitiateMultipartUpload opens a multipart session for a freshly generated key.
func (c *S3Client) InitiateMultipartUpload(ctx context.Context, fileName, folder string) (*MultipartSession, error) {
	if fileName == "" {
		return nil, invalidInput("initiate multipart upload", "fileName is required")
	}
	key := c.keys.Generate(folder, fileName)
	out, err := c.api.CreateMultipartUpload(ctx, &s3.CreateMultipartUploadInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, storageError("initiate multipart upload", err)
	}
	c.log.Debug().Str("key", key).Str("upload_id", aws.ToString(out.UploadId)).Msg("multipart upload initiated")

	session := &MultipartSession{
		UploadID: aws.ToString(out.UploadId),
		Key:      aws.ToString(out.Key),
		Bucket:   aws.ToString(out.Bucket),
	}
	// Some S3-compatible backends omit Key and Bucket from the response.
	if session.Key == "" {
		session.Key = key
	}
	if session.Bucket == "" {
		session.Bucket = c.bucket
	}
	return session, nil
}

// GenerateUploadPartURLs signs one URL per part, 1..partCount. Signing runs
// concurrently; the result is ordered by part number.
func (c *S3Client) GenerateUploadPartURLs(ctx context.Context, uploadID, key string, partCount int) ([]PartURL, error) {
	const op = "generate upload part urls"
	if uploadID == "" || key == "" {
		return nil, invalidInput(op, "uploadId and key are required")
	}
	if partCount < 1 || partCount > MaxPartNumber {
		return nil, invalidInput(op, fmt.Sprintf("parts must be between 1 and %d", MaxPartNumber))
	}

	urls := make([]PartURL, partCount)
	g, gctx := errgroup.WithContext(ctx)
	for i := range urls {
		partNumber := int32(i + 1)
		g.Go(func() error {
			req, err := c.presigner.PresignUploadPart(gctx, &s3.UploadPartInput{
				Bucket:     aws.String(c.bucket),
				Key:        aws.String(key),
				UploadId:   aws.String(uploadID),
				PartNumber: aws.Int32(partNumber),
			}, s3.WithPresignExpires(PartURLExpiry))
			if err != nil {
				return err
			}
			urls[partNumber-1] = PartURL{PartNumber: partNumber, UploadURL: req.URL}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, storageError(op, err)
	}
	return urls, nil
}

// UploadPart uploads one part's bytes directly.
func (c *S3Client) UploadPart(ctx context.Context, uploadID, key string, partNumber int32, body []byte) (*CompletedPart, error) {
	const op = "upload part"
	if uploadID == "" || key == "" {
		return nil, invalidInput(op, "uploadId and key are required")
	}
	if partNumber < 1 || partNumber > MaxPartNumber {
		return nil, invalidInput(op, fmt.Sprintf("partNumber must be between 1 and %d", MaxPartNumber))
	}

	out, err := c.api.UploadPart(ctx, &s3.UploadPartInput{
		Bucket:     aws.String(c.bucket),
		Key:        aws.String(key),
		UploadId:   aws.String(uploadID),
		PartNumber: aws.Int32(partNumber),
		Body:       bytes.NewReader(body),
	})
	if err != nil {
		return nil, storageError(op, err)
	}
	return &CompletedPart{PartNumber: partNumber, ETag: aws.ToString(out.ETag)}, nil
}

// CompleteMultipartUpload finalizes the session and returns the object location.
// Parts are sent in ascending part-number order.
func (c *S3Client) CompleteMultipartUpload(ctx context.Context, uploadID, key string, parts []CompletedPart) (string, error) {
	const op = "complete multipart upload"
	if uploadID == "" || key == "" {
		return "", invalidInput(op, "uploadId and key are required")
	}
	if len(parts) == 0 {
		return "", invalidInput(op, "at least one part is required")
	}

	sorted := make([]CompletedPart, len(parts))
	copy(sorted, parts)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].PartNumber < sorted[j].PartNumber })

	completed := make([]types.CompletedPart, 0, len(sorted))
	for _, p := range sorted {
		completed = append(completed, types.CompletedPart{
			PartNumber: aws.Int32(p.PartNumber),
			ETag:       aws.String(p.ETag),
		})
	}

	out, err := c.api.CompleteMultipartUpload(ctx, &s3.CompleteMultipartUploadInput{
		Bucket:          aws.String(c.bucket),
		Key:             aws.String(key),
		UploadId:        aws.String(uploadID),
		MultipartUpload: &types.CompletedMultipartUpload{Parts: completed},
	})
	if err != nil {
		return "", storageError(op, err)
	}
	c.log.Debug().Str("key", key).Int("parts", len(completed)).Msg("multipart upload completed")

	if loc := aws.ToString(out.Location); loc != "" {
		return loc, nil
	}
	return c.ObjectURL(key), nil
}

// AbortMultipartUpload discards an unfinished session and its uploaded parts.
func (c *S3Client) AbortMultipartUpload(ctx context.Context, uploadID, key string) error {
	if uploadID == "" || key == "" {
		return invalidInput("abort multipart upload", "uploadId and key are required")
	}
	_, err := c.api.AbortMultipartUpload(ctx, &s3.AbortMultipartUploadInput{
		Bucket:   aws.String(c.bucket),
		Key:      aws.String(key),
		UploadId: aws.String(uploadID),
	})
	if err != nil {
		return storageError("abort multipart upload", err)
	}
	return nil
}

func summarize(objs []types.Object) []ObjectSummary {
	items := make([]ObjectSummary, 0, len(objs))
	for _, o := range objs {
		items = append(items, ObjectSummary{
			Key:          aws.ToString(o.Key),
			Size:         aws.ToInt64(o.Size),
			LastModified: o.LastModified,
			ETag:         aws.ToString(o.ETag),
			StorageClass: string(o.StorageClass),
		})
	}
	return items
}

func isNotFound(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}

var _ ObjectStorage = (*S3Client)(nil)
