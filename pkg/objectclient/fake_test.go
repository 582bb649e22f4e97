package objectclient

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// fakeS3 is an in-memory S3API. Multipart sessions are removed on completion
// or abort so reuse of a finished upload id fails.
type fakeS3 struct {
	mu       sync.Mutex
	objects  map[string][]byte
	ctypes   map[string]string
	sessions map[string]map[int32]string // uploadID -> partNumber -> etag
	putKeys  []string
	nextID   int

	listOut   *s3.ListObjectsV2Output
	lastList  *s3.ListObjectsV2Input
	failPutOn int // 1-based put call index that fails; 0 disables
	putCalls  int
	deleteErr error
	failWith  error

	bareSession bool // CreateMultipartUpload answers with UploadId only
}

func newFakeS3() *fakeS3 {
	return &fakeS3{
		objects:  make(map[string][]byte),
		ctypes:   make(map[string]string),
		sessions: make(map[string]map[int32]string),
	}
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.putCalls++
	if f.failWith != nil {
		return nil, f.failWith
	}
	if f.failPutOn != 0 && f.putCalls == f.failPutOn {
		return nil, &smithy.GenericAPIError{Code: "AccessDenied", Message: "access denied"}
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	key := aws.ToString(in.Key)
	f.objects[key] = data
	f.ctypes[key] = aws.ToString(in.ContentType)
	f.putKeys = append(f.putKeys, key)
	return &s3.PutObjectOutput{ETag: aws.String(fmt.Sprintf("%q", key))}, nil
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastList = in
	if f.failWith != nil {
		return nil, f.failWith
	}
	if f.listOut != nil {
		return f.listOut, nil
	}
	keys := make([]string, 0, len(f.objects))
	for k := range f.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(false)}
	for _, k := range keys {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(k), Size: aws.Int64(int64(len(f.objects[k])))})
	}
	return out, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) CreateMultipartUpload(_ context.Context, in *s3.CreateMultipartUploadInput, _ ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return nil, f.failWith
	}
	f.nextID++
	id := fmt.Sprintf("upload-%d", f.nextID)
	f.sessions[id] = make(map[int32]string)
	if f.bareSession {
		return &s3.CreateMultipartUploadOutput{UploadId: aws.String(id)}, nil
	}
	return &s3.CreateMultipartUploadOutput{UploadId: aws.String(id), Key: in.Key, Bucket: in.Bucket}, nil
}

func (f *fakeS3) UploadPart(_ context.Context, in *s3.UploadPartInput, _ ...func(*s3.Options)) (*s3.UploadPartOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	parts, ok := f.sessions[aws.ToString(in.UploadId)]
	if !ok {
		return nil, &smithy.GenericAPIError{Code: "NoSuchUpload", Message: "upload does not exist"}
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	etag := fmt.Sprintf("etag-%d-%d", aws.ToInt32(in.PartNumber), len(data))
	parts[aws.ToInt32(in.PartNumber)] = etag
	return &s3.UploadPartOutput{ETag: aws.String(etag)}, nil
}

func (f *fakeS3) CompleteMultipartUpload(_ context.Context, in *s3.CompleteMultipartUploadInput, _ ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := aws.ToString(in.UploadId)
	stored, ok := f.sessions[id]
	if !ok {
		return nil, &smithy.GenericAPIError{Code: "NoSuchUpload", Message: "upload does not exist"}
	}
	delete(f.sessions, id)
	for i, p := range in.MultipartUpload.Parts {
		n := aws.ToInt32(p.PartNumber)
		if n != int32(i+1) || stored[n] != aws.ToString(p.ETag) {
			return nil, &smithy.GenericAPIError{Code: "InvalidPart", Message: "one or more parts could not be found"}
		}
	}
	key := aws.ToString(in.Key)
	f.objects[key] = nil
	return &s3.CompleteMultipartUploadOutput{
		Location: aws.String("https://bucket.example/" + key),
		Key:      in.Key,
	}, nil
}

func (f *fakeS3) AbortMultipartUpload(_ context.Context, in *s3.AbortMultipartUploadInput, _ ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := aws.ToString(in.UploadId)
	if _, ok := f.sessions[id]; !ok {
		return nil, &smithy.GenericAPIError{Code: "NoSuchUpload", Message: "upload does not exist"}
	}
	delete(f.sessions, id)
	return &s3.AbortMultipartUploadOutput{}, nil
}

// fakePresigner returns deterministic URLs that encode the signed parameters.
// delay, when set, is applied per part so completion order can be shuffled.
type fakePresigner struct {
	delay   func(partNumber int32) time.Duration
	failOn  int32
	expires []time.Duration
	mu      sync.Mutex
}

func (p *fakePresigner) record(optFns []func(*s3.PresignOptions)) time.Duration {
	var o s3.PresignOptions
	for _, fn := range optFns {
		fn(&o)
	}
	p.mu.Lock()
	p.expires = append(p.expires, o.Expires)
	p.mu.Unlock()
	return o.Expires
}

func (p *fakePresigner) PresignPutObject(_ context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	exp := p.record(optFns)
	return &v4.PresignedHTTPRequest{
		URL:    fmt.Sprintf("https://signed.example/put/%s?expires=%d", aws.ToString(in.Key), int(exp.Seconds())),
		Method: "PUT",
	}, nil
}

func (p *fakePresigner) PresignGetObject(_ context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	exp := p.record(optFns)
	return &v4.PresignedHTTPRequest{
		URL:    fmt.Sprintf("https://signed.example/get/%s?expires=%d", aws.ToString(in.Key), int(exp.Seconds())),
		Method: "GET",
	}, nil
}

func (p *fakePresigner) PresignUploadPart(_ context.Context, in *s3.UploadPartInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	n := aws.ToInt32(in.PartNumber)
	if p.delay != nil {
		time.Sleep(p.delay(n))
	}
	if p.failOn != 0 && n == p.failOn {
		return nil, fmt.Errorf("signing part %d failed", n)
	}
	exp := p.record(optFns)
	return &v4.PresignedHTTPRequest{
		URL:    fmt.Sprintf("https://signed.example/part/%s?uploadId=%s&partNumber=%d&expires=%d", aws.ToString(in.Key), aws.ToString(in.UploadId), n, int(exp.Seconds())),
		Method: "PUT",
	}, nil
}

var (
	_ S3API     = (*fakeS3)(nil)
	_ Presigner = (*fakePresigner)(nil)
)

func testConfig() StorageConfig {
	return StorageConfig{
		Region:          "eu-west-1",
		AccessKeyID:     "AKIATEST",
		SecretAccessKey: "secret",
		BucketName:      "media",
	}
}

func newTestClient(api *fakeS3, presigner *fakePresigner, opts ...Option) *S3Client {
	c, err := NewS3ClientWithAPI(testConfig(), api, presigner, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

func fixedKeys(t time.Time) *KeyGenerator {
	g := NewKeyGenerator(KeyStrategyTimestamp)
	g.now = func() time.Time { return t }
	return g
}
