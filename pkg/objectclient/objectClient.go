package objectclient

import (
	"context"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectStorage lists every operation the object client exposes.
// It's abstract so the HTTP layer never depends on the SDK directly.
type ObjectStorage interface {
	UploadFile(ctx context.Context, file File, folder string) (*UploadedObject, error)
	UploadFiles(ctx context.Context, files []File, folder string) ([]UploadedObject, error)

	ListFiles(ctx context.Context, prefix string, limit int, continuationToken string) (*ListPage, error)
	ListRootObjects(ctx context.Context, prefix string) (*RootListing, error)

	DeleteFile(ctx context.Context, key string) error

	GenerateUploadURL(ctx context.Context, fileName, folder string) (*PresignedUpload, error)
	GenerateDownloadURL(ctx context.Context, key string) (string, error)

	InitiateMultipartUpload(ctx context.Context, fileName, folder string) (*MultipartSession, error)
	GenerateUploadPartURLs(ctx context.Context, uploadID, key string, partCount int) ([]PartURL, error)
	UploadPart(ctx context.Context, uploadID, key string, partNumber int32, body []byte) (*CompletedPart, error)
	CompleteMultipartUpload(ctx context.Context, uploadID, key string, parts []CompletedPart) (string, error)
	AbortMultipartUpload(ctx context.Context, uploadID, key string) error
}

// S3API is the subset of *s3.Client used here. It also satisfies
// manager.UploadAPIClient so the same value can back the uploader.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)

	CreateMultipartUpload(ctx context.Context, params *s3.CreateMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CreateMultipartUploadOutput, error)
	UploadPart(ctx context.Context, params *s3.UploadPartInput, optFns ...func(*s3.Options)) (*s3.UploadPartOutput, error)
	CompleteMultipartUpload(ctx context.Context, params *s3.CompleteMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.CompleteMultipartUploadOutput, error)
	AbortMultipartUpload(ctx context.Context, params *s3.AbortMultipartUploadInput, optFns ...func(*s3.Options)) (*s3.AbortMultipartUploadOutput, error)
}

// Presigner is the subset of *s3.PresignClient used here.
type Presigner interface {
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
	PresignUploadPart(ctx context.Context, params *s3.UploadPartInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

var (
	_ S3API     = (*s3.Client)(nil)
	_ Presigner = (*s3.PresignClient)(nil)
)
