package objectclient

import "time"

// File is one buffered upload.
type File struct {
	Name        string
	ContentType string
	Body        []byte
}

// UploadedObject references an object written by UploadFile.
type UploadedObject struct {
	Key      string `json:"Key"`
	Location string `json:"Location"`
}

// ObjectSummary describes one listed object.
type ObjectSummary struct {
	Key          string     `json:"Key"`
	Size         int64      `json:"Size"`
	LastModified *time.Time `json:"LastModified,omitempty"`
	ETag         string     `json:"ETag,omitempty"`
	StorageClass string     `json:"StorageClass,omitempty"`
}

// ListPage is one page of a possibly longer listing. Pass
// NextContinuationToken back to ListFiles to fetch the next page.
type ListPage struct {
	Items                 []ObjectSummary `json:"data"`
	IsTruncated           bool            `json:"isTruncated"`
	NextContinuationToken *string         `json:"nextContinuationToken,omitempty"`
}

// RootListing splits one delimiter listing into immediate folders and files.
type RootListing struct {
	Folders []string        `json:"folders"`
	Files   []ObjectSummary `json:"files"`
}

// PresignedUpload authorizes a PUT of FileKey until the URL expires.
type PresignedUpload struct {
	UploadURL string `json:"uploadUrl"`
	FileKey   string `json:"fileKey"`
}

// MultipartSession identifies an open multipart upload.
type MultipartSession struct {
	UploadID string `json:"uploadId"`
	Key      string `json:"key"`
	Bucket   string `json:"bucket"`
}

// PartURL is a presigned URL for uploading a single part.
type PartURL struct {
	PartNumber int32  `json:"partNumber"`
	UploadURL  string `json:"uploadUrl"`
}

// CompletedPart pairs a part number with the ETag the backend returned for it.
type CompletedPart struct {
	PartNumber int32  `json:"partNumber"`
	ETag       string `json:"eTag"`
}
