// Package objectclient wraps the AWS S3 SDK with a small set of typed
// operations: single and batch upload, paged and delimiter listing, delete,
// presigned upload/download URLs and multipart uploads.
//
// Build a Holder once at startup, call Configure with the bucket settings and
// hand the Holder to whatever needs storage access. Operations called before
// Configure fail with ErrNotInitialized.
package objectclient
