package objectclient

import (
	"context"
	"sync/atomic"
)

// ClientFactory builds the backing client for a validated config.
type ClientFactory func(ctx context.Context, cfg StorageConfig) (ObjectStorage, error)

// Holder is the process entry point: it owns the configured client and guards
// every operation on it. Until Configure succeeds each call fails with
// ErrNotInitialized without touching the backend.
type Holder struct {
	current    atomic.Pointer[ObjectStorage]
	factory    ClientFactory
	clientOpts []Option
}

// HolderOption customizes a Holder.
type HolderOption func(*Holder)

// WithClientFactory replaces the default factory, which calls NewS3Client.
func WithClientFactory(f ClientFactory) HolderOption {
	return func(h *Holder) { h.factory = f }
}

// WithClientOptions forwards options to NewS3Client when the default factory is used.
func WithClientOptions(opts ...Option) HolderOption {
	return func(h *Holder) { h.clientOpts = append(h.clientOpts, opts...) }
}

// NewHolder returns an unconfigured holder.
func NewHolder(opts ...HolderOption) *Holder {
	h := &Holder{}
	h.factory = func(ctx context.Context, cfg StorageConfig) (ObjectStorage, error) {
		return NewS3Client(ctx, cfg, h.clientOpts...)
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Configure validates cfg, builds a client and publishes it. A later call
// replaces the client atomically; calls already running keep the old one.
// On failure the previous client, if any, stays in place.
func (h *Holder) Configure(ctx context.Context, cfg StorageConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	client, err := h.factory(ctx, cfg)
	if err != nil {
		return err
	}
	h.current.Store(&client)
	return nil
}

// Configured reports whether Configure has succeeded.
func (h *Holder) Configured() bool {
	return h.current.Load() != nil
}

func (h *Holder) client() (ObjectStorage, error) {
	p := h.current.Load()
	if p == nil {
		return nil, ErrNotInitialized
	}
	return *p, nil
}

func (h *Holder) UploadFile(ctx context.Context, file File, folder string) (*UploadedObject, error) {
	c, err := h.client()
	if err != nil {
		return nil, err
	}
	return c.UploadFile(ctx, file, folder)
}

func (h *Holder) UploadFiles(ctx context.Context, files []File, folder string) ([]UploadedObject, error) {
	c, err := h.client()
	if err != nil {
		return nil, err
	}
	return c.UploadFiles(ctx, files, folder)
}

func (h *Holder) ListFiles(ctx context.Context, prefix string, limit int, continuationToken string) (*ListPage, error) {
	c, err := h.client()
	if err != nil {
		return nil, err
	}
	return c.ListFiles(ctx, prefix, limit, continuationToken)
}

func (h *Holder) ListRootObjects(ctx context.Context, prefix string) (*RootListing, error) {
	c, err := h.client()
	if err != nil {
		return nil, err
	}
	return c.ListRootObjects(ctx, prefix)
}

func (h *Holder) DeleteFile(ctx context.Context, key string) error {
	c, err := h.client()
	if err != nil {
		return err
	}
	return c.DeleteFile(ctx, key)
}

func (h *Holder) GenerateUploadURL(ctx context.Context, fileName, folder string) (*PresignedUpload, error) {
	c, err := h.client()
	if err != nil {
		return nil, err
	}
	return c.GenerateUploadURL(ctx, fileName, folder)
}

func (h *Holder) GenerateDownloadURL(ctx context.Context, key string) (string, error) {
	c, err := h.client()
	if err != nil {
		return "", err
	}
	return c.GenerateDownloadURL(ctx, key)
}

func (h *Holder) InitiateMultipartUpload(ctx context.Context, fileName, folder string) (*MultipartSession, error) {
	c, err := h.client()
	if err != nil {
		return nil, err
	}
	return c.InitiateMultipartUpload(ctx, fileName, folder)
}

func (h *Holder) GenerateUploadPartURLs(ctx context.Context, uploadID, key string, partCount int) ([]PartURL, error) {
	c, err := h.client()
	if err != nil {
		return nil, err
	}
	return c.GenerateUploadPartURLs(ctx, uploadID, key, partCount)
}

func (h *Holder) UploadPart(ctx context.Context, uploadID, key string, partNumber int32, body []byte) (*CompletedPart, error) {
	c, err := h.client()
	if err != nil {
		return nil, err
	}
	return c.UploadPart(ctx, uploadID, key, partNumber, body)
}

func (h *Holder) CompleteMultipartUpload(ctx context.Context, uploadID, key string, parts []CompletedPart) (string, error) {
	c, err := h.client()
	if err != nil {
		return "", err
	}
	return c.CompleteMultipartUpload(ctx, uploadID, key, parts)
}

func (h *Holder) AbortMultipartUpload(ctx context.Context, uploadID, key string) error {
	c, err := h.client()
	if err != nil {
		return err
	}
	return c.AbortMultipartUpload(ctx, uploadID, key)
}

var _ ObjectStorage = (*Holder)(nil)
