package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/markdave123-py/s3handler/internal/api/response"
	"github.com/markdave123-py/s3handler/pkg/objectclient"
)

const (
	formFilesField  = "files"
	formFolderField = "directoryPath"

	multipartMemory = 32 << 20
)

type ObjectHandler struct {
	store       objectclient.ObjectStorage
	maxFileSize int64
	maxFiles    int
	maxPartSize int64
}

type Limits struct {
	MaxFileSize int64
	MaxFiles    int
	MaxPartSize int64
}

func NewObjectHandler(store objectclient.ObjectStorage, limits Limits) *ObjectHandler {
	return &ObjectHandler{
		store:       store,
		maxFileSize: limits.MaxFileSize,
		maxFiles:    limits.MaxFiles,
		maxPartSize: limits.MaxPartSize,
	}
}

// Upload handles POST /upload: one or more files under "files", optional "directoryPath".
func (h *ObjectHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxFileSize*int64(h.maxFiles)+multipartMemory)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.Is(err, http.ErrNotMultipart), errors.Is(err, http.ErrMissingBoundary):
			response.BadRequest(w, "No files uploaded.")
		case errors.As(err, &tooLarge):
			response.BadRequest(w, "Upload too large.")
		default:
			response.BadRequest(w, "invalid multipart form")
		}
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File[formFilesField]
	if len(headers) == 0 {
		response.BadRequest(w, "No files uploaded.")
		return
	}
	if len(headers) > h.maxFiles {
		response.BadRequest(w, fmt.Sprintf("Too many files, at most %d allowed.", h.maxFiles))
		return
	}

	files := make([]objectclient.File, 0, len(headers))
	for _, fh := range headers {
		if fh.Size > h.maxFileSize {
			response.BadRequest(w, fmt.Sprintf("File %q exceeds the %d byte limit.", fh.Filename, h.maxFileSize))
			return
		}
		f, err := readFile(fh)
		if err != nil {
			response.FromError(w, r, err)
			return
		}
		files = append(files, f)
	}

	folder := r.FormValue(formFolderField)
	if folder == "" {
		folder = objectclient.DefaultFolder
	}

	uploaded, err := h.store.UploadFiles(r.Context(), files, folder)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Message(w, "Files uploaded successfully.", uploaded)
}

// List handles GET /list?prefix=&limit=&continuationToken=.
func (h *ObjectHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := 0
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			response.BadRequest(w, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	page, err := h.store.ListFiles(r.Context(), q.Get("prefix"), limit, q.Get("continuationToken"))
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.OK(w, page)
}

// ListRoot handles GET /list-root?prefix=.
func (h *ObjectHandler) ListRoot(w http.ResponseWriter, r *http.Request) {
	listing, err := h.store.ListRootObjects(r.Context(), r.URL.Query().Get("prefix"))
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.OK(w, listing)
}

type deleteRequest struct {
	Key string `json:"key"`
}

// Delete handles DELETE / with body {"key": "..."}.
func (h *ObjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var req deleteRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.store.DeleteFile(r.Context(), req.Key); err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Message(w, "File deleted", nil)
}

// DownloadURL handles GET /presigned-url?key=.
func (h *ObjectHandler) DownloadURL(w http.ResponseWriter, r *http.Request) {
	url, err := h.store.GenerateDownloadURL(r.Context(), r.URL.Query().Get("key"))
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.URL(w, url)
}

type fileRequest struct {
	FileName string `json:"fileName"`
	Folder   string `json:"folder"`
}

// UploadURL handles POST /upload-url with body {"fileName", "folder"}.
func (h *ObjectHandler) UploadURL(w http.ResponseWriter, r *http.Request) {
	var req fileRequest
	if !decode(w, r, &req) {
		return
	}
	presigned, err := h.store.GenerateUploadURL(r.Context(), req.FileName, req.Folder)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.OK(w, presigned)
}

func readFile(fh *multipart.FileHeader) (objectclient.File, error) {
	f, err := fh.Open()
	if err != nil {
		return objectclient.File{}, fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer f.Close()

	body, err := io.ReadAll(f)
	if err != nil {
		return objectclient.File{}, fmt.Errorf("read %s: %w", fh.Filename, err)
	}
	return objectclient.File{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		response.BadRequest(w, "invalid body")
		return false
	}
	return true
}
