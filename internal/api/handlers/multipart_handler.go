package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/markdave123-py/s3handler/internal/api/response"
	"github.com/markdave123-py/s3handler/pkg/objectclient"
)

// InitiateMultipart handles POST /multipart/initiate with body {"fileName", "folder"}.
func (h *ObjectHandler) InitiateMultipart(w http.ResponseWriter, r *http.Request) {
	var req fileRequest
	if !decode(w, r, &req) {
		return
	}
	session, err := h.store.InitiateMultipartUpload(r.Context(), req.FileName, req.Folder)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.OK(w, session)
}

type partURLsRequest struct {
	UploadID string `json:"uploadId"`
	Key      string `json:"key"`
	Parts    int    `json:"parts"`
}

// PartURLs handles POST /multipart/part-urls with body {"uploadId", "key", "parts"}.
func (h *ObjectHandler) PartURLs(w http.ResponseWriter, r *http.Request) {
	var req partURLsRequest
	if !decode(w, r, &req) {
		return
	}
	urls, err := h.store.GenerateUploadPartURLs(r.Context(), req.UploadID, req.Key, req.Parts)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.OK(w, urls)
}

// UploadPart handles PUT /multipart/part?uploadId=&key=&partNumber= with the raw part as body.
func (h *ObjectHandler) UploadPart(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	n, err := strconv.ParseInt(q.Get("partNumber"), 10, 32)
	if err != nil {
		response.BadRequest(w, "partNumber must be an integer")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxPartSize))
	if err != nil {
		response.BadRequest(w, "part body too large or unreadable")
		return
	}

	part, err := h.store.UploadPart(r.Context(), q.Get("uploadId"), q.Get("key"), int32(n), body)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.OK(w, part)
}

type completeRequest struct {
	UploadID string                       `json:"uploadId"`
	Key      string                       `json:"key"`
	Parts    []objectclient.CompletedPart `json:"parts"`
}

type completeResponse struct {
	Location string `json:"location"`
}

// CompleteMultipart handles POST /multipart/complete with body {"uploadId", "key", "parts"}.
func (h *ObjectHandler) CompleteMultipart(w http.ResponseWriter, r *http.Request) {
	var req completeRequest
	if !decode(w, r, &req) {
		return
	}
	loc, err := h.store.CompleteMultipartUpload(r.Context(), req.UploadID, req.Key, req.Parts)
	if err != nil {
		response.FromError(w, r, err)
		return
	}
	response.OK(w, completeResponse{Location: loc})
}

type abortRequest struct {
	UploadID string `json:"uploadId"`
	Key      string `json:"key"`
}

// AbortMultipart handles POST /multipart/abort with body {"uploadId", "key"}.
func (h *ObjectHandler) AbortMultipart(w http.ResponseWriter, r *http.Request) {
	var req abortRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.store.AbortMultipartUpload(r.Context(), req.UploadID, req.Key); err != nil {
		response.FromError(w, r, err)
		return
	}
	response.Message(w, "Multipart upload aborted", nil)
}
