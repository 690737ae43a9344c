package api

import (
	"PDFChat/backend/go/internal/config"
	"PDFChat/backend/go/internal/database/milvus"
	"PDFChat/backend/go/internal/rag_service/rag/interfaces"
	"PDFChat/backend/go/internal/rag_service/rag/loaders"
	"PDFChat/backend/go/internal/rag_service/rag/storages/vectorstore"
	"PDFChat/backend/go/internal/rag_service/service"
	"errors"
	"net/http"
)

// ErrNotPDF is returned for uploads whose content is not a PDF.
var ErrNotPDF = errors.New("uploaded file is not a PDF")

// ErrUploadTooLarge is returned when an upload exceeds server.maxUploadMB.
var ErrUploadTooLarge = errors.New("uploaded file is too large")

// ErrMissingFile is returned when the multipart field 'file' is absent.
var ErrMissingFile = errors.New("missing multipart field 'file'")

// statusFor maps a service error to its HTTP status code.
func statusFor(err error) int {
	var parseErr *loaders.ParseError
	var maxBytesErr *http.MaxBytesError

	switch {
	case errors.Is(err, config.ErrMissingAPIKey):
		return http.StatusInternalServerError
	case errors.Is(err, interfaces.ErrUpstream):
		return http.StatusBadGateway
	case errors.As(err, &parseErr), errors.Is(err, milvus.ErrChunkTooLarge):
		return http.StatusUnprocessableEntity
	case errors.Is(err, loaders.ErrUnsupportedFile), errors.Is(err, ErrNotPDF):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, ErrUploadTooLarge), errors.As(err, &maxBytesErr):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, service.ErrNoDocument):
		return http.StatusConflict
	case errors.Is(err, service.ErrEmptyQuestion), errors.Is(err, ErrMissingFile):
		return http.StatusBadRequest
	case errors.Is(err, vectorstore.ErrCollectionNotFound), errors.Is(err, service.ErrSessionNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
