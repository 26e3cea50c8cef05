// Package gzippedhttp accepts gzip-compressed request bodies. Response
// compression is left to chi's middleware.Compress.
package gzippedhttp

import (
	"compress/gzip"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/patric-chuzhbe/arrowflix/internal/logger"
	"github.com/patric-chuzhbe/arrowflix/internal/models"
)

// MsgInvalidRequestBody is sent when a body claims gzip but is not.
const MsgInvalidRequestBody = "Invalid request body"

// CompressedReader decompresses a gzip request body and closes both streams.
type CompressedReader struct {
	r  io.ReadCloser
	zr *gzip.Reader
}

func NewCompressedReader(requestBody io.ReadCloser) (*CompressedReader, error) {
	zr, err := gzip.NewReader(requestBody)
	if err != nil {
		return nil, err
	}

	return &CompressedReader{r: requestBody, zr: zr}, nil
}

func (c *CompressedReader) Read(p []byte) (int, error) {
	return c.zr.Read(p)
}

func (c *CompressedReader) Close() error {
	if err := c.zr.Close(); err != nil {
		_ = c.r.Close()
		return err
	}
	return c.r.Close()
}

// UngzipRequest replaces the body of requests sent with
// "Content-Encoding: gzip" by its decompressed stream. A body that is not
// valid gzip is answered with 400.
func UngzipRequest(h http.Handler) http.Handler {
	middleware := func(response http.ResponseWriter, request *http.Request) {
		if !strings.Contains(request.Header.Get("Content-Encoding"), "gzip") {
			h.ServeHTTP(response, request)
			return
		}

		reader, err := NewCompressedReader(request.Body)
		if err != nil {
			logger.Log.Debugln("Error calling the `NewCompressedReader()`: ", zap.Error(err))
			response.Header().Set("Content-Type", "application/json")
			response.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(response).Encode(models.ErrorResponse{Message: MsgInvalidRequestBody})
			return
		}
		defer reader.Close()

		request.Body = reader
		request.Header.Del("Content-Encoding")
		request.ContentLength = -1

		h.ServeHTTP(response, request)
	}

	return http.HandlerFunc(middleware)
}
