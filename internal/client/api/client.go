// Package api implements the HTTP client for the GuardianBox server. It
// only ever carries opaque envelopes; plaintext never leaves the caller.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/guardianbox/internal/common"
)

// Client talks to a GuardianBox server over HTTP.
type Client struct {
	baseURL string
	hc      *http.Client
}

// New creates a Client for the given base URL (e.g. "http://127.0.0.1:8080").
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{Timeout: timeout},
	}
}

// UploadResult is the server's answer to a successful upload.
type UploadResult struct {
	ID          string `json:"id"`
	DownloadURL string `json:"download_url"`
}

// Metadata is the public lifecycle state of a stored object.
type Metadata struct {
	ID            string `json:"id"`
	Size          int64  `json:"size"`
	UploadedAt    int64  `json:"uploaded_at"`
	ExpiresAt     *int64 `json:"expires_at"`
	DownloadLimit *int64 `json:"download_limit"`
	DownloadsDone int64  `json:"downloads_done"`
}

// Upload sends the envelope as a multipart form. Nil expiresIn or limit
// leave the server defaults in effect.
func (c *Client) Upload(ctx context.Context, envelope []byte, expiresIn, limit *int64) (*UploadResult, error) {

	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	fw, err := w.CreateFormFile("file", "payload.enc")
	if err != nil {
		return nil, err
	}
	if _, err := fw.Write(envelope); err != nil {
		return nil, err
	}
	if expiresIn != nil {
		if err := w.WriteField("expires_seconds", strconv.FormatInt(*expiresIn, 10)); err != nil {
			return nil, err
		}
	}
	if limit != nil {
		if err := w.WriteField("download_limit", strconv.FormatInt(*limit, 10)); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}

	result := &UploadResult{}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return nil, err
	}
	return result, nil
}

// Metadata fetches the object's public metadata.
func (c *Client) Metadata(ctx context.Context, id string) (*Metadata, error) {

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/file/"+id, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}

	m := &Metadata{}
	if err := json.NewDecoder(resp.Body).Decode(m); err != nil {
		return nil, err
	}
	return m, nil
}

// Download retrieves the envelope bytes. The call consumes one download
// slot even if the caller later fails to decrypt.
func (c *Client) Download(ctx context.Context, id string) ([]byte, error) {

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/file/"+id+"/download", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}

	return io.ReadAll(resp.Body)
}

// statusError converts an error response into one of the common sentinels,
// keeping the server's detail message in the wrapped text.
func statusError(resp *http.Response) error {

	var payload struct {
		Detail string `json:"detail"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&payload)

	switch {
	case resp.StatusCode == http.StatusNotFound && payload.Detail == "file expired":
		return common.ErrExpired
	case resp.StatusCode == http.StatusNotFound:
		return common.ErrNotFound
	case resp.StatusCode == http.StatusForbidden:
		return common.ErrLimitReached
	}

	if payload.Detail == "" {
		payload.Detail = resp.Status
	}
	return fmt.Errorf("server error (%d): %s", resp.StatusCode, payload.Detail)
}
