package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"runtime"

	"github.com/bft-labs/lockstep/internal/ports"
)

// FileField is the multipart field carrying the file.
const FileField = "file"

// Uploader implements ports.TransferClient using a multipart POST.
type Uploader struct {
	client ports.HTTPClient
	logger ports.Logger
}

// NewUploader creates a new HTTP transfer client.
func NewUploader(client ports.HTTPClient, logger ports.Logger) *Uploader {
	return &Uploader{
		client: client,
		logger: logger,
	}
}

// Upload posts content as the "file" part named fileName to url.
// A non-2xx reply is an error; the receipt still carries status and body.
func (u *Uploader) Upload(ctx context.Context, url, fileName string, content io.Reader) (ports.TransferReceipt, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile(FileField, filepath.Base(fileName))
	if err != nil {
		return ports.TransferReceipt{}, fmt.Errorf("create file field: %w", err)
	}
	n, err := io.Copy(part, content)
	if err != nil {
		return ports.TransferReceipt{}, fmt.Errorf("write file data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return ports.TransferReceipt{}, fmt.Errorf("finalize multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return ports.TransferReceipt{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("X-Client-OSArch", runtime.GOOS+"/"+runtime.GOARCH)

	resp, err := u.client.Do(req)
	if err != nil {
		return ports.TransferReceipt{}, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return ports.TransferReceipt{}, fmt.Errorf("read response: %w", err)
	}

	receipt := ports.TransferReceipt{
		StatusCode: resp.StatusCode,
		Body:       string(respBody),
	}
	var ack struct {
		Info string `json:"info"`
	}
	if json.Unmarshal(respBody, &ack) == nil {
		receipt.Info = ack.Info
	}

	if resp.StatusCode/100 != 2 {
		return receipt, fmt.Errorf("server returned %d: %s", resp.StatusCode, receipt.Body)
	}

	u.logger.Debug("file uploaded",
		ports.String("url", url),
		ports.String("file", fileName),
		ports.Int64("bytes", n),
	)
	return receipt, nil
}
