package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/lo"

	"github.com/Adda-Baaj/khobor-desk/pkg/httpclient"
)

const (
	// MaxUploadMB bounds analysis uploads.
	MaxUploadMB   = 50
	maxUploadSize = MaxUploadMB * 1024 * 1024

	uploadField = "analysisFile"
)

var (
	allowedUploadTypes = []string{
		"text/csv",
		"application/vnd.ms-excel",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	}
	allowedUploadExts = []string{".csv", ".xlsx"}
)

// ValidateFile checks a file before upload: CSV or XLSX by MIME type or
// extension, non-empty and at most MaxUploadMB.
func ValidateFile(name, mimeType string, size int64) error {
	if strings.TrimSpace(name) == "" {
		return invalid("file", "No file selected.")
	}
	ext := strings.ToLower(filepath.Ext(name))
	if !lo.Contains(allowedUploadTypes, mimeType) && !lo.Contains(allowedUploadExts, ext) {
		detected := mimeType
		if detected == "" {
			detected = "unknown"
		}
		return invalid("file", "Invalid file type. Please select a CSV or XLSX file. Detected type: %s", detected)
	}
	if size > maxUploadSize {
		return invalid("file", "File is too large (%.1f MB). Maximum size is %d MB.", float64(size)/1024/1024, MaxUploadMB)
	}
	if size == 0 {
		return invalid("file", "File appears to be empty. Please select a valid file.")
	}
	return nil
}

// UploadResult describes an accepted upload.
type UploadResult struct {
	UploadID    string `json:"upload_id"`
	Filename    string `json:"filename"`
	Rows        int    `json:"rows"`
	Columns     int    `json:"columns"`
	CleanerPath string `json:"-"`
}

// Upload validates and posts r as the analysis file name.
func (c *Client) Upload(ctx context.Context, name, mimeType string, size int64, r io.Reader) (UploadResult, error) {
	if err := ValidateFile(name, mimeType, size); err != nil {
		return UploadResult{}, err
	}

	res, err := c.api.Upload(ctx, "/data/analyzer/upload", uploadField, filepath.Base(name), r)
	if err != nil {
		return UploadResult{}, uploadError(err)
	}

	var out UploadResult
	if err := res.Decode(&out); err != nil || strings.TrimSpace(out.UploadID) == "" {
		return UploadResult{}, fmt.Errorf("Upload failed (Status: %d). Please try again.", res.Status)
	}
	if out.Filename == "" {
		out.Filename = filepath.Base(name)
	}
	out.CleanerPath = "/data/cleaner/" + out.UploadID

	c.log.InfoObj("analysis file uploaded", "dashboard_upload", map[string]any{
		"upload_id": out.UploadID,
		"filename":  out.Filename,
		"rows":      out.Rows,
		"columns":   out.Columns,
	})
	return out, nil
}

// UploadFile uploads the file at path, deriving MIME type from its extension.
func (c *Client) UploadFile(ctx context.Context, path string) (UploadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return UploadResult{}, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return UploadResult{}, fmt.Errorf("stat upload: %w", err)
	}
	mimeType, _, _ := mime.ParseMediaType(mime.TypeByExtension(filepath.Ext(path)))
	return c.Upload(ctx, info.Name(), mimeType, info.Size(), f)
}

func uploadError(err error) error {
	herr, ok := httpclient.AsError(err)
	if !ok {
		return err
	}
	switch herr.Kind {
	case httpclient.KindNetwork:
		return errors.New("Upload Error: Could not connect to the server. Please check your network connection and try again.")
	case httpclient.KindDecode:
		return fmt.Errorf("Server Error: Received an unexpected response (Status: %d). Please check server logs.", herr.Status)
	case httpclient.KindHTTP:
		return fmt.Errorf("Upload failed (Status: %d). Please try again.", herr.Status)
	default:
		return herr
	}
}
