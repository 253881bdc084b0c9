package cli

import (
	"bytes"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/AdriBusse/FinanZApp2025-sub000/internal/graphql"
)

// ReadUpload loads a receipt file into an upload descriptor. An empty path
// returns nil, meaning no attachment.
func ReadUpload(path string) (*graphql.Upload, error) {
	if path == "" {
		return nil, nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read attachment: %w", err)
	}

	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return &graphql.Upload{
		FileName:    filepath.Base(path),
		ContentType: contentType,
		Content:     bytes.NewReader(content),
	}, nil
}
