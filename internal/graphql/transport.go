package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"time"

	applog "github.com/AdriBusse/FinanZApp2025-sub000/internal/log"
)

// Upload is a file attached to a mutation, sent per the GraphQL multipart
// request spec. VariablePath names the null placeholder in the variables
// object, e.g. "variables.attachment".
type Upload struct {
	VariablePath string
	FileName     string
	ContentType  string
	Content      io.Reader
}

// transport performs the actual HTTP round-trip: JSON POST for plain
// operations, multipart/form-data when files are attached.
type transport struct {
	endpoint string
	client   *http.Client
	logger   *applog.Logger
}

func newTransport(endpoint string, timeout time.Duration, logger *applog.Logger) *transport {
	return &transport{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

func (t *transport) Do(ctx context.Context, req *Request) (*Response, error) {
	var (
		body        io.Reader
		contentType string
		err         error
	)
	if len(req.Files) > 0 {
		body, contentType, err = encodeMultipart(req)
	} else {
		body, contentType, err = encodeJSON(req)
	}
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", "application/json")
	if token := bearerFrom(ctx); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	httpResp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send %s: %w", req.OperationName, err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		t.logger.WarnContext(ctx, "non-2xx response",
			applog.FieldGQLOp, req.OperationName,
			applog.FieldStatusCode, httpResp.StatusCode)
		return nil, &HTTPError{StatusCode: httpResp.StatusCode, Status: httpResp.Status}
	}

	var resp Response
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decode %s response body: %w", req.OperationName, err)
	}
	return &resp, nil
}

func encodeJSON(req *Request) (io.Reader, string, error) {
	buf, err := json.Marshal(req)
	if err != nil {
		return nil, "", fmt.Errorf("marshal %s request: %w", req.OperationName, err)
	}
	return bytes.NewReader(buf), "application/json", nil
}

// encodeMultipart builds a multipart body per the GraphQL multipart request
// spec: an "operations" field with null file placeholders, a "map" field
// binding part names to variable paths, then one part per file.
func encodeMultipart(req *Request) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	operations, err := json.Marshal(Request{
		Query:         req.Query,
		OperationName: req.OperationName,
		Variables:     req.Variables,
	})
	if err != nil {
		return nil, "", fmt.Errorf("marshal operations: %w", err)
	}
	if err := w.WriteField("operations", string(operations)); err != nil {
		return nil, "", fmt.Errorf("write operations field: %w", err)
	}

	fileMap := make(map[string][]string, len(req.Files))
	for i, f := range req.Files {
		fileMap[strconv.Itoa(i)] = []string{f.VariablePath}
	}
	mapJSON, err := json.Marshal(fileMap)
	if err != nil {
		return nil, "", fmt.Errorf("marshal file map: %w", err)
	}
	if err := w.WriteField("map", string(mapJSON)); err != nil {
		return nil, "", fmt.Errorf("write map field: %w", err)
	}

	for i, f := range req.Files {
		contentType := f.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name=%q; filename=%q`, strconv.Itoa(i), f.FileName))
		header.Set("Content-Type", contentType)

		part, err := w.CreatePart(header)
		if err != nil {
			return nil, "", fmt.Errorf("create file part %d: %w", i, err)
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return nil, "", fmt.Errorf("copy file part %d: %w", i, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("finalize multipart body: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}
