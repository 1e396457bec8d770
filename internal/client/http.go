package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/alfredjeanlab/records/internal/model"
)

// Headers set by the server on a list-all response.
const (
	headerExportCSV      = "X-Export-Csv"
	headerExportJSON     = "X-Export-Json"
	headerExportWarnings = "X-Export-Warnings"
)

// HTTPClient implements RecordsClient using the records HTTP/JSON REST API.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPClient creates a new HTTP client targeting the given base URL
// (e.g. "http://localhost:8000").
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
}

// Close is a no-op for the HTTP client.
func (c *HTTPClient) Close() error { return nil }

// --- Records ---

func (c *HTTPClient) ListRecords(ctx context.Context) (*ListResult, error) {
	var records []*model.Record
	header, err := c.do(ctx, http.MethodGet, "/api/records/all", nil, &records)
	if err != nil {
		return nil, err
	}
	res := &ListResult{
		Records:  records,
		CSVPath:  header.Get(headerExportCSV),
		JSONPath: header.Get(headerExportJSON),
	}
	if v := header.Get(headerExportWarnings); v != "" {
		res.Warnings, _ = strconv.Atoi(v)
	}
	return res, nil
}

func (c *HTTPClient) GetRecord(ctx context.Context, id int64) (*model.Record, error) {
	var r model.Record
	if err := c.doJSON(ctx, http.MethodGet, recordPath(id), nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *HTTPClient) CreateRecord(ctx context.Context, in model.RecordInput) (*model.Record, error) {
	var r model.Record
	if err := c.doJSON(ctx, http.MethodPost, "/api/records", in, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *HTTPClient) UpdateRecord(ctx context.Context, id int64, in model.RecordInput) (*model.Record, error) {
	var r model.Record
	if err := c.doJSON(ctx, http.MethodPut, recordPath(id), in, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func (c *HTTPClient) DeleteRecord(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, recordPath(id), nil, nil)
}

func (c *HTTPClient) SearchRecords(ctx context.Context, query string) ([]*model.Record, error) {
	var records []*model.Record
	body := map[string]string{"query": query}
	if err := c.doJSON(ctx, http.MethodPost, "/api/search", body, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// --- Export ---

func (c *HTTPClient) Export(ctx context.Context) (*ExportResult, error) {
	var res ExportResult
	if err := c.doJSON(ctx, http.MethodPost, "/api/export", nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// DownloadCSV fetches the in-memory CSV export. filename comes from the
// Content-Disposition header.
func (c *HTTPClient) DownloadCSV(ctx context.Context) (string, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/export/csv", nil)
	if err != nil {
		return "", nil, fmt.Errorf("creating request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return "", nil, parseAPIError(resp.StatusCode, data)
	}

	var filename string
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		filename = params["filename"]
	}
	return filename, data, nil
}

// --- Health ---

func (c *HTTPClient) Health(ctx context.Context) (string, error) {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/health", nil, &resp); err != nil {
		return "", err
	}
	return resp.Status, nil
}

// --- internal helpers ---

func recordPath(id int64) string {
	return "/api/records/" + strconv.FormatInt(id, 10)
}

// APIError represents an error response from the server.
type APIError struct {
	StatusCode int
	Message    string
	Fields     []model.FieldError
}

func (e *APIError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
	}
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + " " + f.Message
	}
	return fmt.Sprintf("HTTP %d: invalid input: %s", e.StatusCode, strings.Join(parts, "; "))
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

func parseAPIError(status int, body []byte) error {
	var errResp struct {
		Error  string             `json:"error"`
		Fields []model.FieldError `json:"fields"`
	}
	if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
		return &APIError{StatusCode: status, Message: errResp.Error, Fields: errResp.Fields}
	}
	return &APIError{StatusCode: status, Message: strings.TrimSpace(string(body))}
}

// doJSON performs an HTTP request with optional JSON body and decodes the JSON response.
// If result is nil, the response body is discarded (for DELETE/204 responses).
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, body any, result any) error {
	_, err := c.do(ctx, method, path, body, result)
	return err
}

// do is doJSON that also returns the response headers.
func (c *HTTPClient) do(ctx context.Context, method, path string, body any, result any) (http.Header, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	// 204 No Content: success with no body.
	if resp.StatusCode == http.StatusNoContent {
		return resp.Header, nil
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, parseAPIError(resp.StatusCode, respBody)
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return nil, fmt.Errorf("decoding response: %w", err)
		}
	}

	return resp.Header, nil
}
