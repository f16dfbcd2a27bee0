// Package client is a typed HTTP client for the school directory API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/stemsi/school-directory/internal/model"
)

// HeaderIdempotencyKey mirrors the header the API reads on POST /add-school.
const HeaderIdempotencyKey = "Idempotency-Key"

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int
	// Message is the server's "error" text, or the raw body when it is not JSON.
	Message string
	Code    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server error %d: %s", e.StatusCode, e.Message)
}

// Client calls the four API operations.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a Client for baseURL (e.g. http://localhost:5000).
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// ImageURL turns a stored image path into an absolute URL. Stored names keep
// the uploaded filename verbatim, so each segment is escaped.
func (c *Client) ImageURL(path string) string {
	if path == "" {
		return ""
	}
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return c.baseURL + strings.Join(segments, "/")
}

// Health calls GET /health.
func (c *Client) Health(ctx context.Context) (*model.HealthStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return nil, err
	}
	var status model.HealthStatus
	if err := c.do(req, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// AddSchool calls POST /add-school with the six fields and the image read
// from image. An empty idempotencyKey sends no key.
func (c *Client) AddSchool(ctx context.Context, fields model.SchoolFields, imageName string, image io.Reader, idempotencyKey string) (*model.CreateSchoolResponse, error) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for _, kv := range [][2]string{
		{"name", fields.Name},
		{"address", fields.Address},
		{"city", fields.City},
		{"state", fields.State},
		{"contact", fields.Contact},
		{"email_id", fields.EmailID},
	} {
		if err := w.WriteField(kv[0], kv[1]); err != nil {
			return nil, fmt.Errorf("encode form: %w", err)
		}
	}
	part, err := w.CreateFormFile("image", imageName)
	if err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	if _, err := io.Copy(part, image); err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("encode form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/add-school", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	if idempotencyKey != "" {
		req.Header.Set(HeaderIdempotencyKey, idempotencyKey)
	}

	var created model.CreateSchoolResponse
	if err := c.do(req, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// ListSchools calls GET /get-schools.
func (c *Client) ListSchools(ctx context.Context) ([]model.School, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/get-schools", nil)
	if err != nil {
		return nil, err
	}
	schools := []model.School{}
	if err := c.do(req, &schools); err != nil {
		return nil, err
	}
	return schools, nil
}

// DeleteSchool calls DELETE /delete-school/:id.
func (c *Client) DeleteSchool(ctx context.Context, id int64) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/delete-school/"+strconv.FormatInt(id, 10), nil)
	if err != nil {
		return err
	}
	var msg model.MessageResponse
	return c.do(req, &msg)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseAPIError(resp.StatusCode, data)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseAPIError(status int, data []byte) *APIError {
	apiErr := &APIError{StatusCode: status, Message: string(data)}
	var body struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	if json.Unmarshal(data, &body) == nil && body.Error != "" {
		apiErr.Message = body.Error
		apiErr.Code = body.Code
	}
	return apiErr
}
