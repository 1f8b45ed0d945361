// internal/client/client.go
package client

// HTTP client for the upstream customs REST API, the system of record for
// applications, attachments and reference data. The auth token and active
// company TIN are not ambient state: every call receives them through a
// SessionContext supplied by the caller.

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/opencustoms/trade-portal/internal/config"
	"github.com/opencustoms/trade-portal/internal/models"
)

// SessionContext carries the per-request ambient configuration the
// upstream expects on every call.
type SessionContext struct {
	Token string
	Tin   string
}

// APIError is a failed upstream call. The message is the upstream's own
// when one was returned, so callers can surface it verbatim.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

type Client struct {
	baseURL string
	http    *http.Client
	log     *logrus.Entry
}

func New(cfg config.UpstreamConfig) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: time.Duration(cfg.Timeout) * time.Second},
		log:     logrus.WithField("component", "upstream_client"),
	}
}

func (c *Client) do(ctx context.Context, sc SessionContext, method, path string, body io.Reader, contentType string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if sc.Token != "" {
		req.Header.Set("Authorization", "Bearer "+sc.Token)
	}
	if sc.Tin != "" {
		req.Header.Set("X-Company-Tin", sc.Tin)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.WithError(err).WithField("path", path).Warn("upstream request failed")
		return &APIError{Message: err.Error()}
	}
	defer resp.Body.Close()

	c.log.WithFields(logrus.Fields{
		"method":   method,
		"path":     path,
		"status":   resp.StatusCode,
		"duration": time.Since(start).Milliseconds(),
	}).Debug("upstream request")

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{StatusCode: resp.StatusCode, Message: err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Message: upstreamMessage(raw, resp.StatusCode)}
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return &APIError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("malformed upstream response: %v", err)}
		}
	}
	return nil
}

// upstreamMessage pulls the server's error text when the body carries one,
// falling back to generic text otherwise.
func upstreamMessage(raw []byte, status int) string {
	var envelope struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil {
		if envelope.Message != "" {
			return envelope.Message
		}
		if envelope.Error != "" {
			return envelope.Error
		}
	}
	return fmt.Sprintf("upstream request failed with status %d", status)
}

func (c *Client) postJSON(ctx context.Context, sc SessionContext, path string, payload interface{}, out interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return c.do(ctx, sc, http.MethodPost, path, bytes.NewReader(raw), "application/json", out)
}

type idResponse struct {
	ID int `json:"id"`
}

// GetApplication fetches the raw application payload. The shape may carry
// PascalCase aliases and array-wrapped singletons; normalization is the
// caller's job.
func (c *Client) GetApplication(ctx context.Context, sc SessionContext, id int) (map[string]interface{}, error) {
	var out map[string]interface{}
	if err := c.do(ctx, sc, http.MethodGet, fmt.Sprintf("/applications/%d", id), nil, "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateApplication(ctx context.Context, sc SessionContext, payload models.Record) (int, error) {
	var out idResponse
	if err := c.postJSON(ctx, sc, "/applications", payload, &out); err != nil {
		return 0, err
	}
	return out.ID, nil
}

// UpdateApplication posts to the upstream's named update path. "Update" is
// its own operation in the upstream contract, not a REST verb.
func (c *Client) UpdateApplication(ctx context.Context, sc SessionContext, id int, payload models.Record) (int, error) {
	var out idResponse
	if err := c.postJSON(ctx, sc, fmt.Sprintf("/applications/%d/update", id), payload, &out); err != nil {
		return 0, err
	}
	if out.ID == 0 && id != 0 {
		// Some update responses echo nothing useful; keep the known id.
		return id, nil
	}
	return out.ID, nil
}

// SubmitApplication transitions a saved draft to submitted without
// resending the full payload.
func (c *Client) SubmitApplication(ctx context.Context, sc SessionContext, id int) error {
	return c.postJSON(ctx, sc, fmt.Sprintf("/applications/%d/submit", id), struct{}{}, nil)
}

func (c *Client) ApplicationTypes(ctx context.Context, sc SessionContext) ([]models.ApplicationType, error) {
	var out []models.ApplicationType
	if err := c.do(ctx, sc, http.MethodGet, "/application-types", nil, "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Districts(ctx context.Context, sc SessionContext) ([]models.District, error) {
	var out []models.District
	if err := c.do(ctx, sc, http.MethodGet, "/districts", nil, "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UnitsOfMeasure(ctx context.Context, sc SessionContext) ([]models.UnitOfMeasure, error) {
	var out []models.UnitOfMeasure
	if err := c.do(ctx, sc, http.MethodGet, "/unit-of-measure", nil, "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) AttachmentTypes(ctx context.Context, sc SessionContext) ([]models.AttachmentType, error) {
	var out []models.AttachmentType
	if err := c.do(ctx, sc, http.MethodGet, "/attachment-types", nil, "", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UploadResult mirrors the upstream's multipart upload response.
type UploadResult struct {
	AttachmentRecordID int    `json:"attachmentRecordId"`
	RelativePath       string `json:"relativePath"`
}

// UploadAttachment streams one file to the upstream multipart endpoint.
// The field name is "File" per the upstream contract.
func (c *Client) UploadAttachment(ctx context.Context, sc SessionContext, fileName, contentType string, content []byte) (*UploadResult, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("File", fileName)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(content); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	var out UploadResult
	if err := c.do(ctx, sc, http.MethodPost, "/attachments/upload", &buf, writer.FormDataContentType(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RegisterAttachment reports an object uploaded out of band (direct to
// storage) so the upstream issues an attachment record for it.
func (c *Client) RegisterAttachment(ctx context.Context, sc SessionContext, relativePath string) (int, error) {
	var out idResponse
	payload := map[string]string{"relativePath": relativePath}
	if err := c.postJSON(ctx, sc, "/attachments/register", payload, &out); err != nil {
		return 0, err
	}
	return out.ID, nil
}

// LookupAgent validates a customs-agent code against the upstream
// reference, returning the agent's details or a failure.
func (c *Client) LookupAgent(ctx context.Context, sc SessionContext, agentCode string) (*models.AgentInfo, error) {
	var out models.AgentInfo
	payload := map[string]string{"agentCode": agentCode}
	if err := c.postJSON(ctx, sc, "/agents", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
