package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/andrx/courier/internal/domain"
)

const (
	defaultTimeout  = 30 * time.Second
	maxResponseBody = 10 * 1024 * 1024 // 10 MB
)

// Client — HTTP-клиент координирующего сервера (gateway).
//
// Поверхность минимальная: обновление статуса request, liveness-проба
// и загрузка/выгрузка byte-параметров. Ошибки транспортного уровня
// оборачиваются в ErrConnection, ответы 4xx — в ErrClient.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт клиент для gateway API.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// updateRequestBody — тело PATCH /api/v1/requests/{id}.
type updateRequestBody struct {
	Status     string `json:"status"`
	Output     string `json:"output,omitempty"`
	ErrorClass string `json:"error_class,omitempty"`
}

// versionResponse — ответ GET /api/v1/version.
type versionResponse struct {
	Version string `json:"version"`
}

// fileResponse — ответ PUT /api/v1/files.
type fileResponse struct {
	ID string `json:"id"`
}

// UpdateRequest обновляет статус, output и error_class request на gateway.
func (c *Client) UpdateRequest(ctx context.Context, id string, status domain.Status, output, errorClass string) error {
	body := updateRequestBody{
		Status:     string(status),
		Output:     output,
		ErrorClass: errorClass,
	}

	resp, err := c.doJSON(ctx, http.MethodPatch, "/api/v1/requests/"+url.PathEscape(id), body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return c.checkError(resp)
}

// GetVersion возвращает версию gateway.
// Используется исключительно как liveness-проба.
func (c *Client) GetVersion(ctx context.Context) (string, error) {
	resp, err := c.doJSON(ctx, http.MethodGet, "/api/v1/version", nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return "", err
	}

	var vr versionResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBody)).Decode(&vr); err != nil {
		return "", fmt.Errorf("decode version response: %w", err)
	}
	return vr.Version, nil
}

// UploadFile выгружает бинарный параметр на gateway и возвращает
// присвоенный сервером ID.
func (c *Client) UploadFile(ctx context.Context, data []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"/api/v1/files", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrConnection, err)
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return "", err
	}

	var fr fileResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBody)).Decode(&fr); err != nil {
		return "", fmt.Errorf("decode file response: %w", err)
	}
	return fr.ID, nil
}

// DownloadFile скачивает бинарный параметр по ID.
func (c *Client) DownloadFile(ctx context.Context, id string) ([]byte, error) {
	resp, err := c.doJSON(ctx, http.MethodGet, "/api/v1/files/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := c.checkError(resp); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("read file body: %w", err)
	}
	return data, nil
}

// --- HTTP helpers ---

func (c *Client) doJSON(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Любая транспортная ошибка — connectivity: сервер недоступен.
		return nil, fmt.Errorf("%w: %s", ErrConnection, err)
	}
	return resp, nil
}

// errorBody — тело ошибки gateway API.
type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) checkError(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}

	var eb errorBody
	msg := fmt.Sprintf("HTTP %d", resp.StatusCode)
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBody)).Decode(&eb); err == nil && eb.Error.Message != "" {
		msg = fmt.Sprintf("HTTP %d: %s: %s", resp.StatusCode, eb.Error.Code, eb.Error.Message)
	}

	if resp.StatusCode < 500 {
		return fmt.Errorf("%w: %s", ErrClient, msg)
	}
	return fmt.Errorf("gateway error: %s", msg)
}
