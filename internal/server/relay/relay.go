// Package relay forwards chat text and image payloads to the external
// model-serving backend. The client is a fail-fast synchronous forwarder: a
// single outbound call per request, an explicit deadline, and no retries —
// the backend is the sole source of truth for results and its failure should
// be immediately visible rather than masked.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/robodoc-one/gateway/internal/common"
	"github.com/robodoc-one/gateway/internal/logging"
)

// defaultLanguage is sent to the chat backend when the caller supplies none.
const defaultLanguage = "english"

type Client struct {
	httpClient *http.Client
	chatURL    string
	predictURL string
	logger     logging.Logger
}

// NewClient builds a relay client for the backend at baseURL. Every outbound
// call is bounded by timeout.
func NewClient(baseURL string, timeout time.Duration, logger logging.Logger) *Client {
	base := strings.TrimRight(baseURL, "/")
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		chatURL:    base + "/chat",
		predictURL: base + "/predict",
		logger:     logger.With("module", "relay"),
	}
}

type chatRequest struct {
	Message  string `json:"message"`
	Language string `json:"language"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

type predictResponse struct {
	Prediction json.RawMessage `json:"prediction"`
}

// Chat posts the message to the backend chat endpoint and returns the reply
// verbatim. An empty message fails with common.ErrValidation before any
// outbound call is made; language defaults to "english" when absent.
func (c *Client) Chat(ctx context.Context, message, language string) (string, error) {
	if message == "" {
		return "", common.ErrValidation
	}
	if language == "" {
		language = defaultLanguage
	}

	payload, err := json.Marshal(chatRequest{Message: message, Language: language})
	if err != nil {
		return "", common.ErrorInternal
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.chatURL, bytes.NewReader(payload))
	if err != nil {
		return "", common.ErrorInternal
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := c.do(ctx, req)
	if err != nil {
		return "", err
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("%w: malformed backend response", common.ErrRelay)
	}

	return parsed.Reply, nil
}

// Predict posts the file bytes as a multipart payload to the backend
// prediction endpoint and returns the prediction value verbatim. An empty
// payload fails with common.ErrValidation before any outbound call is made.
func (c *Client) Predict(ctx context.Context, fileBytes []byte, filename, contentType string) (json.RawMessage, error) {
	if len(fileBytes) == 0 {
		return nil, common.ErrValidation
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filename))
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	part, err := mw.CreatePart(header)
	if err != nil {
		return nil, common.ErrorInternal
	}
	if _, err := part.Write(fileBytes); err != nil {
		return nil, common.ErrorInternal
	}
	if err := mw.Close(); err != nil {
		return nil, common.ErrorInternal
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.predictURL, &buf)
	if err != nil {
		return nil, common.ErrorInternal
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	body, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}

	var parsed predictResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: malformed backend response", common.ErrRelay)
	}

	return parsed.Prediction, nil
}

// do performs the single outbound call and maps transport failures onto the
// relay error taxonomy. Timeouts yield common.ErrTimeout; everything else,
// including non-2xx statuses, yields common.ErrRelay with the backend's
// message attached.
func (c *Client) do(ctx context.Context, req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			c.logger.Warn(ctx, "backend call timed out", "url", req.URL.String())
			return nil, common.ErrTimeout
		}
		c.logger.Error(ctx, "backend call failed", "url", req.URL.String(), "error", err.Error())
		return nil, fmt.Errorf("%w: %v", common.ErrRelay, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading backend response: %v", common.ErrRelay, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error(ctx, "backend returned error status",
			"url", req.URL.String(), "status", resp.StatusCode)
		return nil, fmt.Errorf("%w: status %d: %s", common.ErrRelay, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return body, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr) && urlErr.Timeout()
}
