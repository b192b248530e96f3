// Package summarizer talks to the external summarization service.
package summarizer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// DefaultMode is sent when the caller does not pick one.
const DefaultMode = "detailed"

// Response is the JSON body returned by the service.
type Response struct {
	Summary       string `json:"summary"`
	ProcessTimeMs int    `json:"process_time_ms"`
}

// Summarizer turns document bytes into summary text.
type Summarizer interface {
	Summarize(ctx context.Context, fileName string, r io.Reader, mode string) (*Response, error)
}

type Client struct {
	BaseURL string
	Client  *http.Client
}

// NewClient returns nil when url is empty so callers can treat a missing
// summarizer as "not configured".
func NewClient(url string, timeout time.Duration) *Client {
	if url == "" {
		return nil
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		BaseURL: url,
		Client:  &http.Client{Timeout: timeout},
	}
}

// Summarize uploads the document as multipart field "file" together with
// the "mode" field. The body is streamed, never buffered whole.
func (c *Client) Summarize(ctx context.Context, fileName string, r io.Reader, mode string) (*Response, error) {
	if mode == "" {
		mode = DefaultMode
	}

	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeForm(writer, fileName, r, mode))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, pr)
	if err != nil {
		pr.Close()
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("summarizer returned status %d", resp.StatusCode)
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding summarizer response: %w", err)
	}
	if out.Summary == "" {
		return nil, errors.New("summarizer returned an empty summary")
	}
	return &out, nil
}

func writeForm(w *multipart.Writer, fileName string, r io.Reader, mode string) error {
	if err := w.WriteField("mode", mode); err != nil {
		return err
	}
	part, err := w.CreateFormFile("file", fileName)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, r); err != nil {
		return err
	}
	return w.Close()
}

var _ Summarizer = (*Client)(nil)
