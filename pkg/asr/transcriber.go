// Package asr implements the speech-to-text fallback: downloading episode
// audio and transcribing it through an OpenAI-compatible transcription API.
// This is the most expensive strategy (download plus billed transcription) and
// is always attempted last, behind validity and duration gating.
package asr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

const (
	defaultBaseURL  = "https://api.openai.com"
	defaultModel    = "whisper-1"
	transcribePath  = "/v1/audio/transcriptions"
	responseFormat  = "verbose_json"
	downloadTimeout = 5 * time.Minute
	// apiTimeout covers upload plus server-side transcription of long audio.
	apiTimeout = 10 * time.Minute

	// maxAudioBytes caps the audio download. Most podcast episodes are well
	// under this; anything larger is rejected before upload.
	maxAudioBytes = 200 << 20 // 200 MB
)

var (
	ErrEmptyAudioURL    = errors.New("audio URL is empty")
	ErrMissingAPIKey    = errors.New("transcription API key is missing")
	ErrDurationExceeded = errors.New("audio duration exceeds safety ceiling")
	ErrEmptyASRResult   = errors.New("transcription returned empty text")
)

// Result is the subset of the transcription API response this service needs.
type Result struct {
	Text     string  `json:"text"`
	Language string  `json:"language"`
	Duration float64 `json:"duration"`
	Segments []Span  `json:"segments"`
}

// Span is a single timed span from the API's verbose response.
type Span struct {
	ID    int     `json:"id"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Client transcribes remote audio files.
type Client struct {
	baseURL  string
	apiKey   string
	model    string
	http     *http.Client
	download *http.Client
}

// Option customizes a client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client used for API requests.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.http = httpClient
		}
	}
}

// WithDownloadClient overrides the HTTP client used for audio downloads.
func WithDownloadClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.download = httpClient
		}
	}
}

// WithBaseURL overrides the default API base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if strings.TrimSpace(baseURL) != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithModel overrides the default transcription model.
func WithModel(model string) Option {
	return func(c *Client) {
		if strings.TrimSpace(model) != "" {
			c.model = model
		}
	}
}

// NewClient constructs a transcription client.
func NewClient(apiKey string, opts ...Option) *Client {
	client := &Client{
		baseURL:  defaultBaseURL,
		apiKey:   strings.TrimSpace(apiKey),
		model:    defaultModel,
		http:     &http.Client{Timeout: apiTimeout},
		download: &http.Client{Timeout: downloadTimeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Transcribe downloads the audio at audioURL and submits it for transcription.
// expectedDurationSecs re-checks the safety ceiling even though callers gate
// on it earlier; a zero value means the duration is unknown and only the
// download size cap applies.
func (c *Client) Transcribe(ctx context.Context, audioURL string, expectedDurationSecs float64) (Result, error) {
	audioURL = strings.TrimSpace(audioURL)
	if audioURL == "" {
		return Result{}, ErrEmptyAudioURL
	}
	if c.apiKey == "" {
		return Result{}, ErrMissingAPIKey
	}
	if expectedDurationSecs > MaxAudioDurationSecs {
		return Result{}, ErrDurationExceeded
	}

	audio, filename, err := c.downloadAudio(ctx, audioURL)
	if err != nil {
		return Result{}, err
	}

	result, err := c.submitAudio(ctx, audio, filename)
	if err != nil {
		return Result{}, err
	}

	if strings.TrimSpace(result.Text) == "" {
		return Result{}, ErrEmptyASRResult
	}
	return result, nil
}

// downloadAudio fetches the audio enclosure into memory with the size cap applied.
func (c *Client) downloadAudio(ctx context.Context, audioURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, audioURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("build audio request: %w", err)
	}

	resp, err := c.download.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("download audio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", fmt.Errorf("download audio: unexpected status code: %d", resp.StatusCode)
	}

	limited := io.LimitReader(resp.Body, maxAudioBytes+1)
	audio, err := io.ReadAll(limited)
	if err != nil {
		return nil, "", fmt.Errorf("read audio body: %w", err)
	}
	if len(audio) > maxAudioBytes {
		return nil, "", fmt.Errorf("audio exceeds %d byte limit", maxAudioBytes)
	}
	if len(audio) == 0 {
		return nil, "", errors.New("audio body is empty")
	}

	return audio, audioFilename(audioURL), nil
}

// submitAudio uploads the audio as multipart form data and decodes the
// verbose JSON response.
func (c *Client) submitAudio(ctx context.Context, audio []byte, filename string) (Result, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	if err := writer.WriteField("model", c.model); err != nil {
		return Result{}, fmt.Errorf("write model field: %w", err)
	}
	if err := writer.WriteField("response_format", responseFormat); err != nil {
		return Result{}, fmt.Errorf("write response_format field: %w", err)
	}

	field, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return Result{}, fmt.Errorf("create file field: %w", err)
	}
	if _, err := field.Write(audio); err != nil {
		return Result{}, fmt.Errorf("write audio field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return Result{}, fmt.Errorf("close multipart writer: %w", err)
	}

	endpoint := c.baseURL + transcribePath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return Result{}, fmt.Errorf("build transcription request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("call transcription api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return Result{}, fmt.Errorf("transcription api: status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Result{}, fmt.Errorf("decode transcription response: %w", err)
	}
	return result, nil
}

// audioFilename derives an upload filename from the URL path; the API uses the
// extension to sniff the container format.
func audioFilename(audioURL string) string {
	u, err := url.Parse(audioURL)
	if err != nil || path.Base(u.Path) == "/" || path.Base(u.Path) == "." {
		return "audio.mp3"
	}
	name := path.Base(u.Path)
	if path.Ext(name) == "" {
		name += ".mp3"
	}
	return name
}
