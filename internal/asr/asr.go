package asr

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
	"golang.org/x/net/http2"

	"voicekey/internal/audio/ffmpeg"
	"voicekey/internal/config"
	"voicekey/internal/jsonpath"
	"voicekey/internal/logx"
)

// RetryExhaustedError is returned when every upload attempt failed.
type RetryExhaustedError struct {
	Attempts int
	MaxRetry int
	// Last is the final attempt's error.
	Last error
}

func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("upload failed after %d attempts (max %d): %v", e.Attempts, e.MaxRetry, e.Last)
}

func (e *RetryExhaustedError) Unwrap() error { return e.Last }

// StatusError carries a non-200 response.
type StatusError struct {
	Code int
	Body []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.Code, formatResponse(e.Body))
}

// NewHTTPClient builds the upload client: HTTP/2 when enabled, TLS
// verification per VERIFY_SSL.
func NewHTTPClient(cfg config.Config) *http.Client {
	tr := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	if !cfg.VerifySSL {
		tr.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	if cfg.EnableHTTP2 {
		_ = http2.ConfigureTransport(tr)
	}
	return &http.Client{
		Transport: tr,
		Timeout:   time.Duration(cfg.RequestTimeout) * time.Second,
	}
}

// Client uploads recordings to a transcription endpoint.
type Client struct {
	cfg        config.Config
	httpClient *http.Client
	extra      map[string]any
	log        *zap.SugaredLogger
}

// New creates a client and parses EXTRA_CONFIG. A nil httpClient is
// replaced by NewHTTPClient(cfg).
func New(cfg config.Config, httpClient *http.Client, log *zap.SugaredLogger) (*Client, error) {
	if cfg.APIEndpoint == "" {
		return nil, fmt.Errorf("API endpoint is empty")
	}
	if httpClient == nil {
		httpClient = NewHTTPClient(cfg)
	}
	if cfg.MaxRetry < 1 {
		cfg.MaxRetry = 1
	}
	c := &Client{cfg: cfg, httpClient: httpClient, log: logx.OrNop(log)}
	if cfg.ExtraConfig != "" {
		if err := json.Unmarshal([]byte(cfg.ExtraConfig), &c.extra); err != nil {
			return nil, fmt.Errorf("invalid extra-config JSON: %w", err)
		}
	}
	return c, nil
}

// Transcribe converts wavPath when a codec is configured, uploads it and
// extracts the text at TEXT_PATH.
func (c *Client) Transcribe(ctx context.Context, wavPath string) (string, error) {
	text, _, err := c.TranscribeRaw(ctx, wavPath)
	return strings.TrimSpace(text), err
}

// TranscribeRaw is Transcribe that also returns the response body.
func (c *Client) TranscribeRaw(ctx context.Context, wavPath string) (string, []byte, error) {
	upload := wavPath
	if c.cfg.NeedsConversion() {
		out := strings.TrimSuffix(wavPath, filepath.Ext(wavPath)) + "." + config.ContainerExt(c.cfg.CONTAINER)
		c.log.Debugw("converting before upload", "codec", c.cfg.CODECS, "out", out)
		err := ffmpeg.Convert(ctx, ffmpeg.Options{
			Codec:    c.cfg.CODECS,
			Channels: c.cfg.Channels,
			BitRate:  c.cfg.BIT_RATE,
		}, wavPath, out)
		if err != nil {
			return "", nil, err
		}
		if !c.cfg.KeepCache {
			defer os.Remove(out)
		}
		upload = out
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = time.Duration(c.cfg.RetryBaseDelay * float64(time.Second))
	exp.Multiplier = 2
	exp.RandomizationFactor = 0

	attempts := 0
	body, err := backoff.Retry(ctx, func() ([]byte, error) {
		attempts++
		b, err := c.upload(ctx, upload)
		if err != nil {
			c.log.Debugw("upload attempt failed", "attempt", attempts, "error", err)
		}
		return b, err
	},
		backoff.WithBackOff(exp),
		backoff.WithMaxTries(uint(c.cfg.MaxRetry)),
	)
	if err != nil {
		if ctx.Err() != nil {
			return "", nil, ctx.Err()
		}
		return "", nil, &RetryExhaustedError{Attempts: attempts, MaxRetry: c.cfg.MaxRetry, Last: err}
	}
	return jsonpath.Extract(body, c.cfg.TEXTPath), body, nil
}

func (c *Client) upload(ctx context.Context, filePath string) ([]byte, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("open upload: %w", err))
	}
	defer f.Close()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filepath.Base(filePath))
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("read upload: %w", err))
	}
	for k, v := range c.fields() {
		_ = writer.WriteField(k, v)
	}
	if err := writer.Close(); err != nil {
		return nil, backoff.Permanent(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIEndpoint, body)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}
	req.Header.Set("User-Agent", "voicekey/1.0")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.log.Debugw("upload request", "endpoint", c.cfg.APIEndpoint, "elapsed", time.Since(start))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode, Body: respBody}
	}
	return respBody, nil
}

// fields merges model, language and prompt with EXTRA_CONFIG, the latter
// winning.
func (c *Client) fields() map[string]string {
	out := map[string]string{}
	if c.cfg.APIModel != "" {
		out["model"] = c.cfg.APIModel
	}
	if c.cfg.Language != "" && !strings.EqualFold(c.cfg.Language, "auto") {
		out["language"] = c.cfg.Language
	}
	if c.cfg.Prompt != "" {
		out["prompt"] = c.cfg.Prompt
	}
	for k, v := range c.extra {
		switch val := v.(type) {
		case string:
			out[k] = val
		case bool:
			out[k] = strconv.FormatBool(val)
		case float64:
			out[k] = strconv.FormatFloat(val, 'f', -1, 64)
		default:
			if b, err := json.Marshal(val); err == nil {
				out[k] = string(b)
			} else {
				out[k] = fmt.Sprint(val)
			}
		}
	}
	return out
}

func formatResponse(b []byte) string {
	if len(b) == 0 {
		return "<empty>"
	}
	const maxText = 1000
	const maxBin = 256

	if utf8.Valid(b) {
		if len(b) > maxText {
			return fmt.Sprintf("%s... (truncated, total %d bytes)", b[:maxText], len(b))
		}
		return string(b)
	}
	if len(b) > maxBin {
		return fmt.Sprintf("<binary %d bytes, prefix hex: %s...>", len(b), hex.EncodeToString(b[:maxBin]))
	}
	return fmt.Sprintf("<binary %d bytes, hex: %s>", len(b), hex.EncodeToString(b))
}
