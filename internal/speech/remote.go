package speech

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultRemoteEndpoint = "https://tts.api.cloud.yandex.net/speech/v1/tts:synthesize"

// RemoteConfig holds the remote TTS credentials. An empty APIKey or
// FolderID means the remote path is unavailable and the bridge goes
// straight to the on-device fallback.
type RemoteConfig struct {
	APIKey   string
	FolderID string
	Endpoint string
	Format   string
}

// Remote synthesizes speech through the cloud TTS endpoint: a form-encoded
// POST answered with binary audio.
type Remote struct {
	cfg   RemoteConfig
	httpc *http.Client
}

func NewRemote(cfg RemoteConfig) *Remote {
	if cfg.Endpoint == "" {
		cfg.Endpoint = defaultRemoteEndpoint
	}
	if cfg.Format == "" {
		cfg.Format = "mp3"
	}
	return &Remote{
		cfg:   cfg,
		httpc: &http.Client{Timeout: 15 * time.Second},
	}
}

// Available reports whether credentials are configured.
func (r *Remote) Available() bool {
	return r != nil && r.cfg.APIKey != "" && r.cfg.FolderID != ""
}

// Format is the audio container the endpoint returns.
func (r *Remote) Format() string {
	if r == nil {
		return "mp3"
	}
	return r.cfg.Format
}

// Synthesize performs one synthesis call. A failed call is not retried; the
// caller falls back to on-device synthesis for that utterance only.
func (r *Remote) Synthesize(ctx context.Context, req Request) ([]byte, error) {
	form := url.Values{}
	form.Set("text", req.Text)
	form.Set("lang", req.Lang)
	form.Set("voice", req.Voice)
	form.Set("emotion", req.Emotion)
	form.Set("speed", strconv.FormatFloat(req.Speed, 'f', -1, 64))
	form.Set("format", r.cfg.Format)
	form.Set("folderId", r.cfg.FolderID)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.Endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Authorization", "Api-Key "+r.cfg.APIKey)
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	start := time.Now()
	resp, err := r.httpc.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	metricRemoteLatencyMS.Observe(float64(time.Since(start).Milliseconds()))

	if resp.StatusCode/100 != 2 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("tts status=%d body=%s", resp.StatusCode, string(b))
	}
	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read tts body: %w", err)
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("empty tts response")
	}
	return audio, nil
}
