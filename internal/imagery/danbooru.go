package imagery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultDanbooruURL is the public Danbooru instance.
const DefaultDanbooruURL = "https://danbooru.donmai.us"

// ErrNoImage is returned when a query matched no usable post.
var ErrNoImage = errors.New("no image found")

// Provider looks up one illustration URL for a tag query.
type Provider interface {
	Fetch(ctx context.Context, tags string) (string, error)
}

// DanbooruProvider picks a random post matching the tags from the Danbooru
// JSON API.
type DanbooruProvider struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewDanbooruProvider creates a provider for baseURL. An empty baseURL uses
// the public instance.
func NewDanbooruProvider(baseURL string, timeout time.Duration, logger *zap.Logger) *DanbooruProvider {
	if baseURL == "" {
		baseURL = DefaultDanbooruURL
	}
	return &DanbooruProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

type danbooruPost struct {
	LargeFileURL   string `json:"large_file_url"`
	FileURL        string `json:"file_url"`
	PreviewFileURL string `json:"preview_file_url"`
}

// Fetch implements Provider.
func (p *DanbooruProvider) Fetch(ctx context.Context, tags string) (string, error) {
	endpoint := fmt.Sprintf("%s/posts.json?limit=1&random=true&tags=%s", p.baseURL, url.QueryEscape(tags))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("build danbooru request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("danbooru request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("danbooru returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var posts []danbooruPost
	if err := json.NewDecoder(resp.Body).Decode(&posts); err != nil {
		return "", fmt.Errorf("decode danbooru response: %w", err)
	}
	if len(posts) == 0 {
		return "", ErrNoImage
	}

	post := posts[0]
	u := normalizeURL(firstNonEmpty(post.LargeFileURL, post.FileURL, post.PreviewFileURL), p.baseURL)
	if u == "" {
		return "", ErrNoImage
	}

	if p.logger != nil {
		p.logger.Debug("danbooru image resolved", zap.String("url", u))
	}
	return u, nil
}

// normalizeURL turns protocol-relative and site-relative paths into
// absolute https URLs.
func normalizeURL(u, baseURL string) string {
	switch {
	case u == "":
		return ""
	case strings.HasPrefix(u, "//"):
		return "https:" + u
	case strings.HasPrefix(u, "/"):
		return baseURL + u
	default:
		return u
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
