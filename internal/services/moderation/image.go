package moderation

import (
	"context"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

var imageExtension = regexp.MustCompile(`(?i)\.(jpeg|jpg|gif|png|svg)$`)

// LooksLikeImageURL reports whether the URL path ends in a common image
// extension. It makes no network request.
func LooksLikeImageURL(raw string) bool {
	u, err := url.Parse(stripQuery(strings.TrimSpace(raw)))
	if err != nil {
		return false
	}
	return imageExtension.MatchString(u.Path)
}

// HTTPImageResolver checks that a URL serves an image by asking the remote
// host for its content type
type HTTPImageResolver struct {
	client *http.Client
	logger *slog.Logger
}

// NewHTTPImageResolver creates a resolver whose requests give up after timeout
func NewHTTPImageResolver(timeout time.Duration, logger *slog.Logger) *HTTPImageResolver {
	return NewHTTPImageResolverWithClient(&http.Client{Timeout: timeout}, logger)
}

// NewHTTPImageResolverWithClient creates a resolver with an existing client (for testing)
func NewHTTPImageResolverWithClient(client *http.Client, logger *slog.Logger) *HTTPImageResolver {
	return &HTTPImageResolver{client: client, logger: logger}
}

// Resolve returns the URL without its query string when it serves an image,
// and "" otherwise. Failures to reach the host count as "not an image".
func (r *HTTPImageResolver) Resolve(ctx context.Context, raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	target := stripQuery(raw)

	u, err := url.Parse(target)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ""
	}

	ok, err := r.isImage(ctx, http.MethodHead, target)
	if err != nil || !ok {
		// Some hosts refuse HEAD or answer it without a content type
		ok, err = r.isImage(ctx, http.MethodGet, target)
	}
	if err != nil {
		r.logger.Debug("image check failed",
			slog.String("url", target),
			slog.String("error", err.Error()),
		)
		return ""
	}
	if !ok {
		return ""
	}
	return target
}

func (r *HTTPImageResolver) isImage(ctx context.Context, method, target string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return false, err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false, nil
	}
	mediaType, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil {
		return false, nil
	}
	return strings.HasPrefix(mediaType, "image/"), nil
}

func stripQuery(raw string) string {
	before, _, _ := strings.Cut(raw, "?")
	return before
}

// ExtensionImageResolver accepts URLs by extension alone, without a network
// request
type ExtensionImageResolver struct{}

// Resolve returns the URL without its query string when it looks like an
// image, and "" otherwise
func (ExtensionImageResolver) Resolve(_ context.Context, raw string) string {
	raw = strings.TrimSpace(raw)
	if !LooksLikeImageURL(raw) {
		return ""
	}
	u, err := url.Parse(stripQuery(raw))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return ""
	}
	return u.String()
}
