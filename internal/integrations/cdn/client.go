package cdn

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client клиент для сброса кэша CDN методом PURGE
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// NewClient создает новый экземпляр клиента CDN
func NewClient(endpoint string, timeout time.Duration) *Client {
	return &Client{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// PurgeURL сбрасывает кэш одной страницы на CDN
// Путь страницы передается как есть, хост берется из endpoint
func (c *Client) PurgeURL(ctx context.Context, pageURL string) error {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return fmt.Errorf("%w: failed to parse page url: %v", ErrInternal, err)
	}

	target := c.endpoint + parsed.RequestURI()

	req, err := http.NewRequestWithContext(ctx, "PURGE", target, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}
	if parsed.Host != "" {
		req.Host = parsed.Host
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	// CDN отвечает 200 на успешный сброс и 404, если страницы не было в кэше
	// Оба случая считаем успешными
	switch resp.StatusCode {
	case http.StatusOK, http.StatusNotFound:
		return nil
	default:
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: unexpected status code %d: %s", ErrPurgeFailed, resp.StatusCode, string(body))
	}
}

// PurgeURLs сбрасывает кэш нескольких страниц, собирая первую ошибку
func (c *Client) PurgeURLs(ctx context.Context, pageURLs []string) (int, error) {
	purged := 0
	for _, u := range pageURLs {
		if err := c.PurgeURL(ctx, u); err != nil {
			return purged, err
		}
		purged++
	}
	return purged, nil
}
