// Package loco downloads Android string exports from the Loco translation service.
package loco

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/konstantinfoerster/loco-importer-go/internal/aio"
	"github.com/konstantinfoerster/loco-importer-go/internal/web"
	"github.com/pkg/errors"
)

const (
	exportFormat   = "android"
	fallbackLocale = "en"
	exportOrder    = "id"
)

type Client struct {
	baseURL string
	client  web.Client
}

func NewClient(baseURL string, client web.Client) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  client,
	}
}

// ExportURL builds the archive export url for the given tag filter.
func (c *Client) ExportURL(key, filter string) string {
	q := url.Values{}
	q.Set("format", exportFormat)
	q.Set("filter", filter)
	q.Set("fallback", fallbackLocale)
	q.Set("order", exportOrder)
	q.Set("key", key)

	return c.baseURL + "/export/archive/xml.zip?" + q.Encode()
}

// Export requests the zip archive of all android strings matching the filter. The caller must
// close the returned body.
func (c *Client) Export(ctx context.Context, key, filter string) (*web.Response, error) {
	opts := web.NewGetOpts().WithHeader(web.HeaderAccept, web.MimeTypeZip)
	resp, err := c.client.Get(ctx, c.ExportURL(key, filter), opts)
	if err != nil {
		return nil, &ExportError{Filter: filter, Err: err}
	}

	if !resp.MimeType.IsZip() {
		aio.Close(resp.Body)

		return nil, &ExportError{Filter: filter, Err: errors.Errorf("unexpected content type %s", resp.MimeType.Raw())}
	}

	return resp, nil
}

// Tags lists all tags defined in the project of the key.
func (c *Client) Tags(ctx context.Context, key string) ([]string, error) {
	opts := web.NewGetOpts().
		WithHeader(web.HeaderAccept, web.MimeTypeJSON).
		WithHeader(web.HeaderAuthorization, "Loco "+key)
	resp, err := c.client.Get(ctx, c.baseURL+"/tags", opts)
	if err != nil {
		return nil, err
	}
	defer aio.Close(resp.Body)

	var tags []string
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, errors.Wrap(err, "failed to decode tag list")
	}

	return tags, nil
}

// FeatureFilter selects the feature tag and excludes every other known tag. The base tag is
// never excluded.
func FeatureFilter(feature, baseTag string, tags []string) string {
	var b strings.Builder
	b.WriteString(feature)
	for _, t := range tags {
		if t == "" || t == feature || t == baseTag {
			continue
		}
		b.WriteString(",!")
		b.WriteString(t)
	}

	return b.String()
}
