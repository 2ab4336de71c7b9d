package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"time"

	"github.com/konstantinfoerster/loco-importer-go/internal/aio"
	"github.com/rs/zerolog/log"
)

// Config of the http client. A zero timeout means requests never time out.
type Config struct {
	Timeout time.Duration `yaml:"timeout"`
}

type Response struct {
	Body     io.ReadCloser
	MimeType MimeType
}

func NewGetOpts() GetOptions {
	return GetOptions{
		Header:      make(map[string]string),
		StatusCodes: []int{http.StatusOK},
	}
}

type GetOptions struct {
	Header      map[string]string
	StatusCodes []int
}

func (o GetOptions) WithHeader(k, v string) GetOptions {
	o.Header[k] = v

	return o
}

func (o GetOptions) WithExpectedCodes(statusCode ...int) GetOptions {
	o.StatusCodes = statusCode

	return o
}

type Client interface {
	Get(ctx context.Context, rawURL string, opts GetOptions) (*Response, error)
}

// NewClient returns a Client without any retry. A failed request has to be triggered again
// by the caller.
func NewClient(cfg Config, client *http.Client) Client {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	return &httpClient{
		cfg:    cfg,
		client: client,
	}
}

type httpClient struct {
	cfg    Config
	client *http.Client
}

func (c *httpClient) Get(ctx context.Context, rawURL string, opts GetOptions) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("request creation failed for url %s, %w", redact(rawURL), err)
	}

	req.Header.Set(HeaderUserAgent, DefaultUserAgent)
	for k, v := range opts.Header {
		req.Header.Set(k, v)
	}

	log.Debug().Str("url", redact(rawURL)).Msg("sending request")
	resp, err := c.client.Do(req)
	if err != nil {
		// url.Error repeats the unredacted url
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}

		return nil, fmt.Errorf("request execution failed for url %s, %w", redact(rawURL), err)
	}

	if !slices.Contains(opts.StatusCodes, resp.StatusCode) {
		defer aio.Close(resp.Body)

		return nil, newAPIError(redact(rawURL), resp)
	}

	return &Response{
		Body:     resp.Body,
		MimeType: NewMimeType(resp.Header.Get("content-type")),
	}, nil
}
