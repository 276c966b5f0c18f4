package gradescope

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

// RequestOption customizes a single guarded request.
type RequestOption func(req *resty.Request)

func WithQuery(key string, values ...string) RequestOption {
	return func(req *resty.Request) {
		for _, v := range values {
			req.QueryParam.Add(key, v)
		}
	}
}

// Fetch GETs path and maps the status code onto the package's errors:
// 200 returns the response, 401 becomes ErrNotLoggedIn / ErrNotAuthorized /
// ErrUnrecognizedAuthError, 404 becomes ErrNotFound and anything else a
// *StatusError.
func (c *Client) Fetch(ctx context.Context, path string, opts ...RequestOption) (*resty.Response, error) {
	req := c.Http.R().SetContext(ctx)
	for _, opt := range opts {
		opt(req)
	}

	res, err := req.Get(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnreachable, err)
	}
	err = checkStatus(path, res)
	if err != nil {
		return res, err
	}
	return res, nil
}

// FetchDocument is Fetch followed by parsing the body as html.
func (c *Client) FetchDocument(ctx context.Context, path string, opts ...RequestOption) (*goquery.Document, error) {
	res, err := c.Fetch(ctx, path, opts...)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(res.Body()))
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	return doc, nil
}

// FetchJson is Fetch followed by decoding the body into out.
func (c *Client) FetchJson(ctx context.Context, path string, out any, opts ...RequestOption) error {
	res, err := c.Fetch(ctx, path, opts...)
	if err != nil {
		return err
	}
	err = json.Unmarshal(res.Body(), out)
	if err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func checkStatus(path string, res *resty.Response) error {
	switch res.StatusCode() {
	case http.StatusOK:
		return nil
	case http.StatusUnauthorized:
		return fmt.Errorf("%s: %w", path, unauthorizedError(res.Body()))
	case http.StatusNotFound:
		return fmt.Errorf("%s: %w", path, ErrNotFound)
	default:
		return &StatusError{Path: path, Code: res.StatusCode()}
	}
}

func unauthorizedError(body []byte) error {
	message, err := firstJsonString(body)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnrecognizedAuthError, err)
	}

	normalized := strings.ToLower(message)
	switch {
	case strings.Contains(normalized, "must be logged in"):
		return ErrNotLoggedIn
	case strings.Contains(normalized, "not authorized"):
		return ErrNotAuthorized
	default:
		return fmt.Errorf("%w: %q", ErrUnrecognizedAuthError, message)
	}
}

// firstJsonString returns the first value of a json object (in the order it
// appears in the body), or the first element of a json array.
func firstJsonString(body []byte) (string, error) {
	decoder := json.NewDecoder(bytes.NewReader(body))

	open, err := decoder.Token()
	if err != nil {
		return "", err
	}
	delim, ok := open.(json.Delim)
	if !ok {
		return "", fmt.Errorf("expected object or array, got %v", open)
	}
	if delim == '{' {
		// key
		_, err = decoder.Token()
		if err != nil {
			return "", err
		}
	}
	if !decoder.More() {
		return "", errors.New("empty error body")
	}

	var value any
	err = decoder.Decode(&value)
	if err != nil {
		return "", err
	}
	message, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("expected string, got %v", value)
	}
	return message, nil
}

// reportFetch reports a failed guarded request. Outcomes the caller is
// expected to branch on are warnings, everything else is broken.
func (c *Client) reportFetch(id string, err error) {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrNotLoggedIn),
		errors.Is(err, ErrNotAuthorized):
		c.tel.ReportWarning(id, fmt.Errorf("fetch: %w", err))
	default:
		c.tel.ReportBroken(id, fmt.Errorf("fetch: %w", err))
	}
}
