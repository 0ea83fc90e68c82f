package loaders

import (
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/spaghettifunk/bolt/engine/core"
)

/** @brief Retrieves the raw bytes behind a URL or file path. */
type Fetcher interface {
	Fetch(ctx context.Context, location string) ([]byte, error)
}

/**
 * @brief Fetches http(s) URLs, file URLs, plain paths and base64 data URIs.
 * There is no retry: any failure is a ResourceFetchError.
 */
type DefaultFetcher struct {
	Client *http.Client
}

func NewDefaultFetcher() *DefaultFetcher {
	return &DefaultFetcher{Client: http.DefaultClient}
}

func (f *DefaultFetcher) Fetch(ctx context.Context, location string) ([]byte, error) {
	data, err := f.fetch(ctx, location)
	if err != nil {
		return nil, core.NewImportError(core.ErrResourceFetch, "fetch "+shorten(location), err)
	}
	return data, nil
}

func (f *DefaultFetcher) fetch(ctx context.Context, location string) ([]byte, error) {
	if strings.HasPrefix(location, "data:") {
		return decodeDataURI(location)
	}
	u, err := url.Parse(location)
	if err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		return f.fetchHTTP(ctx, location)
	}
	path := location
	if err == nil && u.Scheme == "file" {
		path = u.Path
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read '%s'", path)
	}
	return data, nil
}

func (f *DefaultFetcher) fetchHTTP(ctx context.Context, location string) ([]byte, error) {
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get '%s'", location)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("GET '%s' returned %s", location, resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read body of '%s'", location)
	}
	return data, nil
}

func decodeDataURI(uri string) ([]byte, error) {
	comma := strings.IndexByte(uri, ',')
	if comma < 0 {
		return nil, errors.New("malformed data uri")
	}
	header, payload := uri[:comma], uri[comma+1:]
	if !strings.HasSuffix(header, ";base64") {
		unescaped, err := url.PathUnescape(payload)
		if err != nil {
			return nil, errors.Wrap(err, "malformed data uri")
		}
		return []byte(unescaped), nil
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, errors.Wrap(err, "malformed base64 data uri")
	}
	return data, nil
}

// dataURIMimeType returns the media type of a data uri, "" otherwise.
func dataURIMimeType(uri string) string {
	if !strings.HasPrefix(uri, "data:") {
		return ""
	}
	header := uri[len("data:"):]
	if i := strings.IndexAny(header, ";,"); i >= 0 {
		header = header[:i]
	}
	return header
}

/**
 * @brief Resolves reference against the location of the document it was
 * found in. Absolute URLs and data URIs are returned untouched.
 */
func ResolveURI(base, reference string) string {
	if strings.HasPrefix(reference, "data:") {
		return reference
	}
	ref, err := url.Parse(reference)
	if err == nil && ref.IsAbs() {
		return reference
	}
	if b, err := url.Parse(base); err == nil && (b.Scheme == "http" || b.Scheme == "https" || b.Scheme == "file") {
		if ref != nil {
			return b.ResolveReference(ref).String()
		}
	}
	if unescaped, err := url.PathUnescape(reference); err == nil {
		reference = unescaped
	}
	if base == "" {
		return reference
	}
	return filepath.Join(filepath.Dir(base), filepath.FromSlash(reference))
}

func shorten(location string) string {
	if strings.HasPrefix(location, "data:") && len(location) > 32 {
		return location[:32] + "..."
	}
	return location
}
