package operations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/roach88/shouldi/internal/catalog"
)

// DefaultPyPIURL is the base of the PyPI JSON API.
const DefaultPyPIURL = "https://pypi.org/pypi"

const pypiCacheSize = 256

// maxMetadataBytes caps a PyPI JSON response.
const maxMetadataBytes = 32 << 20

// ErrNoSourceDist is returned when a release has no sdist file.
var ErrNoSourceDist = errors.New("no source distribution")

// PackageJSON is the subset of the PyPI JSON API response shouldi reads.
type PackageJSON struct {
	Info PackageInfo   `json:"info"`
	URLs []ReleaseFile `json:"urls"`
}

// PackageInfo holds project metadata.
type PackageInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// ReleaseFile is one downloadable file of the latest release.
type ReleaseFile struct {
	Filename    string `json:"filename"`
	PackageType string `json:"packagetype"`
	URL         string `json:"url"`
}

// PyPIClient fetches project metadata from a PyPI compatible JSON API.
// Responses are cached per normalized project name for the life of the
// client.
type PyPIClient struct {
	baseURL string
	http    *http.Client
	cache   *lru.Cache[string, *PackageJSON]
}

// NewPyPIClient creates a client for baseURL. An empty baseURL selects
// DefaultPyPIURL and a nil httpClient selects http.DefaultClient.
func NewPyPIClient(baseURL string, httpClient *http.Client) (*PyPIClient, error) {
	if baseURL == "" {
		baseURL = DefaultPyPIURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	cache, err := lru.New[string, *PackageJSON](pypiCacheSize)
	if err != nil {
		return nil, err
	}
	return &PyPIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		cache:   cache,
	}, nil
}

// PackageJSON returns the metadata for pkg.
func (c *PyPIClient) PackageJSON(ctx context.Context, pkg string) (*PackageJSON, error) {
	name := catalog.NormalizePackage(pkg)
	if name == "" {
		return nil, fmt.Errorf("empty package name")
	}
	if cached, ok := c.cache.Get(name); ok {
		return cached, nil
	}

	endpoint := fmt.Sprintf("%s/%s/json", c.baseURL, url.PathEscape(name))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %s", name, resp.Status)
	}

	var out PackageJSON
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxMetadataBytes)).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode %s metadata: %w", name, err)
	}
	if out.Info.Version == "" {
		return nil, fmt.Errorf("%s metadata has no version", name)
	}
	if out.Info.Name == "" {
		out.Info.Name = name
	}

	c.cache.Add(name, &out)
	return &out, nil
}

// LatestVersion returns the pinned requirement for the latest release,
// "name==version".
func LatestVersion(pj *PackageJSON) (string, error) {
	if pj == nil || pj.Info.Version == "" {
		return "", fmt.Errorf("metadata has no version")
	}
	return pj.Info.Name + "==" + pj.Info.Version, nil
}

// SourceURL returns the download URL of the latest release's sdist.
func SourceURL(pj *PackageJSON) (string, error) {
	if pj == nil {
		return "", ErrNoSourceDist
	}
	for _, f := range pj.URLs {
		if f.PackageType == "sdist" && f.URL != "" {
			return f.URL, nil
		}
	}
	return "", fmt.Errorf("%s %s: %w", pj.Info.Name, pj.Info.Version, ErrNoSourceDist)
}
