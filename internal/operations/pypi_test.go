package operations

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const requestsJSON = `{
  "info": {"name": "requests", "version": "2.31.0"},
  "urls": [
    {"filename": "requests-2.31.0-py3-none-any.whl", "packagetype": "bdist_wheel", "url": "https://files.example/requests.whl"},
    {"filename": "requests-2.31.0.tar.gz", "packagetype": "sdist", "url": "https://files.example/requests-2.31.0.tar.gz"}
  ]
}`

func newPyPIServer(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch r.URL.Path {
		case "/requests/json":
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, requestsJSON)
		case "/broken/json":
			fmt.Fprint(w, "{not json")
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestPyPIClient_PackageJSON(t *testing.T) {
	var hits atomic.Int32
	srv := newPyPIServer(t, &hits)

	c, err := NewPyPIClient(srv.URL+"/", srv.Client())
	require.NoError(t, err)

	pj, err := c.PackageJSON(context.Background(), "Requests")
	require.NoError(t, err)
	assert.Equal(t, "requests", pj.Info.Name)
	assert.Equal(t, "2.31.0", pj.Info.Version)
	assert.Len(t, pj.URLs, 2)
}

func TestPyPIClient_CachesByNormalizedName(t *testing.T) {
	var hits atomic.Int32
	srv := newPyPIServer(t, &hits)

	c, err := NewPyPIClient(srv.URL, srv.Client())
	require.NoError(t, err)

	for _, name := range []string{"requests", "Requests", "REQUESTS"} {
		_, err := c.PackageJSON(context.Background(), name)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), hits.Load())
}

func TestPyPIClient_Errors(t *testing.T) {
	var hits atomic.Int32
	srv := newPyPIServer(t, &hits)

	c, err := NewPyPIClient(srv.URL, srv.Client())
	require.NoError(t, err)

	tests := []struct {
		name    string
		pkg     string
		wantErr string
	}{
		{"not found", "nope", "404"},
		{"bad json", "broken", "decode broken metadata"},
		{"empty name", "  ", "empty package name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.PackageJSON(context.Background(), tt.pkg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLatestVersion(t *testing.T) {
	v, err := LatestVersion(&PackageJSON{Info: PackageInfo{Name: "requests", Version: "2.31.0"}})
	require.NoError(t, err)
	assert.Equal(t, "requests==2.31.0", v)

	_, err = LatestVersion(&PackageJSON{})
	assert.Error(t, err)
}

func TestSourceURL(t *testing.T) {
	pj := &PackageJSON{
		Info: PackageInfo{Name: "requests", Version: "2.31.0"},
		URLs: []ReleaseFile{
			{PackageType: "bdist_wheel", URL: "https://files.example/a.whl"},
			{PackageType: "sdist", URL: "https://files.example/a.tar.gz"},
		},
	}
	u, err := SourceURL(pj)
	require.NoError(t, err)
	assert.Equal(t, "https://files.example/a.tar.gz", u)

	pj.URLs = pj.URLs[:1]
	_, err = SourceURL(pj)
	assert.ErrorIs(t, err, ErrNoSourceDist)
}
