package operations

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// maxExtractBytes caps the total size written while unpacking one archive.
const maxExtractBytes = 512 << 20

// ErrUnsafePath is returned for archive entries that would land outside the
// extraction directory.
var ErrUnsafePath = errors.New("archive entry escapes extraction directory")

// ErrUnsupportedArchive is returned for URLs that are neither .tar.gz nor .zip.
var ErrUnsupportedArchive = errors.New("unsupported archive format")

// Downloader fetches release archives and unpacks them under a root
// directory. The caller owns root and removes it when done.
type Downloader struct {
	root string
	http *http.Client
}

// NewDownloader creates a downloader that extracts into subdirectories of
// root. A nil httpClient selects http.DefaultClient.
func NewDownloader(root string, httpClient *http.Client) *Downloader {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Downloader{root: root, http: httpClient}
}

// Download fetches the archive at rawURL, unpacks it into a fresh directory
// and returns that directory.
func (d *Downloader) Download(ctx context.Context, rawURL string) (string, error) {
	kind, err := archiveKind(rawURL)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	resp, err := d.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", rawURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download %s: unexpected status %s", rawURL, resp.Status)
	}

	dir, err := os.MkdirTemp(d.root, "src-")
	if err != nil {
		return "", fmt.Errorf("create extraction dir: %w", err)
	}

	switch kind {
	case "tar.gz":
		err = extractTarGz(resp.Body, dir)
	case "zip":
		err = extractZip(resp.Body, dir)
	}
	if err != nil {
		_ = os.RemoveAll(dir)
		return "", fmt.Errorf("extract %s: %w", rawURL, err)
	}
	return dir, nil
}

func archiveKind(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	name := strings.ToLower(path.Base(u.Path))
	switch {
	case strings.HasSuffix(name, ".tar.gz"), strings.HasSuffix(name, ".tgz"):
		return "tar.gz", nil
	case strings.HasSuffix(name, ".zip"):
		return "zip", nil
	default:
		return "", fmt.Errorf("%s: %w", name, ErrUnsupportedArchive)
	}
}

// safeJoin resolves an archive entry name under dir.
func safeJoin(dir, name string) (string, error) {
	if name == "" || filepath.IsAbs(name) || strings.HasPrefix(name, "/") {
		return "", fmt.Errorf("%q: %w", name, ErrUnsafePath)
	}
	target := filepath.Join(dir, filepath.FromSlash(name))
	rel, err := filepath.Rel(dir, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%q: %w", name, ErrUnsafePath)
	}
	return target, nil
}

// budget tracks bytes remaining for one extraction.
type budget struct {
	remaining int64
}

func (b *budget) copy(dst io.Writer, src io.Reader) error {
	n, err := io.Copy(dst, io.LimitReader(src, b.remaining+1))
	b.remaining -= n
	if err != nil {
		return err
	}
	if b.remaining < 0 {
		return fmt.Errorf("archive exceeds %d bytes", int64(maxExtractBytes))
	}
	return nil
}

func writeFile(target string, r io.Reader, b *budget) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if err := b.copy(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func extractTarGz(r io.Reader, dir string) error {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return err
	}
	defer gz.Close()

	b := &budget{remaining: maxExtractBytes}
	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if errors.Is(err, tar.ErrInsecurePath) {
			return fmt.Errorf("%q: %w", hdr.Name, ErrUnsafePath)
		}
		if err != nil {
			return err
		}

		target, err := safeJoin(dir, hdr.Name)
		if err != nil {
			return err
		}
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := writeFile(target, tr, b); err != nil {
				return err
			}
		default:
			// links and devices are skipped
		}
	}
}

// extractZip spools the body to disk first because zip needs random access.
func extractZip(r io.Reader, dir string) error {
	tmp, err := os.CreateTemp(dir, ".download-*.zip")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	size, err := io.Copy(tmp, io.LimitReader(r, maxExtractBytes+1))
	if err != nil {
		return err
	}
	if size > maxExtractBytes {
		return fmt.Errorf("archive exceeds %d bytes", int64(maxExtractBytes))
	}

	zr, err := zip.NewReader(tmp, size)
	if errors.Is(err, zip.ErrInsecurePath) {
		return ErrUnsafePath
	}
	if err != nil {
		return err
	}

	b := &budget{remaining: maxExtractBytes}
	for _, f := range zr.File {
		target, err := safeJoin(dir, f.Name)
		if err != nil {
			return err
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}
		if !f.Mode().IsRegular() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return err
		}
		err = writeFile(target, rc, b)
		rc.Close()
		if err != nil {
			return err
		}
	}
	return nil
}
