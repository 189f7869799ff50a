// Package updater replaces the running binary with the latest GitHub
// release when one is newer than the built-in version.
package updater

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"golang.org/x/mod/semver"
)

// DefaultRepo is the GitHub repository releases are fetched from.
const DefaultRepo = "vovakirdan/wcag-lsp"

const binaryName = "wcag-lsp"

// ErrNoAsset is returned when the latest release has no archive for the
// current platform.
var ErrNoAsset = errors.New("no release asset for this platform")

// Asset is one downloadable file attached to a release.
type Asset struct {
	Name        string `json:"name"`
	DownloadURL string `json:"browser_download_url"`
}

// Release is the subset of the GitHub release API the updater needs.
type Release struct {
	TagName string  `json:"tag_name"`
	Assets  []Asset `json:"assets"`
}

// Options configures an update check.
type Options struct {
	Repo    string // owner/name, DefaultRepo when empty
	BaseURL string // API endpoint override for tests
	Client  *http.Client
	// Target is the binary path to replace; the running executable when
	// empty.
	Target string
}

func (o Options) repo() string {
	if o.Repo == "" {
		return DefaultRepo
	}
	return o.Repo
}

func (o Options) baseURL() string {
	if o.BaseURL == "" {
		return "https://api.github.com"
	}
	return strings.TrimSuffix(o.BaseURL, "/")
}

func (o Options) client() *http.Client {
	if o.Client != nil {
		return o.Client
	}
	return &http.Client{Timeout: 30 * time.Second}
}

// Latest fetches the newest release of the configured repository.
func Latest(ctx context.Context, opts Options) (Release, error) {
	url := fmt.Sprintf("%s/repos/%s/releases/latest", opts.baseURL(), opts.repo())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Release{}, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	resp, err := opts.client().Do(req)
	if err != nil {
		return Release{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Release{}, fmt.Errorf("release lookup failed: %s", resp.Status)
	}
	var release Release
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return Release{}, err
	}
	if release.TagName == "" {
		return Release{}, errors.New("release has no tag")
	}
	return release, nil
}

// IsNewer reports whether latest is a strictly newer semantic version
// than current. Non-semver versions never trigger an update.
func IsNewer(current, latest string) bool {
	cur := canonical(current)
	next := canonical(latest)
	if !semver.IsValid(cur) || !semver.IsValid(next) {
		return false
	}
	return semver.Compare(next, cur) > 0
}

func canonical(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}

// AssetName returns the release archive name for a platform.
func AssetName(goos, goarch string) string {
	return fmt.Sprintf("%s_%s_%s.tar.gz", binaryName, goos, goarch)
}

func pickAsset(release Release, name string) (Asset, bool) {
	for _, asset := range release.Assets {
		if asset.Name == name {
			return asset, true
		}
	}
	return Asset{}, false
}

// ExtractBinary reads a gzipped tar stream and returns the contents of
// the binary entry.
func ExtractBinary(r io.Reader) ([]byte, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer gz.Close()
	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		if filepath.Base(hdr.Name) != binaryName {
			continue
		}
		return io.ReadAll(tr)
	}
	return nil, fmt.Errorf("archive has no %s entry", binaryName)
}

// Apply atomically replaces the binary at path with data.
func Apply(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".wcag-lsp-update-*")
	if err != nil {
		return err
	}
	name := tmp.Name()
	cleanup := true
	defer func() {
		if cleanup {
			os.Remove(name)
		}
	}()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o755); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(name, path); err != nil {
		return err
	}
	cleanup = false
	return nil
}

// SelfUpdate checks for a newer release and installs it over the
// current binary. It returns the latest version string and whether an
// update was applied.
func SelfUpdate(ctx context.Context, current string, opts Options) (bool, string, error) {
	release, err := Latest(ctx, opts)
	if err != nil {
		return false, "", err
	}
	if !IsNewer(current, release.TagName) {
		return false, release.TagName, nil
	}
	asset, ok := pickAsset(release, AssetName(runtime.GOOS, runtime.GOARCH))
	if !ok {
		return false, release.TagName, ErrNoAsset
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, asset.DownloadURL, nil)
	if err != nil {
		return false, release.TagName, err
	}
	resp, err := opts.client().Do(req)
	if err != nil {
		return false, release.TagName, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false, release.TagName, fmt.Errorf("asset download failed: %s", resp.Status)
	}
	data, err := ExtractBinary(resp.Body)
	if err != nil {
		return false, release.TagName, err
	}

	target := opts.Target
	if target == "" {
		target, err = os.Executable()
		if err != nil {
			return false, release.TagName, err
		}
	}
	if err := Apply(target, data); err != nil {
		return false, release.TagName, err
	}
	return true, release.TagName, nil
}
