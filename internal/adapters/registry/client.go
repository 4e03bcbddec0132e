// Package registry implements the RegistryClient port for the npm registry protocol.
package registry

import (
	"context"
	"crypto/sha1" //nolint:gosec // npm publishes sha1 shasums for older tarballs
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"hash"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"go.trai.ch/conde/internal/adapters/archive"
	"go.trai.ch/conde/internal/core/domain"
	"go.trai.ch/conde/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	// abbreviatedAccept asks for the install-only packument, which is much smaller.
	abbreviatedAccept = "application/vnd.npm.install-v1+json; q=1.0, application/json; q=0.8"

	maxPackumentBytes = 64 << 20
	maxTarballBytes   = 512 << 20
)

// Client implements ports.RegistryClient over HTTP with a local metadata cache.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      *metadataCache
	logger     ports.Logger
}

// New creates a Client from the resolved configuration.
func New(cfg *domain.Config, logger ports.Logger) *Client {
	return NewWithClient(
		cfg.RegistryURL,
		cfg.Layout().RegistryCacheDir(),
		cfg.RegistryCacheTTL,
		&http.Client{Timeout: cfg.RegistryTimeout},
		logger,
	)
}

// NewWithClient creates a Client with a custom http client (used for testing).
func NewWithClient(baseURL, cacheDir string, ttl time.Duration, client *http.Client, logger ports.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
		cache:      newMetadataCache(cacheDir, ttl),
		logger:     logger,
	}
}

// ListVersions returns every published version of name in ascending order.
func (c *Client) ListVersions(ctx context.Context, name string) ([]string, error) {
	p, err := c.packument(ctx, name, false)
	if err != nil {
		return nil, err
	}

	versions := make([]string, 0, len(p.Versions))
	for v := range p.Versions {
		if domain.IsExactVersion(v) {
			versions = append(versions, v)
		}
	}
	slices.SortFunc(versions, domain.CompareVersions)
	return versions, nil
}

// Fetch downloads the tarball of id, verifies it and extracts it into dest.
func (c *Client) Fetch(ctx context.Context, id domain.PackageID, dest string) error {
	p, err := c.packument(ctx, id.Name, false)
	if err != nil {
		return err
	}

	v, ok := p.Versions[id.Version]
	if !ok {
		// The version may have been published after the cached document was written.
		c.cache.invalidate(id.Name)
		if p, err = c.packument(ctx, id.Name, true); err != nil {
			return err
		}
		if v, ok = p.Versions[id.Version]; !ok {
			return zerr.With(zerr.With(zerr.Wrap(domain.ErrPackageVersionNotFound, "version is not published"),
				"package", id.Name), "version", id.Version)
		}
	}
	if v.Dist.Tarball == "" {
		return zerr.With(zerr.Wrap(domain.ErrRegistryParseFailed, "version has no tarball"), "package", id.String())
	}

	if err := c.download(ctx, id, v.Dist, dest); err != nil {
		_ = os.RemoveAll(dest)
		return err
	}
	return nil
}

func (c *Client) packumentURL(name string) string {
	return c.baseURL + "/" + url.PathEscape(name)
}

// packument returns the registry document of name, from cache unless fresh is set.
func (c *Client) packument(ctx context.Context, name string, fresh bool) (*Packument, error) {
	if !fresh {
		if p, ok := c.cache.get(name); ok {
			c.logger.Debug("registry cache hit for " + name)
			return p, nil
		}
	}

	endpoint := c.packumentURL(name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrRegistryRequestFailed.Error())
	}
	req.Header.Set("Accept", abbreviatedAccept)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrRegistryRequestFailed.Error()), "url", endpoint)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, zerr.With(zerr.Wrap(domain.ErrPackageVersionNotFound, "package is not published"), "package", name)
	}
	if resp.StatusCode != http.StatusOK {
		apiErr := zerr.With(zerr.Wrap(domain.ErrRegistryRequestFailed, "unexpected status"), "status_code", resp.StatusCode)
		return nil, zerr.With(apiErr, "url", endpoint)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPackumentBytes))
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrRegistryRequestFailed.Error())
	}

	var p Packument
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrRegistryParseFailed.Error()), "package", name)
	}

	if err := c.cache.put(name, &p); err != nil {
		c.logger.Debug("registry cache write failed: " + err.Error())
	}
	return &p, nil
}

func (c *Client) download(ctx context.Context, id domain.PackageID, dist Dist, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, dist.Tarball, http.NoBody)
	if err != nil {
		return zerr.Wrap(err, domain.ErrRegistryRequestFailed.Error())
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrRegistryRequestFailed.Error()), "url", dist.Tarball)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		apiErr := zerr.With(zerr.Wrap(domain.ErrRegistryRequestFailed, "unexpected status"), "status_code", resp.StatusCode)
		return zerr.With(apiErr, "url", dist.Tarball)
	}

	// The tarball is spooled next to dest so it can be verified before anything is extracted.
	tmp, err := os.CreateTemp(filepath.Dir(dest), "tarball-*.tgz")
	if err != nil {
		return zerr.Wrap(err, domain.ErrInstallFailed.Error())
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	digests := newDigests()
	n, err := io.Copy(io.MultiWriter(tmp, digests.writer()), io.LimitReader(resp.Body, maxTarballBytes+1))
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrRegistryRequestFailed.Error()), "url", dist.Tarball)
	}
	if n > maxTarballBytes {
		return zerr.With(zerr.New("tarball exceeds maximum size"), "url", dist.Tarball)
	}

	if err := digests.verify(dist); err != nil {
		return zerr.With(err, "package", id.String())
	}
	if dist.Integrity == "" && dist.Shasum == "" {
		c.logger.Debug("no integrity published for " + id.String())
	}

	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return zerr.Wrap(err, domain.ErrInstallFailed.Error())
	}
	// Tarballs nest their content under one top-level directory, usually "package/".
	if err := archive.ExtractTarGz(tmp, dest, archive.Options{StripComponents: 1}); err != nil {
		return zerr.With(err, "package", id.String())
	}
	return nil
}

type digests struct {
	sha1   hash.Hash
	sha256 hash.Hash
	sha512 hash.Hash
}

func newDigests() *digests {
	//nolint:gosec // sha1 is only used to check registry-published shasums
	return &digests{sha1: sha1.New(), sha256: sha256.New(), sha512: sha512.New()}
}

func (d *digests) writer() io.Writer {
	return io.MultiWriter(d.sha1, d.sha256, d.sha512)
}

// verify checks the strongest published digest. Subresource integrity
// strings take precedence over the legacy hex shasum.
func (d *digests) verify(dist Dist) error {
	if dist.Integrity != "" {
		sums := map[string]string{}
		for _, field := range strings.Fields(dist.Integrity) {
			alg, sum, ok := strings.Cut(field, "-")
			if ok {
				// Options after "?" are reserved by the SRI format.
				sum, _, _ = strings.Cut(sum, "?")
				sums[alg] = sum
			}
		}
		for _, alg := range []string{"sha512", "sha256", "sha1"} {
			want, ok := sums[alg]
			if !ok {
				continue
			}
			got := base64.StdEncoding.EncodeToString(d.sum(alg))
			if got != want {
				return mismatch(alg+"-"+want, alg+"-"+got)
			}
			return nil
		}
	}

	if dist.Shasum != "" {
		got := hex.EncodeToString(d.sha1.Sum(nil))
		if !strings.EqualFold(got, dist.Shasum) {
			return mismatch(dist.Shasum, got)
		}
	}
	return nil
}

func (d *digests) sum(alg string) []byte {
	switch alg {
	case "sha512":
		return d.sha512.Sum(nil)
	case "sha256":
		return d.sha256.Sum(nil)
	default:
		return d.sha1.Sum(nil)
	}
}

func mismatch(want, got string) error {
	return zerr.With(zerr.With(zerr.Wrap(domain.ErrIntegrityMismatch, "digest does not match"),
		"expected", want), "actual", got)
}
