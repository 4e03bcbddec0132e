// Package nodedist implements the RuntimeProvisioner port against a Node.js distribution mirror.
package nodedist

import (
	"bufio"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"runtime"
	"strings"

	"go.trai.ch/conde/internal/adapters/archive"
	"go.trai.ch/conde/internal/core/domain"
	"go.trai.ch/conde/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	indexFile    = "index.json"
	checksumFile = "SHASUMS256.txt"

	maxIndexBytes = 32 << 20
	maxDistBytes  = 1 << 30
)

// bundled are the distribution entries conde leaves out: packages are
// managed through the store, so the bundled package managers are not installed.
var bundled = []string{"lib/node_modules", "bin/npm", "bin/npx", "bin/corepack"}

// Release is one entry of the distribution index.
type Release struct {
	Version string   `json:"version"`
	Files   []string `json:"files"`
	LTS     any      `json:"lts"`
}

// IsLTS reports whether the release belongs to a long-term support line.
func (r Release) IsLTS() bool {
	switch v := r.LTS.(type) {
	case string:
		return v != ""
	case bool:
		return v
	default:
		return false
	}
}

// Provisioner downloads and unpacks Node.js distributions.
type Provisioner struct {
	baseURL    string
	httpClient *http.Client
	logger     ports.Logger
	goos       string
	goarch     string
}

// New creates a Provisioner from the resolved configuration.
func New(cfg *domain.Config, logger ports.Logger) *Provisioner {
	return NewWithClient(cfg.RuntimeDistURL, &http.Client{Timeout: cfg.RegistryTimeout}, logger)
}

// NewWithClient creates a Provisioner with a custom http client (used for testing).
func NewWithClient(baseURL string, client *http.Client, logger ports.Logger) *Provisioner {
	return &Provisioner{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
		logger:     logger,
		goos:       runtime.GOOS,
		goarch:     runtime.GOARCH,
	}
}

// WithPlatform overrides the target platform.
func (p *Provisioner) WithPlatform(goos, goarch string) *Provisioner {
	p.goos, p.goarch = goos, goarch
	return p
}

// Provision installs the runtime matching version into root and records it in
// the runtime marker. It returns the concrete version installed.
func (p *Provisioner) Provision(ctx context.Context, version, root string) (string, error) {
	platform, err := p.platform()
	if err != nil {
		return "", err
	}

	resolved, err := p.resolve(ctx, version)
	if err != nil {
		return "", zerr.With(err, "version", version)
	}
	p.logger.Info("provisioning node " + resolved)

	name := "node-v" + resolved + "-" + platform
	archiveName := name + ".tar.gz"
	sums, err := p.checksums(ctx, resolved)
	if err != nil {
		return "", err
	}
	want, ok := sums[archiveName]
	if !ok {
		return "", zerr.With(zerr.With(zerr.Wrap(domain.ErrRuntimeProvisionFailed, "no distribution for this platform"),
			"version", resolved), "platform", platform)
	}

	if err := p.install(ctx, p.releaseURL(resolved)+"/"+archiveName, want, root); err != nil {
		return "", zerr.With(err, "version", resolved)
	}

	if err := os.WriteFile(domain.RuntimeMarker(root), []byte(resolved+"\n"), domain.FilePerm); err != nil {
		return "", zerr.With(zerr.Wrap(err, domain.ErrRuntimeProvisionFailed.Error()), "path", domain.RuntimeMarker(root))
	}
	return resolved, nil
}

func (p *Provisioner) releaseURL(version string) string {
	return p.baseURL + "/v" + version
}

// resolve turns a partial version, a range or "lts" into a published version.
func (p *Provisioner) resolve(ctx context.Context, version string) (string, error) {
	version = strings.TrimPrefix(strings.TrimSpace(version), "v")
	if domain.IsExactVersion(version) {
		return version, nil
	}

	releases, err := p.Index(ctx)
	if err != nil {
		return "", err
	}

	ltsOnly := strings.EqualFold(version, "lts")
	spec := version
	if ltsOnly {
		spec = ""
	}
	r, err := domain.ParseRange(spec)
	if err != nil {
		return "", err
	}

	versions := make([]string, 0, len(releases))
	for _, rel := range releases {
		if ltsOnly && !rel.IsLTS() {
			continue
		}
		versions = append(versions, strings.TrimPrefix(rel.Version, "v"))
	}
	best, ok := domain.MaxSatisfying(versions, r)
	if !ok {
		return "", zerr.Wrap(domain.ErrRuntimeProvisionFailed, "no published runtime matches")
	}
	return best, nil
}

// Index returns the distribution index.
func (p *Provisioner) Index(ctx context.Context) ([]Release, error) {
	body, err := p.get(ctx, p.baseURL+"/"+indexFile, maxIndexBytes)
	if err != nil {
		return nil, err
	}
	var releases []Release
	if err := json.Unmarshal(body, &releases); err != nil {
		return nil, zerr.Wrap(err, domain.ErrRuntimeProvisionFailed.Error())
	}
	return releases, nil
}

// checksums reads SHASUMS256.txt of a release into file name -> hex digest.
func (p *Provisioner) checksums(ctx context.Context, version string) (map[string]string, error) {
	body, err := p.get(ctx, p.releaseURL(version)+"/"+checksumFile, maxIndexBytes)
	if err != nil {
		return nil, err
	}

	sums := map[string]string{}
	sc := bufio.NewScanner(strings.NewReader(string(body)))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 2 {
			sums[fields[1]] = strings.ToLower(fields[0])
		}
	}
	return sums, nil
}

func (p *Provisioner) get(ctx context.Context, endpoint string, limit int64) ([]byte, error) {
	resp, err := p.open(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrRuntimeProvisionFailed.Error()), "url", endpoint)
	}
	return body, nil
}

func (p *Provisioner) open(ctx context.Context, endpoint string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrRuntimeProvisionFailed.Error())
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrRuntimeProvisionFailed.Error()), "url", endpoint)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		apiErr := zerr.With(zerr.Wrap(domain.ErrRuntimeProvisionFailed, "unexpected status"), "status_code", resp.StatusCode)
		return nil, zerr.With(apiErr, "url", endpoint)
	}
	return resp, nil
}

// install downloads the distribution, checks its digest and unpacks it into root.
func (p *Provisioner) install(ctx context.Context, endpoint, wantSum, root string) error {
	resp, err := p.open(ctx, endpoint)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	tmp, err := os.CreateTemp(root, ".node-*.tar.gz")
	if err != nil {
		return zerr.Wrap(err, domain.ErrRuntimeProvisionFailed.Error())
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	h := sha256.New()
	n, err := io.Copy(io.MultiWriter(tmp, h), io.LimitReader(resp.Body, maxDistBytes+1))
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrRuntimeProvisionFailed.Error()), "url", endpoint)
	}
	if n > maxDistBytes {
		return zerr.With(zerr.Wrap(domain.ErrRuntimeProvisionFailed, "distribution exceeds maximum size"), "url", endpoint)
	}
	if got := hex.EncodeToString(h.Sum(nil)); got != wantSum {
		return zerr.With(zerr.With(zerr.Wrap(domain.ErrIntegrityMismatch, "digest does not match"),
			"expected", wantSum), "actual", got)
	}

	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return zerr.Wrap(err, domain.ErrRuntimeProvisionFailed.Error())
	}
	opts := archive.Options{StripComponents: 1, Skip: isBundled}
	if err := archive.ExtractTarGz(tmp, root, opts); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrRuntimeProvisionFailed.Error()), "path", root)
	}
	return nil
}

func isBundled(name string) bool {
	for _, prefix := range bundled {
		if name == prefix || strings.HasPrefix(name, prefix+"/") {
			return true
		}
	}
	return false
}

// platform returns the distribution suffix for the target, such as "linux-x64".
func (p *Provisioner) platform() (string, error) {
	osName := p.goos
	// Windows builds ship as zip and 7z archives only.
	if osName != "linux" && osName != "darwin" && osName != "aix" {
		return "", zerr.With(zerr.Wrap(domain.ErrRuntimeProvisionFailed, "unsupported platform"), "os", osName)
	}

	arch, ok := map[string]string{
		"amd64":   "x64",
		"arm64":   "arm64",
		"arm":     "armv7l",
		"ppc64le": "ppc64le",
		"s390x":   "s390x",
		"ppc64":   "ppc64",
	}[p.goarch]
	if !ok {
		return "", zerr.With(zerr.Wrap(domain.ErrRuntimeProvisionFailed, "unsupported architecture"), "arch", p.goarch)
	}
	return osName + "-" + arch, nil
}

var _ ports.RuntimeProvisioner = (*Provisioner)(nil)
