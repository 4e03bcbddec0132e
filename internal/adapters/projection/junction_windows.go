//go:build windows

package projection

import (
	"os/exec"
	"path/filepath"

	"go.trai.ch/zerr"
)

// junction creates a directory junction with mklink. Junctions need absolute targets.
func junction(target, link string) error {
	abs, err := filepath.Abs(target)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to resolve junction target"), "target", target)
	}
	//nolint:gosec // arguments are store and environment paths
	out, err := exec.Command("cmd", "/c", "mklink", "/J", link, abs).CombinedOutput()
	if err != nil {
		return zerr.With(zerr.With(zerr.Wrap(err, "failed to create junction"), "path", link), "output", string(out))
	}
	return nil
}
