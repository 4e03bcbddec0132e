package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/conde/internal/core/domain"
)

// quote renders s as a single POSIX shell word.
func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}

// writeActivate prints the script that enters act, for eval "$(conde activate env)".
func writeActivate(w io.Writer, act *domain.Activation) error {
	_, err := fmt.Fprintf(w, "export %s=%s\nexport PATH=%s%s\"$PATH\"\n",
		domain.ActiveEnvVar, quote(act.Env), quote(act.ShimDir), string(os.PathListSeparator))
	return err
}

// writeDeactivate prints the script that leaves act, given the current PATH.
func writeDeactivate(w io.Writer, act *domain.Activation, path string) error {
	_, err := fmt.Fprintf(w, "unset %s\nexport PATH=%s\n", domain.ActiveEnvVar, quote(stripShimDir(path, act)))
	return err
}

// stripShimDir removes the shim directory of act from a PATH list. When the
// environment is gone its shim dir is matched by its trailing components.
func stripShimDir(path string, act *domain.Activation) string {
	suffix := string(filepath.Separator) + filepath.Join(domain.EnvsDirName, act.Env, domain.ShimDirName)

	entries := filepath.SplitList(path)
	kept := make([]string, 0, len(entries))
	for _, entry := range entries {
		clean := filepath.Clean(entry)
		if act.ShimDir != "" && clean == filepath.Clean(act.ShimDir) {
			continue
		}
		if act.ShimDir == "" && strings.HasSuffix(clean, suffix) {
			continue
		}
		kept = append(kept, entry)
	}
	return strings.Join(kept, string(os.PathListSeparator))
}
