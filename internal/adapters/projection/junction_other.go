//go:build !windows

package projection

// junction falls back to a symlink where junctions do not exist.
func junction(target, link string) error {
	return symlink(target, link)
}
