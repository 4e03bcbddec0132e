// Package archive extracts the gzip-compressed tarballs served by package registries
// and runtime distribution mirrors.
package archive

import (
	"archive/tar"
	"compress/gzip"
	"errors"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.trai.ch/conde/internal/core/domain"
	"go.trai.ch/zerr"
)

// DefaultMaxBytes bounds the total extracted size (2 GiB) to stop decompression bombs.
const DefaultMaxBytes int64 = 2 << 30

// Options controls extraction.
type Options struct {
	// StripComponents drops this many leading path elements from every entry.
	StripComponents int

	// MaxBytes bounds the total size of extracted regular files. Zero means DefaultMaxBytes.
	MaxBytes int64

	// Skip, when set, drops every entry whose stripped slash-separated path it accepts.
	Skip func(name string) bool
}

// ExtractTarGz extracts the gzip-compressed tar stream r into dest.
// Entries that would land outside dest are rejected with domain.ErrUnsafeArchivePath.
func ExtractTarGz(r io.Reader, dest string, opts Options) error {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return zerr.Wrap(err, "failed to open gzip stream")
	}
	defer func() { _ = gz.Close() }()

	return ExtractTar(gz, dest, opts)
}

// ExtractTar extracts the tar stream r into dest.
func ExtractTar(r io.Reader, dest string, opts Options) error {
	limit := opts.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}

	if err := os.MkdirAll(dest, domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create extraction directory"), "path", dest)
	}

	var written int64
	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return zerr.Wrap(err, "failed to read tar entry")
		}

		rel, ok, err := strip(hdr.Name, opts.StripComponents)
		if err != nil {
			return err
		}
		if !ok || (opts.Skip != nil && opts.Skip(filepath.ToSlash(rel))) {
			continue
		}
		target := filepath.Join(dest, rel)
		if err := checkParents(dest, rel); err != nil {
			return zerr.With(err, "entry", hdr.Name)
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			removeLink(target)
			if err := os.MkdirAll(target, dirMode(hdr)); err != nil {
				return zerr.With(zerr.Wrap(err, "failed to create directory"), "path", target)
			}
		case tar.TypeReg, tar.TypeRegA: //nolint:staticcheck // old npm tarballs still use TypeRegA
			n, err := writeFile(target, tr, fileMode(hdr), limit-written)
			if err != nil {
				return err
			}
			written += n
		case tar.TypeSymlink:
			if err := writeSymlink(dest, target, hdr); err != nil {
				return err
			}
		case tar.TypeLink:
			linkRel, ok, err := strip(hdr.Linkname, opts.StripComponents)
			if err != nil {
				return err
			}
			if !ok {
				return unsafePath(hdr.Linkname)
			}
			if err := checkParents(dest, linkRel); err != nil {
				return zerr.With(err, "entry", hdr.Name)
			}
			if err := ensureParent(target); err != nil {
				return err
			}
			_ = os.Remove(target)
			if err := os.Link(filepath.Join(dest, linkRel), target); err != nil {
				return zerr.With(zerr.Wrap(err, "failed to create hard link"), "path", target)
			}
		default:
			// Device nodes, FIFOs and global pax headers carry nothing a package needs.
		}
	}
}

// strip drops n leading elements of an archive path. Entries inside the stripped
// prefix report false; entries escaping the archive root are an error.
func strip(name string, n int) (string, bool, error) {
	clean := path.Clean(strings.ReplaceAll(name, "\\", "/"))
	if path.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", false, unsafePath(name)
	}
	if clean == "." {
		return "", false, nil
	}

	parts := strings.Split(clean, "/")
	if len(parts) <= n {
		return "", false, nil
	}
	rel := filepath.FromSlash(strings.Join(parts[n:], "/"))
	if !filepath.IsLocal(rel) {
		return "", false, unsafePath(name)
	}
	return rel, true, nil
}

// checkParents rejects rel when a directory on its way from dest is a symlink.
// Earlier entries may have planted such links; writing through them could leave dest.
func checkParents(dest, rel string) error {
	dir := filepath.Dir(rel)
	if dir == "." {
		return nil
	}

	cur := dest
	for _, part := range strings.Split(dir, string(filepath.Separator)) {
		cur = filepath.Join(cur, part)
		fi, err := os.Lstat(cur)
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		if err != nil {
			return zerr.With(zerr.Wrap(err, "failed to inspect directory"), "path", cur)
		}
		if fi.Mode()&os.ModeSymlink != 0 {
			return unsafePath(filepath.ToSlash(rel))
		}
	}
	return nil
}

// linkStaysInside walks link from dir one element at a time. Every step must
// stay inside dest and no intermediate element may be a symlink, so the
// lexical walk matches what the kernel resolves.
func linkStaysInside(dest, dir, link string) bool {
	parts := strings.Split(filepath.ToSlash(link), "/")
	cur := dir
	for i, part := range parts {
		switch part {
		case "", ".":
			continue
		case "..":
			cur = filepath.Dir(cur)
		default:
			cur = filepath.Join(cur, part)
		}
		if !within(dest, cur) {
			return false
		}
		if i == len(parts)-1 {
			break
		}
		if fi, err := os.Lstat(cur); err == nil && fi.Mode()&os.ModeSymlink != 0 {
			return false
		}
	}
	return true
}

func within(dest, p string) bool {
	rel, err := filepath.Rel(dest, p)
	return err == nil && (rel == "." || filepath.IsLocal(rel))
}

// removeLink drops a symlink at target so that the next write creates a fresh entry
// instead of following it.
func removeLink(target string) {
	if fi, err := os.Lstat(target); err == nil && fi.Mode()&os.ModeSymlink != 0 {
		_ = os.Remove(target)
	}
}

func unsafePath(name string) error {
	return zerr.With(zerr.Wrap(domain.ErrUnsafeArchivePath, "refusing to extract entry"), "entry", name)
}

func ensureParent(target string) error {
	if err := os.MkdirAll(filepath.Dir(target), domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create directory"), "path", filepath.Dir(target))
	}
	return nil
}

func writeFile(target string, r io.Reader, mode os.FileMode, budget int64) (int64, error) {
	if err := ensureParent(target); err != nil {
		return 0, err
	}
	removeLink(target)

	//nolint:gosec // target is checked to stay inside the destination
	f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to create file"), "path", target)
	}

	n, copyErr := io.Copy(f, io.LimitReader(r, budget+1))
	closeErr := f.Close()
	if copyErr != nil {
		return n, zerr.With(zerr.Wrap(copyErr, "failed to write file"), "path", target)
	}
	if closeErr != nil {
		return n, zerr.With(zerr.Wrap(closeErr, "failed to write file"), "path", target)
	}
	if n > budget {
		return n, zerr.With(zerr.New("archive exceeds maximum extracted size"), "path", target)
	}
	return n, nil
}

// writeSymlink creates a symlink whose resolved target stays inside dest.
func writeSymlink(dest, target string, hdr *tar.Header) error {
	link := filepath.FromSlash(hdr.Linkname)
	if filepath.IsAbs(link) {
		return unsafePath(hdr.Name + " -> " + hdr.Linkname)
	}
	if !linkStaysInside(dest, filepath.Dir(target), link) {
		return unsafePath(hdr.Name + " -> " + hdr.Linkname)
	}

	if err := ensureParent(target); err != nil {
		return err
	}
	_ = os.Remove(target)
	if err := os.Symlink(link, target); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create symlink"), "path", target)
	}
	return nil
}

// fileMode keeps the executable bits of an entry and makes it readable by everyone.
func fileMode(hdr *tar.Header) os.FileMode {
	mode := os.FileMode(hdr.Mode).Perm() | domain.FilePerm
	if mode&0o111 != 0 {
		mode |= 0o111
	}
	return mode & 0o755
}

func dirMode(hdr *tar.Header) os.FileMode {
	return (os.FileMode(hdr.Mode).Perm() | domain.DirPerm) & 0o755
}
