// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package rzip creates and extracts zip archives of project trees.
package rzip

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrUnsafePath is returned when an archive entry would be written outside of the destination directory.
	ErrUnsafePath = errors.New("archive entry escapes the destination directory")
	// ErrTooLarge is returned when the uncompressed contents of an archive exceed the extraction limit.
	ErrTooLarge = errors.New("archive is too large")
)

// CreateFromDirectory writes a zip archive of the source directory to w. Symbolic links are skipped.
func CreateFromDirectory(source string, w io.Writer) error {
	zw := zip.NewWriter(w)
	err := filepath.WalkDir(source, func(path string, _ fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		// Use os.Lstat to get file info without following symlinks
		fileInfo, err := os.Lstat(path)
		if err != nil {
			return err
		}

		if fileInfo.Mode()&os.ModeSymlink != 0 {
			return nil
		}

		relativePath, err := filepath.Rel(source, path)
		if err != nil {
			return err
		}

		if relativePath == "." {
			return nil
		}

		header, err := zip.FileInfoHeader(fileInfo)
		if err != nil {
			return err
		}

		header.Name = filepath.ToSlash(relativePath)
		if fileInfo.IsDir() {
			header.Name += "/"
		} else {
			header.Method = zip.Deflate
		}

		writer, err := zw.CreateHeader(header)
		if err != nil {
			return err
		}

		if fileInfo.IsDir() {
			return nil
		}

		in, err := os.Open(path)
		if err != nil {
			return err
		}
		defer in.Close()

		_, err = io.Copy(writer, in)
		return err
	})
	if err != nil {
		return err
	}

	return zw.Close()
}

// ExtractOptions bounds an extraction.
type ExtractOptions struct {
	// MaxBytes caps the total uncompressed size. Zero means no limit.
	MaxBytes int64
}

// ExtractToDirectory extracts the archive at archivePath into dest, creating dest if needed.
func ExtractToDirectory(archivePath string, dest string, options ExtractOptions) error {
	r, err := zip.OpenReader(archivePath)
	if errors.Is(err, zip.ErrInsecurePath) {
		r.Close()
		return fmt.Errorf("%w: %w", ErrUnsafePath, err)
	}
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer r.Close()

	return extract(&r.Reader, dest, options)
}

// Extract extracts the archive read from r, of the given size, into dest.
func Extract(r io.ReaderAt, size int64, dest string, options ExtractOptions) error {
	zr, err := zip.NewReader(r, size)
	if errors.Is(err, zip.ErrInsecurePath) {
		return fmt.Errorf("%w: %w", ErrUnsafePath, err)
	}
	if err != nil {
		return fmt.Errorf("reading archive: %w", err)
	}

	return extract(zr, dest, options)
}

func extract(zr *zip.Reader, dest string, options ExtractOptions) error {
	root, err := filepath.Abs(dest)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(root, osDirPermission); err != nil {
		return err
	}

	var written int64
	for _, f := range zr.File {
		target, err := entryPath(root, f.Name)
		if err != nil {
			return err
		}

		mode := f.Mode()
		switch {
		case mode.IsDir():
			if err := os.MkdirAll(target, osDirPermission); err != nil {
				return err
			}
			continue
		case !mode.IsRegular():
			// symlinks and devices are never materialized
			continue
		}

		if options.MaxBytes > 0 && written+int64(f.UncompressedSize64) > options.MaxBytes {
			return fmt.Errorf("%w: more than %d bytes", ErrTooLarge, options.MaxBytes)
		}

		n, err := extractFile(f, target, remaining(options.MaxBytes, written))
		written += n
		if err != nil {
			return fmt.Errorf("extracting %s: %w", f.Name, err)
		}
	}

	return nil
}

const (
	osDirPermission  = 0755
	osFilePermission = 0644
)

// entryPath resolves an archive entry name below root, rejecting absolute names and names that climb out of root.
func entryPath(root string, name string) (string, error) {
	cleaned := filepath.FromSlash(strings.ReplaceAll(name, "\\", "/"))
	if filepath.IsAbs(cleaned) || filepath.VolumeName(cleaned) != "" {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, name)
	}

	target := filepath.Join(root, cleaned)
	if target != root && !strings.HasPrefix(target, root+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, name)
	}

	return target, nil
}

func remaining(limit int64, written int64) int64 {
	if limit <= 0 {
		return -1
	}

	return limit - written
}

// extractFile copies one entry to target. A non-negative limit bounds the bytes copied, guarding against
// entries whose header understates their size.
func extractFile(f *zip.File, target string, limit int64) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(target), osDirPermission); err != nil {
		return 0, err
	}

	rc, err := f.Open()
	if err != nil {
		return 0, err
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, osFilePermission)
	if err != nil {
		return 0, err
	}
	defer out.Close()

	var src io.Reader = rc
	if limit >= 0 {
		src = io.LimitReader(rc, limit+1)
	}

	n, err := io.Copy(out, src)
	if err != nil {
		return n, err
	}

	if limit >= 0 && n > limit {
		return n, ErrTooLarge
	}

	return n, out.Close()
}

// ProjectRoot returns the directory a project was extracted to in dir, with its name. Most tools zip a project as
// a single top-level directory, which then names the project. Otherwise the project is dir itself, named after
// the archive file without its extension.
func ProjectRoot(dir string, archiveName string) (string, string) {
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) != 1 || !entries[0].IsDir() {
		base := filepath.Base(archiveName)
		return dir, strings.TrimSuffix(base, filepath.Ext(base))
	}

	return filepath.Join(dir, entries[0].Name()), entries[0].Name()
}
