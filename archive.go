package crom

import (
	"archive/tar"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
)

// ArchiveFormat is the container used to bundle artifact files.
type ArchiveFormat string

const (
	ArchiveZip ArchiveFormat = "zip"
	ArchiveTgz ArchiveFormat = "tgz"
)

// ParseArchiveFormat accepts zip, tgz and tar.gz in any case.
func ParseArchiveFormat(name string) (ArchiveFormat, error) {
	switch strings.ToLower(name) {
	case "zip":
		return ArchiveZip, nil
	case "tgz", "tar.gz":
		return ArchiveTgz, nil
	default:
		return "", fmt.Errorf("unknown compression format %q", name)
	}
}

// MediaType is the content type used when uploading the archive.
func (f ArchiveFormat) MediaType() string {
	if f == ArchiveZip {
		return "application/zip"
	}
	return "application/gzip"
}

// Compress writes the files in paths, keyed by entry name and relative to
// root, into w. Entries are written in name order.
func Compress(w io.Writer, root string, paths map[string]string, format ArchiveFormat) error {
	names := make([]string, 0, len(paths))
	for name := range paths {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		full := filepath.Join(root, paths[name])
		if _, err := os.Stat(full); err != nil {
			return fmt.Errorf("unable to find artifact %s: %w", full, err)
		}
	}

	switch format {
	case ArchiveZip:
		return compressZip(w, root, paths, names)
	case ArchiveTgz:
		return compressTgz(w, root, paths, names)
	default:
		return fmt.Errorf("unknown compression format %q", format)
	}
}

func compressZip(w io.Writer, root string, paths map[string]string, names []string) error {
	archive := zip.NewWriter(w)
	for _, name := range names {
		full := filepath.Join(root, paths[name])
		slog.Debug("compressing artifact", "name", name, "path", full)

		entry, err := archive.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Store})
		if err != nil {
			return fmt.Errorf("adding %s to zip: %w", name, err)
		}
		if err := copyFile(entry, full); err != nil {
			return err
		}
	}
	return archive.Close()
}

func compressTgz(w io.Writer, root string, paths map[string]string, names []string) error {
	gz := gzip.NewWriter(w)
	archive := tar.NewWriter(gz)
	for _, name := range names {
		full := filepath.Join(root, paths[name])
		slog.Debug("compressing artifact", "name", name, "path", full)

		info, err := os.Stat(full)
		if err != nil {
			return fmt.Errorf("unable to find artifact %s: %w", full, err)
		}
		header, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return fmt.Errorf("building tar header for %s: %w", name, err)
		}
		header.Name = name
		if err := archive.WriteHeader(header); err != nil {
			return fmt.Errorf("adding %s to tar: %w", name, err)
		}
		if err := copyFile(archive, full); err != nil {
			return err
		}
	}

	if err := archive.Close(); err != nil {
		return fmt.Errorf("closing tar: %w", err)
	}
	return gz.Close()
}

func copyFile(w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("copying %s: %w", path, err)
	}
	return nil
}
