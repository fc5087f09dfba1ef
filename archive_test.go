package crom

import (
	"archive/tar"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/require"
)

func testArtifactDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "target"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "target", "crom"), []byte("binary"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# crom"), 0o644))
	return dir
}

var testArtifactPaths = map[string]string{
	"bin/crom":  "target/crom",
	"README.md": "README.md",
}

func TestCompressZip(t *testing.T) {
	dir := testArtifactDir(t)

	var buf bytes.Buffer
	require.NoError(t, Compress(&buf, dir, testArtifactPaths, ArchiveZip))

	reader, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	require.Len(t, reader.File, 2)
	require.Equal(t, "README.md", reader.File[0].Name)
	require.Equal(t, "bin/crom", reader.File[1].Name)

	f, err := reader.File[1].Open()
	require.NoError(t, err)
	defer f.Close()
	content, err := io.ReadAll(f)
	require.NoError(t, err)
	require.Equal(t, "binary", string(content))
}

func TestCompressTgz(t *testing.T) {
	dir := testArtifactDir(t)

	var buf bytes.Buffer
	require.NoError(t, Compress(&buf, dir, testArtifactPaths, ArchiveTgz))

	gz, err := gzip.NewReader(&buf)
	require.NoError(t, err)
	archive := tar.NewReader(gz)

	contents := map[string]string{}
	var order []string
	for {
		header, err := archive.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		data, err := io.ReadAll(archive)
		require.NoError(t, err)
		contents[header.Name] = string(data)
		order = append(order, header.Name)
	}

	require.Equal(t, []string{"README.md", "bin/crom"}, order)
	require.Equal(t, "# crom", contents["README.md"])
	require.Equal(t, "binary", contents["bin/crom"])
}

func TestCompressMissingFile(t *testing.T) {
	dir := testArtifactDir(t)

	var buf bytes.Buffer
	err := Compress(&buf, dir, map[string]string{"missing": "target/missing"}, ArchiveZip)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unable to find artifact")
	require.Zero(t, buf.Len())
}

func TestParseArchiveFormat(t *testing.T) {
	tests := map[string]ArchiveFormat{
		"zip":    ArchiveZip,
		"ZIP":    ArchiveZip,
		"tgz":    ArchiveTgz,
		"tar.gz": ArchiveTgz,
	}
	for name, expected := range tests {
		format, err := ParseArchiveFormat(name)
		require.NoError(t, err)
		require.Equal(t, expected, format)
	}

	_, err := ParseArchiveFormat("rar")
	require.Error(t, err)

	require.Equal(t, "application/zip", ArchiveZip.MediaType())
	require.Equal(t, "application/gzip", ArchiveTgz.MediaType())
}
