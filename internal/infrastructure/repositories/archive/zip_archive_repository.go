package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/runref/internal/domain/entities"
)

// ZipArchiveRepository unpacks provider zip archives. Hosting providers wrap
// everything in a single "<repo>-<ref>/" folder; that folder is stripped so
// the tree lands directly in the destination.
type ZipArchiveRepository struct{}

// NewZipArchiveRepository creates a ZipArchiveRepository.
func NewZipArchiveRepository() *ZipArchiveRepository {
	return &ZipArchiveRepository{}
}

// Extract replaces destination with the archive contents. The body is
// spooled to a temporary file first because zip needs random access; a
// failure while reading it is a network error and leaves destination as is.
func (r *ZipArchiveRepository) Extract(body io.Reader, destination string) error {
	spool, err := os.CreateTemp("", "runref-*.zip")
	if err != nil {
		return fmt.Errorf("%w: create temp file: %w", entities.ErrExtraction, err)
	}
	defer os.Remove(spool.Name())
	defer spool.Close()

	size, err := io.Copy(spool, body)
	if err != nil {
		return fmt.Errorf("%w: download archive: %w", entities.ErrNetwork, err)
	}

	reader, err := zip.NewReader(spool, size)
	if err != nil {
		return fmt.Errorf("%w: open archive: %w", entities.ErrExtraction, err)
	}
	return extractFiles(reader.File, destination)
}

func extractFiles(files []*zip.File, destination string) error {
	if err := os.RemoveAll(destination); err != nil {
		return fmt.Errorf("%w: clean destination: %w", entities.ErrExtraction, err)
	}
	if err := os.MkdirAll(destination, dirMode()); err != nil {
		return fmt.Errorf("%w: create destination: %w", entities.ErrExtraction, err)
	}

	prefix := commonPrefix(files)
	written := 0
	for _, file := range files {
		if strings.HasSuffix(file.Name, "/") || !strings.HasPrefix(file.Name, prefix) {
			continue
		}
		relative := strings.TrimPrefix(file.Name, prefix)
		if relative == "" {
			continue
		}

		target := filepath.Join(destination, filepath.FromSlash(relative))
		if err := ensurePathWithinRoot(destination, target); err != nil {
			return fmt.Errorf("%w: illegal file path %q: %w", entities.ErrExtraction, file.Name, err)
		}
		if err := writeFile(file, target); err != nil {
			return fmt.Errorf("%w: %w", entities.ErrExtraction, err)
		}
		written++
	}

	logger.Debugf("Extracted %d files to %s (stripped prefix %q)", written, destination, prefix)
	return nil
}

// commonPrefix returns the single top-level folder ("name/") shared by every
// nested entry, or "" when there are several.
func commonPrefix(files []*zip.File) string {
	prefixes := make(map[string]struct{})
	for _, file := range files {
		if slash := strings.Index(file.Name, "/"); slash > 0 {
			prefixes[file.Name[:slash+1]] = struct{}{}
		}
	}
	if len(prefixes) != 1 {
		return ""
	}
	for prefix := range prefixes {
		return prefix
	}
	return ""
}

func writeFile(file *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), dirMode()); err != nil {
		return fmt.Errorf("create directory for %s: %w", file.Name, err)
	}

	src, err := file.Open()
	if err != nil {
		return fmt.Errorf("open entry %s: %w", file.Name, err)
	}
	defer src.Close()

	mode := file.Mode().Perm()
	if mode == 0 {
		mode = 0o644
	}
	dst, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("create file %s: %w", target, err)
	}
	if _, copyErr := io.Copy(dst, src); copyErr != nil { //nolint:gosec // archive size is bounded by the download
		_ = dst.Close()
		return fmt.Errorf("write file %s: %w", target, copyErr)
	}
	return dst.Close()
}

// Locate resolves the entry file inside destination.
func (r *ZipArchiveRepository) Locate(destination, path, defaultName, extension string) (string, error) {
	if path != "" {
		target := filepath.Join(destination, filepath.FromSlash(path))
		if err := ensurePathWithinRoot(destination, target); err != nil {
			return "", fmt.Errorf("%w: %q: %w", entities.ErrEntryNotFound, path, err)
		}
		if !isRegularFile(target) {
			return "", fmt.Errorf("%w: %q", entities.ErrEntryNotFound, path)
		}
		return target, nil
	}

	if candidate := filepath.Join(destination, defaultName); isRegularFile(candidate) {
		return candidate, nil
	}

	entries, err := os.ReadDir(destination)
	if err != nil {
		return "", fmt.Errorf("%w: %w", entities.ErrEntryNotFound, err)
	}
	for _, entry := range entries {
		if entry.Type().IsRegular() && strings.EqualFold(filepath.Ext(entry.Name()), extension) {
			return filepath.Join(destination, entry.Name()), nil
		}
	}
	return "", fmt.Errorf("%w: no %s files found", entities.ErrEntryNotFound, extension)
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func ensurePathWithinRoot(root, target string) error {
	rel, err := filepath.Rel(filepath.Clean(root), filepath.Clean(target))
	if err != nil {
		return err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return errors.New("path escapes destination")
	}
	return nil
}

func dirMode() fs.FileMode {
	if runtime.GOOS == "windows" {
		return 0o755
	}
	return 0o700
}
