package validation

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrNotExist      = errors.New("file does not exist")
	ErrNotRegular    = errors.New("not a regular file")
	ErrEmptyFile     = errors.New("file is empty")
	ErrTooLarge      = errors.New("file exceeds the size limit")
	ErrExtension     = errors.New("extension not allowed")
	ErrTemporaryFile = errors.New("temporary office file")
)

// FileValidator checks local data files before they are loaded and report
// destinations before they are written
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger,
	}
}

// InputRules bound what ValidateInputFile accepts. Zero values disable a check.
type InputRules struct {
	Extensions []string
	MaxBytes   int64
}

// ValidateInputFile checks that path is a readable, non-empty regular file
// with an allowed extension and within the size limit
func (v *FileValidator) ValidateInputFile(path string, rules InputRules) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("Input file does not exist", slog.String("file", path))
		return fmt.Errorf("%w: %s", ErrNotExist, path)
	}
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		v.logger.Error("Input path is not a regular file", slog.String("path", path))
		return fmt.Errorf("%w: %s", ErrNotRegular, path)
	}

	base := filepath.Base(path)
	if strings.HasPrefix(base, "~$") {
		v.logger.Warn("Skipping temporary Excel file", slog.String("file", path))
		return fmt.Errorf("%w: %s", ErrTemporaryFile, base)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if len(rules.Extensions) > 0 && !containsFold(rules.Extensions, ext) {
		v.logger.Error("Input file extension not allowed",
			slog.String("file", path),
			slog.String("extension", ext),
			slog.Any("allowed", rules.Extensions))
		return fmt.Errorf("%w: %q (allowed: %s)", ErrExtension, ext, strings.Join(rules.Extensions, ", "))
	}

	if info.Size() == 0 {
		return fmt.Errorf("%w: %s", ErrEmptyFile, path)
	}
	if rules.MaxBytes > 0 && info.Size() > rules.MaxBytes {
		v.logger.Error("Input file too large",
			slog.String("file", path),
			slog.Int64("size", info.Size()),
			slog.Int64("max_bytes", rules.MaxBytes))
		return fmt.Errorf("%w: %d > %d bytes", ErrTooLarge, info.Size(), rules.MaxBytes)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("file %s is not readable: %w", path, err)
	}
	f.Close()

	v.logger.Debug("Input file validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateOutputFile ensures the parent directory of path exists or can be
// created and that path itself is not a directory
func (v *FileValidator) ValidateOutputFile(path string) error {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrNotRegular, path)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}
	return nil
}

func containsFold(list []string, s string) bool {
	for _, item := range list {
		if strings.EqualFold(item, s) {
			return true
		}
	}
	return false
}
