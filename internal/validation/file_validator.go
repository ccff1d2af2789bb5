package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/leonardosegantin10-br/dashboard-cfem-crm/internal/errors"
)

// SourceExtensions lists the file types accepted as a base table
var SourceExtensions = []string{".csv", ".txt", ".tsv"}

// FileValidator checks source and output paths before the pipeline touches them
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{logger: logger}
}

// ValidateSourceFile checks that path is a readable, non-empty table file no
// larger than maxBytes. A non-positive maxBytes disables the size check.
func (v *FileValidator) ValidateSourceFile(path string, maxBytes int64) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("Source file does not exist", slog.String("file", path))
		return apperrors.NewNotFoundError(fmt.Sprintf("source file %s", path))
	}
	if err != nil {
		return apperrors.NewIngestionError(fmt.Sprintf("failed to stat %s", path), err)
	}
	if info.IsDir() {
		v.logger.Error("Source path is a directory", slog.String("path", path))
		return apperrors.NewIngestionError(fmt.Sprintf("%s is a directory, not a file", path), nil)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !acceptedExtension(ext) {
		v.logger.Error("Source file has an unsupported extension",
			slog.String("file", path),
			slog.String("extension", ext))
		return apperrors.NewIngestionError(
			fmt.Sprintf("%s is not a delimited text file (accepted: %s)", path, strings.Join(SourceExtensions, ", ")), nil)
	}

	if info.Size() == 0 {
		return apperrors.NewIngestionError(fmt.Sprintf("%s is empty", path), nil)
	}
	if maxBytes > 0 && info.Size() > maxBytes {
		v.logger.Error("Source file too large",
			slog.String("file", path),
			slog.Int64("size", info.Size()),
			slog.Int64("max", maxBytes))
		return apperrors.NewIngestionError(
			fmt.Sprintf("%s is %d bytes, above the %d byte limit", path, info.Size(), maxBytes), nil)
	}

	file, err := os.Open(path)
	if err != nil {
		return apperrors.NewIngestionError(fmt.Sprintf("%s is not readable", path), err)
	}
	file.Close()

	v.logger.Debug("Source file validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateOutputDirectory ensures dir exists and is writable
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewExportError(fmt.Sprintf("failed to create output directory %s", dir), err)
	}

	probe, err := os.CreateTemp(dir, ".write_test_*")
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewExportError(fmt.Sprintf("output directory %s is not writable", dir), err)
	}
	probe.Close()
	os.Remove(probe.Name())

	v.logger.Debug("Output directory validated", slog.String("directory", dir))
	return nil
}

func acceptedExtension(ext string) bool {
	for _, e := range SourceExtensions {
		if ext == e {
			return true
		}
	}
	return false
}
