package registry

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"landscape/internal/landscape/models"
	dErrors "landscape/pkg/domain-errors"
)

// FileSource reads a registry export: a JSON array in the same shape as one
// registry page. It stands in for the Client when the generator runs offline.
type FileSource struct {
	path   string
	logger *slog.Logger
}

func NewFileSource(path string, logger *slog.Logger) *FileSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileSource{path: path, logger: logger}
}

func (s *FileSource) FetchAll(ctx context.Context) ([]models.RegistryRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeRegistryUnavailable, fmt.Sprintf("read registry export %s interrupted", s.path))
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeConfig, fmt.Sprintf("read registry export %s", s.path))
	}
	records, err := decodePage(data)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeConfig,
			fmt.Sprintf("registry export %s is not a JSON array of projects", s.path))
	}
	s.logger.InfoContext(ctx, "registry export loaded", "path", s.path, "records", len(records))
	return records, nil
}
