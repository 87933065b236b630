//go:build integration || unit || test

package repositorydoubles //nolint:revive,staticcheck // Test package naming follows established project structure

import (
	"fmt"

	"github.com/rios0rios0/manifestpush/internal/domain/repositories"
)

// StubFileRepository implements repositories.FileRepository from an in-memory map.
type StubFileRepository struct {
	Files     map[string][]byte
	ReadErr   error
	ReadPaths []string
}

var _ repositories.FileRepository = (*StubFileRepository)(nil)

func (s *StubFileRepository) ReadFile(path string) ([]byte, error) {
	s.ReadPaths = append(s.ReadPaths, path)
	if s.ReadErr != nil {
		return nil, s.ReadErr
	}
	if content, ok := s.Files[path]; ok {
		return content, nil
	}
	return nil, fmt.Errorf("open %s: no such file or directory", path)
}
