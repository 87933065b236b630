package filesystem

import (
	"fmt"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"

	"github.com/rios0rios0/manifestpush/internal/domain/repositories"
)

// BillyFileRepository implements repositories.FileRepository on a billy filesystem.
type BillyFileRepository struct {
	fs      billy.Filesystem
	resolve func(path string) (string, error)
}

var _ repositories.FileRepository = (*BillyFileRepository)(nil)

// NewBillyFileRepository reads files from fs using paths as given.
func NewBillyFileRepository(fs billy.Filesystem) *BillyFileRepository {
	return &BillyFileRepository{
		fs:      fs,
		resolve: func(path string) (string, error) { return path, nil },
	}
}

// NewWorkingDirFileRepository reads files from the host filesystem,
// resolving relative paths against the current working directory.
func NewWorkingDirFileRepository() *BillyFileRepository {
	return &BillyFileRepository{
		fs:      osfs.New(string(filepath.Separator)),
		resolve: filepath.Abs,
	}
}

// ReadFile returns the complete contents of path.
func (r *BillyFileRepository) ReadFile(path string) ([]byte, error) {
	resolved, err := r.resolve(path)
	if err != nil {
		return nil, fmt.Errorf("invalid path %q: %w", path, err)
	}

	info, err := r.fs.Stat(resolved)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %q: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%q is a directory, not a file", path)
	}

	data, err := util.ReadFile(r.fs, resolved)
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", path, err)
	}
	return data, nil
}
