package repositories

// FileRepository reads local files to publish.
type FileRepository interface {
	ReadFile(path string) ([]byte, error)
}
