package pargethttp

import (
	"os"
	"path/filepath"

	"github.com/tanq16/parget/internal/utils"
)

// OutputSink is the single preallocated destination file shared by all
// fetchers of a download. WriteAt maps to a positioned write (pwrite) and
// never touches the shared file offset, so fetchers writing disjoint ranges
// may call it concurrently without locking.
type OutputSink struct {
	path string
	file *os.File
}

// CreateOutputSink creates or truncates path to exactly size bytes.
func CreateOutputSink(path string, size int64) (*OutputSink, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, &utils.WriteError{Path: path, Op: "create directory for", Err: err}
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, &utils.WriteError{Path: path, Op: "create", Err: err}
	}
	if err := file.Truncate(size); err != nil {
		file.Close()
		return nil, &utils.WriteError{Path: path, Op: "truncate", Err: err}
	}
	return &OutputSink{path: path, file: file}, nil
}

func (s *OutputSink) WriteAt(p []byte, off int64) (int, error) {
	return s.file.WriteAt(p, off)
}

func (s *OutputSink) Path() string {
	return s.path
}

// Close syncs and closes the file. It is safe to call more than once.
func (s *OutputSink) Close() error {
	if s.file == nil {
		return nil
	}
	file := s.file
	s.file = nil
	if err := file.Sync(); err != nil {
		file.Close()
		return &utils.WriteError{Path: s.path, Op: "sync", Err: err}
	}
	if err := file.Close(); err != nil {
		return &utils.WriteError{Path: s.path, Op: "close", Err: err}
	}
	return nil
}
