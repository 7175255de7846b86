// Package osfilesystem provides a filesystem implementation using the os package.
//
// The path "-" stands for standard input when reading and standard output
// when writing, so streams can be piped through the CLI.
package osfilesystem

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/user/h264grab/pkg/ports"
)

// StdioPath is the path that maps to stdin/stdout.
const StdioPath = "-"

// FileSystem implements ports.FileSystem using the os package.
type FileSystem struct {
	stdin  io.Reader
	stdout io.Writer
}

// New creates a new FileSystem bound to the process stdin and stdout.
func New() *FileSystem {
	return &FileSystem{stdin: os.Stdin, stdout: os.Stdout}
}

// NewWithStdio creates a FileSystem with custom streams for the "-" path.
func NewWithStdio(stdin io.Reader, stdout io.Writer) *FileSystem {
	return &FileSystem{stdin: stdin, stdout: stdout}
}

// ReadFile reads the entire contents of a file.
func (fs *FileSystem) ReadFile(path string) ([]byte, error) {
	if path == StdioPath {
		return io.ReadAll(fs.stdin)
	}
	return os.ReadFile(path)
}

// WriteFile writes data to a file. Parent directories are created and the
// file is replaced atomically, so a failed run never leaves a truncated
// raster behind.
func (fs *FileSystem) WriteFile(path string, data []byte) error {
	if path == StdioPath {
		_, err := fs.stdout.Write(data)
		return err
	}

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// MkdirAll creates a directory and all parent directories.
func (fs *FileSystem) MkdirAll(path string) error {
	return os.MkdirAll(path, 0755)
}

// Exists checks if a file or directory exists.
func (fs *FileSystem) Exists(path string) (bool, error) {
	if path == StdioPath {
		return true, nil
	}
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

var _ ports.FileSystem = (*FileSystem)(nil)
