package restyutil

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// FilesystemOutput writes each recorded exchange to
// <dir>/<run>-<message id>.http, where run is the time the output was
// created. Earlier runs in the same directory are left alone.
type FilesystemOutput struct {
	directory string
	run       string
}

func NewFilesystemOutput(dir string) (FilesystemOutput, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return FilesystemOutput{}, err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return FilesystemOutput{}, fmt.Errorf("create dump directory: %w", err)
	}
	return FilesystemOutput{
		directory: dir,
		run:       time.Now().UTC().Format("20060102T150405.000"),
	}, nil
}

// Path is where the message with id is written.
func (o FilesystemOutput) Path(id string) string {
	return filepath.Join(o.directory, o.run+"-"+id+".http")
}

func (o FilesystemOutput) Write(id string, contents string) {
	path := o.Path(id)
	if err := os.WriteFile(path, []byte(contents), 0600); err != nil {
		slog.Warn("failed to write http message", "path", path, "err", err)
		return
	}
	slog.Debug("wrote http message", "path", path)
}
