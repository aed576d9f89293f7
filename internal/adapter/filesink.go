// filesink.go wraps the os-level file operations a started logger needs:
// open-for-append-or-truncate, write, sync, close, and truncate-to-zero
// for ClearLog. This is the concrete realization of the plain open/
// write/close/fsync calls in do_start_log/do_write_log/do_clear_log.
package adapter

import (
	"os"

	"github.com/opencoff/logsrv/internal/registry"
)

// FileSink opens and truncates the backing files for file-destination
// loggers.
type FileSink interface {
	// Open opens path for writing, truncating first unless append is
	// true, creating it if missing.
	Open(path string, append bool) (registry.FileHandle, error)
	// Truncate opens path (creating it if missing) and truncates it to
	// zero length, then closes it again. Used by ClearLog/ClearAll on a
	// currently-closed logger.
	Truncate(path string) error
}

// OSFileSink is the production FileSink, backed by *os.File.
type OSFileSink struct{}

func (OSFileSink) Open(path string, append bool) (registry.FileHandle, error) {
	flags := os.O_WRONLY | os.O_CREATE
	if append {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return nil, err
	}
	return &syncingFile{f}, nil
}

func (OSFileSink) Truncate(path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0644)
	if err != nil {
		return err
	}
	return f.Close()
}

// syncingFile adapts *os.File to registry.FileHandle and fsyncs after
// every write, matching do_write_log's explicit fsync call.
type syncingFile struct {
	f *os.File
}

func (s *syncingFile) Write(p []byte) (int, error) {
	n, err := s.f.Write(p)
	if err != nil {
		return n, err
	}
	if serr := s.f.Sync(); serr != nil {
		return n, serr
	}
	return n, nil
}

func (s *syncingFile) Close() error { return s.f.Close() }

func (s *syncingFile) Truncate(size int64) error { return s.f.Truncate(size) }
