package build

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/jrick/logrotate/rotator"
)

const (
	// DefaultMaxLogFiles is how many rotated files are kept.
	DefaultMaxLogFiles = 5

	// DefaultMaxLogFileSizeMB is the size at which the file is rotated.
	DefaultMaxLogFileSizeMB = 10

	// LogFilename is the name of the active log file.
	LogFilename = "spotter.log"
)

// fileLog feeds a gzip-compressing rotator through a pipe.
type fileLog struct {
	pipe *io.PipeWriter
	done chan struct{}
	once sync.Once
}

// openFileLog starts a rotator writing dir/spotter.log.
func openFileLog(dir string, maxFiles, maxSizeMB int) (*fileLog, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	// The rotator threshold is in KB.
	r, err := rotator.New(
		filepath.Join(dir, LogFilename), int64(maxSizeMB*1024), false,
		maxFiles,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create file rotator: %w", err)
	}
	r.SetCompressor(gzip.NewWriter(nil), ".gz")

	pr, pw := io.Pipe()
	f := &fileLog{pipe: pw, done: make(chan struct{})}
	go func() {
		defer close(f.done)

		// The rotator is the log destination, so its own failure can
		// only go to stderr.
		if err := r.Run(pr); err != nil {
			fmt.Fprintf(os.Stderr, "log rotator stopped: %v\n", err)
		}
	}()

	return f, nil
}

func (f *fileLog) Write(b []byte) (int, error) {
	return f.pipe.Write(b)
}

// Close flushes pending lines and waits for the rotator to exit.
func (f *fileLog) Close() error {
	var err error
	f.once.Do(func() {
		err = f.pipe.Close()
		<-f.done
	})

	return err
}
