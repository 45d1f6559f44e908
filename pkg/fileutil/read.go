package fileutil

import (
	"io"
	"os"

	"github.com/thoreinstein/skillctx/internal/errors"
)

// DefaultMaxFileSize bounds corpus file reads (1MB).
const DefaultMaxFileSize int64 = 1 << 20

// ErrFileTooLarge is returned when a file exceeds the read limit.
var ErrFileTooLarge = errors.New("file too large")

// ReadFileWithLimit reads path, failing with ErrFileTooLarge when the file
// holds more than limit bytes. A limit <= 0 uses DefaultMaxFileSize.
func ReadFileWithLimit(path string, limit int64) ([]byte, error) {
	if limit <= 0 {
		limit = DefaultMaxFileSize
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening file")
	}
	defer f.Close()

	if info, err := f.Stat(); err == nil && info.Size() > limit {
		return nil, errors.Wrapf(ErrFileTooLarge, "%s is %d bytes, limit %d", path, info.Size(), limit)
	}

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, errors.Wrap(err, "reading file")
	}
	if int64(len(data)) > limit {
		return nil, errors.Wrapf(ErrFileTooLarge, "%s exceeds limit %d", path, limit)
	}
	return data, nil
}
