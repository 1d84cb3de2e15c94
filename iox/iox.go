// Package iox provides I/O helpers for reading artifacts and releasing
// their handles.
package iox

import (
	"errors"
	"fmt"
	"io"
)

// DiscardClose closes c and discards the error. Use in defer statements
// where close errors are unactionable:
//
//	defer iox.DiscardClose(resp.Body)
func DiscardClose(c io.Closer) { _ = c.Close() }

// ErrTooLarge is returned by ReadAllClose when the stream exceeds the
// limit.
var ErrTooLarge = errors.New("content exceeds size limit")

// ReadAllClose reads rc to EOF and closes it. A close failure is
// reported only when the read succeeded. A positive limit bounds the
// number of bytes accepted.
func ReadAllClose(rc io.ReadCloser, limit int64) (data []byte, err error) {
	defer func() {
		if cerr := rc.Close(); cerr != nil && err == nil {
			data, err = nil, fmt.Errorf("close: %w", cerr)
		}
	}()
	if limit <= 0 {
		return io.ReadAll(rc)
	}
	data, err = io.ReadAll(io.LimitReader(rc, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w (%d bytes)", ErrTooLarge, limit)
	}
	return data, nil
}
