//go:build !linux

package path

import (
	"errors"
	"os"
	"time"
)

var errUnsupported = errors.New("not supported on this platform")

func createdTime(p string) (time.Time, error) {
	if _, err := os.Stat(p); err != nil {
		return time.Time{}, err
	}
	return time.Time{}, errUnsupported
}

func accessedTime(p string) (time.Time, error) {
	if _, err := os.Stat(p); err != nil {
		return time.Time{}, err
	}
	return time.Time{}, errUnsupported
}
