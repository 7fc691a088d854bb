//go:build linux

package path

import (
	"errors"
	"time"

	"golang.org/x/sys/unix"
)

var errNoBirthTime = errors.New("creation time is not available on this filesystem")

func createdTime(p string) (time.Time, error) {
	var st unix.Statx_t
	if err := unix.Statx(unix.AT_FDCWD, p, 0, unix.STATX_BTIME, &st); err != nil {
		return time.Time{}, err
	}
	if st.Mask&unix.STATX_BTIME == 0 {
		return time.Time{}, errNoBirthTime
	}
	return time.Unix(st.Btime.Sec, int64(st.Btime.Nsec)), nil
}

func accessedTime(p string) (time.Time, error) {
	var st unix.Stat_t
	if err := unix.Stat(p, &st); err != nil {
		return time.Time{}, err
	}
	return time.Unix(0, st.Atim.Nano()), nil
}
