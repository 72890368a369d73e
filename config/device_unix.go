//go:build unix

package config

import (
	"golang.org/x/sys/unix"

	"github.com/nsidnev/edgedb-go/edgeerr"
)

// deviceID returns dir's filesystem device id, used to detect crossing a
// mount boundary during upward project discovery.
func deviceID(dir string) (dev uint64, ok bool, err error) {
	var st unix.Stat_t
	if err := unix.Stat(dir, &st); err != nil {
		return 0, false, edgeerr.Wrap(edgeerr.ClientConnectionError, err, "statting %s", dir)
	}
	return uint64(st.Dev), true, nil
}
