//go:build !unix

package config

// deviceID has no portable equivalent outside unix; project discovery on
// other platforms walks up only until it finds edgedb.toml or reaches the
// filesystem root, never stopping early at a mount boundary.
func deviceID(dir string) (dev uint64, ok bool, err error) {
	return 0, false, nil
}
