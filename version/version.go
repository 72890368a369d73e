package version

import "runtime/debug"

// These vars are set at build time via:
//
//	go build -ldflags "-X github.com/nsidnev/edgedb-go/version.Tag=v1.0.0 -X github.com/nsidnev/edgedb-go/version.GitCommit=abc1234 -X github.com/nsidnev/edgedb-go/version.BuildTime=2026-02-26T00:00:00Z"
var (
	Tag       = "dev"
	GitCommit = "" // empty = auto-detect from build info
	BuildTime = "" // empty = auto-detect from build info
)

// ProtocolVersionMajor and ProtocolVersionMinor are the wire protocol
// version this driver speaks during the client handshake.
const (
	ProtocolVersionMajor = 0
	ProtocolVersionMinor = 11
)

func String() string {
	commit, buildTime := GitCommit, BuildTime
	if commit == "" || buildTime == "" {
		if info, ok := debug.ReadBuildInfo(); ok {
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					if commit == "" && len(s.Value) >= 8 {
						commit = s.Value[:8]
					}
				case "vcs.time":
					if buildTime == "" {
						buildTime = s.Value
					}
				}
			}
		}
	}
	if commit == "" {
		commit = "unknown"
	}
	if buildTime == "" {
		buildTime = "unknown"
	}
	return "edgedb-go " + Tag + " (protocol " + protocolString() + ", commit " + commit + ", built " + buildTime + ")"
}

func protocolString() string {
	return itoa(ProtocolVersionMajor) + "." + itoa(ProtocolVersionMinor)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [8]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}
