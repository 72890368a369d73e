package config

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"

	"github.com/nsidnev/edgedb-go/edgeerr"
)

// credentialsFile is the on-disk shape of an instance credentials file.
// It is a small fixed-field struct, which is why plain encoding/json is
// used rather than a third-party codec.
type credentialsFile struct {
	Host     string `json:"host,omitempty"`
	Port     int    `json:"port,omitempty"`
	User     string `json:"user"`
	Password string `json:"password,omitempty"`
	Database string `json:"database,omitempty"`
	Branch   string `json:"branch,omitempty"`
	TLSCA    string `json:"tls_ca,omitempty"`
	TLSSecurity string `json:"tls_security,omitempty"`
}

func readCredentialsFile(path string) (Options, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Options{}, edgeerr.Wrap(edgeerr.ClientConnectionError, err, "reading credentials file %s", path)
	}
	return decodeCredentials(b)
}

func decodeCredentials(b []byte) (Options, error) {
	var cf credentialsFile
	if err := json.Unmarshal(b, &cf); err != nil {
		return Options{}, edgeerr.Wrap(edgeerr.ClientConnectionError, err, "decoding credentials JSON")
	}

	var o Options
	if cf.Host != "" {
		o.Host = &cf.Host
	}
	if cf.Port != 0 {
		o.Port = &cf.Port
	}
	if cf.User != "" {
		o.User = &cf.User
	}
	if cf.Password != "" {
		o.Password = &cf.Password
	}
	if cf.Database != "" {
		o.Database = &cf.Database
	}
	if cf.Branch != "" {
		o.Branch = &cf.Branch
	}
	if cf.TLSCA != "" {
		o.TLSCA = &cf.TLSCA
	}
	if cf.TLSSecurity != "" {
		sec := tlsSecurityValue(cf.TLSSecurity)
		o.TLSSecurity = &sec
	}
	return o, nil
}

// credentialsDir returns the platform credentials directory instance
// names are resolved against: ~/.edgedb/credentials on unix and macOS,
// %USERPROFILE%\.edgedb\credentials on Windows.
func credentialsDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", edgeerr.Wrap(edgeerr.ClientConnectionError, err, "resolving home directory")
	}
	if runtime.GOOS == "windows" {
		return filepath.Join(home, ".edgedb", "credentials"), nil
	}
	return filepath.Join(home, ".edgedb", "credentials"), nil
}

func resolveInstanceCredentials(instanceName string) (Options, error) {
	dir, err := credentialsDir()
	if err != nil {
		return Options{}, err
	}
	path := filepath.Join(dir, instanceName+".json")
	return readCredentialsFile(path)
}

// stashDirName hashes an absolute project path into the directory name
// the project's per-project stash lives under, the same way the original
// CLI tooling derives it: the path's base name, a dash, then the first 8
// hex digits of the path's SHA-1.
func stashDirName(projectDir string) string {
	sum := sha1.Sum([]byte(projectDir))
	hash := hex.EncodeToString(sum[:])
	return filepath.Base(projectDir) + "-" + hash[:8]
}
