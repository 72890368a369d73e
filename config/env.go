package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/nsidnev/edgedb-go/edgeerr"
)

// fromEnviron builds level-3 Options from the EDGEDB_* environment
// variables listed in §4.I. EDGEDB_PORT is ignored outright if it begins
// with "tcp", a historical Docker-linking artifact the real server still
// guards against.
func fromEnviron() Options {
	var o Options

	if v, ok := lookupEnv("EDGEDB_DSN"); ok {
		o.DSN = &v
	}
	if v, ok := lookupEnv("EDGEDB_INSTANCE"); ok {
		o.InstanceName = &v
	}
	if v, ok := lookupEnv("EDGEDB_CREDENTIALS_FILE"); ok {
		o.CredentialsFile = &v
	}
	if v, ok := lookupEnv("EDGEDB_HOST"); ok {
		o.Host = &v
	}
	if v, ok := lookupEnv("EDGEDB_PORT"); ok && !strings.HasPrefix(v, "tcp") {
		if port, err := strconv.Atoi(v); err == nil {
			o.Port = &port
		}
	}
	if v, ok := lookupEnv("EDGEDB_DATABASE"); ok {
		o.Database = &v
	}
	if v, ok := lookupEnv("EDGEDB_BRANCH"); ok {
		o.Branch = &v
	}
	if v, ok := lookupEnv("EDGEDB_USER"); ok {
		o.User = &v
	}
	if v, ok := lookupEnv("EDGEDB_PASSWORD"); ok {
		o.Password = &v
	}
	if v, ok := lookupEnv("EDGEDB_SECRET_KEY"); ok {
		o.SecretKey = &v
	}
	if v, ok := lookupEnv("EDGEDB_CLOUD_PROFILE"); ok {
		o.CloudProfile = &v
	}
	if v, ok := lookupEnv("EDGEDB_TLS_CA"); ok {
		o.TLSCA = &v
	}
	if v, ok := lookupEnv("EDGEDB_TLS_CA_FILE"); ok {
		if b, err := os.ReadFile(v); err == nil {
			s := string(b)
			o.TLSCA = &s
		}
	}
	if v, ok := lookupEnv("EDGEDB_CLIENT_TLS_SECURITY"); ok {
		sec := tlsSecurityValue(v)
		o.TLSSecurity = &sec
	}
	if v, ok := lookupEnv("EDGEDB_TLS_SERVER_NAME"); ok {
		o.TLSServerName = &v
	}
	if v, ok := lookupEnv("EDGEDB_CLIENT_SECURITY"); ok {
		switch v {
		case "insecure_dev_mode":
			t := true
			o.InsecureDevMode = &t
		case "strict":
			t := true
			o.ClientSecurityStrict = &t
		}
	}

	return o
}

func lookupEnv(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func tlsSecurityErr(v string) error {
	return edgeerr.New(edgeerr.ClientConnectionError, "invalid tls security value %q", v)
}
