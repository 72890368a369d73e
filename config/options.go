// Package config implements the connection configuration resolver: a
// deterministic precedence ladder over explicit options, a process-wide
// store, environment variables, project discovery and instance
// credentials, producing one canonical edgedb.Endpoint.
package config

import "github.com/nsidnev/edgedb-go/edgedb"

// Options is level 1 of the ladder: whatever the caller passed explicitly
// when opening a connection. Zero values mean "not provided" — the
// resolver must be able to tell "explicitly empty" from "absent" for the
// compound parameters, so those are pointers.
type Options struct {
	DSN             *string
	InstanceName    *string
	CredentialsFile *string
	Credentials     *string // raw JSON, as opposed to a file path
	Host            *string
	Port            *int

	User            *string
	Password        *string
	Database        *string
	Branch          *string
	SecretKey       *string
	CloudProfile    *string

	TLSCA               *string
	TLSSecurity         *edgedb.TLSSecurity
	TLSServerName       *string
	InsecureDevMode     *bool
	ClientSecurityStrict *bool

	ServerSettings map[string]string
}

// compoundParamCount reports how many of the mutually-exclusive compound
// parameters this level set, per §4.I's "at most one compound parameter
// per level" rule.
func (o Options) compoundParamCount() int {
	n := 0
	for _, set := range []bool{
		o.DSN != nil,
		o.InstanceName != nil,
		o.CredentialsFile != nil,
		o.Credentials != nil,
		o.Host != nil || o.Port != nil,
	} {
		if set {
			n++
		}
	}
	return n
}
