package config

import (
	"os"
	"path/filepath"

	"github.com/nsidnev/edgedb-go/edgedb"
	"github.com/nsidnev/edgedb-go/edgeerr"
)

const defaultPort = 5656

// Resolve walks the precedence ladder from explicit options down to
// project discovery, producing one canonical Endpoint. cwd is the
// directory project discovery starts from; pass "" to use the process's
// current working directory.
func Resolve(explicit Options, cwd string) (*edgedb.Endpoint, error) {
	if cwd == "" {
		var err error
		cwd, err = os.Getwd()
		if err != nil {
			return nil, edgeerr.Wrap(edgeerr.ClientConnectionError, err, "resolving working directory")
		}
	}

	levels := []Options{explicit, globalOptions(), fromEnviron()}
	for _, l := range levels {
		if l.compoundParamCount() > 1 {
			return nil, edgeerr.New(edgeerr.ClientConnectionError,
				"more than one of dsn/instance/credentials/credentials_file/host|port was provided at the same configuration level")
		}
	}

	base, err := resolveCompound(levels, cwd)
	if err != nil {
		return nil, err
	}

	merged := mergeScalars(base, levels)

	clientSecurityStrict := false
	insecureDevMode := false
	for _, l := range levels {
		if l.InsecureDevMode != nil && *l.InsecureDevMode {
			insecureDevMode = true
		}
		if l.ClientSecurityStrict != nil && *l.ClientSecurityStrict {
			clientSecurityStrict = true
		}
	}

	tlsSec, err := deriveTLSSecurity(merged.TLSSecurity, clientSecurityStrict, insecureDevMode, merged.TLSCA != nil)
	if err != nil {
		return nil, err
	}

	ep := &edgedb.Endpoint{
		User:             valueOr(merged.User, "edgedb"),
		Password:         valueOr(merged.Password, ""),
		Database:         valueOr(merged.Database, ""),
		Branch:           valueOr(merged.Branch, ""),
		TLSSecurity:      tlsSec,
		TLSServerName:    valueOr(merged.TLSServerName, ""),
		ConnectTimeoutMS: 10_000,
		ServerSettings:   merged.ServerSettings,
		SecretKey:        valueOr(merged.SecretKey, ""),
		CloudProfile:     valueOr(merged.CloudProfile, ""),
	}
	if merged.TLSCA != nil {
		ep.TLSCA = []byte(*merged.TLSCA)
	}

	host := valueOr(merged.Host, "localhost")
	port := defaultPort
	if merged.Port != nil {
		port = *merged.Port
	}
	ep.Hosts = []edgedb.HostPort{{Host: host, Port: port}}

	applyDatabaseBranchFallback(ep)

	return ep, nil
}

// resolveCompound finds the first level carrying a compound parameter and
// resolves it into a base Options the scalar merge layers on top of. If
// none of the explicit/global/env levels carry one, it falls back to
// project discovery from cwd.
func resolveCompound(levels []Options, cwd string) (Options, error) {
	for _, l := range levels {
		switch {
		case l.DSN != nil:
			if looksLikeDSN(*l.DSN) {
				return dsnOptions(*l.DSN)
			}
			return instanceOptions(*l.DSN)
		case l.InstanceName != nil:
			return instanceOptions(*l.InstanceName)
		case l.CredentialsFile != nil:
			return readCredentialsFile(*l.CredentialsFile)
		case l.Credentials != nil:
			return decodeCredentials([]byte(*l.Credentials))
		case l.Host != nil || l.Port != nil:
			return l, nil
		}
	}

	root, ok, err := discoverProject(cwd)
	if err != nil {
		return Options{}, err
	}
	if !ok {
		return Options{}, edgeerr.New(edgeerr.ClientConnectionError,
			"no connection options were provided and no edgedb.toml project was found starting from %s", cwd)
	}
	proj, err := resolveProject(root)
	if err != nil {
		return Options{}, err
	}
	if _, err := parseProjectFile(filepath.Join(root, "edgedb.toml")); err != nil {
		return Options{}, err
	}
	o, err := instanceOptions(*proj.InstanceName)
	if err != nil {
		return Options{}, err
	}
	if proj.Database != nil {
		o.Database = proj.Database
	}
	if proj.Branch != nil {
		o.Branch = proj.Branch
	}
	if proj.CloudProfile != nil {
		o.CloudProfile = proj.CloudProfile
	}
	return o, nil
}

// instanceOptions resolves a bare instance name to connection options,
// branching on whether it is a local or "org/name" cloud instance.
func instanceOptions(name string) (Options, error) {
	switch {
	case isCloudInstanceName(name):
		return resolveCloudInstance(name)
	case isLocalInstanceName(name):
		return resolveInstanceCredentials(name)
	default:
		return Options{}, edgeerr.New(edgeerr.ClientConnectionError, "%q is not a valid instance name", name)
	}
}

// resolveCloudInstance resolves "org/name" from a stored cloud profile
// credentials file, mirroring resolveInstanceCredentials. It always reads
// the "default" profile (~/.edgedb/cloud-credentials/default.json); a
// CloudProfile setting does not select a different file.
func resolveCloudInstance(name string) (Options, error) {
	dir, err := credentialsDir()
	if err != nil {
		return Options{}, err
	}
	profilePath := filepath.Join(filepath.Dir(dir), "cloud-credentials", "default.json")
	o, err := readCredentialsFile(profilePath)
	if err != nil {
		return Options{}, edgeerr.Wrap(edgeerr.ClientConnectionError, err, "resolving cloud instance %q", name)
	}
	host := name + ".c.edgedb.cloud"
	o.Host = &host
	return o, nil
}

// mergeScalars layers levels (highest precedence first) on top of base
// for every scalar field, leaving base's value where no level overrides
// it.
func mergeScalars(base Options, levels []Options) Options {
	merged := base
	for i := len(levels) - 1; i >= 0; i-- {
		l := levels[i]
		overlay(&merged.User, l.User)
		overlay(&merged.Password, l.Password)
		overlay(&merged.Database, l.Database)
		overlay(&merged.Branch, l.Branch)
		overlay(&merged.SecretKey, l.SecretKey)
		overlay(&merged.CloudProfile, l.CloudProfile)
		overlay(&merged.TLSCA, l.TLSCA)
		overlay(&merged.TLSServerName, l.TLSServerName)
		overlay(&merged.Host, l.Host)
		overlay(&merged.Port, l.Port)
		if l.TLSSecurity != nil {
			merged.TLSSecurity = l.TLSSecurity
		}
		if l.ServerSettings != nil {
			merged.ServerSettings = l.ServerSettings
		}
	}
	return merged
}

func overlay[T any](dst **T, src *T) {
	if src != nil {
		*dst = src
	}
}

func valueOr(p *string, fallback string) string {
	if p != nil {
		return *p
	}
	return fallback
}

// applyDatabaseBranchFallback implements §4.I's "database and branch are
// mutually exclusive when both come from the same level; if only one is
// provided it also populates the other". The ladder here only tracks the
// final merged value, so the conservative interpretation is: whichever of
// the two ended up set also backfills the other for legacy servers that
// only understand one name.
func applyDatabaseBranchFallback(ep *edgedb.Endpoint) {
	switch {
	case ep.Database != "" && ep.Branch == "":
		ep.Branch = ep.Database
	case ep.Branch != "" && ep.Database == "":
		ep.Database = ep.Branch
	}
}
