package config

import "github.com/nsidnev/edgedb-go/edgedb"

// tlsSecurityValue maps a raw EDGEDB_CLIENT_TLS_SECURITY / edgedb.toml
// string onto the TLSSecurity enum, defaulting unrecognised values to
// "strict" rather than silently disabling verification.
func tlsSecurityValue(s string) edgedb.TLSSecurity {
	switch edgedb.TLSSecurity(s) {
	case edgedb.TLSSecurityNoHostVerification:
		return edgedb.TLSSecurityNoHostVerification
	case edgedb.TLSSecurityInsecure:
		return edgedb.TLSSecurityInsecure
	case edgedb.TLSSecurityStrict:
		return edgedb.TLSSecurityStrict
	default:
		return edgedb.TLSSecurityStrict
	}
}

// deriveTLSSecurity implements §4.I's TLS security derivation rules.
func deriveTLSSecurity(explicit *edgedb.TLSSecurity, clientSecurityStrict bool, insecureDevMode bool, haveCA bool) (edgedb.TLSSecurity, error) {
	if explicit != nil {
		if clientSecurityStrict && (*explicit == edgedb.TLSSecurityNoHostVerification || *explicit == edgedb.TLSSecurityInsecure) {
			return "", tlsSecurityErr(string(*explicit))
		}
		return *explicit, nil
	}
	if clientSecurityStrict {
		return edgedb.TLSSecurityStrict, nil
	}
	if insecureDevMode {
		return edgedb.TLSSecurityInsecure, nil
	}
	if haveCA {
		return edgedb.TLSSecurityNoHostVerification, nil
	}
	return edgedb.TLSSecurityStrict, nil
}
