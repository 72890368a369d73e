package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsidnev/edgedb-go/edgedb"
)

func strp(s string) *string { return &s }
func intp(n int) *int       { return &n }

func TestResolve_CompoundParamConflictRejected(t *testing.T) {
	defer ResetGlobal()
	_, err := Resolve(Options{DSN: strp("edgedb://host/db"), Host: strp("other")}, "")
	assert.Error(t, err)
}

func TestResolve_ExplicitHostPort_Defaults(t *testing.T) {
	defer ResetGlobal()
	ep, err := Resolve(Options{Host: strp("db.local"), Port: intp(1234)}, "")
	require.NoError(t, err)

	require.Len(t, ep.Hosts, 1)
	assert.Equal(t, "db.local", ep.Hosts[0].Host)
	assert.Equal(t, 1234, ep.Hosts[0].Port)
	assert.Equal(t, "edgedb", ep.User)
	assert.Equal(t, edgedb.TLSSecurityStrict, ep.TLSSecurity)
	assert.Equal(t, "", ep.Database)
	assert.Equal(t, "", ep.Branch)
}

func TestResolve_DatabaseBackfillsBranch(t *testing.T) {
	defer ResetGlobal()
	ep, err := Resolve(Options{Host: strp("db.local"), Port: intp(1234), Database: strp("mydb")}, "")
	require.NoError(t, err)
	assert.Equal(t, "mydb", ep.Database)
	assert.Equal(t, "mydb", ep.Branch)
}

func TestResolve_BranchBackfillsDatabase(t *testing.T) {
	defer ResetGlobal()
	ep, err := Resolve(Options{Host: strp("db.local"), Port: intp(1234), Branch: strp("release/v2")}, "")
	require.NoError(t, err)
	assert.Equal(t, "release/v2", ep.Branch)
	assert.Equal(t, "release/v2", ep.Database)
}

func TestResolve_ExplicitOverridesGlobal(t *testing.T) {
	defer ResetGlobal()
	SetGlobal("host", "global.host")
	SetGlobal("port", 9999)
	SetGlobal("user", "globaluser")

	ep, err := Resolve(Options{Host: strp("explicit.host"), Port: intp(1111)}, "")
	require.NoError(t, err)

	assert.Equal(t, "explicit.host", ep.Hosts[0].Host)
	assert.Equal(t, 1111, ep.Hosts[0].Port)
	assert.Equal(t, "globaluser", ep.User, "user was only set at the global level and must pass through")
}

func TestResolve_GlobalLevelUsedWhenNoExplicitCompound(t *testing.T) {
	defer ResetGlobal()
	SetGlobal("host", "g.host")
	SetGlobal("port", 4444)

	ep, err := Resolve(Options{}, "")
	require.NoError(t, err)
	assert.Equal(t, "g.host", ep.Hosts[0].Host)
	assert.Equal(t, 4444, ep.Hosts[0].Port)
}

func TestResolve_InsecureDevModeRelaxesTLS(t *testing.T) {
	defer ResetGlobal()
	ep, err := Resolve(Options{Host: strp("db.local"), Port: intp(1234), InsecureDevMode: boolp(true)}, "")
	require.NoError(t, err)
	assert.Equal(t, edgedb.TLSSecurityInsecure, ep.TLSSecurity)
}

func TestResolve_TLSCAWithoutOtherSignalsRelaxesHostVerification(t *testing.T) {
	defer ResetGlobal()
	ep, err := Resolve(Options{Host: strp("db.local"), Port: intp(1234), TLSCA: strp("cert-bytes")}, "")
	require.NoError(t, err)
	assert.Equal(t, edgedb.TLSSecurityNoHostVerification, ep.TLSSecurity)
	assert.Equal(t, []byte("cert-bytes"), ep.TLSCA)
}

func boolp(b bool) *bool { return &b }
