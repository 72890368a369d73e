package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsidnev/edgedb-go/edgedb"
)

func TestTlsSecurityValue_UnknownDefaultsToStrict(t *testing.T) {
	assert.Equal(t, edgedb.TLSSecurityStrict, tlsSecurityValue("not_a_real_value"))
	assert.Equal(t, edgedb.TLSSecurityStrict, tlsSecurityValue(""))
}

func TestTlsSecurityValue_RecognizedValuesPassThrough(t *testing.T) {
	assert.Equal(t, edgedb.TLSSecurityInsecure, tlsSecurityValue("insecure"))
	assert.Equal(t, edgedb.TLSSecurityNoHostVerification, tlsSecurityValue("no_host_verification"))
	assert.Equal(t, edgedb.TLSSecurityStrict, tlsSecurityValue("strict"))
}

func TestDeriveTLSSecurity_ExplicitWins(t *testing.T) {
	insecure := edgedb.TLSSecurityInsecure
	got, err := deriveTLSSecurity(&insecure, false, false, false)
	require.NoError(t, err)
	assert.Equal(t, edgedb.TLSSecurityInsecure, got)
}

func TestDeriveTLSSecurity_StrictModeRejectsExplicitInsecure(t *testing.T) {
	insecure := edgedb.TLSSecurityInsecure
	_, err := deriveTLSSecurity(&insecure, true, false, false)
	assert.Error(t, err)
}

func TestDeriveTLSSecurity_StrictModeRejectsExplicitNoHostVerification(t *testing.T) {
	noHV := edgedb.TLSSecurityNoHostVerification
	_, err := deriveTLSSecurity(&noHV, true, false, false)
	assert.Error(t, err)
}

func TestDeriveTLSSecurity_ClientSecurityStrictWithoutExplicit(t *testing.T) {
	got, err := deriveTLSSecurity(nil, true, false, false)
	require.NoError(t, err)
	assert.Equal(t, edgedb.TLSSecurityStrict, got)
}

func TestDeriveTLSSecurity_InsecureDevMode(t *testing.T) {
	got, err := deriveTLSSecurity(nil, false, true, false)
	require.NoError(t, err)
	assert.Equal(t, edgedb.TLSSecurityInsecure, got)
}

func TestDeriveTLSSecurity_HaveCAWithoutOtherSignalsRelaxesHostVerification(t *testing.T) {
	got, err := deriveTLSSecurity(nil, false, false, true)
	require.NoError(t, err)
	assert.Equal(t, edgedb.TLSSecurityNoHostVerification, got)
}

func TestDeriveTLSSecurity_DefaultIsStrict(t *testing.T) {
	got, err := deriveTLSSecurity(nil, false, false, false)
	require.NoError(t, err)
	assert.Equal(t, edgedb.TLSSecurityStrict, got)
}
