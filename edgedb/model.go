// Package edgedb holds the data-model types shared across config, conn and
// codecs that would otherwise force an import cycle: the endpoint record
// the config resolver produces, the prepared-query and result shapes the
// connection state machine and query cache pass around, and the small
// value enums those shapes are built from.
package edgedb

import "fmt"

// TLSSecurity controls how strictly the driver verifies the server's
// certificate, per the config resolver's TLS derivation rules.
type TLSSecurity string

const (
	TLSSecurityDefault           TLSSecurity = ""
	TLSSecurityStrict            TLSSecurity = "strict"
	TLSSecurityNoHostVerification TLSSecurity = "no_host_verification"
	TLSSecurityInsecure          TLSSecurity = "insecure"
)

// Cardinality is the server's declared result shape for a query.
type Cardinality string

const (
	CardinalityNoResult  Cardinality = "no_result"
	CardinalityAtMostOne Cardinality = "at_most_one"
	CardinalityOne       Cardinality = "one"
	CardinalityMany      Cardinality = "many"
)

// OutputFormat selects how the server encodes result rows.
type OutputFormat byte

const (
	OutputFormatBinary      OutputFormat = 'b'
	OutputFormatJSON        OutputFormat = 'j'
	OutputFormatJSONElements OutputFormat = 'J'
	OutputFormatNone        OutputFormat = 'n'
)

// TransactionState mirrors the three states ready_for_command reports.
type TransactionState byte

const (
	TxNotInTransaction  TransactionState = 0x49
	TxInTransaction      TransactionState = 0x54
	TxInFailedTransaction TransactionState = 0x45
)

// Endpoint is the canonical connect parameters the config resolver
// produces and the connection state machine consumes.
type Endpoint struct {
	Hosts    []HostPort
	User     string
	Password string
	Database string
	Branch   string

	TLSCA             []byte
	TLSSecurity       TLSSecurity
	TLSServerName     string

	ConnectTimeoutMS int
	ServerSettings   map[string]string
	SecretKey        string
	CloudProfile     string
}

// HostPort is one endpoint in an Endpoint's try-in-order list.
type HostPort struct {
	Host string
	Port int
}

func (h HostPort) String() string { return fmt.Sprintf("%s:%d", h.Host, h.Port) }

// PreparedQuery is a cached statement: the inputs the query cache keys on,
// plus the input and output type descriptor ids the server last reported
// for it. Comparing those ids lets a caller detect that an
// optimistic_execute's reply carried fresh descriptors without re-parsing
// the statement text; the codecs themselves are held by the cache entry.
type PreparedQuery struct {
	Statement    string
	Cardinality  Cardinality
	OutputFormat OutputFormat

	InputTypeID  [16]byte
	OutputTypeID [16]byte
}

// Result accumulates a query's row bytes verbatim; decoding into user
// values is left to the caller, using the output codec the connection
// state machine attaches alongside it.
type Result struct {
	Status      string
	Cardinality Cardinality
	Rows        [][]byte
}
