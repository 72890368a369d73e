// Package protocol implements the wire message framer and the typed
// message catalogue for the client↔server binary protocol: client_handshake,
// authentication exchange messages, prepare/execute/sync, and their
// server-side replies. Every message type declares its own Encode/Decode;
// the framer in frame.go only ever deals in (mtype, payload) pairs.
package protocol

// ProtocolVersion is the negotiated major.minor this driver speaks.
const (
	ProtocolVersionMajor uint16 = 0
	ProtocolVersionMinor uint16 = 11

	// MinSupportedMinor and MaxSupportedMinor bound the minors this client
	// will accept from a server_handshake reply for major 0.
	MinSupportedMinor uint16 = 11
	MaxSupportedMinor uint16 = 11
)

// ALPNProtocol is the TLS ALPN identifier the external TLS collaborator
// must negotiate before the handshake is sent.
const ALPNProtocol = "edgedb-binary"

// MaxFrameLen caps a single frame's declared length to defend against
// runaway allocation from a malformed or hostile length field.
const MaxFrameLen = 64 << 20 // 64 MiB

// Client → server message types.
const (
	MTypeClientHandshake              byte = 0x56
	MTypeAuthSASLInitialResponse      byte = 0x70
	MTypeAuthSASLResponse             byte = 0x72
	MTypePrepare                       byte = 0x50
	MTypeDescribeStatement            byte = 0x44
	MTypeExecute                      byte = 0x45
	MTypeOptimisticExecute            byte = 0x4F
	MTypeExecuteScript                byte = 0x51
	MTypeFlush                        byte = 0x48
	MTypeSync                         byte = 0x53
	MTypeTerminate                    byte = 0x58
)

// Server → client message types.
const (
	MTypeServerHandshake          byte = 0x76
	MTypeAuthentication           byte = 0x52
	MTypeServerKeyData            byte = 0x4B
	MTypeParameterStatus          byte = 0x53
	MTypeReadyForCommand          byte = 0x5A
	MTypePrepareComplete          byte = 0x31
	MTypeCommandDataDescription   byte = 0x54
	MTypeData                     byte = 0x44
	MTypeCommandComplete          byte = 0x43
	MTypeErrorResponse            byte = 0x45
	MTypeLogMessage               byte = 0x4C
	MTypeDumpBlock                byte = 0x3D
)

// Authentication sub-messages, all carried inside MTypeAuthentication and
// distinguished by AuthStatus.
const (
	AuthStatusOK            uint32 = 0
	AuthStatusSASL          uint32 = 0x0A
	AuthStatusSASLContinue  uint32 = 0x0B
	AuthStatusSASLFinal     uint32 = 0x0C
)

// TransactionState mirrors ReadyForCommand's status byte.
type TransactionState byte

const (
	TxNotInTransaction TransactionState = 'I'
	TxInTransaction     TransactionState = 'T'
	TxInFailedTransaction TransactionState = 'E'
)

// Cardinality is the expected/declared result shape of a prepared query.
type Cardinality byte

const (
	CardNoResult  Cardinality = 'n'
	CardAtMostOne Cardinality = 'o'
	CardOne       Cardinality = 'A'
	CardMany      Cardinality = 'm'
)

// IOFormat selects how Data rows are encoded.
type IOFormat byte

const (
	FormatBinary       IOFormat = 'b'
	FormatJSON         IOFormat = 'j'
	FormatJSONElements IOFormat = 'J'
)

// DescribeAspect selects what describe_statement asks for.
type DescribeAspect byte

const (
	AspectDataDescription DescribeAspect = 'T'
)
