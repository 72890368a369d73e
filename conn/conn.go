// Package conn implements the connection state machine: handshake,
// authentication, prepare/execute/script, transactions and shutdown, built
// on top of the message catalogue in protocol, the codec tree in codecs,
// and the prepared-statement memoisation in cache. A Conn is owned by one
// caller at a time; the pooling layer above this package is responsible
// for serialising access to it.
package conn

import (
	"errors"
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"

	"github.com/nsidnev/edgedb-go/cache"
	"github.com/nsidnev/edgedb-go/codecs"
	"github.com/nsidnev/edgedb-go/edgedb"
	"github.com/nsidnev/edgedb-go/edgeerr"
	"github.com/nsidnev/edgedb-go/protocol"
)

// State is one step of the connection lifecycle the spec names: states
// advance strictly forward except for the idle<->busy<->awaiting_ready
// cycle a connection repeats for every command.
type State int

const (
	StateDisconnected State = iota
	StateHandshaking
	StateAuthenticating
	StateAwaitingReady
	StateIdle
	StateBusy
	StateFailed
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateHandshaking:
		return "handshaking"
	case StateAuthenticating:
		return "authenticating"
	case StateAwaitingReady:
		return "awaiting_ready"
	case StateIdle:
		return "idle"
	case StateBusy:
		return "busy"
	case StateFailed:
		return "failed"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// DefaultTimeout bounds every socket read per call, per §5.
const DefaultTimeout = 15 * time.Second

// Conn is one authenticated session against the server. It is not safe for
// concurrent use: the caller (typically a connection-pool checkout) must
// serialise every method call.
type Conn struct {
	netConn net.Conn
	framer  *protocol.Framer
	log     *zap.Logger

	state            State
	txState          edgedb.TransactionState
	serverKeyData    []byte
	protoMinor       uint16
	timeout          time.Duration
	user, database   string

	QueryCache *cache.QueryCache
	CodecCache *codecs.Cache
}

// logSink adapts *zap.Logger to protocol.LogSink so log_message frames the
// framer consumes transparently still reach structured logging.
type logSink struct{ log *zap.Logger }

func (s logSink) LogMessage(severity byte, code uint32, text string) {
	s.log.Info("server log message",
		zap.Uint8("severity", severity),
		zap.Uint32("code", code),
		zap.String("text", text),
	)
}

// New wraps an already-connected, already-TLS-negotiated socket. TLS
// provisioning and the TCP dial itself are the caller's responsibility
// (per the core's external-collaborator boundary); this package only
// speaks the framed protocol over whatever net.Conn it is handed.
func New(netConn net.Conn, log *zap.Logger) *Conn {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Conn{
		netConn:    netConn,
		log:        log,
		state:      StateDisconnected,
		timeout:    DefaultTimeout,
		QueryCache: cache.New(),
		CodecCache: codecs.NewCache(),
	}
	c.framer = protocol.NewFramer(netConn, logSink{log: log})
	return c
}

// SetTimeout overrides the default 15s per-call read timeout.
func (c *Conn) SetTimeout(d time.Duration) { c.timeout = d }

// State reports the connection's current lifecycle state.
func (c *Conn) State() State { return c.state }

// send coalesces one or more already-encoded frames into a single network
// write, per §5's "no mid-sequence interleaving" ordering requirement.
func (c *Conn) send(frames ...[]byte) error {
	payload := protocol.Coalesce(frames...)
	if err := c.netConn.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
		return edgeerr.Wrap(edgeerr.ClientConnectionError, err, "setting write deadline")
	}
	if _, err := c.netConn.Write(payload); err != nil {
		c.state = StateFailed
		return edgeerr.Wrap(edgeerr.ClientConnectionError, err, "writing to connection")
	}
	return nil
}

// recv reads the next non-log frame, applying the per-call timeout and
// translating a deadline exceeded error to ClientConnectionTimeoutError.
func (c *Conn) recv() (byte, []byte, error) {
	if err := c.netConn.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
		return 0, nil, edgeerr.Wrap(edgeerr.ClientConnectionError, err, "setting read deadline")
	}
	mtype, payload, err := c.framer.Next()
	if err != nil {
		c.state = StateFailed
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			return 0, nil, edgeerr.Wrap(edgeerr.ClientConnectionTimeoutError, err, "reading from connection")
		}
		return 0, nil, edgeerr.Wrap(edgeerr.ClientConnectionError, err, "reading from connection")
	}
	return mtype, payload, nil
}

// recvError builds a driver error from a decoded error_response, or wraps
// a decode failure as a protocol error.
func recvError(payload []byte) error {
	er, err := protocol.DecodeErrorResponse(payload)
	if err != nil {
		return edgeerr.Wrap(edgeerr.ProtocolError, err, "decoding error_response")
	}
	return edgeerr.FromServer(er.Severity, er.Code, er.Message, er.Attributes)
}

// Close sends terminate and closes the socket unconditionally; any reply
// the server sends after terminate is never read.
func (c *Conn) Close() error {
	if c.state == StateClosed {
		return nil
	}
	_ = c.send(protocol.EncodeTerminate())
	c.state = StateClosed
	return c.netConn.Close()
}

// --- cursor operations -----------------------------------------------------
//
// These exist solely for interface conformance with the pooling layer this
// core plugs into; server-side cursors are out of scope.

func (c *Conn) Fetch(context ...any) error      { return c.cursorUnsupported("fetch") }
func (c *Conn) Declare(context ...any) error    { return c.cursorUnsupported("declare") }
func (c *Conn) Deallocate(context ...any) error { return c.cursorUnsupported("deallocate") }

func (c *Conn) cursorUnsupported(op string) error {
	_ = c.Close()
	return edgeerr.New(edgeerr.InterfaceError, "%s is not supported by this connection", op)
}

func (c *Conn) String() string {
	return fmt.Sprintf("Conn{state=%s, tx=%v, remote=%s}", c.state, c.txState, c.netConn.RemoteAddr())
}
