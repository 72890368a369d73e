package conn

import (
	"go.uber.org/zap"

	"github.com/nsidnev/edgedb-go/edgedb"
	"github.com/nsidnev/edgedb-go/edgeerr"
	"github.com/nsidnev/edgedb-go/protocol"
	"github.com/nsidnev/edgedb-go/scram"
)

// Handshake sends client_handshake and drives authentication through to
// ready_for_command. password may be empty, which only succeeds if the
// server accepts trust-based authentication.
func (c *Conn) Handshake(user, database, password string) error {
	c.user, c.database = user, database
	c.state = StateHandshaking

	hs := &protocol.ClientHandshake{
		MajorVer: protocol.ProtocolVersionMajor,
		MinorVer: protocol.ProtocolVersionMinor,
		Params: map[string]string{
			"user":     user,
			"database": database,
		},
	}
	if err := c.send(hs.Encode()); err != nil {
		return err
	}

	auth, err := c.readHandshakeReply()
	if err != nil {
		return err
	}

	c.state = StateAuthenticating
	if err := c.authenticate(auth, password); err != nil {
		return err
	}

	return c.awaitReady()
}

// readHandshakeReply consumes an optional server_handshake and returns the
// authentication message that follows it.
func (c *Conn) readHandshakeReply() (*protocol.AuthenticationMessage, error) {
	mtype, payload, err := c.recv()
	if err != nil {
		return nil, err
	}

	if mtype == protocol.MTypeServerHandshake {
		sh, err := protocol.DecodeServerHandshake(payload)
		if err != nil {
			return nil, edgeerr.Wrap(edgeerr.ProtocolError, err, "decoding server_handshake")
		}
		if sh.MajorVer != protocol.ProtocolVersionMajor ||
			sh.MinorVer < protocol.MinSupportedMinor || sh.MinorVer > protocol.MaxSupportedMinor {
			return nil, edgeerr.New(edgeerr.ClientConnectionError,
				"server protocol version %d.%d is not supported", sh.MajorVer, sh.MinorVer)
		}
		c.protoMinor = sh.MinorVer
		mtype, payload, err = c.recv()
		if err != nil {
			return nil, err
		}
	}

	switch mtype {
	case protocol.MTypeAuthentication:
		auth, err := protocol.DecodeAuthenticationMessage(payload)
		if err != nil {
			return nil, edgeerr.Wrap(edgeerr.ProtocolError, err, "decoding authentication message")
		}
		return auth, nil
	case protocol.MTypeErrorResponse:
		return nil, recvError(payload)
	default:
		return nil, edgeerr.New(edgeerr.ProtocolError, "unexpected message 0x%02x during handshake", mtype)
	}
}

func (c *Conn) authenticate(auth *protocol.AuthenticationMessage, password string) error {
	switch auth.Status {
	case protocol.AuthStatusOK:
		c.log.Debug("authenticated via trust", zap.String("user", c.user))
		return nil

	case protocol.AuthStatusSASL:
		if password == "" {
			return edgeerr.New(edgeerr.AuthenticationError, "server requires SASL authentication but no password was supplied")
		}
		if !containsString(auth.SASL.Methods, "SCRAM-SHA-256") {
			return edgeerr.New(edgeerr.AuthenticationError, "server does not offer SCRAM-SHA-256, only %v", auth.SASL.Methods)
		}
		return c.runSCRAM(password)

	default:
		return edgeerr.New(edgeerr.AuthenticationError, "unexpected authentication status %#x", auth.Status)
	}
}

func (c *Conn) runSCRAM(password string) error {
	client := scram.New(c.user, password)

	first, err := client.ClientFirst()
	if err != nil {
		return err
	}
	initial := &protocol.AuthSASLInitialResponse{
		Method:       "SCRAM-SHA-256",
		SASLResponse: []byte(first),
	}
	if err := c.send(initial.Encode()); err != nil {
		return err
	}

	mtype, payload, err := c.recv()
	if err != nil {
		return err
	}
	if mtype == protocol.MTypeErrorResponse {
		return recvError(payload)
	}
	if mtype != protocol.MTypeAuthentication {
		return edgeerr.New(edgeerr.ProtocolError, "unexpected message 0x%02x awaiting SASL continuation", mtype)
	}
	auth, err := protocol.DecodeAuthenticationMessage(payload)
	if err != nil {
		return edgeerr.Wrap(edgeerr.ProtocolError, err, "decoding authentication_sasl_continue")
	}
	if auth.Status != protocol.AuthStatusSASLContinue || auth.Continue == nil {
		return edgeerr.New(edgeerr.AuthenticationError, "expected authentication_sasl_continue, got status %#x", auth.Status)
	}

	final, err := client.ServerFirst(string(auth.Continue.SASLData))
	if err != nil {
		return err
	}
	resp := &protocol.AuthSASLResponse{SASLResponse: []byte(final)}
	if err := c.send(resp.Encode()); err != nil {
		return err
	}

	mtype, payload, err = c.recv()
	if err != nil {
		return err
	}
	if mtype == protocol.MTypeErrorResponse {
		return recvError(payload)
	}
	if mtype != protocol.MTypeAuthentication {
		return edgeerr.New(edgeerr.ProtocolError, "unexpected message 0x%02x awaiting SASL final", mtype)
	}
	auth, err = protocol.DecodeAuthenticationMessage(payload)
	if err != nil {
		return edgeerr.Wrap(edgeerr.ProtocolError, err, "decoding authentication_sasl_final")
	}
	if auth.Status != protocol.AuthStatusSASLFinal || auth.Final == nil {
		return edgeerr.New(edgeerr.AuthenticationError, "expected authentication_sasl_final, got status %#x", auth.Status)
	}
	if err := client.ServerFinal(string(auth.Final.SASLData)); err != nil {
		return err
	}

	mtype, payload, err = c.recv()
	if err != nil {
		return err
	}
	if mtype == protocol.MTypeErrorResponse {
		return recvError(payload)
	}
	if mtype != protocol.MTypeAuthentication {
		return edgeerr.New(edgeerr.ProtocolError, "unexpected message 0x%02x concluding SASL exchange", mtype)
	}
	auth, err = protocol.DecodeAuthenticationMessage(payload)
	if err != nil {
		return edgeerr.Wrap(edgeerr.ProtocolError, err, "decoding trailing authentication message")
	}
	if auth.Status != protocol.AuthStatusOK {
		return edgeerr.New(edgeerr.AuthenticationError, "SASL exchange did not conclude with authentication_ok")
	}
	c.log.Debug("authenticated via SCRAM-SHA-256", zap.String("user", c.user))
	return nil
}

// awaitReady consumes server_key_data and parameter_status until
// ready_for_command, per §4.G's await-ready state.
func (c *Conn) awaitReady() error {
	c.state = StateAwaitingReady
	for {
		mtype, payload, err := c.recv()
		if err != nil {
			return err
		}
		switch mtype {
		case protocol.MTypeServerKeyData:
			skd, err := protocol.DecodeServerKeyData(payload)
			if err != nil {
				return edgeerr.Wrap(edgeerr.ProtocolError, err, "decoding server_key_data")
			}
			c.serverKeyData = skd.Data

		case protocol.MTypeParameterStatus:
			if _, err := protocol.DecodeParameterStatus(payload); err != nil {
				return edgeerr.Wrap(edgeerr.ProtocolError, err, "decoding parameter_status")
			}
			// Parsed only to preserve framing; the value itself is discarded.

		case protocol.MTypeReadyForCommand:
			rfc, err := protocol.DecodeReadyForCommand(payload)
			if err != nil {
				return edgeerr.Wrap(edgeerr.ProtocolError, err, "decoding ready_for_command")
			}
			c.txState = edgedb.TransactionState(rfc.TransactionState)
			c.state = StateIdle
			return nil

		case protocol.MTypeErrorResponse:
			return recvError(payload)

		default:
			return edgeerr.New(edgeerr.ProtocolError, "unexpected message 0x%02x awaiting ready_for_command", mtype)
		}
	}
}

func containsString(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
