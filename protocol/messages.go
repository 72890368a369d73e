package protocol

import (
	"github.com/nsidnev/edgedb-go/buf"
	"github.com/nsidnev/edgedb-go/edgeerr"
)

// Every message type below owns an Encode (producing a full frame: type +
// length + payload) and, where the driver needs to receive it, a Decode
// that takes the payload already stripped of its frame header by Framer.

func frame(mtype byte, payload []byte) []byte {
	w := buf.NewWriter(5 + len(payload))
	w.Uint8(mtype)
	w.Uint32(uint32(len(payload) + 4))
	w.RawBytes(payload)
	return w.Bytes()
}

// ---- client_handshake ----------------------------------------------------

type ClientHandshake struct {
	MajorVer   uint16
	MinorVer   uint16
	Params     map[string]string // at minimum "user" and "database"
	Extensions []string
}

func (m *ClientHandshake) Encode() []byte {
	w := buf.NewWriter(64)
	w.Uint16(m.MajorVer)
	w.Uint16(m.MinorVer)

	keys := sortedKeys(m.Params)
	w.Uint16(uint16(len(keys)))
	for _, k := range keys {
		w.WriteString(k)
		w.WriteString(m.Params[k])
	}

	w.Uint16(uint16(len(m.Extensions)))
	for _, ext := range m.Extensions {
		w.WriteString(ext)
		w.Uint16(0) // no extension-specific headers
	}
	return frame(MTypeClientHandshake, w.Bytes())
}

func sortedKeys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

// ---- server_handshake -----------------------------------------------------

type ServerHandshake struct {
	MajorVer uint16
	MinorVer uint16
}

func DecodeServerHandshake(payload []byte) (*ServerHandshake, error) {
	r := buf.NewReader(payload)
	major, err := r.Uint16()
	if err != nil {
		return nil, err
	}
	minor, err := r.Uint16()
	if err != nil {
		return nil, err
	}
	// Extensions follow; the client does not negotiate any, so skip them.
	return &ServerHandshake{MajorVer: major, MinorVer: minor}, nil
}

// ---- authentication_* (server → client, subcoded by AuthStatus) -----------

type AuthenticationSASL struct {
	Methods []string
}

type AuthenticationSASLContinue struct {
	SASLData []byte
}

type AuthenticationSASLFinal struct {
	SASLData []byte
}

// AuthenticationMessage is the decoded form of any mtype 0x52 payload.
type AuthenticationMessage struct {
	Status   uint32
	SASL     *AuthenticationSASL
	Continue *AuthenticationSASLContinue
	Final    *AuthenticationSASLFinal
}

func DecodeAuthenticationMessage(payload []byte) (*AuthenticationMessage, error) {
	r := buf.NewReader(payload)
	status, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	msg := &AuthenticationMessage{Status: status}
	switch status {
	case AuthStatusOK:
		// no further payload
	case AuthStatusSASL:
		n, err := r.Uint32()
		if err != nil {
			return nil, err
		}
		methods := make([]string, n)
		for i := range methods {
			s, err := r.String()
			if err != nil {
				return nil, err
			}
			methods[i] = s
		}
		msg.SASL = &AuthenticationSASL{Methods: methods}
	case AuthStatusSASLContinue:
		data, err := r.Bytes()
		if err != nil {
			return nil, err
		}
		msg.Continue = &AuthenticationSASLContinue{SASLData: data}
	case AuthStatusSASLFinal:
		data, err := r.Bytes()
		if err != nil {
			return nil, err
		}
		msg.Final = &AuthenticationSASLFinal{SASLData: data}
	default:
		return nil, edgeerr.New(edgeerr.ProtocolError, "unknown authentication status %#x", status)
	}
	return msg, nil
}

// ---- authentication_sasl_initial_response / _response (client → server) --

type AuthSASLInitialResponse struct {
	Method       string
	SASLResponse []byte
}

func (m *AuthSASLInitialResponse) Encode() []byte {
	w := buf.NewWriter(32 + len(m.SASLResponse))
	w.WriteString(m.Method)
	w.WriteBytes(m.SASLResponse)
	return frame(MTypeAuthSASLInitialResponse, w.Bytes())
}

type AuthSASLResponse struct {
	SASLResponse []byte
}

func (m *AuthSASLResponse) Encode() []byte {
	w := buf.NewWriter(16 + len(m.SASLResponse))
	w.WriteBytes(m.SASLResponse)
	return frame(MTypeAuthSASLResponse, w.Bytes())
}

// ---- server_key_data --------------------------------------------------

type ServerKeyData struct {
	Data []byte // always 32 bytes on the wire, kept opaque per §9
}

func DecodeServerKeyData(payload []byte) (*ServerKeyData, error) {
	r := buf.NewReader(payload)
	data, err := r.RawBytes(r.Len())
	if err != nil {
		return nil, err
	}
	return &ServerKeyData{Data: data}, nil
}

// ---- parameter_status ---------------------------------------------------

type ParameterStatus struct {
	Name  string
	Value []byte
}

func DecodeParameterStatus(payload []byte) (*ParameterStatus, error) {
	r := buf.NewReader(payload)
	name, err := r.String()
	if err != nil {
		return nil, err
	}
	value, err := r.Bytes()
	if err != nil {
		return nil, err
	}
	return &ParameterStatus{Name: name, Value: value}, nil
}

// ---- ready_for_command ----------------------------------------------------

type ReadyForCommand struct {
	Headers          map[uint16][]byte
	TransactionState TransactionState
}

func DecodeReadyForCommand(payload []byte) (*ReadyForCommand, error) {
	r := buf.NewReader(payload)
	headers, err := r.Headers()
	if err != nil {
		return nil, err
	}
	state, err := r.Uint8()
	if err != nil {
		return nil, err
	}
	return &ReadyForCommand{Headers: headers, TransactionState: TransactionState(state)}, nil
}

// ---- prepare / prepare_complete -------------------------------------------

type Prepare struct {
	Headers             map[uint16][]byte
	IOFormat            IOFormat
	ExpectedCardinality Cardinality
	CommandText         string
}

func (m *Prepare) Encode() []byte {
	w := buf.NewWriter(32 + len(m.CommandText))
	w.Headers(m.Headers)
	w.Uint8(byte(m.IOFormat))
	w.Uint8(byte(m.ExpectedCardinality))
	w.WriteString(m.CommandText)
	return frame(MTypePrepare, w.Bytes())
}

type PrepareComplete struct {
	Headers          map[uint16][]byte
	Cardinality      Cardinality
	InputTypedescID  [16]byte
	OutputTypedescID [16]byte
}

func DecodePrepareComplete(payload []byte) (*PrepareComplete, error) {
	r := buf.NewReader(payload)
	headers, err := r.Headers()
	if err != nil {
		return nil, err
	}
	card, err := r.Uint8()
	if err != nil {
		return nil, err
	}
	in, err := r.RawBytes(16)
	if err != nil {
		return nil, err
	}
	out, err := r.RawBytes(16)
	if err != nil {
		return nil, err
	}
	pc := &PrepareComplete{Headers: headers, Cardinality: Cardinality(card)}
	copy(pc.InputTypedescID[:], in)
	copy(pc.OutputTypedescID[:], out)
	return pc, nil
}

// ---- describe_statement / command_data_description -----------------------

type DescribeStatement struct {
	Headers map[uint16][]byte
	Aspect  DescribeAspect
}

func (m *DescribeStatement) Encode() []byte {
	w := buf.NewWriter(16)
	w.Headers(m.Headers)
	w.Uint8(byte(m.Aspect))
	// ID of a named statement; the core only uses unnamed prepared statements.
	w.WriteString("")
	return frame(MTypeDescribeStatement, w.Bytes())
}

type CommandDataDescription struct {
	Headers           map[uint16][]byte
	ResultCardinality Cardinality
	InputTypedescID   [16]byte
	InputTypedesc     []byte
	OutputTypedescID  [16]byte
	OutputTypedesc    []byte
}

func DecodeCommandDataDescription(payload []byte) (*CommandDataDescription, error) {
	r := buf.NewReader(payload)
	headers, err := r.Headers()
	if err != nil {
		return nil, err
	}
	card, err := r.Uint8()
	if err != nil {
		return nil, err
	}
	inID, err := r.RawBytes(16)
	if err != nil {
		return nil, err
	}
	inDesc, err := r.Bytes()
	if err != nil {
		return nil, err
	}
	outID, err := r.RawBytes(16)
	if err != nil {
		return nil, err
	}
	outDesc, err := r.Bytes()
	if err != nil {
		return nil, err
	}
	d := &CommandDataDescription{
		Headers:           headers,
		ResultCardinality: Cardinality(card),
		InputTypedesc:     inDesc,
		OutputTypedesc:    outDesc,
	}
	copy(d.InputTypedescID[:], inID)
	copy(d.OutputTypedescID[:], outID)
	return d, nil
}

// ---- execute / optimistic_execute / execute_script ------------------------

type Execute struct {
	Headers   map[uint16][]byte
	Arguments []byte // pre-encoded via the input codec's argument envelope
}

func (m *Execute) Encode() []byte {
	w := buf.NewWriter(16 + len(m.Arguments))
	w.Headers(m.Headers)
	w.RawBytes(m.Arguments)
	return frame(MTypeExecute, w.Bytes())
}

type OptimisticExecute struct {
	Headers             map[uint16][]byte
	IOFormat            IOFormat
	ExpectedCardinality Cardinality
	CommandText         string
	InputTypedescID     [16]byte
	OutputTypedescID    [16]byte
	Arguments           []byte
}

func (m *OptimisticExecute) Encode() []byte {
	w := buf.NewWriter(48 + len(m.CommandText) + len(m.Arguments))
	w.Headers(m.Headers)
	w.Uint8(byte(m.IOFormat))
	w.Uint8(byte(m.ExpectedCardinality))
	w.WriteString(m.CommandText)
	w.RawBytes(m.InputTypedescID[:])
	w.RawBytes(m.OutputTypedescID[:])
	w.RawBytes(m.Arguments)
	return frame(MTypeOptimisticExecute, w.Bytes())
}

type ExecuteScript struct {
	Headers map[uint16][]byte
	Script  string
}

func (m *ExecuteScript) Encode() []byte {
	w := buf.NewWriter(32 + len(m.Script))
	w.Headers(m.Headers)
	w.WriteString(m.Script)
	return frame(MTypeExecuteScript, w.Bytes())
}

// ---- data / command_complete / error_response -----------------------------

type Data struct {
	Elements [][]byte
}

func DecodeData(payload []byte) (*Data, error) {
	r := buf.NewReader(payload)
	n, err := r.Uint16()
	if err != nil {
		return nil, err
	}
	elems := make([][]byte, n)
	for i := range elems {
		b, err := r.Bytes()
		if err != nil {
			return nil, err
		}
		elems[i] = b
	}
	return &Data{Elements: elems}, nil
}

type CommandComplete struct {
	Headers map[uint16][]byte
	Status  string
}

func DecodeCommandComplete(payload []byte) (*CommandComplete, error) {
	r := buf.NewReader(payload)
	headers, err := r.Headers()
	if err != nil {
		return nil, err
	}
	status, err := r.String()
	if err != nil {
		return nil, err
	}
	return &CommandComplete{Headers: headers, Status: status}, nil
}

type ErrorResponse struct {
	Severity   byte
	Code       uint32
	Message    string
	Attributes map[uint16][]byte
}

func DecodeErrorResponse(payload []byte) (*ErrorResponse, error) {
	r := buf.NewReader(payload)
	sev, err := r.Uint8()
	if err != nil {
		return nil, err
	}
	code, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	msg, err := r.String()
	if err != nil {
		return nil, err
	}
	attrs, err := r.Headers()
	if err != nil {
		return nil, err
	}
	return &ErrorResponse{Severity: sev, Code: code, Message: msg, Attributes: attrs}, nil
}

// ---- flush / sync / terminate ----------------------------------------------

func EncodeFlush() []byte     { return frame(MTypeFlush, nil) }
func EncodeSync() []byte      { return frame(MTypeSync, nil) }
func EncodeTerminate() []byte { return frame(MTypeTerminate, nil) }
