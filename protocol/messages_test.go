package protocol

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsidnev/edgedb-go/buf"
)

// frameBody returns a fresh Writer for building a message payload by hand,
// the way a server reply's bytes would look before Framer strips the frame
// header off of them.
func frameBody(t *testing.T) *buf.Writer {
	t.Helper()
	return buf.NewWriter(64)
}

func TestClientHandshake_EncodeThenFrame(t *testing.T) {
	hs := &ClientHandshake{
		MajorVer: ProtocolVersionMajor,
		MinorVer: ProtocolVersionMinor,
		Params:   map[string]string{"user": "admin", "database": "main"},
	}
	f := NewFramer(bytes.NewReader(hs.Encode()), nil)
	mtype, payload, err := f.Next()
	require.NoError(t, err)
	assert.Equal(t, MTypeClientHandshake, mtype)
	assert.NotEmpty(t, payload)
}

func TestServerHandshake_Decode(t *testing.T) {
	w := frameBody(t)
	w.Uint16(0)
	w.Uint16(11)
	w.Uint16(0) // no extensions
	sh, err := DecodeServerHandshake(w.Bytes())
	require.NoError(t, err)
	assert.EqualValues(t, 0, sh.MajorVer)
	assert.EqualValues(t, 11, sh.MinorVer)
}

func TestAuthenticationMessage_SASLMethods(t *testing.T) {
	w := frameBody(t)
	w.Uint32(AuthStatusSASL)
	w.Uint32(1)
	w.WriteString("SCRAM-SHA-256")
	msg, err := DecodeAuthenticationMessage(w.Bytes())
	require.NoError(t, err)
	assert.Equal(t, AuthStatusSASL, msg.Status)
	require.NotNil(t, msg.SASL)
	assert.Equal(t, []string{"SCRAM-SHA-256"}, msg.SASL.Methods)
}

func TestAuthenticationMessage_OK(t *testing.T) {
	w := frameBody(t)
	w.Uint32(AuthStatusOK)
	msg, err := DecodeAuthenticationMessage(w.Bytes())
	require.NoError(t, err)
	assert.Equal(t, AuthStatusOK, msg.Status)
	assert.Nil(t, msg.SASL)
}

func TestAuthenticationMessage_UnknownStatus(t *testing.T) {
	w := frameBody(t)
	w.Uint32(0xDEAD)
	_, err := DecodeAuthenticationMessage(w.Bytes())
	assert.Error(t, err)
}

func TestPrepareComplete_RoundTrip(t *testing.T) {
	w := frameBody(t)
	w.Headers(nil)
	w.Uint8(byte(CardOne))
	var inID, outID [16]byte
	for i := range inID {
		inID[i] = byte(i)
		outID[i] = byte(i + 1)
	}
	w.RawBytes(inID[:])
	w.RawBytes(outID[:])

	pc, err := DecodePrepareComplete(w.Bytes())
	require.NoError(t, err)
	assert.Equal(t, CardOne, pc.Cardinality)
	assert.Equal(t, inID, pc.InputTypedescID)
	assert.Equal(t, outID, pc.OutputTypedescID)
}

func TestCommandDataDescription_RoundTrip(t *testing.T) {
	w := frameBody(t)
	w.Headers(nil)
	w.Uint8(byte(CardMany))
	var inID, outID [16]byte
	w.RawBytes(inID[:])
	w.WriteBytes([]byte{1, 2, 3})
	w.RawBytes(outID[:])
	w.WriteBytes([]byte{4, 5})

	d, err := DecodeCommandDataDescription(w.Bytes())
	require.NoError(t, err)
	assert.Equal(t, CardMany, d.ResultCardinality)
	assert.Equal(t, []byte{1, 2, 3}, d.InputTypedesc)
	assert.Equal(t, []byte{4, 5}, d.OutputTypedesc)
}

func TestData_Decode(t *testing.T) {
	w := frameBody(t)
	w.Uint16(2)
	w.WriteBytes([]byte("a"))
	w.WriteBytes([]byte("bb"))

	d, err := DecodeData(w.Bytes())
	require.NoError(t, err)
	require.Len(t, d.Elements, 2)
	assert.Equal(t, []byte("a"), d.Elements[0])
	assert.Equal(t, []byte("bb"), d.Elements[1])
}

func TestErrorResponse_Decode(t *testing.T) {
	w := frameBody(t)
	w.Uint8(0x01)
	w.Uint32(0x_01_00_00_00)
	w.WriteString("invalid query")
	w.Headers(nil)

	er, err := DecodeErrorResponse(w.Bytes())
	require.NoError(t, err)
	assert.EqualValues(t, 0x01, er.Severity)
	assert.EqualValues(t, 0x01000000, er.Code)
	assert.Equal(t, "invalid query", er.Message)
}

func TestOptimisticExecute_EncodeThenFrame(t *testing.T) {
	oe := &OptimisticExecute{
		IOFormat:            FormatBinary,
		ExpectedCardinality: CardMany,
		CommandText:         "select 1",
		Arguments:           []byte{0, 0, 0, 0},
	}
	f := NewFramer(bytes.NewReader(oe.Encode()), nil)
	mtype, payload, err := f.Next()
	require.NoError(t, err)
	assert.Equal(t, MTypeOptimisticExecute, mtype)
	assert.NotEmpty(t, payload)
}

func TestFlushSyncTerminate_AreDistinctZeroPayloadFrames(t *testing.T) {
	for _, tc := range []struct {
		name  string
		frame []byte
		want  byte
	}{
		{"flush", EncodeFlush(), MTypeFlush},
		{"sync", EncodeSync(), MTypeSync},
		{"terminate", EncodeTerminate(), MTypeTerminate},
	} {
		t.Run(tc.name, func(t *testing.T) {
			f := NewFramer(bytes.NewReader(tc.frame), nil)
			mtype, payload, err := f.Next()
			require.NoError(t, err)
			assert.Equal(t, tc.want, mtype)
			assert.Empty(t, payload)
		})
	}
}
