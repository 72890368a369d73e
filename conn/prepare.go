package conn

import (
	"github.com/nsidnev/edgedb-go/cache"
	"github.com/nsidnev/edgedb-go/codecs"
	"github.com/nsidnev/edgedb-go/edgedb"
	"github.com/nsidnev/edgedb-go/edgeerr"
	"github.com/nsidnev/edgedb-go/protocol"
)

// Prepare resolves statement against the query cache, preparing it on the
// server and materialising its codecs if this is the first time this
// connection has seen it (or if the cache has no matching triple yet).
func (c *Conn) Prepare(statement string, card edgedb.Cardinality, format edgedb.OutputFormat) (*cache.Entry, error) {
	if entry, ok := c.QueryCache.Get(statement, card, format); ok {
		return entry, nil
	}

	c.state = StateBusy
	req := &protocol.Prepare{
		IOFormat:            toIOFormat(format),
		ExpectedCardinality: toWireCardinality(card),
		CommandText:         statement,
	}
	if err := c.send(req.Encode(), protocol.EncodeFlush()); err != nil {
		return nil, err
	}

	mtype, payload, err := c.recv()
	if err != nil {
		return nil, err
	}
	if mtype == protocol.MTypeErrorResponse {
		err := recvError(payload)
		_ = c.awaitReady()
		return nil, err
	}
	if mtype != protocol.MTypePrepareComplete {
		return nil, edgeerr.New(edgeerr.ProtocolError, "unexpected message 0x%02x replying to prepare", mtype)
	}
	pc, err := protocol.DecodePrepareComplete(payload)
	if err != nil {
		return nil, edgeerr.Wrap(edgeerr.ProtocolError, err, "decoding prepare_complete")
	}

	if card == edgedb.CardinalityOne && fromWireCardinality(pc.Cardinality) == edgedb.CardinalityNoResult {
		_ = c.awaitReady()
		return nil, edgeerr.New(edgeerr.CardinalityViolationError,
			"statement declared cardinality one but the server reports no_result")
	}

	inputCodec, haveInput := c.CodecCache.Get(pc.InputTypedescID)
	outputCodec, haveOutput := c.CodecCache.Get(pc.OutputTypedescID)

	if !haveInput || !haveOutput {
		inputCodec, outputCodec, err = c.describeStatement()
		if err != nil {
			return nil, err
		}
	}

	if err := c.awaitReady(); err != nil {
		return nil, err
	}

	entry := &cache.Entry{
		Query: edgedb.PreparedQuery{
			Statement:    statement,
			Cardinality:  fromWireCardinality(pc.Cardinality),
			OutputFormat: format,
			InputTypeID:  pc.InputTypedescID,
			OutputTypeID: pc.OutputTypedescID,
		},
		Input:  inputCodec,
		Output: outputCodec,
	}
	c.QueryCache.Add(entry)
	return entry, nil
}

// describeStatement issues describe_statement and parses the resulting
// type descriptor blobs into codecs, registering them in the codec cache.
func (c *Conn) describeStatement() (input, output codecs.Codec, err error) {
	req := &protocol.DescribeStatement{Aspect: protocol.AspectDataDescription}
	if err := c.send(req.Encode(), protocol.EncodeFlush()); err != nil {
		return nil, nil, err
	}

	mtype, payload, err := c.recv()
	if err != nil {
		return nil, nil, err
	}
	if mtype == protocol.MTypeErrorResponse {
		return nil, nil, recvError(payload)
	}
	if mtype != protocol.MTypeCommandDataDescription {
		return nil, nil, edgeerr.New(edgeerr.ProtocolError, "unexpected message 0x%02x replying to describe_statement", mtype)
	}
	desc, err := protocol.DecodeCommandDataDescription(payload)
	if err != nil {
		return nil, nil, edgeerr.Wrap(edgeerr.ProtocolError, err, "decoding command_data_description")
	}
	return c.materializeDescriptors(desc.InputTypedesc, desc.OutputTypedesc)
}

func (c *Conn) materializeDescriptors(inputBlob, outputBlob []byte) (input, output codecs.Codec, err error) {
	input, err = codecs.Parse(inputBlob, c.CodecCache)
	if err != nil {
		return nil, nil, err
	}
	output, err = codecs.Parse(outputBlob, c.CodecCache)
	if err != nil {
		return nil, nil, err
	}
	return input, output, nil
}

func toIOFormat(f edgedb.OutputFormat) protocol.IOFormat {
	switch f {
	case edgedb.OutputFormatJSON:
		return protocol.FormatJSON
	case edgedb.OutputFormatJSONElements:
		return protocol.FormatJSONElements
	default:
		return protocol.FormatBinary
	}
}

func toWireCardinality(c edgedb.Cardinality) protocol.Cardinality {
	switch c {
	case edgedb.CardinalityNoResult:
		return protocol.CardNoResult
	case edgedb.CardinalityAtMostOne:
		return protocol.CardAtMostOne
	case edgedb.CardinalityOne:
		return protocol.CardOne
	default:
		return protocol.CardMany
	}
}

func fromWireCardinality(c protocol.Cardinality) edgedb.Cardinality {
	switch c {
	case protocol.CardNoResult:
		return edgedb.CardinalityNoResult
	case protocol.CardAtMostOne:
		return edgedb.CardinalityAtMostOne
	case protocol.CardOne:
		return edgedb.CardinalityOne
	default:
		return edgedb.CardinalityMany
	}
}
