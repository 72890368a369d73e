package conn

import (
	"github.com/nsidnev/edgedb-go/cache"
	"github.com/nsidnev/edgedb-go/edgedb"
	"github.com/nsidnev/edgedb-go/edgeerr"
	"github.com/nsidnev/edgedb-go/codecs"
	"github.com/nsidnev/edgedb-go/protocol"
)

// Execute runs a previously prepared query with pre-encoded argument
// bytes (the envelope codecs.EncodeArguments builds). It consumes the
// data phase, returns once command_complete arrives, and leaves the
// connection idle.
func (c *Conn) Execute(entry *cache.Entry, argBytes []byte) (*edgedb.Result, error) {
	c.state = StateBusy
	req := &protocol.Execute{Arguments: argBytes}
	if err := c.send(req.Encode(), protocol.EncodeSync()); err != nil {
		return nil, err
	}
	return c.consumeExecuteReply(entry.Query.Cardinality)
}

// OptimisticExecute attempts the fast path: send the statement, its
// current codec ids and pre-encoded arguments in one round trip. If the
// server reports the descriptors changed, it re-materialises the codecs,
// re-encodes args against the fresh input codec, updates the query cache,
// and completes the query with a plain Execute — never a second
// optimistic_execute, per §8 point 13.
func (c *Conn) OptimisticExecute(statement string, card edgedb.Cardinality, format edgedb.OutputFormat, entry *cache.Entry, args []any) (*edgedb.Result, error) {
	argBytes, err := codecs.EncodeArguments(entry.Input, args)
	if err != nil {
		return nil, err
	}

	c.state = StateBusy
	req := &protocol.OptimisticExecute{
		IOFormat:            toIOFormat(format),
		ExpectedCardinality: toWireCardinality(card),
		CommandText:         statement,
		InputTypedescID:     entry.Query.InputTypeID,
		OutputTypedescID:    entry.Query.OutputTypeID,
		Arguments:           argBytes,
	}
	if err := c.send(req.Encode(), protocol.EncodeSync()); err != nil {
		return nil, err
	}

	mtype, payload, err := c.recv()
	if err != nil {
		return nil, err
	}

	if mtype == protocol.MTypeCommandDataDescription {
		desc, err := protocol.DecodeCommandDataDescription(payload)
		if err != nil {
			return nil, edgeerr.Wrap(edgeerr.ProtocolError, err, "decoding command_data_description")
		}
		input, output, err := c.materializeDescriptors(desc.InputTypedesc, desc.OutputTypedesc)
		if err != nil {
			return nil, err
		}
		entry = &cache.Entry{
			Query: edgedb.PreparedQuery{
				Statement:    statement,
				Cardinality:  fromWireCardinality(desc.ResultCardinality),
				OutputFormat: format,
				InputTypeID:  desc.InputTypedescID,
				OutputTypeID: desc.OutputTypedescID,
			},
			Input:  input,
			Output: output,
		}
		c.QueryCache.Add(entry)

		argBytes, err = codecs.EncodeArguments(entry.Input, args)
		if err != nil {
			return nil, err
		}
		return c.Execute(entry, argBytes)
	}

	return c.continueExecuteReply(mtype, payload, entry.Query.Cardinality)
}

func (c *Conn) consumeExecuteReply(card edgedb.Cardinality) (*edgedb.Result, error) {
	mtype, payload, err := c.recv()
	if err != nil {
		return nil, err
	}
	return c.continueExecuteReply(mtype, payload, card)
}

// continueExecuteReply drives the data phase from an already-read first
// reply frame (useful when OptimisticExecute has already consumed one
// frame deciding whether the fast path applies).
func (c *Conn) continueExecuteReply(mtype byte, payload []byte, card edgedb.Cardinality) (*edgedb.Result, error) {
	result := &edgedb.Result{Cardinality: card}
	for {
		switch mtype {
		case protocol.MTypeData:
			d, err := protocol.DecodeData(payload)
			if err != nil {
				return nil, edgeerr.Wrap(edgeerr.ProtocolError, err, "decoding data")
			}
			result.Rows = append(result.Rows, d.Elements...)

		case protocol.MTypeCommandComplete:
			cc, err := protocol.DecodeCommandComplete(payload)
			if err != nil {
				return nil, edgeerr.Wrap(edgeerr.ProtocolError, err, "decoding command_complete")
			}
			result.Status = cc.Status
			if err := c.awaitReady(); err != nil {
				return nil, err
			}
			return result, nil

		case protocol.MTypeErrorResponse:
			err := recvError(payload)
			_ = c.awaitReady()
			return nil, err

		default:
			return nil, edgeerr.New(edgeerr.ProtocolError, "unexpected message 0x%02x during data phase", mtype)
		}

		var err error
		mtype, payload, err = c.recv()
		if err != nil {
			return nil, err
		}
	}
}
