package conn

import (
	"github.com/nsidnev/edgedb-go/edgedb"
	"github.com/nsidnev/edgedb-go/edgeerr"
	"github.com/nsidnev/edgedb-go/protocol"
)

// Begin starts a transaction by running "START TRANSACTION" as a script.
// It is a no-op if the connection already reports being in a transaction
// (including a failed one), per §4.G.
func (c *Conn) Begin() error {
	if c.txState == edgedb.TxInTransaction || c.txState == edgedb.TxInFailedTransaction {
		return nil
	}
	return c.runScript("START TRANSACTION;")
}

// Commit runs "COMMIT" as a script. It is a no-op outside a (successful)
// transaction.
func (c *Conn) Commit() error {
	if c.txState == edgedb.TxNotInTransaction || c.txState == edgedb.TxInFailedTransaction {
		return nil
	}
	return c.runScript("COMMIT;")
}

// Rollback runs "ROLLBACK" as a script. It is a no-op outside a
// transaction, failed or otherwise.
func (c *Conn) Rollback() error {
	if c.txState == edgedb.TxNotInTransaction {
		return nil
	}
	return c.runScript("ROLLBACK;")
}

func (c *Conn) runScript(script string) error {
	c.state = StateBusy
	req := &protocol.ExecuteScript{Script: script}
	if err := c.send(req.Encode()); err != nil {
		return err
	}

	mtype, payload, err := c.recv()
	if err != nil {
		return err
	}
	switch mtype {
	case protocol.MTypeCommandComplete:
		if _, err := protocol.DecodeCommandComplete(payload); err != nil {
			return edgeerr.Wrap(edgeerr.ProtocolError, err, "decoding command_complete")
		}
	case protocol.MTypeErrorResponse:
		err := recvError(payload)
		_ = c.awaitReady()
		return err
	default:
		return edgeerr.New(edgeerr.ProtocolError, "unexpected message 0x%02x replying to execute_script", mtype)
	}
	return c.awaitReady()
}
