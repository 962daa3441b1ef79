// Package ledger turns stored transactions into list rows: the live query
// item, its cells, the filter compiler and the static summary rows.
package ledger

import (
	"github.com/jask/datatable/internal/bus"
	"github.com/jask/datatable/internal/database/repository"
	"github.com/jask/datatable/internal/director"
)

// CommandDelete is passed to Env.OnCommand for a click-delete.
const CommandDelete = "delete"

// Env is shared by every Transaction item of one list.
type Env struct {
	Format  Format
	Actions *bus.Bus[director.CellAction]
	// OnCommand handles row commands: CommandDelete, KeyToggleFlag and
	// KeyCycle. It runs on the main queue.
	OnCommand func(tx Transaction, command string)
}

func (e *Env) format() Format {
	if e == nil {
		return DefaultFormat
	}
	return e.Format
}

func (e *Env) actions() *bus.Bus[director.CellAction] {
	if e == nil {
		return nil
	}
	return e.Actions
}

func (e *Env) command(tx Transaction, cmd string) {
	if e == nil || e.OnCommand == nil {
		return
	}
	e.OnCommand(tx, cmd)
}

// Transaction is the live query item.
type Transaction struct {
	repository.Transaction
	env *Env
}

var _ director.Item = Transaction{}

// Wrap binds stored transactions to env.
func Wrap(env *Env, txs []repository.Transaction) []Transaction {
	out := make([]Transaction, len(txs))
	for i, t := range txs {
		out[i] = Transaction{Transaction: t, env: env}
	}
	return out
}
