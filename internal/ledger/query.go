package ledger

import (
	"context"
	"fmt"
	"log"
	"reflect"

	"github.com/jask/datatable/internal/database/repository"
	"github.com/jask/datatable/internal/filtering"
	"github.com/jask/datatable/internal/livequery"
)

// Grouping names accepted by QueryOptions.
const (
	GroupNone     = ""
	GroupCategory = "category"
)

// ToFilterRow exposes t to the filter language.
func ToFilterRow(t repository.Transaction) filtering.Row {
	var notes string
	if t.Comment != nil {
		notes = *t.Comment
	}
	return filtering.Row{
		Description:  t.Description(),
		CategoryName: t.CategoryName,
		AccountName:  t.AccountName,
		Amount:       float64(t.AmountCents) / 100,
		DateISO:      t.Date.Format("2006-01-02"),
		Notes:        notes,
		TagNames:     t.TagNames(),
	}
}

// Compile parses expr into a predicate. The empty expression matches all.
func Compile(expr string) (func(Transaction) bool, error) {
	n, err := filtering.Parse(expr)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, nil
	}
	return func(t Transaction) bool {
		return filtering.Eval(n, ToFilterRow(t.Transaction))
	}, nil
}

// Lister is the read side of the transaction repository.
type Lister interface {
	List(ctx context.Context, f repository.TransactionFilters) ([]repository.Transaction, error)
}

// QueryOptions configures a live query over every stored transaction,
// newest first. groupBy is GroupNone or GroupCategory.
func QueryOptions(repo Lister, env *Env, groupBy string, logger *log.Logger) (livequery.Options[Transaction], error) {
	opts := livequery.Options[Transaction]{
		Fetch: func(ctx context.Context) ([]Transaction, error) {
			txs, err := repo.List(ctx, repository.TransactionFilters{})
			if err != nil {
				return nil, err
			}
			return Wrap(env, txs), nil
		},
		Compile: Compile,
		Less:    newerFirst,
		Key:     func(t Transaction) string { return t.ID },
		Equal: func(a, b Transaction) bool {
			return reflect.DeepEqual(a.Transaction, b.Transaction)
		},
		Logger: logger,
	}
	switch groupBy {
	case GroupNone:
	case GroupCategory:
		opts.GroupKey = func(t Transaction) string {
			if t.CategoryName == "" {
				return "Uncategorized"
			}
			return t.CategoryName
		}
	default:
		return livequery.Options[Transaction]{}, fmt.Errorf("unknown grouping %q", groupBy)
	}
	return opts, nil
}

func newerFirst(a, b Transaction) bool {
	if !a.Date.Equal(b.Date) {
		return a.Date.After(b.Date)
	}
	return a.CreatedAt.After(b.CreatedAt)
}
