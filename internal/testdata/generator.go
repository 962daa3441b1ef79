// Package testdata fills a database with sample transactions.
package testdata

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/jask/datatable/internal/database/repository"
)

// Repos bundles repos used by Seed.
type Repos struct {
	Accounts     *repository.AccountRepo
	Categories   *repository.CategoryRepo
	Tags         *repository.TagRepo
	Transactions *repository.TransactionRepo
}

type sample struct {
	desc     string
	category string
	lo, hi   int64 // cents, inclusive; negative for debits
	tag      string
}

var samples = []sample{
	{desc: "UBER EATS* SUSHI", category: "Restaurants", lo: -6500, hi: -1800},
	{desc: "AMAZON.COM*XYZ", category: "Shopping", lo: -25000, hi: -900},
	{desc: "WOOLWORTHS 1234", category: "Groceries", lo: -18000, hi: -2500, tag: "weekly"},
	{desc: "SPOTIFY", category: "Subscriptions", lo: -1399, hi: -1399},
	{desc: "COFFEE SHOP", category: "Restaurants", lo: -650, hi: -450},
	{desc: "SALARY ACME", category: "Income", lo: 350000, hi: 350000},
	{desc: "TRANSFER TO SAVINGS", category: "Savings", lo: -50000, hi: -50000, tag: "IGNORE"},
}

// Seed creates an account and n sample transactions spread over the last
// 60 days. The same seed value produces the same rows. Categories are
// expected to exist already (see database.SeedDefaults).
func Seed(ctx context.Context, repos Repos, n int, seed uint64) error {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	acct := repository.Account{
		ID:          uuid.NewSHA1(uuid.NameSpaceOID, []byte("sample-account")).String(),
		Name:        "Sample Checking",
		Institution: "Sample Bank",
		AccountType: "checking",
	}
	if err := repos.Accounts.Upsert(ctx, acct); err != nil {
		return err
	}

	cats, err := repos.Categories.List(ctx)
	if err != nil {
		return err
	}
	catIDs := make(map[string]string, len(cats))
	for _, c := range cats {
		catIDs[c.Name] = c.ID
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	for i := 0; i < n; i++ {
		s := samples[r.IntN(len(samples))]
		amount := s.lo
		if s.hi > s.lo {
			amount += r.Int64N(s.hi - s.lo + 1)
		}
		status := "posted"
		if r.IntN(10) < 2 {
			status = "pending"
		}
		date := today.AddDate(0, 0, -r.IntN(60))
		tx := repository.Transaction{
			ID:             uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("sample:%d:%d", seed, i))).String(),
			AccountID:      acct.ID,
			Date:           date,
			AmountCents:    amount,
			RawDescription: s.desc,
			Status:         status,
		}
		// Leave some uncategorized.
		if id, ok := catIDs[s.category]; ok && r.IntN(4) > 0 {
			tx.CategoryID = &id
		}
		if err := repos.Transactions.Insert(ctx, tx); err != nil {
			if repository.IsUniqueViolation(err) {
				continue
			}
			return err
		}
		if s.tag != "" && repos.Tags != nil {
			tag, err := repos.Tags.Ensure(ctx, s.tag)
			if err != nil {
				return err
			}
			if err := repos.Transactions.AttachTag(ctx, tx.ID, tag.ID); err != nil {
				return err
			}
		}
	}
	return nil
}
