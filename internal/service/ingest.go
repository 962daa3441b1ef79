package service

import (
	"bufio"
	"context"
	"crypto/sha256"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jask/datatable/internal/database/repository"
)

// IngestService handles CSV imports. When Categorizer is set every
// imported transaction is run through it.
type IngestService struct {
	Transactions *repository.TransactionRepo
	Accounts     *repository.AccountRepo
	Categorizer  *CategorizerService

	accountCache map[string]repository.Account
}

type IngestResult struct {
	Imported    int
	Skipped     int
	Categorized int
	Errors      []error
}

// csvLayout is one export format: how many columns a record needs and how a
// record becomes a transaction.
type csvLayout struct {
	columns int
	names   string
	parse   func(ctx context.Context, rec []string) (repository.Transaction, error)
}

// fieldError names the column a record failed on.
type fieldError struct {
	field string
	err   error
}

func (e fieldError) Error() string { return e.field + ": " + e.err.Error() }
func (e fieldError) Unwrap() error { return e.err }

// ImportCSV ingests the generic layout: date, posted_date, description,
// amount, external_id, account. Amounts are dollars with an optional sign.
func (s *IngestService) ImportCSV(ctx context.Context, r io.Reader, tz *time.Location) (IngestResult, error) {
	return s.ingest(ctx, r, csvLayout{
		columns: 6,
		names:   "date, posted_date, description, amount, external_id, account",
		parse: func(ctx context.Context, rec []string) (repository.Transaction, error) {
			date, err := parseLocalDate(rec[0], tz)
			if err != nil {
				return repository.Transaction{}, fieldError{"date", err}
			}
			var posted *time.Time
			if strings.TrimSpace(rec[1]) != "" {
				p, err := parseLocalDate(rec[1], tz)
				if err != nil {
					return repository.Transaction{}, fieldError{"posted_date", err}
				}
				posted = &p
			}
			cents, err := dollarsToCents(rec[3])
			if err != nil {
				return repository.Transaction{}, fieldError{"amount", err}
			}
			acct, err := s.accountForName(ctx, rec[5])
			if err != nil {
				return repository.Transaction{}, fieldError{"account", err}
			}
			t := newTransaction(acct.ID, date, cents, rec[2])
			t.ExternalID = nullableStr(rec[4])
			t.PostedDate = posted
			t.Status = chooseStatus(posted, "")
			return t, nil
		},
	}), nil
}

// ImportANZSimple ingests the headerless ANZ export: date (d/mm/yyyy),
// amount, description. Every row lands in one account and counts as posted.
func (s *IngestService) ImportANZSimple(ctx context.Context, r io.Reader, accountName string, tz *time.Location) (IngestResult, error) {
	if tz == nil {
		tz = time.Local
	}
	if strings.TrimSpace(accountName) == "" {
		accountName = "ANZ"
	}
	acct, err := s.accountForName(ctx, accountName)
	if err != nil {
		return IngestResult{}, err
	}
	return s.ingest(ctx, r, csvLayout{
		columns: 3,
		names:   "date, amount, description",
		parse: func(_ context.Context, rec []string) (repository.Transaction, error) {
			date, err := parseANZDate(rec[0], tz)
			if err != nil {
				return repository.Transaction{}, fieldError{"date", err}
			}
			cents, err := dollarsToCents(rec[1])
			if err != nil {
				return repository.Transaction{}, fieldError{"amount", err}
			}
			t := newTransaction(acct.ID, date, cents, strings.TrimSpace(rec[2]))
			t.PostedDate = &date
			t.Status = "posted"
			return t, nil
		},
	}), nil
}

// ingest reads r record by record. Bad records are reported by line number
// and skipped; the rest are stored.
func (s *IngestService) ingest(ctx context.Context, r io.Reader, layout csvLayout) IngestResult {
	var res IngestResult
	cr := csv.NewReader(bufio.NewReader(r))
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return res
		}
		if err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("line %d: %w", line, err))
			continue
		}
		if len(rec) < layout.columns {
			res.Errors = append(res.Errors, fmt.Errorf("line %d: expected %d columns (%s)", line, layout.columns, layout.names))
			continue
		}
		t, err := layout.parse(ctx, rec)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("line %d %w", line, err))
			continue
		}
		s.store(ctx, t, line, &res)
	}
}

// newTransaction fills the fields every layout shares. The source hash
// identifies the row across re-imports.
func newTransaction(accountID string, date time.Time, cents int64, desc string) repository.Transaction {
	return repository.Transaction{
		ID:             uuid.NewString(),
		AccountID:      accountID,
		Date:           date,
		AmountCents:    cents,
		RawDescription: desc,
		SourceHash:     hashSource(accountID, date.Format(time.DateOnly), strconv.FormatInt(cents, 10), desc),
	}
}

// store inserts t, counting duplicates of an earlier import as skipped.
func (s *IngestService) store(ctx context.Context, t repository.Transaction, line int, res *IngestResult) {
	if err := s.Transactions.Insert(ctx, t); err != nil {
		if repository.IsUniqueViolation(err) {
			res.Skipped++
			return
		}
		res.Errors = append(res.Errors, fmt.Errorf("line %d insert: %w", line, err))
		return
	}
	res.Imported++
	if s.Categorizer == nil {
		return
	}
	ok, err := s.Categorizer.Categorize(ctx, t)
	if err != nil {
		res.Errors = append(res.Errors, fmt.Errorf("line %d categorize: %w", line, err))
		return
	}
	if ok {
		res.Categorized++
	}
}

func dollarsToCents(s string) (int64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return int64(math.Round(f * 100)), nil
}

func nullableStr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func chooseStatus(posted *time.Time, override string) string {
	if override != "" {
		return override
	}
	if posted == nil {
		return "pending"
	}
	return "posted"
}

func hashSource(parts ...string) *string {
	joined := strings.Join(parts, "|")
	sum := sha256.Sum256([]byte(joined))
	h := fmt.Sprintf("%x", sum[:])
	return &h
}

func parseLocalDate(s string, loc *time.Location) (time.Time, error) {
	layout := "2006-01-02"
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(layout, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func parseANZDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	layout := "2/01/2006" // day/month/year (supports single-digit day)
	t, err := time.ParseInLocation(layout, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func (s *IngestService) accountForName(ctx context.Context, name string) (repository.Account, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return repository.Account{}, errors.New("account name required")
	}
	if s.accountCache == nil {
		s.accountCache = make(map[string]repository.Account)
	}
	if acct, ok := s.accountCache[name]; ok {
		return acct, nil
	}
	id := deterministicAccountID(name)
	acct := repository.Account{ID: id, Name: name, Institution: name, AccountType: "checking"}
	if err := s.Accounts.Upsert(ctx, acct); err != nil {
		return repository.Account{}, err
	}
	s.accountCache[name] = acct
	return acct, nil
}

func deterministicAccountID(name string) string {
	key := strings.ToLower(strings.TrimSpace(filepath.Base(name)))
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(key)).String()
}
