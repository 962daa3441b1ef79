package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// TransactionFilters narrows List. Zero values do not filter.
type TransactionFilters struct {
	Status     string
	AccountID  string
	CategoryID string
	Month      time.Time // use first day of month
	Search     string
}

// TransactionRepo handles transactions.
type TransactionRepo struct {
	db     *sql.DB
	events *Events
}

func NewTransactionRepo(db *sql.DB, events *Events) *TransactionRepo {
	return &TransactionRepo{db: db, events: events}
}

func (r *TransactionRepo) Insert(ctx context.Context, t Transaction) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO transactions(
	 id, account_id, external_id, date, posted_date, amount, raw_description, merchant_name,
	 category_id, comment, status, source_hash, created_at, updated_at)
	VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP);
	`,
		t.ID, t.AccountID, t.ExternalID, t.Date, t.PostedDate, t.AmountCents, t.RawDescription,
		t.MerchantName, t.CategoryID, t.Comment, t.Status, t.SourceHash)
	if err != nil {
		return err
	}
	publish(r.events, "transactions", t.ID, OpInsert)
	return nil
}

func (r *TransactionRepo) update(ctx context.Context, id, column string, value any) error {
	res, err := r.db.ExecContext(ctx, `UPDATE transactions SET `+column+` = ?, updated_at=CURRENT_TIMESTAMP WHERE id = ?`, value, id)
	if err != nil {
		return fmt.Errorf("update %s: %w", column, err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		publish(r.events, "transactions", id, OpUpdate)
	}
	return nil
}

func (r *TransactionRepo) UpdateCategory(ctx context.Context, id string, categoryID *string) error {
	return r.update(ctx, id, "category_id", categoryID)
}

func (r *TransactionRepo) UpdateMerchant(ctx context.Context, id string, merchant *string) error {
	return r.update(ctx, id, "merchant_name", merchant)
}

func (r *TransactionRepo) UpdateStatus(ctx context.Context, id string, status string) error {
	return r.update(ctx, id, "status", status)
}

func (r *TransactionRepo) UpdateComment(ctx context.Context, id string, comment *string) error {
	return r.update(ctx, id, "comment", comment)
}

// Delete removes the transaction and its tag links. Deleting a missing ID
// is not an error and publishes nothing.
func (r *TransactionRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		publish(r.events, "transactions", id, OpDelete)
	}
	return nil
}

func (r *TransactionRepo) AttachTag(ctx context.Context, transactionID, tagID string) error {
	if _, err := r.db.ExecContext(ctx, `INSERT OR IGNORE INTO transaction_tags(transaction_id, tag_id) VALUES(?, ?)`, transactionID, tagID); err != nil {
		return err
	}
	publish(r.events, "transactions", transactionID, OpUpdate)
	return nil
}

func (r *TransactionRepo) RemoveTag(ctx context.Context, transactionID, tagID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM transaction_tags WHERE transaction_id = ? AND tag_id = ?`, transactionID, tagID); err != nil {
		return err
	}
	publish(r.events, "transactions", transactionID, OpUpdate)
	return nil
}

const transactionSelect = `SELECT t.id, t.account_id, t.external_id, t.date, t.posted_date, t.amount,
 t.raw_description, t.merchant_name, t.category_id, t.comment, t.status, t.source_hash,
 t.created_at, t.updated_at, COALESCE(c.name, ''), COALESCE(a.name, '')
FROM transactions t
LEFT JOIN categories c ON c.id = t.category_id
LEFT JOIN accounts a ON a.id = t.account_id`

// List returns matching transactions, newest first, with tags and the
// category and account names filled in.
func (r *TransactionRepo) List(ctx context.Context, f TransactionFilters) ([]Transaction, error) {
	var where []string
	var args []interface{}

	if f.Status != "" {
		where = append(where, "t.status = ?")
		args = append(args, f.Status)
	}
	if f.AccountID != "" {
		where = append(where, "t.account_id = ?")
		args = append(args, f.AccountID)
	}
	if f.CategoryID != "" {
		where = append(where, "t.category_id = ?")
		args = append(args, f.CategoryID)
	}
	if !f.Month.IsZero() {
		start := time.Date(f.Month.Year(), f.Month.Month(), 1, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(0, 1, 0)
		where = append(where, "t.date >= ? AND t.date < ?")
		args = append(args, start, end)
	}
	if f.Search != "" {
		where = append(where, "t.raw_description LIKE ?")
		args = append(args, "%"+f.Search+"%")
	}

	query := transactionSelect
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY t.date DESC, t.created_at DESC, t.id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	tags, err := r.allTags(ctx)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Tags = tags[out[i].ID]
	}
	return out, nil
}

// allTags maps transaction ID to its tags, sorted by name.
func (r *TransactionRepo) allTags(ctx context.Context) (map[string][]Tag, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT tt.transaction_id, t.id, t.name FROM tags t JOIN transaction_tags tt ON tt.tag_id = t.id ORDER BY t.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string][]Tag)
	for rows.Next() {
		var txID string
		var t Tag
		if err := rows.Scan(&txID, &t.ID, &t.Name); err != nil {
			return nil, err
		}
		out[txID] = append(out[txID], t)
	}
	return out, rows.Err()
}

func (r *TransactionRepo) fetchTags(ctx context.Context, transactionID string) ([]Tag, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT t.id, t.name FROM tags t JOIN transaction_tags tt ON tt.tag_id = t.id WHERE tt.transaction_id = ? ORDER BY t.name`, transactionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var tags []Tag
	for rows.Next() {
		var t Tag
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// Counts returns the total number of transactions and how many have no
// category.
func (r *TransactionRepo) Counts(ctx context.Context) (total int, uncategorized int, err error) {
	row := r.db.QueryRowContext(ctx, `SELECT COUNT(*), COUNT(*) - COUNT(category_id) FROM transactions`)
	err = row.Scan(&total, &uncategorized)
	return
}

func (r *TransactionRepo) Get(ctx context.Context, id string) (*Transaction, error) {
	row := r.db.QueryRowContext(ctx, transactionSelect+` WHERE t.id = ?`, id)
	t, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	tags, err := r.fetchTags(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	t.Tags = tags
	return &t, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTransaction(row scanner) (Transaction, error) {
	var t Transaction
	var external, merchant, category, comment, source sql.NullString
	var posted sql.NullTime
	if err := row.Scan(&t.ID, &t.AccountID, &external, &t.Date, &posted, &t.AmountCents,
		&t.RawDescription, &merchant, &category, &comment, &t.Status, &source, &t.CreatedAt, &t.UpdatedAt,
		&t.CategoryName, &t.AccountName); err != nil {
		return Transaction{}, err
	}
	if external.Valid {
		t.ExternalID = &external.String
	}
	if posted.Valid {
		t.PostedDate = &posted.Time
	}
	if merchant.Valid {
		t.MerchantName = &merchant.String
	}
	if category.Valid {
		t.CategoryID = &category.String
	}
	if comment.Valid {
		t.Comment = &comment.String
	}
	if source.Valid {
		t.SourceHash = &source.String
	}
	return t, nil
}
