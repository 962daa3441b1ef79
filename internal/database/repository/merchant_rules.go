package repository

import (
	"context"
	"database/sql"
	"errors"
)

// MerchantRuleRepo stores categorization rules.
type MerchantRuleRepo struct {
	db     *sql.DB
	events *Events
}

func NewMerchantRuleRepo(db *sql.DB, events *Events) *MerchantRuleRepo {
	return &MerchantRuleRepo{db: db, events: events}
}

func (r *MerchantRuleRepo) Add(ctx context.Context, mr MerchantRule) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO merchant_rules(id, pattern, pattern_type, category_id, confidence, source, created_at)
	VALUES(?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`, mr.ID, mr.Pattern, mr.PatternType, mr.CategoryID, mr.Confidence, mr.Source)
	if err != nil {
		return err
	}
	publish(r.events, "merchant_rules", mr.ID, OpInsert)
	return nil
}

const ruleColumns = `id, pattern, pattern_type, category_id, confidence, source, created_at`

// Match returns the best rule for description: an exact match first, then
// the most confident case-insensitive contains rule. nil when none apply.
func (r *MerchantRuleRepo) Match(ctx context.Context, description string) (*MerchantRule, error) {
	mr, err := scanRule(r.db.QueryRowContext(ctx,
		`SELECT `+ruleColumns+` FROM merchant_rules WHERE pattern_type = 'exact' AND pattern = ? LIMIT 1`,
		description))
	if mr != nil || err != nil {
		return mr, err
	}
	return scanRule(r.db.QueryRowContext(ctx, `
	SELECT `+ruleColumns+` FROM merchant_rules
	WHERE pattern_type = 'contains' AND instr(lower(?), lower(pattern)) > 0
	ORDER BY confidence DESC, length(pattern) DESC LIMIT 1
	`, description))
}

func scanRule(row *sql.Row) (*MerchantRule, error) {
	var mr MerchantRule
	if err := row.Scan(&mr.ID, &mr.Pattern, &mr.PatternType, &mr.CategoryID, &mr.Confidence, &mr.Source, &mr.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &mr, nil
}
