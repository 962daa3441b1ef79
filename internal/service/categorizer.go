package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jask/datatable/internal/database/repository"
)

// CategorizerService assigns categories from merchant rules.
type CategorizerService struct {
	Transactions *repository.TransactionRepo
	Rules        *repository.MerchantRuleRepo
	Categories   *repository.CategoryRepo
}

// Categorize applies the best matching rule to tx. Transactions that
// already have a category are left alone. It reports whether a category
// was assigned.
func (s *CategorizerService) Categorize(ctx context.Context, tx repository.Transaction) (bool, error) {
	if tx.CategoryID != nil {
		return false, nil
	}
	mr, err := s.Rules.Match(ctx, tx.RawDescription)
	if err != nil {
		return false, fmt.Errorf("match rules: %w", err)
	}
	if mr == nil {
		return false, nil
	}
	if err := s.Transactions.UpdateCategory(ctx, tx.ID, &mr.CategoryID); err != nil {
		return false, err
	}
	return true, nil
}

// Learn records a contains rule mapping pattern to the named category.
func (s *CategorizerService) Learn(ctx context.Context, pattern, categoryName string) error {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return fmt.Errorf("rule pattern required")
	}
	cat, err := s.Categories.ByName(ctx, categoryName)
	if err != nil {
		return err
	}
	if cat == nil {
		return fmt.Errorf("unknown category %q", categoryName)
	}
	return s.Rules.Add(ctx, repository.MerchantRule{
		ID:          uuid.NewString(),
		Pattern:     pattern,
		PatternType: "contains",
		CategoryID:  cat.ID,
		Confidence:  1,
		Source:      "user",
	})
}

// CategorizeAll runs Categorize over every uncategorized transaction and
// returns how many were assigned a category.
func (s *CategorizerService) CategorizeAll(ctx context.Context) (int, error) {
	txs, err := s.Transactions.List(ctx, repository.TransactionFilters{})
	if err != nil {
		return 0, fmt.Errorf("list transactions: %w", err)
	}
	n := 0
	for _, tx := range txs {
		ok, err := s.Categorize(ctx, tx)
		if err != nil {
			return n, err
		}
		if ok {
			n++
		}
	}
	return n, nil
}
