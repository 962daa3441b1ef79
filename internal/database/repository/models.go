package repository

import "time"

// Account represents an account row.
type Account struct {
	ID          string
	Name        string
	Institution string
	AccountType string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Category represents a category row.
type Category struct {
	ID        string
	ParentID  *string
	Name      string
	Icon      *string
	SortOrder int
}

// Tag represents a tag row.
type Tag struct {
	ID   string
	Name string
}

// Transaction represents a transaction row. CategoryName and AccountName are
// filled by reads that join their tables.
type Transaction struct {
	ID             string
	AccountID      string
	ExternalID     *string
	Date           time.Time
	PostedDate     *time.Time
	AmountCents    int64
	RawDescription string
	MerchantName   *string
	CategoryID     *string
	Comment        *string
	Status         string
	SourceHash     *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Tags           []Tag

	CategoryName string
	AccountName  string
}

// Description is the merchant name when known, else the raw description.
func (t Transaction) Description() string {
	if t.MerchantName != nil && *t.MerchantName != "" {
		return *t.MerchantName
	}
	return t.RawDescription
}

// TagNames returns the names of t's tags.
func (t Transaction) TagNames() []string {
	out := make([]string, len(t.Tags))
	for i, tag := range t.Tags {
		out[i] = tag.Name
	}
	return out
}

// MerchantRule represents a rule.
type MerchantRule struct {
	ID          string
	Pattern     string
	PatternType string
	CategoryID  string
	Confidence  float64
	Source      string
	CreatedAt   time.Time
}
