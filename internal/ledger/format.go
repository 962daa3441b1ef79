package ledger

import (
	"fmt"
	"strings"
	"time"
)

// Format controls how amounts and dates are shown.
type Format struct {
	DateFormat     string
	CurrencySymbol string
	Location       *time.Location
}

// DefaultFormat is used when Env.Format is zero.
var DefaultFormat = Format{DateFormat: "02/01", CurrencySymbol: "$", Location: time.UTC}

func (f Format) withDefaults() Format {
	if f.DateFormat == "" {
		f.DateFormat = DefaultFormat.DateFormat
	}
	if f.CurrencySymbol == "" {
		f.CurrencySymbol = DefaultFormat.CurrencySymbol
	}
	if f.Location == nil {
		f.Location = DefaultFormat.Location
	}
	return f
}

// Amount renders cents with thousands separators, e.g. -$1,234.50.
func (f Format) Amount(cents int64) string {
	f = f.withDefaults()
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	whole := fmt.Sprintf("%d", cents/100)
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return fmt.Sprintf("%s%s%s.%02d", sign, f.CurrencySymbol, b.String(), cents%100)
}

// Date renders t in the configured zone and layout.
func (f Format) Date(t time.Time) string {
	f = f.withDefaults()
	return t.In(f.Location).Format(f.DateFormat)
}
