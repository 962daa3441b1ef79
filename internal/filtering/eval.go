package filtering

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
)

// Row is the view of a transaction the filter language evaluates against.
type Row struct {
	Description  string
	CategoryName string
	AccountName  string
	// Amount is in currency units; debits are negative.
	Amount   float64
	DateISO  string
	Notes    string
	TagNames []string
}

type cmpOp int

const (
	opEq cmpOp = iota
	opLt
	opLe
	opGt
	opGe
	opRange
)

type comparison struct {
	op cmpOp
	// amounts
	num float64
	hi  float64
	// dates, compared as ISO strings
	loDate string
	hiDate string
	prefix bool
}

const amountEpsilon = 0.005

func parseAmount(v string) (*comparison, error) {
	if lo, hi, ok := strings.Cut(v, ".."); ok {
		a, err := strconv.ParseFloat(lo, 64)
		if err != nil {
			return nil, fmt.Errorf("bad amount %q", lo)
		}
		b, err := strconv.ParseFloat(hi, 64)
		if err != nil {
			return nil, fmt.Errorf("bad amount %q", hi)
		}
		if a > b {
			a, b = b, a
		}
		return &comparison{op: opRange, num: a, hi: b}, nil
	}
	c := &comparison{op: opEq}
	switch {
	case strings.HasPrefix(v, ">="):
		c.op, v = opGe, v[2:]
	case strings.HasPrefix(v, "<="):
		c.op, v = opLe, v[2:]
	case strings.HasPrefix(v, ">"):
		c.op, v = opGt, v[1:]
	case strings.HasPrefix(v, "<"):
		c.op, v = opLt, v[1:]
	case strings.HasPrefix(v, "="):
		v = v[1:]
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, fmt.Errorf("bad amount %q", v)
	}
	c.num = n
	return c, nil
}

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}(-\d{2})?$`)

func parseDate(v string) (*comparison, error) {
	if lo, hi, ok := strings.Cut(v, ".."); ok {
		if !datePattern.MatchString(lo) || !datePattern.MatchString(hi) {
			return nil, fmt.Errorf("bad date range %q", v)
		}
		if lo > hi {
			lo, hi = hi, lo
		}
		return &comparison{op: opRange, loDate: lo, hiDate: hi}, nil
	}
	if !datePattern.MatchString(v) {
		return nil, fmt.Errorf("bad date %q (want YYYY-MM or YYYY-MM-DD)", v)
	}
	return &comparison{op: opEq, loDate: v, prefix: len(v) == len("2006-01")}, nil
}

func (c *comparison) amount(x float64) bool {
	switch c.op {
	case opLt:
		return x < c.num
	case opLe:
		return x <= c.num+amountEpsilon
	case opGt:
		return x > c.num
	case opGe:
		return x >= c.num-amountEpsilon
	case opRange:
		return x >= c.num-amountEpsilon && x <= c.hi+amountEpsilon
	default:
		return math.Abs(x-c.num) < amountEpsilon
	}
}

func (c *comparison) date(iso string) bool {
	if iso == "" {
		return false
	}
	switch c.op {
	case opRange:
		if iso < c.loDate {
			return false
		}
		n := len(c.hiDate)
		if len(iso) < n {
			n = len(iso)
		}
		return iso[:n] <= c.hiDate
	default:
		if c.prefix {
			return strings.HasPrefix(iso, c.loDate)
		}
		return iso == c.loDate
	}
}

// Eval reports whether row matches n. A nil node matches every row.
func Eval(n *Node, row Row) bool {
	if n == nil {
		return true
	}
	switch n.Kind {
	case KindAnd:
		for _, c := range n.Children {
			if !Eval(c, row) {
				return false
			}
		}
		return true
	case KindOr:
		for _, c := range n.Children {
			if Eval(c, row) {
				return true
			}
		}
		return false
	case KindNot:
		return !Eval(n.Children[0], row)
	default:
		return evalTerm(n, row)
	}
}

func evalTerm(n *Node, row Row) bool {
	switch n.Field {
	case "desc":
		return containsFold(row.Description, n.Value)
	case "cat":
		return containsFold(row.CategoryName, n.Value)
	case "acc":
		return containsFold(row.AccountName, n.Value)
	case "note":
		return containsFold(row.Notes, n.Value)
	case "tag":
		for _, t := range row.TagNames {
			if strings.EqualFold(t, n.Value) {
				return true
			}
		}
		return false
	case "amt":
		return n.cmp.amount(row.Amount)
	case "type":
		if n.Value == "debit" {
			return row.Amount < 0
		}
		return row.Amount > 0
	case "date":
		return n.cmp.date(row.DateISO)
	}
	if n.Fuzzy {
		return fuzzyMatch(row, n.Value)
	}
	return textMatch(row, n.Value)
}

func textMatch(row Row, v string) bool {
	if containsFold(row.Description, v) || containsFold(row.CategoryName, v) ||
		containsFold(row.AccountName, v) || containsFold(row.Notes, v) {
		return true
	}
	for _, t := range row.TagNames {
		if containsFold(t, v) {
			return true
		}
	}
	return false
}

// fuzzyMatch accepts a word of the description within a small edit
// distance of v: one edit per four characters, at least one.
func fuzzyMatch(row Row, v string) bool {
	v = strings.ToLower(v)
	if v == "" {
		return true
	}
	if containsFold(row.Description, v) {
		return true
	}
	limit := max(1, len([]rune(v))/4)
	words := strings.FieldsFunc(strings.ToLower(row.Description), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		if levenshtein.ComputeDistance(w, v) <= limit {
			return true
		}
	}
	return false
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
