package filtering

import (
	"strings"
)

// String renders n in canonical form. Parsing the result with ParseStrict
// yields a tree that renders identically.
func String(n *Node) string {
	if n == nil {
		return ""
	}
	var b strings.Builder
	write(&b, n, n.Kind)
	return b.String()
}

func write(b *strings.Builder, n *Node, parent Kind) {
	switch n.Kind {
	case KindAnd, KindOr:
		wrap := parent != n.Kind && parent != KindTerm
		if wrap {
			b.WriteByte('(')
		}
		sep := " AND "
		if n.Kind == KindOr {
			sep = " OR "
		}
		for i, c := range n.Children {
			if i > 0 {
				b.WriteString(sep)
			}
			write(b, c, n.Kind)
		}
		if wrap {
			b.WriteByte(')')
		}
	case KindNot:
		b.WriteString("NOT ")
		write(b, n.Children[0], KindNot)
	default:
		if n.Fuzzy {
			b.WriteByte('~')
		}
		if n.Field != "" {
			b.WriteString(n.Field)
			b.WriteByte(':')
		}
		b.WriteString(quote(n.Value, n.Field == ""))
	}
}

func quote(v string, bare bool) string {
	needs := v == "" || strings.ContainsAny(v, " \t\"()\\")
	if bare && !needs {
		switch v {
		case "AND", "OR", "NOT":
			needs = true
		}
		if strings.HasPrefix(v, "~") {
			needs = true
		}
	}
	if !needs {
		return v
	}
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(v) + `"`
}
