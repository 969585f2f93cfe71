package listing

import (
	"fmt"
	"strings"
)

// Columns maps a Query onto SQL for one table or view. Column expressions
// come from code, never from the request: a sort key only selects one of
// the registered expressions.
type Columns struct {
	// Search columns matched with ILIKE; any match admits the row.
	Search []string
	// Status is the expression compared with Query.Status.
	Status string
	// Sort maps public sort keys to column expressions.
	Sort map[string]string
	// Default ORDER BY used when the sort key is empty or unknown.
	Default string
	// Tiebreak is appended to every ORDER BY so pages are deterministic.
	Tiebreak string
}

// Statement is a rendered list query plus its matching count query.
type Statement struct {
	SQL       string
	Args      []any
	CountSQL  string
	CountArgs []any
}

// Cond is a fixed predicate with its own $-placeholders numbered from 1.
type Cond struct {
	SQL  string
	Args []any
}

// Build renders SELECT cols FROM from with the Query's predicates, order and
// page. fixed predicates are ANDed in front of the user predicates.
func (c Columns) Build(from, cols string, q Query, fixed ...Cond) Statement {
	q = q.Normalize()

	var conds []string
	var args []any
	for _, f := range fixed {
		conds = append(conds, renumber(f.SQL, len(args)))
		args = append(args, f.Args...)
	}

	if q.Search != "" && len(c.Search) > 0 {
		args = append(args, "%"+escapeLike(q.Search)+"%")
		n := len(args)
		parts := make([]string, len(c.Search))
		for i, col := range c.Search {
			parts[i] = fmt.Sprintf("%s ILIKE $%d", col, n)
		}
		conds = append(conds, "("+strings.Join(parts, " OR ")+")")
	}

	if q.StatusActive() && c.Status != "" {
		args = append(args, q.Status)
		conds = append(conds, fmt.Sprintf("%s = $%d", c.Status, len(args)))
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	countArgs := make([]any, len(args))
	copy(countArgs, args)

	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s FROM %s%s ORDER BY %s", cols, from, where, c.OrderBy(q))
	if !q.Unbounded {
		args = append(args, q.PageSize, q.Offset())
		fmt.Fprintf(&sb, " LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	return Statement{
		SQL:       sb.String(),
		Args:      args,
		CountSQL:  "SELECT COUNT(*) FROM " + from + where,
		CountArgs: countArgs,
	}
}

// OrderBy renders the ORDER BY expression for q.
func (c Columns) OrderBy(q Query) string {
	order := c.Default
	if col, ok := c.Sort[q.Sort]; ok {
		dir := "ASC"
		if q.Desc {
			dir = "DESC"
		}
		order = col + " " + dir
	}
	if order == "" {
		order = c.Tiebreak
	} else if c.Tiebreak != "" {
		order += ", " + c.Tiebreak
	}
	if order == "" {
		order = "1"
	}
	return order
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// renumber shifts $1..$n in sql by offset.
func renumber(sql string, offset int) string {
	if offset == 0 {
		return sql
	}
	var sb strings.Builder
	for i := 0; i < len(sql); i++ {
		if sql[i] != '$' {
			sb.WriteByte(sql[i])
			continue
		}
		j := i + 1
		n := 0
		for j < len(sql) && sql[j] >= '0' && sql[j] <= '9' {
			n = n*10 + int(sql[j]-'0')
			j++
		}
		if j == i+1 {
			sb.WriteByte('$')
			continue
		}
		fmt.Fprintf(&sb, "$%d", n+offset)
		i = j - 1
	}
	return sb.String()
}
