package records

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lib/pq"
)

func (s *schema) checkOwner(f Filter) error {
	if _, ok := f[s.owner]; !ok {
		return fmt.Errorf("%w: %s needs %s", ErrOwnerRequired, s.table, s.owner)
	}
	return nil
}

func sortedKeys[M ~map[string]any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func quoteColumns(columns []string) string {
	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = pq.QuoteIdentifier(c)
	}
	return strings.Join(quoted, ", ")
}

// where renders an AND of equality conditions with placeholders starting at $start.
func where(f Filter, start int) (string, []any) {
	if len(f) == 0 {
		return "", nil
	}
	var conds []string
	var args []any
	for i, column := range sortedKeys(f) {
		conds = append(conds, fmt.Sprintf("%s = $%d", pq.QuoteIdentifier(column), start+i))
		args = append(args, f[column])
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func buildSelect(s *schema, q Query) (string, []any, error) {
	if err := s.checkFilter(q.Filter); err != nil {
		return "", nil, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s", quoteColumns(s.columns), pq.QuoteIdentifier(string(s.table)))

	cond, args := where(q.Filter, 1)
	b.WriteString(cond)

	if q.Order != nil {
		if err := s.checkColumn(q.Order.Column); err != nil {
			return "", nil, err
		}
		direction := "ASC"
		if q.Order.Descending {
			direction = "DESC"
		}
		fmt.Fprintf(&b, " ORDER BY %s %s", pq.QuoteIdentifier(q.Order.Column), direction)
	}

	if q.Limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", q.Limit)
	}
	return b.String(), args, nil
}

// buildInsert renders a named insert for use with sqlx.NamedExecContext.
func buildInsert(s *schema) string {
	named := make([]string, len(s.columns))
	for i, c := range s.columns {
		named[i] = ":" + c
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		pq.QuoteIdentifier(string(s.table)), quoteColumns(s.columns), strings.Join(named, ", "))
}

func buildUpdate(s *schema, f Filter, changes Changes) (string, []any, error) {
	if len(changes) == 0 {
		return "", nil, ErrEmptyChanges
	}
	if err := s.checkFilter(f); err != nil {
		return "", nil, err
	}

	var sets []string
	var args []any
	for i, column := range sortedKeys(changes) {
		if err := s.checkColumn(column); err != nil {
			return "", nil, err
		}
		if column == "id" || column == s.owner {
			return "", nil, fmt.Errorf("%w: %s.%s", ErrImmutableColumn, s.table, column)
		}
		sets = append(sets, fmt.Sprintf("%s = $%d", pq.QuoteIdentifier(column), i+1))
		args = append(args, changes[column])
	}

	cond, condArgs := where(f, len(args)+1)
	query := fmt.Sprintf("UPDATE %s SET %s%s", pq.QuoteIdentifier(string(s.table)), strings.Join(sets, ", "), cond)
	return query, append(args, condArgs...), nil
}
