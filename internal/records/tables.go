package records

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/jmoiron/sqlx/reflectx"
)

type Table string

const (
	TableProfiles     Table = "profiles"
	TableProjects     Table = "projects"
	TableTransactions Table = "transactions"
	TableSalesStats   Table = "sales_stats"
	TableChatMessages Table = "chat_messages"
	TableGroups       Table = "groups"
	TableInvoices     Table = "invoices"
	TableTickets      Table = "tickets"
	TableCharts       Table = "charts"
)

var mapper = reflectx.NewMapperFunc("db", strings.ToLower)

// schema is the column layout of a table, derived from the db tags of its row struct.
type schema struct {
	table   Table
	rowType reflect.Type
	columns []string
	index   map[string]bool
	owner   string
}

var schemas = map[Table]*schema{}

func init() {
	register(TableProfiles, Profile{}, "id")
	register(TableProjects, Project{}, "user_id")
	register(TableTransactions, Transaction{}, "user_id")
	register(TableSalesStats, SalesStats{}, "user_id")
	register(TableChatMessages, ChatMessage{}, "user_id")
	register(TableGroups, Group{}, "user_id")
	register(TableInvoices, Invoice{}, "user_id")
	register(TableTickets, Ticket{}, "user_id")
	register(TableCharts, ChartPoint{}, "user_id")
}

func register(table Table, row any, owner string) {
	typ := reflect.TypeOf(row)
	s := &schema{
		table:   table,
		rowType: typ,
		index:   map[string]bool{},
		owner:   owner,
	}
	for _, fi := range mapper.TypeMap(typ).Index {
		if len(fi.Index) != 1 || fi.Name == "" {
			continue
		}
		s.columns = append(s.columns, fi.Name)
		s.index[fi.Name] = true
	}
	schemas[table] = s
}

func schemaFor(table Table) (*schema, error) {
	s, ok := schemas[table]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTable, string(table))
	}
	return s, nil
}

func (s *schema) checkColumn(column string) error {
	if !s.index[column] {
		return fmt.Errorf("%w: %s.%s", ErrUnknownColumn, s.table, column)
	}
	return nil
}

func (s *schema) checkFilter(f Filter) error {
	for column := range f {
		if err := s.checkColumn(column); err != nil {
			return err
		}
	}
	return nil
}

// checkRow verifies that row is a pointer to the table's row struct.
func (s *schema) checkRow(row any) (reflect.Value, error) {
	v := reflect.ValueOf(row)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Type() != s.rowType {
		return reflect.Value{}, fmt.Errorf("%w: %s expects *%s, got %T", ErrRowType, s.table, s.rowType.Name(), row)
	}
	return v.Elem(), nil
}

// checkSlice verifies that dest is a pointer to a slice of the table's row struct.
func (s *schema) checkSlice(dest any) (reflect.Value, error) {
	v := reflect.ValueOf(dest)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Slice || v.Elem().Type().Elem() != s.rowType {
		return reflect.Value{}, fmt.Errorf("%w: %s expects *[]%s, got %T", ErrRowType, s.table, s.rowType.Name(), dest)
	}
	return v.Elem(), nil
}

// Tables lists every table known to the records layer.
func Tables() []Table {
	return []Table{
		TableProfiles, TableProjects, TableTransactions, TableSalesStats,
		TableChatMessages, TableGroups, TableInvoices, TableTickets, TableCharts,
	}
}

// Columns returns the columns of table in declaration order.
func Columns(table Table) ([]string, error) {
	s, err := schemaFor(table)
	if err != nil {
		return nil, err
	}
	return append([]string(nil), s.columns...), nil
}
