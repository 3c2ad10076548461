package records

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var decimalType = reflect.TypeOf(decimal.Decimal{})

// DemoStore is the records client used when no backend is configured. Every
// sign-in resolves to the synthetic demo user and rows live in memory.
type DemoStore struct {
	mu       sync.Mutex
	tables   map[Table][]reflect.Value
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

func NewDemoStore() *DemoStore {
	d := &DemoStore{
		tables:   map[Table][]reflect.Value{},
		sessions: map[string]*Session{},
		ttl:      24 * time.Hour,
		now:      time.Now,
	}

	now := d.now()
	d.put(TableProfiles, SampleProfile(now))
	d.put(TableSalesStats, SampleStats(DemoUserID, now))
	for _, tx := range SampleTransactions(DemoUserID, now) {
		d.put(TableTransactions, tx)
	}
	for _, p := range SampleProjects(DemoUserID, now) {
		d.put(TableProjects, p)
	}
	return d
}

func (d *DemoStore) put(table Table, row any) {
	d.tables[table] = append(d.tables[table], detach(reflect.ValueOf(row)))
}

// detach returns an addressable copy of row whose pointer fields share no
// memory with the original.
func detach(row reflect.Value) reflect.Value {
	c := reflect.New(row.Type()).Elem()
	c.Set(row)
	for i := 0; i < c.NumField(); i++ {
		f := c.Field(i)
		if f.Kind() != reflect.Pointer || f.IsNil() || !f.CanSet() {
			continue
		}
		p := reflect.New(f.Type().Elem())
		p.Elem().Set(f.Elem())
		f.Set(p)
	}
	return c
}

func (d *DemoStore) Demo() bool {
	return true
}

func (d *DemoStore) demoProfile() *Profile {
	for _, row := range d.tables[TableProfiles] {
		p := detach(row).Interface().(Profile)
		if p.ID == DemoUserID {
			return &p
		}
	}
	return nil
}

// openSession starts a demo session. Callers hold d.mu.
func (d *DemoStore) openSession() *Session {
	d.sweepSessions()

	id := uuid.New().String()
	now := d.now()
	session := &Session{
		ID:    id,
		Token: "demo." + id,
		User: User{
			ID:        DemoUserID,
			Email:     DemoEmail,
			CreatedAt: now,
		},
		Profile:   d.demoProfile(),
		ExpiresAt: now.Add(d.ttl),
		Demo:      true,
	}
	d.sessions[session.Token] = session
	current := *session
	return &current
}

// sweepSessions drops expired sessions. Callers hold d.mu.
func (d *DemoStore) sweepSessions() {
	now := d.now()
	for token, session := range d.sessions {
		if now.After(session.ExpiresAt) {
			delete(d.sessions, token)
		}
	}
}

func (d *DemoStore) GetSession(_ context.Context, token string) (*Session, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	session, ok := d.sessions[token]
	if !ok {
		return nil, ErrInvalidSession
	}
	if d.now().After(session.ExpiresAt) {
		delete(d.sessions, token)
		return nil, ErrInvalidSession
	}
	current := *session
	current.Profile = d.demoProfile()
	return &current, nil
}

func (d *DemoStore) SignIn(_ context.Context, email, _ string) (*Session, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	logrus.Debugf("Demo sign-in for %q", email)
	return d.openSession(), nil
}

func (d *DemoStore) SignUp(_ context.Context, params SignUpParams) (*Session, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	first, last := params.FirstName, params.LastName
	if first == "" {
		first = "Demo"
	}
	if last == "" {
		last = "User"
	}
	for _, row := range d.tables[TableProfiles] {
		if row.FieldByName("ID").String() == DemoUserID {
			row.FieldByName("FirstName").Set(reflect.ValueOf(&first))
			row.FieldByName("LastName").Set(reflect.ValueOf(&last))
		}
	}
	return d.openSession(), nil
}

func (d *DemoStore) SignOut(_ context.Context, token string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	delete(d.sessions, token)
	return nil
}

func (d *DemoStore) ResetPassword(_ context.Context, email string) error {
	logrus.Debugf("Demo password reset for %q ignored", email)
	return nil
}

func (d *DemoStore) UpdatePassword(context.Context, string, string) error {
	return nil
}

func (d *DemoStore) GetRow(_ context.Context, table Table, filter Filter, dest any) error {
	sc, err := schemaFor(table)
	if err != nil {
		return err
	}
	out, err := sc.checkRow(dest)
	if err != nil {
		return err
	}
	if err := sc.checkFilter(filter); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	for _, row := range d.tables[table] {
		if matches(row, filter) {
			out.Set(detach(row))
			return nil
		}
	}
	return ErrNotFound
}

func (d *DemoStore) ListRows(_ context.Context, table Table, q Query, dest any) error {
	sc, err := schemaFor(table)
	if err != nil {
		return err
	}
	out, err := sc.checkSlice(dest)
	if err != nil {
		return err
	}
	if err := sc.checkFilter(q.Filter); err != nil {
		return err
	}
	if q.Order != nil {
		if err := sc.checkColumn(q.Order.Column); err != nil {
			return err
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	var found []reflect.Value
	for _, row := range d.tables[table] {
		if matches(row, q.Filter) {
			found = append(found, row)
		}
	}

	if q.Order != nil {
		column, desc := q.Order.Column, q.Order.Descending
		sort.SliceStable(found, func(i, j int) bool {
			c := compareValues(mapper.FieldByName(found[i], column), mapper.FieldByName(found[j], column))
			if desc {
				return c > 0
			}
			return c < 0
		})
	}
	if q.Limit > 0 && len(found) > q.Limit {
		found = found[:q.Limit]
	}

	result := reflect.MakeSlice(out.Type(), 0, len(found))
	for _, row := range found {
		result = reflect.Append(result, detach(row))
	}
	out.Set(result)
	return nil
}

func (d *DemoStore) InsertRow(_ context.Context, table Table, row any) error {
	sc, err := schemaFor(table)
	if err != nil {
		return err
	}
	v, err := sc.checkRow(row)
	if err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	fillDefaults(v, d.now())
	d.put(table, v.Interface())
	return nil
}

func (d *DemoStore) UpdateRow(_ context.Context, table Table, filter Filter, changes Changes) error {
	sc, err := schemaFor(table)
	if err != nil {
		return err
	}
	if len(changes) == 0 {
		return ErrEmptyChanges
	}
	if err := sc.checkFilter(filter); err != nil {
		return err
	}
	for column := range changes {
		if err := sc.checkColumn(column); err != nil {
			return err
		}
		if column == "id" || column == sc.owner {
			return fmt.Errorf("%w: %s.%s", ErrImmutableColumn, table, column)
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	updated := 0
	for _, row := range d.tables[table] {
		if !matches(row, filter) {
			continue
		}
		// Stage on a copy so a bad value leaves the row untouched.
		staged := reflect.New(row.Type()).Elem()
		staged.Set(row)
		for _, column := range sortedKeys(changes) {
			if err := assign(mapper.FieldByName(staged, column), changes[column]); err != nil {
				return fmt.Errorf("%s.%s: %w", table, column, err)
			}
		}
		row.Set(staged)
		updated++
	}
	if updated == 0 {
		return ErrNotFound
	}
	return nil
}

func matches(row reflect.Value, f Filter) bool {
	for column, want := range f {
		if !equalValue(mapper.FieldByName(row, column), want) {
			return false
		}
	}
	return true
}

func indirect(v reflect.Value) (reflect.Value, bool) {
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return v, false
		}
		v = v.Elem()
	}
	return v, true
}

func equalValue(field reflect.Value, want any) bool {
	fv, ok := indirect(field)
	if want == nil {
		return !ok
	}
	wv, wok := indirect(reflect.ValueOf(want))
	if !ok || !wok {
		return false
	}
	if d, isDecimal := fv.Interface().(decimal.Decimal); isDecimal {
		wd, err := decimal.NewFromString(fmt.Sprint(wv.Interface()))
		return err == nil && d.Equal(wd)
	}
	return fmt.Sprint(fv.Interface()) == fmt.Sprint(wv.Interface())
}

// compareValues orders two column values; nil pointers sort first.
func compareValues(a, b reflect.Value) int {
	av, aok := indirect(a)
	bv, bok := indirect(b)
	switch {
	case !aok && !bok:
		return 0
	case !aok:
		return -1
	case !bok:
		return 1
	}

	switch x := av.Interface().(type) {
	case time.Time:
		return x.Compare(bv.Interface().(time.Time))
	case decimal.Decimal:
		return x.Cmp(bv.Interface().(decimal.Decimal))
	}

	switch av.Kind() {
	case reflect.String:
		return strings.Compare(av.String(), bv.String())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return cmpOrdered(av.Int(), bv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return cmpOrdered(av.Uint(), bv.Uint())
	case reflect.Float32, reflect.Float64:
		return cmpOrdered(av.Float(), bv.Float())
	case reflect.Bool:
		return cmpOrdered(boolRank(av.Bool()), boolRank(bv.Bool()))
	}
	return strings.Compare(fmt.Sprint(av.Interface()), fmt.Sprint(bv.Interface()))
}

func cmpOrdered[T int64 | uint64 | float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func boolRank(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func assign(field reflect.Value, value any) error {
	target := field.Type()
	if value == nil {
		field.Set(reflect.Zero(target))
		return nil
	}

	v := reflect.ValueOf(value)
	if target == decimalType {
		d, err := decimal.NewFromString(fmt.Sprint(value))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrRowType, err)
		}
		field.Set(reflect.ValueOf(d))
		return nil
	}
	if v.Type().AssignableTo(target) {
		field.Set(v)
		return nil
	}
	if target.Kind() == reflect.Pointer && v.Kind() != reflect.Pointer && convertible(v.Type(), target.Elem()) {
		p := reflect.New(target.Elem())
		p.Elem().Set(v.Convert(target.Elem()))
		field.Set(p)
		return nil
	}
	if convertible(v.Type(), target) {
		field.Set(v.Convert(target))
		return nil
	}
	return fmt.Errorf("%w: cannot assign %T to %s", ErrRowType, value, target)
}

// convertible rules out the numeric-to-string conversions reflect would
// otherwise allow.
func convertible(from, to reflect.Type) bool {
	if (from.Kind() == reflect.String) != (to.Kind() == reflect.String) {
		return false
	}
	return from.ConvertibleTo(to)
}
