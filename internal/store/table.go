package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/SkyePiper/esd-tracker-backend/internal/apperr"
	"github.com/SkyePiper/esd-tracker-backend/internal/schema"
)

// Field binds one table column to the record field backing it. Ref returns
// a pointer into the record, used both as a scan destination and (via the
// driver's pointer dereferencing) as a statement argument.
type Field[T any] struct {
	Column string
	Ref    func(*T) any
}

// SeedFunc adds an entity's default records. It runs exactly once, only
// when Init has just created the table.
type SeedFunc[T any] func(context.Context, *Table[T]) error

// Table is the generic record store for one entity table.
type Table[T any] struct {
	db     *DB
	desc   schema.Table
	fields []Field[T]
	seed   SeedFunc[T]

	// idColumn is the single explicit primary key, or "" for
	// composite-key tables.
	idColumn   string
	selectList string
}

// NewTable builds a table store, checking the field bindings against the
// schema descriptor for completeness and order. The binding list is the
// single source of truth tying record fields to columns; a mismatch here
// is a programming error surfaced at startup rather than as silently
// corrupted rows.
func NewTable[T any](db *DB, desc schema.Table, fields []Field[T], seed SeedFunc[T]) (*Table[T], error) {
	if len(fields) != len(desc.Columns) {
		return nil, fmt.Errorf("table %s: %d field bindings for %d columns", desc.Name, len(fields), len(desc.Columns))
	}
	for i, f := range fields {
		if f.Column != desc.Columns[i].Name {
			return nil, fmt.Errorf("table %s: binding %d is for column %q, schema declares %q",
				desc.Name, i, f.Column, desc.Columns[i].Name)
		}
		if f.Ref == nil {
			return nil, fmt.Errorf("table %s: binding for column %q has no field reference", desc.Name, f.Column)
		}
	}

	t := &Table[T]{
		db:         db,
		desc:       desc,
		fields:     fields,
		seed:       seed,
		selectList: strings.Join(desc.ColumnNames(), ", "),
	}

	if id, ok := desc.PrimaryKeyColumn(); ok {
		t.idColumn = id
		var zero T
		if _, ok := t.fieldRef(&zero, id).(*int64); !ok {
			return nil, fmt.Errorf("table %s: primary key column %q must bind to an int64 field", desc.Name, id)
		}
	}

	return t, nil
}

// Name returns the table name.
func (t *Table[T]) Name() string { return t.desc.Name }

// Init creates the backing table from the schema descriptor if it does not
// exist, then seeds the default records. Idempotent; safe on every start.
func (t *Table[T]) Init(ctx context.Context) error {
	exists, err := t.tableExists(ctx)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	if _, err := t.db.conn.ExecContext(ctx, t.desc.CreateStatement()); err != nil {
		return fmt.Errorf("could not create table %s: %w", t.desc.Name, err)
	}

	// Re-check before seeding so a failed creation cannot slip through.
	exists, err = t.tableExists(ctx)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("table %s still missing after creation", t.desc.Name)
	}

	if t.seed != nil {
		if err := t.seed(ctx, t); err != nil {
			return fmt.Errorf("could not seed table %s: %w", t.desc.Name, err)
		}
	}
	return nil
}

func (t *Table[T]) tableExists(ctx context.Context) (bool, error) {
	var name string
	err := t.db.conn.QueryRowContext(ctx,
		`SELECT tbl_name FROM sqlite_master WHERE type='table' AND tbl_name=?`, t.desc.Name).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("could not inspect sqlite_master for %s: %w", t.desc.Name, err)
	}
	return true, nil
}

// refs returns scan/exec pointers for every column, in column order.
func (t *Table[T]) refs(rec *T) []any {
	out := make([]any, len(t.fields))
	for i, f := range t.fields {
		out[i] = f.Ref(rec)
	}
	return out
}

func (t *Table[T]) fieldRef(rec *T, column string) any {
	for _, f := range t.fields {
		if f.Column == column {
			return f.Ref(rec)
		}
	}
	return nil
}

// requireColumn guards column names that get interpolated into query text.
// Values are always bound as parameters; names must come from the schema.
func (t *Table[T]) requireColumn(name string) error {
	if !t.desc.HasColumn(name) {
		return fmt.Errorf("table %s has no column %q", t.desc.Name, name)
	}
	return nil
}

// keysWhere builds a deterministic WHERE clause for a composite key map.
func (t *Table[T]) keysWhere(keys map[string]int64) (string, []any, error) {
	if len(keys) == 0 {
		return "", nil, fmt.Errorf("table %s: empty key map", t.desc.Name)
	}
	names := make([]string, 0, len(keys))
	for name := range keys {
		if err := t.requireColumn(name); err != nil {
			return "", nil, err
		}
		names = append(names, name)
	}
	sort.Strings(names)

	conds := make([]string, len(names))
	args := make([]any, len(names))
	for i, name := range names {
		conds[i] = name + " = ?"
		args[i] = keys[name]
	}
	return strings.Join(conds, " AND "), args, nil
}

func describeKeys(keys map[string]int64) string {
	names := make([]string, 0, len(keys))
	for name := range keys {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s: %d", name, keys[name])
	}
	return strings.Join(parts, "; ")
}

// wrapConstraint maps storage-level constraint violations (uniqueness,
// foreign key) into the application taxonomy instead of leaking raw driver
// errors.
func (t *Table[T]) wrapConstraint(err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "constraint failed") {
		return apperr.Wrap(apperr.ConstraintViolation, err, "constraint violated on table %s", t.desc.Name)
	}
	return err
}

// GetAll returns every row, in insertion order. An empty table yields an
// empty slice, never an error.
func (t *Table[T]) GetAll(ctx context.Context) ([]T, error) {
	rows, err := t.db.conn.QueryContext(ctx,
		fmt.Sprintf(`SELECT %s FROM %s`, t.selectList, t.desc.Name))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		var rec T
		if err := rows.Scan(t.refs(&rec)...); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// GetByID returns the row with the given surrogate id.
func (t *Table[T]) GetByID(ctx context.Context, id int64) (T, error) {
	var rec T
	if t.idColumn == "" {
		return rec, fmt.Errorf("table %s has no surrogate id", t.desc.Name)
	}
	err := t.db.conn.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT %s FROM %s WHERE %s = ?`, t.selectList, t.desc.Name, t.idColumn), id).
		Scan(t.refs(&rec)...)
	if errors.Is(err, sql.ErrNoRows) {
		return rec, apperr.New(apperr.RecordNotFound, "no record with an id of %d in %s", id, t.desc.Name)
	}
	return rec, err
}

// GetByKeys returns the row identified by the composite key map.
func (t *Table[T]) GetByKeys(ctx context.Context, keys map[string]int64) (T, error) {
	var rec T
	where, args, err := t.keysWhere(keys)
	if err != nil {
		return rec, err
	}
	err = t.db.conn.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT %s FROM %s WHERE %s`, t.selectList, t.desc.Name, where), args...).
		Scan(t.refs(&rec)...)
	if errors.Is(err, sql.ErrNoRows) {
		return rec, apperr.New(apperr.RecordNotFound, "no record with the ids of %s in %s", describeKeys(keys), t.desc.Name)
	}
	return rec, err
}

// GetByField returns the first row whose field matches value.
func (t *Table[T]) GetByField(ctx context.Context, field string, value any) (T, error) {
	var rec T
	if err := t.requireColumn(field); err != nil {
		return rec, err
	}
	err := t.db.conn.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT %s FROM %s WHERE %s = ? LIMIT 1`, t.selectList, t.desc.Name, field), value).
		Scan(t.refs(&rec)...)
	if errors.Is(err, sql.ErrNoRows) {
		return rec, apperr.New(apperr.RecordNotFound, "no record with %s of %v in %s", field, value, t.desc.Name)
	}
	return rec, err
}

// GetManyByField returns every row whose field matches value. Unlike
// GetAll this treats an empty result as RecordNotFound; callers that want
// empty-is-ok semantics translate the error themselves.
func (t *Table[T]) GetManyByField(ctx context.Context, field string, value any) ([]T, error) {
	if err := t.requireColumn(field); err != nil {
		return nil, err
	}
	rows, err := t.db.conn.QueryContext(ctx,
		fmt.Sprintf(`SELECT %s FROM %s WHERE %s = ?`, t.selectList, t.desc.Name, field), value)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		var rec T
		if err := rows.Scan(t.refs(&rec)...); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, apperr.New(apperr.RecordNotFound, "no record with %s of %v in %s", field, value, t.desc.Name)
	}
	return out, nil
}

// NextID returns max(id)+1, or 0 for an empty table. Callers inside this
// package use nextIDLocked under the write mutex; the exported form is for
// inspection only and is not a reservation.
func (t *Table[T]) NextID(ctx context.Context) (int64, error) {
	return t.nextIDLocked(ctx)
}

func (t *Table[T]) nextIDLocked(ctx context.Context) (int64, error) {
	if t.idColumn == "" {
		return 0, fmt.Errorf("table %s has no surrogate id", t.desc.Name)
	}
	var id int64
	err := t.db.conn.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT %s FROM %s ORDER BY %s DESC LIMIT 1`, t.idColumn, t.desc.Name, t.idColumn)).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return id + 1, nil
}

// Count returns the total row count.
func (t *Table[T]) Count(ctx context.Context) (int64, error) {
	var n int64
	err := t.db.conn.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT COUNT(*) FROM %s`, t.desc.Name)).Scan(&n)
	return n, err
}

// Add assigns the next free id to rec under the write mutex, inserts it,
// and returns the freshly re-read row. Assigning and inserting under one
// lock closes the next-id race between concurrent writers.
func (t *Table[T]) Add(ctx context.Context, rec T) (T, error) {
	if t.idColumn == "" {
		var zero T
		return zero, fmt.Errorf("table %s requires AddWithKeys", t.desc.Name)
	}

	t.db.mu.Lock()
	defer t.db.mu.Unlock()

	id, err := t.nextIDLocked(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	*t.fieldRef(&rec, t.idColumn).(*int64) = id

	if err := t.insertLocked(ctx, &rec); err != nil {
		var zero T
		return zero, err
	}
	return t.GetByID(ctx, id)
}

// AddWithKeys inserts a composite-key record and returns the row re-read
// by its key map.
func (t *Table[T]) AddWithKeys(ctx context.Context, rec T, keys map[string]int64) (T, error) {
	t.db.mu.Lock()
	defer t.db.mu.Unlock()

	if err := t.insertLocked(ctx, &rec); err != nil {
		var zero T
		return zero, err
	}
	return t.GetByKeys(ctx, keys)
}

func (t *Table[T]) insertLocked(ctx context.Context, rec *T) error {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(t.fields)), ", ")
	_, err := t.db.conn.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`, t.desc.Name, t.selectList, placeholders),
		t.refs(rec)...)
	return t.wrapConstraint(err)
}

// Update reads the current row, applies merge to it, and rewrites the full
// row. Fields merge leaves alone therefore keep their stored values. The
// id cannot be changed by an update.
func (t *Table[T]) Update(ctx context.Context, id int64, merge func(*T)) (T, error) {
	t.db.mu.Lock()
	defer t.db.mu.Unlock()

	cur, err := t.GetByID(ctx, id)
	if err != nil {
		var zero T
		return zero, err
	}
	merge(&cur)
	*t.fieldRef(&cur, t.idColumn).(*int64) = id

	if err := t.rewriteLocked(ctx, &cur, t.idColumn+" = ?", []any{id}); err != nil {
		var zero T
		return zero, err
	}
	return t.GetByID(ctx, id)
}

// UpdateWithKeys is Update for composite-key rows. The key columns are
// reasserted after merge so the identity cannot drift.
func (t *Table[T]) UpdateWithKeys(ctx context.Context, keys map[string]int64, merge func(*T)) (T, error) {
	t.db.mu.Lock()
	defer t.db.mu.Unlock()
	return t.updateWithKeysLocked(ctx, keys, merge)
}

func (t *Table[T]) updateWithKeysLocked(ctx context.Context, keys map[string]int64, merge func(*T)) (T, error) {
	cur, err := t.GetByKeys(ctx, keys)
	if err != nil {
		var zero T
		return zero, err
	}
	merge(&cur)
	for name, value := range keys {
		*t.fieldRef(&cur, name).(*int64) = value
	}

	where, args, err := t.keysWhere(keys)
	if err != nil {
		var zero T
		return zero, err
	}
	if err := t.rewriteLocked(ctx, &cur, where, args); err != nil {
		var zero T
		return zero, err
	}
	return t.GetByKeys(ctx, keys)
}

func (t *Table[T]) rewriteLocked(ctx context.Context, rec *T, where string, whereArgs []any) error {
	sets := make([]string, len(t.fields))
	for i, f := range t.fields {
		sets[i] = f.Column + " = ?"
	}
	args := append(t.refs(rec), whereArgs...)
	_, err := t.db.conn.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET %s WHERE %s`, t.desc.Name, strings.Join(sets, ", "), where),
		args...)
	return t.wrapConstraint(err)
}

// Upsert inserts rec when no row matches keys, otherwise applies merge to
// the existing row. The existence check and the write happen under one
// hold of the write mutex, closing the check-then-write race.
func (t *Table[T]) Upsert(ctx context.Context, rec T, keys map[string]int64, merge func(*T)) (T, error) {
	t.db.mu.Lock()
	defer t.db.mu.Unlock()

	_, err := t.GetByKeys(ctx, keys)
	switch {
	case apperr.IsKind(err, apperr.RecordNotFound):
		if err := t.insertLocked(ctx, &rec); err != nil {
			var zero T
			return zero, err
		}
		return t.GetByKeys(ctx, keys)
	case err != nil:
		var zero T
		return zero, err
	default:
		return t.updateWithKeysLocked(ctx, keys, merge)
	}
}

// Delete removes the row with the given id, then re-queries to verify the
// deletion took effect. A row that is still present is an error, not a
// silent no-op.
func (t *Table[T]) Delete(ctx context.Context, id int64) error {
	if t.idColumn == "" {
		return fmt.Errorf("table %s requires DeleteWithKeys", t.desc.Name)
	}

	t.db.mu.Lock()
	defer t.db.mu.Unlock()

	_, err := t.db.conn.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE %s = ?`, t.desc.Name, t.idColumn), id)
	if err != nil {
		return t.wrapConstraint(err)
	}

	_, err = t.GetByID(ctx, id)
	if apperr.IsKind(err, apperr.RecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return apperr.New(apperr.RecordStillExists, "cannot delete record with id of %d from %s", id, t.desc.Name)
}

// DeleteWithKeys is Delete for composite-key rows.
func (t *Table[T]) DeleteWithKeys(ctx context.Context, keys map[string]int64) error {
	where, args, err := t.keysWhere(keys)
	if err != nil {
		return err
	}

	t.db.mu.Lock()
	defer t.db.mu.Unlock()

	_, err = t.db.conn.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE %s`, t.desc.Name, where), args...)
	if err != nil {
		return t.wrapConstraint(err)
	}

	_, err = t.GetByKeys(ctx, keys)
	if apperr.IsKind(err, apperr.RecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return apperr.New(apperr.RecordStillExists, "cannot delete record with keys of %s from %s", describeKeys(keys), t.desc.Name)
}
