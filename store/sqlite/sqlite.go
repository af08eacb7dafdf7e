/*
Package sqlite provides a SQLite-backed rota.Repository.

PURPOSE:
  Persists the configuration the schedule engine reads: the roster, the
  holiday registry, manual day events and the history of posts seen on
  imported rosters. Schedules themselves are never stored; they are pure
  functions of a Snapshot.

KEY TABLES:
  employees:      Roster, keyed by name
  holidays:       Recurring holiday definitions (registration date + scope)
  holiday_posts:  Posts entitled to a LOCAL holiday
  cities:         Cities; LOCAL holidays may be bound to one
  city_posts:     Posts of each city (a post belongs to at most one city)
  manual_events:  One REST/HOLIDAY override per (employee, date)
  posts:          Distinct posts seen across imports

SNAPSHOTS:
  Snapshot reads all tables inside one SQL transaction so a batch never sees
  a half-applied roster import. Rows that fail to parse (bad date, unknown
  scope or event kind) are left out and listed in Snapshot.Warnings.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety and a single connection, which keeps
  ":memory:" databases shared across calls.

USAGE:
  store, err := sqlite.New("./data/rota.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - rota/store.go: Repository interface
  - store/memory/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/rota-engine/generic"
	"github.com/warp/rota-engine/rota"
)

// Store implements rota.Repository using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ rota.Repository = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Roster
	CREATE TABLE IF NOT EXISTS employees (
		name TEXT PRIMARY KEY,
		post TEXT NOT NULL DEFAULT '',
		admission TEXT,
		rotation TEXT NOT NULL,
		anchor TEXT,
		registration TEXT NOT NULL DEFAULT '',
		tax_id TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL DEFAULT '',
		branch TEXT NOT NULL DEFAULT '',
		branch_tax_id TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		city TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_employees_post
		ON employees(post);

	-- Holiday registry. rowid keeps insertion order for equal registrations.
	CREATE TABLE IF NOT EXISTS holidays (
		id TEXT PRIMARY KEY,
		registered TEXT NOT NULL,
		name TEXT NOT NULL,
		scope TEXT NOT NULL,
		city TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_holidays_registered
		ON holidays(registered);

	CREATE TABLE IF NOT EXISTS holiday_posts (
		holiday_id TEXT NOT NULL REFERENCES holidays(id) ON DELETE CASCADE,
		post TEXT NOT NULL,
		PRIMARY KEY (holiday_id, post)
	);

	-- Cities
	CREATE TABLE IF NOT EXISTS cities (
		name TEXT PRIMARY KEY,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS city_posts (
		city TEXT NOT NULL REFERENCES cities(name) ON DELETE CASCADE,
		post TEXT NOT NULL,
		PRIMARY KEY (city, post)
	);

	-- Manual events
	CREATE TABLE IF NOT EXISTS manual_events (
		employee TEXT NOT NULL,
		date TEXT NOT NULL,
		kind TEXT NOT NULL,
		created_at TEXT NOT NULL,
		PRIMARY KEY (employee, date)
	);

	-- Posts history
	CREATE TABLE IF NOT EXISTS posts (
		name TEXT PRIMARY KEY,
		first_seen TEXT NOT NULL
	);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	// Databases created before cities existed lack holidays.city.
	return s.addColumn("holidays", "city", "TEXT NOT NULL DEFAULT ''")
}

// addColumn adds a column unless the table already has it.
func (s *Store) addColumn(table, column, definition string) error {
	rows, err := s.db.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid, notNull, pk int
			name, typ        string
			dflt             sql.NullString
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &pk); err != nil {
			return err
		}
		if name == column {
			return nil
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	rows.Close()

	_, err = s.db.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, definition))
	return err
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// =============================================================================
// SNAPSHOT (rota.ConfigStore interface)
// =============================================================================

// Snapshot loads the whole configuration in one read transaction.
func (s *Store) Snapshot(ctx context.Context) (rota.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return rota.Snapshot{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var snap rota.Snapshot

	emps, warnings, err := s.queryEmployees(ctx, tx, selectEmployees+" ORDER BY name")
	if err != nil {
		return rota.Snapshot{}, err
	}
	snap.Employees = emps
	snap.Warnings = append(snap.Warnings, warnings...)

	holidays, warnings, err := s.queryHolidays(ctx, tx)
	if err != nil {
		return rota.Snapshot{}, err
	}
	defs := make([]rota.HolidayDefinition, len(holidays))
	for i, h := range holidays {
		defs[i] = h.HolidayDefinition
	}
	snap.Holidays = rota.NewHolidayRegistry(defs...)
	snap.Warnings = append(snap.Warnings, warnings...)

	events, warnings, err := s.queryEvents(ctx, tx, "SELECT employee, date, kind FROM manual_events ORDER BY employee, date")
	if err != nil {
		return rota.Snapshot{}, err
	}
	snap.Events = rota.NewEventBook(events...)
	snap.Warnings = append(snap.Warnings, warnings...)

	return snap, tx.Commit()
}

// =============================================================================
// EMPLOYEES
// =============================================================================

const selectEmployees = `
	SELECT name, post, admission, rotation, anchor,
	       registration, tax_id, role, branch, branch_tax_id, address, city
	FROM employees`

// SaveEmployee inserts or replaces an employee by name.
func (s *Store) SaveEmployee(ctx context.Context, emp rota.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return saveEmployee(ctx, s.db, emp)
}

// SaveEmployees upserts a whole roster atomically.
func (s *Store) SaveEmployees(ctx context.Context, emps []rota.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, emp := range emps {
		if err := saveEmployee(ctx, tx, emp); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func saveEmployee(ctx context.Context, db querier, emp rota.Employee) error {
	query := `
		INSERT INTO employees
		(name, post, admission, rotation, anchor,
		 registration, tax_id, role, branch, branch_tax_id, address, city,
		 created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			post = excluded.post,
			admission = excluded.admission,
			rotation = excluded.rotation,
			anchor = excluded.anchor,
			registration = excluded.registration,
			tax_id = excluded.tax_id,
			role = excluded.role,
			branch = excluded.branch,
			branch_tax_id = excluded.branch_tax_id,
			address = excluded.address,
			city = excluded.city,
			updated_at = excluded.updated_at
	`

	now := time.Now().UTC().Format(time.RFC3339)
	p := emp.Profile
	_, err := db.ExecContext(ctx, query,
		emp.Name, emp.Post, nullDate(emp.Admission), string(emp.Rotation), nullDate(emp.Anchor),
		p.Registration, p.TaxID, p.Role, p.Branch, p.BranchTaxID, p.Address, p.City,
		now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to save employee %s: %w", emp.Name, err)
	}
	return nil
}

// GetEmployee retrieves an employee by name.
func (s *Store) GetEmployee(ctx context.Context, name string) (rota.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	emps, warnings, err := s.queryEmployees(ctx, s.db, selectEmployees+" WHERE name = ?", name)
	if err != nil {
		return rota.Employee{}, err
	}
	if len(emps) == 0 {
		if len(warnings) > 0 {
			return rota.Employee{}, fmt.Errorf("employee %s: %s", name, warnings[0])
		}
		return rota.Employee{}, fmt.Errorf("%w: %s", generic.ErrEmployeeNotFound, name)
	}
	return emps[0], nil
}

// ListEmployees returns all employees sorted by name.
func (s *Store) ListEmployees(ctx context.Context) ([]rota.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	emps, _, err := s.queryEmployees(ctx, s.db, selectEmployees+" ORDER BY name")
	return emps, err
}

// DeleteEmployee removes an employee and their manual events.
func (s *Store) DeleteEmployee(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "DELETE FROM employees WHERE name = ?", name)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", generic.ErrEmployeeNotFound, name)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM manual_events WHERE employee = ?", name); err != nil {
		return err
	}
	return tx.Commit()
}

// queryEmployees scans employee rows. Rows with an unparseable admission
// are skipped; an unparseable first rest day is dropped. Both are described
// in the returned warnings.
func (s *Store) queryEmployees(ctx context.Context, db querier, query string, args ...any) ([]rota.Employee, []string, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var (
		employees []rota.Employee
		warnings  []string
	)
	for rows.Next() {
		var (
			emp               rota.Employee
			rotation          string
			admission, anchor sql.NullString
		)
		p := &emp.Profile
		if err := rows.Scan(&emp.Name, &emp.Post, &admission, &rotation, &anchor,
			&p.Registration, &p.TaxID, &p.Role, &p.Branch, &p.BranchTaxID, &p.Address, &p.City); err != nil {
			return nil, nil, err
		}
		emp.Rotation = rota.Variant(rotation)
		if emp.Admission, err = parseNullDate(admission); err != nil {
			warnings = append(warnings, fmt.Sprintf("employee %s: admission: %v", emp.Name, err))
			continue
		}
		if emp.Anchor, err = parseNullDate(anchor); err != nil {
			// Without an anchor the rotation aligns on the period start.
			warnings = append(warnings, fmt.Sprintf("employee %s: first rest day ignored: %v", emp.Name, err))
			emp.Anchor = nil
		}
		employees = append(employees, emp)
	}
	return employees, warnings, rows.Err()
}

// =============================================================================
// HOLIDAYS
// =============================================================================

// SaveHoliday inserts or replaces a holiday and its entitled posts.
func (s *Store) SaveHoliday(ctx context.Context, h rota.HolidayRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO holidays (id, registered, name, scope, city, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			registered = excluded.registered,
			name = excluded.name,
			scope = excluded.scope,
			city = excluded.city
	`
	_, err = tx.ExecContext(ctx, query,
		h.ID, h.Registered.String(), h.Name, string(h.Scope), h.City,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save holiday: %w", err)
	}

	if err := replaceHolidayPosts(ctx, tx, h.ID, h.Posts); err != nil {
		return err
	}
	return tx.Commit()
}

func replaceHolidayPosts(ctx context.Context, db querier, id string, posts []string) error {
	if _, err := db.ExecContext(ctx, "DELETE FROM holiday_posts WHERE holiday_id = ?", id); err != nil {
		return err
	}
	for _, post := range posts {
		_, err := db.ExecContext(ctx,
			"INSERT OR IGNORE INTO holiday_posts (holiday_id, post) VALUES (?, ?)", id, post)
		if err != nil {
			return fmt.Errorf("failed to save holiday post: %w", err)
		}
	}
	return nil
}

// ListHolidays returns holidays in registry order.
func (s *Store) ListHolidays(ctx context.Context) ([]rota.HolidayRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	holidays, _, err := s.queryHolidays(ctx, s.db)
	return holidays, err
}

// DeleteHoliday deletes a holiday by ID.
func (s *Store) DeleteHoliday(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM holidays WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", generic.ErrHolidayNotFound, id)
	}
	return nil
}

func (s *Store) queryHolidays(ctx context.Context, db querier) ([]rota.HolidayRecord, []string, error) {
	posts, err := s.holidayPosts(ctx, db)
	if err != nil {
		return nil, nil, err
	}

	rows, err := db.QueryContext(ctx,
		"SELECT id, registered, name, scope, city FROM holidays ORDER BY registered, rowid")
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var (
		holidays []rota.HolidayRecord
		warnings []string
	)
	for rows.Next() {
		var id, registered, name, scope, city string
		if err := rows.Scan(&id, &registered, &name, &scope, &city); err != nil {
			return nil, nil, err
		}
		d, err := generic.ParseDate(registered)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("holiday %s: %v", id, err))
			continue
		}
		sc, err := rota.ParseScope(scope)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("holiday %s: %v", id, err))
			continue
		}
		holidays = append(holidays, rota.HolidayRecord{
			ID:   id,
			City: city,
			HolidayDefinition: rota.HolidayDefinition{
				Registered: d,
				Name:       name,
				Scope:      sc,
				Posts:      posts[id],
			},
		})
	}
	return holidays, warnings, rows.Err()
}

func (s *Store) holidayPosts(ctx context.Context, db querier) (map[string][]string, error) {
	rows, err := db.QueryContext(ctx, "SELECT holiday_id, post FROM holiday_posts ORDER BY holiday_id, post")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]string)
	for rows.Next() {
		var id, post string
		if err := rows.Scan(&id, &post); err != nil {
			return nil, err
		}
		out[id] = append(out[id], post)
	}
	return out, rows.Err()
}

// =============================================================================
// CITIES
// =============================================================================

// SaveCity inserts or replaces a city, then copies its posts onto every
// LOCAL holiday bound to it, in one transaction.
func (s *Store) SaveCity(ctx context.Context, c rota.City) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO cities (name, created_at) VALUES (?, ?) ON CONFLICT(name) DO NOTHING",
		c.Name, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save city %s: %w", c.Name, err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM city_posts WHERE city = ?", c.Name); err != nil {
		return err
	}
	for _, post := range c.Posts {
		if _, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO city_posts (city, post) VALUES (?, ?)", c.Name, post); err != nil {
			return fmt.Errorf("failed to save city post: %w", err)
		}
	}

	bound, err := boundHolidays(ctx, tx, c.Name)
	if err != nil {
		return err
	}
	for _, id := range bound {
		if err := replaceHolidayPosts(ctx, tx, id, c.Posts); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func boundHolidays(ctx context.Context, db querier, city string) ([]string, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT id FROM holidays WHERE city = ? AND scope = ?", city, string(rota.ScopeLocal))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// GetCity retrieves a city and its posts.
func (s *Store) GetCity(ctx context.Context, name string) (rota.City, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cities, err := s.queryCities(ctx, "WHERE c.name = ?", name)
	if err != nil {
		return rota.City{}, err
	}
	if len(cities) == 0 {
		return rota.City{}, fmt.Errorf("%w: %s", generic.ErrCityNotFound, name)
	}
	return cities[0], nil
}

// ListCities returns cities sorted by name.
func (s *Store) ListCities(ctx context.Context) ([]rota.City, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryCities(ctx, "")
}

func (s *Store) queryCities(ctx context.Context, where string, args ...any) ([]rota.City, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.name, p.post
		FROM cities c LEFT JOIN city_posts p ON p.city = c.name
		`+where+`
		ORDER BY c.name, p.post`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cities []rota.City
	for rows.Next() {
		var (
			name string
			post sql.NullString
		)
		if err := rows.Scan(&name, &post); err != nil {
			return nil, err
		}
		if n := len(cities); n == 0 || cities[n-1].Name != name {
			cities = append(cities, rota.City{Name: name, Posts: []string{}})
		}
		if post.Valid {
			last := &cities[len(cities)-1]
			last.Posts = append(last.Posts, post.String)
		}
	}
	return cities, rows.Err()
}

// DeleteCity removes a city and unbinds its holidays.
func (s *Store) DeleteCity(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "DELETE FROM cities WHERE name = ?", name)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", generic.ErrCityNotFound, name)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM city_posts WHERE city = ?", name); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "UPDATE holidays SET city = '' WHERE city = ?", name); err != nil {
		return err
	}
	return tx.Commit()
}

// =============================================================================
// MANUAL EVENTS
// =============================================================================

// SetEvent inserts or replaces the event for (employee, date).
func (s *Store) SetEvent(ctx context.Context, e rota.ManualEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return setEvent(ctx, s.db, e)
}

// SetEvents upserts several events in one transaction.
func (s *Store) SetEvents(ctx context.Context, events []rota.ManualEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, e := range events {
		if err := setEvent(ctx, tx, e); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func setEvent(ctx context.Context, db querier, e rota.ManualEvent) error {
	query := `
		INSERT INTO manual_events (employee, date, kind, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(employee, date) DO UPDATE SET
			kind = excluded.kind
	`
	_, err := db.ExecContext(ctx, query,
		e.Employee, e.Date.String(), string(e.Kind),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save event %s/%s: %w", e.Employee, e.Date, err)
	}
	return nil
}

// DeleteEvent removes the event for (employee, date), if any.
func (s *Store) DeleteEvent(ctx context.Context, employee string, d generic.Date) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"DELETE FROM manual_events WHERE employee = ? AND date = ?", employee, d.String())
	return err
}

// ListEvents returns an employee's events by date.
func (s *Store) ListEvents(ctx context.Context, employee string) ([]rota.ManualEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events, _, err := s.queryEvents(ctx, s.db,
		"SELECT employee, date, kind FROM manual_events WHERE employee = ? ORDER BY date", employee)
	return events, err
}

func (s *Store) queryEvents(ctx context.Context, db querier, query string, args ...any) ([]rota.ManualEvent, []string, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var (
		events   []rota.ManualEvent
		warnings []string
	)
	for rows.Next() {
		var employee, date, kind string
		if err := rows.Scan(&employee, &date, &kind); err != nil {
			return nil, nil, err
		}
		d, err := generic.ParseDate(date)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("event %s/%s: %v", employee, date, err))
			continue
		}
		k, err := rota.ParseEventKind(kind)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("event %s/%s: %v", employee, date, err))
			continue
		}
		events = append(events, rota.ManualEvent{Employee: employee, Date: d, Kind: k})
	}
	return events, warnings, rows.Err()
}

// =============================================================================
// POSTS
// =============================================================================

// AddPosts records posts. Known posts keep their first-seen time.
func (s *Store) AddPosts(ctx context.Context, posts ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, p := range posts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx,
			"INSERT OR IGNORE INTO posts (name, first_seen) VALUES (?, ?)", p, now); err != nil {
			return fmt.Errorf("failed to save post: %w", err)
		}
	}
	return nil
}

// ListPosts returns every known post sorted by name.
func (s *Store) ListPosts(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT name FROM posts ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// Reset clears all data.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		DELETE FROM manual_events;
		DELETE FROM holiday_posts;
		DELETE FROM holidays;
		DELETE FROM city_posts;
		DELETE FROM cities;
		DELETE FROM employees;
		DELETE FROM posts;
	`)
	return err
}

// Helper functions

func nullDate(d *generic.Date) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func parseNullDate(ns sql.NullString) (*generic.Date, error) {
	if !ns.Valid || strings.TrimSpace(ns.String) == "" {
		return nil, nil
	}
	d, err := generic.ParseDate(ns.String)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
