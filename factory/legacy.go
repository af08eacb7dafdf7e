/*
Package factory converts the legacy JSON store into engine configuration.

PURPOSE:
  Before this service, rosters were kept by a desktop tool in a single
  JSON file (escalas_store.json). The factory reads that file into a
  rota.Snapshot so existing installations can be migrated with
  `rota import legacy`, and writes snapshots back in the same shape.

JSON SCHEMA (only the keys the engine needs):
  {
    "funcionarios": [
      {"nome": "MARIA", "posto": "SHOPPING", "admissao": "2024-02-15",
       "matricula": "123", "cpf": "...", "funcao": "...", "filial": "...",
       "cnpj": "...", "endereco": "...", "cidade": "..."}
    ],
    "global_holidays":      {"2020-11-20": "Consciência Negra"},
    "holiday_type":         {"2020-11-20": "LOCAL"},
    "holiday_postos":       {"2020-11-20": ["SHOPPING"]},
    "emp_scale_choice":     {"MARIA": "5X1"},
    "emp_first_off":        {"MARIA": "2025-01-06"},
    "emp_faltas_atestados": {"MARIA": {"2025-03-10": "FOLGA"}},
    "all_postos_historico": ["SHOPPING"],
    "cidades":              {"RECIFE": ["shopping"]},
    "holiday_cidades":      {"2020-11-20": "RECIFE"}
  }

KEY FEATURES:
  - Scalar fields may be strings, numbers or null
  - Missing holiday_type means NACIONAL
  - Missing emp_scale_choice uses the factory's default rotation
  - Names, posts and cities are matched trimmed and upper-cased on both
    sides, so "Maria" in funcionarios finds "maria " in emp_scale_choice
  - A LOCAL holiday bound to a known city keeps the binding
  - Malformed entries are skipped and listed in Snapshot.Warnings
  - Holiday ids are derived from the date key, so re-imports upsert

USAGE:
  f := NewStoreFactory(rota.SixOneFixed)
  imp, err := f.ParseStore(data)
  for _, w := range imp.Snapshot.Warnings { ... }

SEE ALSO:
  - rota/store.go: Snapshot
  - cmd/rota/import.go: CLI entry point
*/
package factory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/warp/rota-engine/generic"
	"github.com/warp/rota-engine/rota"
	"github.com/warp/rota-engine/roster"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// StoreJSON is the legacy store file.
type StoreJSON struct {
	Employees    []EmployeeJSON               `json:"funcionarios"`
	Holidays     map[string]string            `json:"global_holidays"`
	HolidayType  map[string]string            `json:"holiday_type"`
	HolidayPosts map[string][]string          `json:"holiday_postos"`
	Rotations    map[string]string            `json:"emp_scale_choice"`
	FirstRest    map[string]string            `json:"emp_first_off"`
	Events       map[string]map[string]string `json:"emp_faltas_atestados"`
	PostHistory  []string                     `json:"all_postos_historico,omitempty"`
	Cities       map[string][]string          `json:"cidades,omitempty"`
	HolidayCity  map[string]string            `json:"holiday_cidades,omitempty"`
}

// EmployeeJSON is one roster entry.
type EmployeeJSON struct {
	Name         Loose `json:"nome"`
	Registration Loose `json:"matricula"`
	Admission    Loose `json:"admissao"`
	Role         Loose `json:"funcao"`
	Branch       Loose `json:"filial"`
	BranchTaxID  Loose `json:"cnpj"`
	Address      Loose `json:"endereco"`
	City         Loose `json:"cidade"`
	TaxID        Loose `json:"cpf"`
	Post         Loose `json:"posto"`
}

// Loose is a string field that also accepts JSON numbers and null.
type Loose string

func (l *Loose) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*l = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*l = Loose(s)
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("expected string or number, got %s", b)
		}
		*l = Loose(n.String())
	}
	return nil
}

func (l Loose) String() string { return strings.TrimSpace(string(l)) }

// =============================================================================
// STORE FACTORY
// =============================================================================

// Import is a converted legacy store.
type Import struct {
	Snapshot rota.Snapshot
	// Holidays carry the ids the snapshot's registry does not.
	Holidays []rota.HolidayRecord
	Events   []rota.ManualEvent
	Posts    []string
	Cities   []rota.City
}

// StoreFactory converts legacy store files.
type StoreFactory struct {
	DefaultRotation rota.Variant
}

// NewStoreFactory creates a factory. Employees without a rotation choice
// get defaultRotation.
func NewStoreFactory(defaultRotation rota.Variant) *StoreFactory {
	if !defaultRotation.Valid() {
		defaultRotation = rota.DefaultVariant
	}
	return &StoreFactory{DefaultRotation: defaultRotation}
}

// ParseStore parses the legacy file contents.
func (f *StoreFactory) ParseStore(data []byte) (*Import, error) {
	var sj StoreJSON
	if err := json.Unmarshal(data, &sj); err != nil {
		return nil, fmt.Errorf("%w: failed to parse legacy store: %v", generic.ErrInvalidImport, err)
	}
	return f.FromJSON(sj), nil
}

// FromJSON converts a StoreJSON. It never fails; bad entries become warnings.
func (f *StoreFactory) FromJSON(sj StoreJSON) *Import {
	imp := &Import{}
	warn := func(format string, args ...any) {
		imp.Snapshot.Warnings = append(imp.Snapshot.Warnings, fmt.Sprintf(format, args...))
	}

	rotations := normalizedKeys("emp_scale_choice", sj.Rotations, warn)
	firstRest := normalizedKeys("emp_first_off", sj.FirstRest, warn)

	// Employees keep file order; a repeated name replaces the earlier entry.
	byName := make(map[string]int)
	for i, ej := range sj.Employees {
		name := rota.NormalizeName(ej.Name.String())
		if name == "" {
			warn("funcionarios[%d]: missing name", i)
			continue
		}
		emp := rota.Employee{
			Name:     name,
			Post:     rota.NormalizeName(ej.Post.String()),
			Rotation: f.rotation(name, rotations, warn),
			Profile: rota.Profile{
				Registration: ej.Registration.String(),
				TaxID:        ej.TaxID.String(),
				Role:         strings.ToUpper(ej.Role.String()),
				Branch:       strings.ToUpper(ej.Branch.String()),
				BranchTaxID:  ej.BranchTaxID.String(),
				Address:      strings.ToUpper(ej.Address.String()),
				City:         strings.ToUpper(ej.City.String()),
			},
		}
		if s := ej.Admission.String(); s != "" {
			if d, err := roster.ParseCellDate(s); err != nil {
				warn("funcionarios[%d] %s: admission: %v", i, name, err)
			} else {
				emp.Admission = &d
			}
		}
		if s := strings.TrimSpace(firstRest[name]); s != "" {
			if d, err := roster.ParseCellDate(s); err != nil {
				warn("emp_first_off %s: %v", name, err)
			} else {
				emp.Anchor = &d
			}
		}

		if prev, ok := byName[name]; ok {
			warn("funcionarios[%d]: duplicate name %s, earlier entry replaced", i, name)
			imp.Snapshot.Employees[prev] = emp
			continue
		}
		byName[name] = len(imp.Snapshot.Employees)
		imp.Snapshot.Employees = append(imp.Snapshot.Employees, emp)
	}

	imp.Cities = f.cities(sj, warn)
	imp.Holidays = f.holidays(sj, imp.Cities, warn)
	defs := make([]rota.HolidayDefinition, len(imp.Holidays))
	for i, h := range imp.Holidays {
		defs[i] = h.HolidayDefinition
	}
	imp.Snapshot.Holidays = rota.NewHolidayRegistry(defs...)

	imp.Events = f.events(sj, warn)
	imp.Snapshot.Events = rota.NewEventBook(imp.Events...)

	imp.Posts = f.posts(sj, imp.Snapshot.Employees)
	return imp
}

func (f *StoreFactory) rotation(name string, choices map[string]string, warn func(string, ...any)) rota.Variant {
	choice, ok := choices[name]
	if !ok || strings.TrimSpace(choice) == "" {
		return f.DefaultRotation
	}
	v, known := rota.LookupVariant(choice)
	if !known {
		warn("emp_scale_choice %s: unknown rotation %q, using %s", name, choice, rota.DefaultVariant)
		return rota.DefaultVariant
	}
	return v
}

// normalizedKeys re-keys a per-employee map by normalized name. When two
// keys collapse to one name the later key in sorted order wins.
func normalizedKeys(field string, m map[string]string, warn func(string, ...any)) map[string]string {
	out := make(map[string]string, len(m))
	from := make(map[string]string, len(m))
	for _, key := range sortedKeys(m) {
		name := rota.NormalizeName(key)
		if name == "" {
			continue
		}
		if prev, ok := from[name]; ok {
			warn("%s: %q and %q name the same employee, using %q", field, prev, key, key)
		}
		out[name] = m[key]
		from[name] = key
	}
	return out
}

// cities merges city names that differ only in case or spacing. A post
// listed under two cities stays with the first in name order.
func (f *StoreFactory) cities(sj StoreJSON, warn func(string, ...any)) []rota.City {
	merged := make(map[string][]string)
	for _, key := range sortedKeys(sj.Cities) {
		name := rota.NormalizeName(key)
		if name == "" {
			warn("cidades: empty city name")
			continue
		}
		merged[name] = append(merged[name], sj.Cities[key]...)
	}

	owner := make(map[string]string)
	out := make([]rota.City, 0, len(merged))
	for _, name := range sortedKeys(merged) {
		c := rota.City{Name: name, Posts: []string{}}
		for _, p := range rota.NormalizePosts(merged[name]) {
			if other, taken := owner[p]; taken {
				warn("cidades %s: post %s already belongs to %s", name, p, other)
				continue
			}
			owner[p] = name
			c.Posts = append(c.Posts, p)
		}
		out = append(out, c)
	}
	return out
}

func (f *StoreFactory) holidays(sj StoreJSON, cities []rota.City, warn func(string, ...any)) []rota.HolidayRecord {
	cityPosts := make(map[string][]string, len(cities))
	for _, c := range cities {
		cityPosts[c.Name] = c.Posts
	}

	keys := sortedKeys(sj.Holidays)
	out := make([]rota.HolidayRecord, 0, len(keys))
	for _, key := range keys {
		d, err := generic.ParseDate(key)
		if err != nil {
			warn("global_holidays %q: %v", key, err)
			continue
		}
		scope, err := rota.ParseScope(sj.HolidayType[key])
		if err != nil {
			warn("holiday_type %q: %v", key, err)
			continue
		}
		h := rota.HolidayRecord{
			ID: LegacyHolidayID(key),
			HolidayDefinition: rota.HolidayDefinition{
				Registered: d,
				Name:       strings.TrimSpace(sj.Holidays[key]),
				Scope:      scope,
			},
		}
		if scope == rota.ScopeLocal {
			h.Posts = rota.NormalizePosts(sj.HolidayPosts[key])
			if city := rota.NormalizeName(sj.HolidayCity[key]); city != "" {
				posts, known := cityPosts[city]
				switch {
				case !known:
					warn("holiday_cidades %q: unknown city %s, binding dropped", key, city)
				case len(h.Posts) == 0:
					h.City, h.Posts = city, append([]string(nil), posts...)
				default:
					h.City = city
				}
			}
		}
		out = append(out, h)
	}
	return out
}

func (f *StoreFactory) events(sj StoreJSON, warn func(string, ...any)) []rota.ManualEvent {
	var out []rota.ManualEvent
	for _, name := range sortedKeys(sj.Events) {
		days := sj.Events[name]
		for _, key := range sortedKeys(days) {
			d, err := roster.ParseCellDate(key)
			if err != nil {
				warn("emp_faltas_atestados %s %q: %v", name, key, err)
				continue
			}
			kind, err := rota.ParseEventKind(days[key])
			if err != nil {
				warn("emp_faltas_atestados %s %s: %v", name, key, err)
				continue
			}
			out = append(out, rota.ManualEvent{Employee: rota.NormalizeName(name), Date: d, Kind: kind})
		}
	}
	return out
}

// posts merges the post history, city post lists and roster posts,
// dropping CPF-looking values.
func (f *StoreFactory) posts(sj StoreJSON, emps []rota.Employee) []string {
	seen := make(map[string]bool)
	add := func(p string) {
		p = rota.NormalizeName(p)
		if p != "" && !roster.IsTaxIDLike(p) {
			seen[p] = true
		}
	}
	for _, p := range sj.PostHistory {
		add(p)
	}
	for _, ps := range sj.Cities {
		for _, p := range ps {
			add(p)
		}
	}
	for _, e := range emps {
		add(e.Post)
	}
	return sortedKeys(seen)
}

// Apply writes the converted configuration into repo. Holidays and events
// upsert by id and (employee, date), so applying the same file twice is a
// no-op. Cities go first so the holidays' own post lists are what remains.
func (imp *Import) Apply(ctx context.Context, repo rota.Repository) error {
	if err := repo.SaveEmployees(ctx, imp.Snapshot.Employees); err != nil {
		return fmt.Errorf("failed to save employees: %w", err)
	}
	for _, c := range imp.Cities {
		if err := repo.SaveCity(ctx, c); err != nil {
			return fmt.Errorf("failed to save city %s: %w", c.Name, err)
		}
	}
	for _, h := range imp.Holidays {
		if err := repo.SaveHoliday(ctx, h); err != nil {
			return fmt.Errorf("failed to save holiday %s: %w", h.Registered, err)
		}
	}
	if err := repo.SetEvents(ctx, imp.Events); err != nil {
		return fmt.Errorf("failed to save events: %w", err)
	}
	if err := repo.AddPosts(ctx, imp.Posts...); err != nil {
		return fmt.Errorf("failed to save posts: %w", err)
	}
	return nil
}

// Export reads the whole configuration from repo in the legacy shape.
func (f *StoreFactory) Export(ctx context.Context, repo rota.Repository) (StoreJSON, error) {
	snap, err := repo.Snapshot(ctx)
	if err != nil {
		return StoreJSON{}, err
	}
	holidays, err := repo.ListHolidays(ctx)
	if err != nil {
		return StoreJSON{}, err
	}
	posts, err := repo.ListPosts(ctx)
	if err != nil {
		return StoreJSON{}, err
	}
	cities, err := repo.ListCities(ctx)
	if err != nil {
		return StoreJSON{}, err
	}
	var events []rota.ManualEvent
	for _, e := range snap.Employees {
		events = append(events, snap.Events.ForEmployee(e.Name)...)
	}
	return f.ToJSON(Config{
		Employees: snap.Employees,
		Holidays:  holidays,
		Events:    events,
		Posts:     posts,
		Cities:    cities,
	}), nil
}

// LegacyHolidayID derives a stable id from a legacy holiday date key.
func LegacyHolidayID(key string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("rota/holiday/"+key)).String()
}

// Config is everything ToJSON writes.
type Config struct {
	Employees []rota.Employee
	Holidays  []rota.HolidayRecord
	Events    []rota.ManualEvent
	Posts     []string
	Cities    []rota.City
}

// ToJSON converts configuration back into the legacy shape.
func (f *StoreFactory) ToJSON(cfg Config) StoreJSON {
	sj := StoreJSON{
		Holidays:     make(map[string]string),
		HolidayType:  make(map[string]string),
		HolidayPosts: make(map[string][]string),
		Rotations:    make(map[string]string),
		FirstRest:    make(map[string]string),
		Events:       make(map[string]map[string]string),
		PostHistory:  cfg.Posts,
		Cities:       make(map[string][]string),
		HolidayCity:  make(map[string]string),
	}
	for _, c := range cfg.Cities {
		sj.Cities[c.Name] = append([]string{}, c.Posts...)
	}
	for _, e := range cfg.Employees {
		ej := EmployeeJSON{
			Name:         Loose(e.Name),
			Registration: Loose(e.Profile.Registration),
			Role:         Loose(e.Profile.Role),
			Branch:       Loose(e.Profile.Branch),
			BranchTaxID:  Loose(e.Profile.BranchTaxID),
			Address:      Loose(e.Profile.Address),
			City:         Loose(e.Profile.City),
			TaxID:        Loose(e.Profile.TaxID),
			Post:         Loose(e.Post),
		}
		if e.Admission != nil {
			ej.Admission = Loose(e.Admission.String())
		}
		sj.Employees = append(sj.Employees, ej)
		sj.Rotations[e.Name] = e.Rotation.Label()
		if e.Anchor != nil {
			sj.FirstRest[e.Name] = e.Anchor.String()
		}
	}
	for _, h := range cfg.Holidays {
		key := h.Registered.String()
		sj.Holidays[key] = h.Name
		if h.Scope == rota.ScopeLocal {
			sj.HolidayType[key] = "LOCAL"
			sj.HolidayPosts[key] = h.Posts
			if h.City != "" {
				sj.HolidayCity[key] = h.City
			}
		} else {
			sj.HolidayType[key] = "NACIONAL"
		}
	}
	for _, ev := range cfg.Events {
		days, ok := sj.Events[ev.Employee]
		if !ok {
			days = make(map[string]string)
			sj.Events[ev.Employee] = days
		}
		days[ev.Date.String()] = legacyKind(ev.Kind)
	}
	return sj
}

func legacyKind(k rota.EventKind) string {
	if k == rota.EventHoliday {
		return "FERIADO"
	}
	return "FOLGA"
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
