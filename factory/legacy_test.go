package factory

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/rota-engine/generic"
	"github.com/warp/rota-engine/rota"
)

const legacyStore = `{
  "funcionarios": [
    {"nome": "maria silva", "posto": "shopping", "admissao": "15/02/2024", "matricula": 2024001, "cpf": "111.222.333-44"},
    {"nome": "JOAO", "posto": "123.456.789-00", "admissao": null},
    {"nome": "", "posto": "X"},
    {"nome": "CARLA", "admissao": "not a date"}
  ],
  "global_holidays": {"2020-11-20": "Consciência Negra", "2019-12-25": "Natal", "bad": "Quebrado"},
  "holiday_type": {"2020-11-20": "LOCAL"},
  "holiday_postos": {"2020-11-20": ["SHOPPING"], "2019-12-25": ["IGNORED"]},
  "emp_scale_choice": {"MARIA SILVA": "5X1", "JOAO": "6X1 (INTERCALADA)", "CARLA": "4x3"},
  "emp_first_off": {"MARIA SILVA": "2025-01-06", "JOAO": "05/01/2025"},
  "emp_faltas_atestados": {"MARIA SILVA": {"2025-03-10": "FOLGA", "2025-03-11": "FERIADO", "2025-03-12": "FALTA"}},
  "all_postos_historico": ["HOSPITAL", "987.654.321-00"],
  "cidades": {"RECIFE": ["PRAIA"]}
}`

func TestParseStore(t *testing.T) {
	// GIVEN: a legacy store with a few bad entries
	f := NewStoreFactory(rota.SixOneFixed)

	// WHEN: parsed
	imp, err := f.ParseStore([]byte(legacyStore))

	// THEN: good entries become configuration, bad ones warnings
	require.NoError(t, err)
	snap := imp.Snapshot

	require.Len(t, snap.Employees, 3)
	maria := snap.Employees[0]
	assert.Equal(t, "MARIA SILVA", maria.Name)
	assert.Equal(t, "SHOPPING", maria.Post)
	assert.Equal(t, "2024001", maria.Profile.Registration)
	assert.Equal(t, rota.FiveOne, maria.Rotation)
	assert.Equal(t, "2024-02-15", maria.Admission.String())
	assert.Equal(t, "2025-01-06", maria.Anchor.String())

	joao := snap.Employees[1]
	assert.Nil(t, joao.Admission)
	assert.Equal(t, rota.SixOneIntercalated, joao.Rotation)
	assert.Equal(t, "2025-01-05", joao.Anchor.String())

	carla := snap.Employees[2]
	assert.Nil(t, carla.Admission)
	assert.Equal(t, rota.FiveTwo, carla.Rotation, "unknown rotation names fall back to FIVE_TWO")

	require.Len(t, imp.Holidays, 2)
	assert.Equal(t, "Natal", imp.Holidays[0].Name)
	assert.Equal(t, rota.ScopeNational, imp.Holidays[0].Scope)
	assert.Empty(t, imp.Holidays[0].Posts)
	assert.Equal(t, rota.ScopeLocal, imp.Holidays[1].Scope)
	assert.Equal(t, []string{"SHOPPING"}, imp.Holidays[1].Posts)
	assert.Equal(t, LegacyHolidayID("2020-11-20"), imp.Holidays[1].ID)

	assert.Equal(t, 2, snap.Events.Len())
	kind, ok := snap.Events.Lookup("MARIA SILVA", generic.MustParseDate("2025-03-11"))
	require.True(t, ok)
	assert.Equal(t, rota.EventHoliday, kind)

	assert.Equal(t, []string{"HOSPITAL", "PRAIA", "SHOPPING"}, imp.Posts)

	// missing name, CARLA admission, CARLA rotation, bad holiday key, FALTA event
	assert.Len(t, snap.Warnings, 5)
}

func TestParseStore_DefaultRotation(t *testing.T) {
	imp, err := NewStoreFactory(rota.SixOneFixed).ParseStore([]byte(`{"funcionarios": [{"nome": "ANA"}]}`))
	require.NoError(t, err)
	require.Len(t, imp.Snapshot.Employees, 1)
	assert.Equal(t, rota.SixOneFixed, imp.Snapshot.Employees[0].Rotation)
	assert.Equal(t, 0, imp.Snapshot.Holidays.Len())
}

func TestParseStore_Invalid(t *testing.T) {
	_, err := NewStoreFactory(rota.FiveTwo).ParseStore([]byte(`{"funcionarios": {}}`))
	assert.ErrorIs(t, err, generic.ErrInvalidImport)
}

func TestLegacySchedule_MatchesEngine(t *testing.T) {
	// GIVEN: an imported store
	imp, err := NewStoreFactory(rota.SixOneFixed).ParseStore([]byte(legacyStore))
	require.NoError(t, err)
	period, err := generic.ParsePeriod("2025-11-01", "2025-11-30")
	require.NoError(t, err)

	// WHEN: a schedule is built from the snapshot
	maria, ok := imp.Snapshot.Employee("MARIA SILVA")
	require.True(t, ok)
	sched := rota.Build(imp.Snapshot.Request(period, maria))

	// THEN: the local holiday applies to her post
	rec, ok := sched.At(generic.MustParseDate("2025-11-20"))
	require.True(t, ok)
	assert.Equal(t, rota.Holiday, rec.Classification)
}

func TestToJSON_RoundTrip(t *testing.T) {
	f := NewStoreFactory(rota.SixOneFixed)
	imp, err := f.ParseStore([]byte(legacyStore))
	require.NoError(t, err)

	sj := f.ToJSON(Config{
		Employees: imp.Snapshot.Employees,
		Holidays:  imp.Holidays,
		Events:    imp.Events,
		Posts:     imp.Posts,
		Cities:    imp.Cities,
	})
	data, err := json.Marshal(sj)
	require.NoError(t, err)

	again, err := f.ParseStore(data)
	require.NoError(t, err)
	assert.Equal(t, imp.Snapshot.Employees, again.Snapshot.Employees)
	assert.Equal(t, imp.Holidays, again.Holidays)
	assert.Equal(t, imp.Events, again.Events)
	assert.Equal(t, imp.Cities, again.Cities)
	assert.Empty(t, again.Snapshot.Warnings)
}

func TestParseStore_MixedCaseKeys(t *testing.T) {
	// GIVEN: per-employee maps keyed exactly as typed in the old tool
	data := `{
	  "funcionarios": [
	    {"nome": "Maria", "posto": "Shopping"},
	    {"nome": "joão ", "posto": "shopping"}
	  ],
	  "global_holidays": {"2020-11-20": "Consciência Negra"},
	  "holiday_type": {"2020-11-20": "LOCAL"},
	  "holiday_postos": {"2020-11-20": ["Shopping"]},
	  "emp_scale_choice": {"Maria": "12X36", "joão": "5x2"},
	  "emp_first_off": {"Maria": "2025-11-19"},
	  "emp_faltas_atestados": {"Maria": {"2025-11-21": "FOLGA"}}
	}`

	// WHEN
	imp, err := NewStoreFactory(rota.SixOneFixed).ParseStore([]byte(data))

	// THEN: rotation, anchor, events and entitlement all reach the employee
	require.NoError(t, err)
	assert.Empty(t, imp.Snapshot.Warnings)

	maria, ok := imp.Snapshot.Employee("MARIA")
	require.True(t, ok)
	assert.Equal(t, "SHOPPING", maria.Post)
	assert.Equal(t, rota.TwelveThirtySix, maria.Rotation)
	require.NotNil(t, maria.Anchor)
	assert.Equal(t, "2025-11-19", maria.Anchor.String())

	kind, ok := imp.Snapshot.Events.Lookup("MARIA", generic.MustParseDate("2025-11-21"))
	require.True(t, ok)
	assert.Equal(t, rota.EventRest, kind)

	require.Len(t, imp.Holidays, 1)
	assert.Equal(t, []string{"SHOPPING"}, imp.Holidays[0].Posts)

	joao, ok := imp.Snapshot.Employee("JOÃO")
	require.True(t, ok)
	assert.Equal(t, rota.FiveTwo, joao.Rotation)
	period, err := generic.ParsePeriod("2025-11-01", "2025-11-30")
	require.NoError(t, err)
	rec, ok := rota.Build(imp.Snapshot.Request(period, joao)).At(generic.MustParseDate("2025-11-20"))
	require.True(t, ok)
	assert.Equal(t, rota.Holiday, rec.Classification)
}

func TestParseStore_CollidingKeysWarn(t *testing.T) {
	data := `{
	  "funcionarios": [{"nome": "ANA"}],
	  "emp_scale_choice": {"ANA": "5x1", "ana": "12x36"}
	}`

	imp, err := NewStoreFactory(rota.SixOneFixed).ParseStore([]byte(data))
	require.NoError(t, err)

	// "ANA" sorts before "ana", so the lower-case entry wins
	assert.Equal(t, rota.TwelveThirtySix, imp.Snapshot.Employees[0].Rotation)
	require.Len(t, imp.Snapshot.Warnings, 1)
	assert.Contains(t, imp.Snapshot.Warnings[0], "emp_scale_choice")
}

func TestParseStore_Cities(t *testing.T) {
	// GIVEN: cities with lower-case posts and holidays bound to them
	data := `{
	  "global_holidays": {"2020-12-08": "Conceição", "2020-06-24": "São João", "2020-01-25": "Aniversário"},
	  "holiday_type": {"2020-12-08": "LOCAL", "2020-06-24": "LOCAL", "2020-01-25": "LOCAL"},
	  "holiday_postos": {"2020-12-08": ["shopping recife"], "2020-01-25": ["praia"]},
	  "cidades": {"Recife": ["shopping recife", "hospital"], "OLINDA": ["hospital", "alto da sé"]},
	  "holiday_cidades": {"2020-12-08": "RECIFE", "2020-06-24": "Olinda", "2020-01-25": "CARUARU"}
	}`

	// WHEN
	imp, err := NewStoreFactory(rota.SixOneFixed).ParseStore([]byte(data))
	require.NoError(t, err)

	// THEN: a post sits in one city only, first by name
	assert.Equal(t, []rota.City{
		{Name: "OLINDA", Posts: []string{"ALTO DA SÉ", "HOSPITAL"}},
		{Name: "RECIFE", Posts: []string{"SHOPPING RECIFE"}},
	}, imp.Cities)

	byDate := map[string]rota.HolidayRecord{}
	for _, h := range imp.Holidays {
		byDate[h.Registered.String()] = h
	}
	// Recorded posts are kept
	assert.Equal(t, "RECIFE", byDate["2020-12-08"].City)
	assert.Equal(t, []string{"SHOPPING RECIFE"}, byDate["2020-12-08"].Posts)
	// No recorded posts: the city's posts apply
	assert.Equal(t, "OLINDA", byDate["2020-06-24"].City)
	assert.Equal(t, []string{"ALTO DA SÉ", "HOSPITAL"}, byDate["2020-06-24"].Posts)
	// Unknown city: binding dropped, posts kept
	assert.Empty(t, byDate["2020-01-25"].City)
	assert.Equal(t, []string{"PRAIA"}, byDate["2020-01-25"].Posts)

	// hospital under RECIFE, CARUARU binding
	assert.Len(t, imp.Snapshot.Warnings, 2)

	// The binding survives a round trip
	f := NewStoreFactory(rota.SixOneFixed)
	out, err := json.Marshal(f.ToJSON(Config{Holidays: imp.Holidays, Cities: imp.Cities}))
	require.NoError(t, err)
	again, err := f.ParseStore(out)
	require.NoError(t, err)
	assert.Equal(t, imp.Cities, again.Cities)
	assert.Equal(t, imp.Holidays, again.Holidays)
}
