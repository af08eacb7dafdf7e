/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the engine's model (rota.Employee, rota.DayRecord, ...) from the API
  contract: dates travel as ISO strings, enums as their string values.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

TYPES:
  Employees:  EmployeeDTO, ProfileDTO, SaveEmployeeRequest
  Holidays:   HolidayDTO, CreateHolidayRequest, DefaultHolidaysRequest
  Events:     EventDTO, SetEventRequest
  Schedules:  ScheduleResponse, DayRecordDTO, MonthSummaryDTO,
              SkippedMonthDTO, BatchRequest, BatchResponse
  Roster:     ImportResponse

VALIDATION:
  Request types carry go-playground/validator tags. Custom tags
  (rota_date, rota_variant, holiday_scope, event_kind) are registered in
  validate.go.

SEE ALSO:
  - handlers.go: Uses these types
  - validate.go: Custom validations
*/
package api

import (
	"github.com/shopspring/decimal"

	"github.com/warp/rota-engine/generic"
	"github.com/warp/rota-engine/rota"
	"github.com/warp/rota-engine/roster"
)

// =============================================================================
// EMPLOYEES
// =============================================================================

// EmployeeDTO represents an employee in API responses.
type EmployeeDTO struct {
	Name          string     `json:"name"`
	Post          string     `json:"post"`
	Admission     *string    `json:"admission"`
	Rotation      string     `json:"rotation"`
	RotationLabel string     `json:"rotation_label"`
	Anchor        *string    `json:"anchor"`
	Profile       ProfileDTO `json:"profile"`
}

// ProfileDTO carries the timesheet header fields.
type ProfileDTO struct {
	Registration string `json:"registration,omitempty"`
	TaxID        string `json:"tax_id,omitempty"`
	Role         string `json:"role,omitempty"`
	Branch       string `json:"branch,omitempty"`
	BranchTaxID  string `json:"branch_tax_id,omitempty"`
	Address      string `json:"address,omitempty"`
	City         string `json:"city,omitempty"`
}

// SaveEmployeeRequest creates or replaces an employee. An empty rotation
// uses the configured default.
type SaveEmployeeRequest struct {
	Name      string     `json:"name" validate:"required"`
	Post      string     `json:"post"`
	Admission string     `json:"admission" validate:"omitempty,rota_date"`
	Rotation  string     `json:"rotation" validate:"omitempty,rota_variant"`
	Anchor    string     `json:"anchor" validate:"omitempty,rota_date"`
	Profile   ProfileDTO `json:"profile"`
}

func toEmployeeDTO(e rota.Employee) EmployeeDTO {
	return EmployeeDTO{
		Name:          e.Name,
		Post:          e.Post,
		Admission:     dateString(e.Admission),
		Rotation:      string(e.Rotation),
		RotationLabel: e.Rotation.Label(),
		Anchor:        dateString(e.Anchor),
		Profile: ProfileDTO{
			Registration: e.Profile.Registration,
			TaxID:        e.Profile.TaxID,
			Role:         e.Profile.Role,
			Branch:       e.Profile.Branch,
			BranchTaxID:  e.Profile.BranchTaxID,
			Address:      e.Profile.Address,
			City:         e.Profile.City,
		},
	}
}

// toEmployee converts a validated request. Dates were checked by the
// validator, so parse errors cannot occur here.
func (req SaveEmployeeRequest) toEmployee(defaultRotation rota.Variant) rota.Employee {
	rotation := defaultRotation
	if req.Rotation != "" {
		rotation = rota.ParseVariant(req.Rotation)
	}
	return rota.Employee{
		Name:      rota.NormalizeName(req.Name),
		Post:      rota.NormalizeName(req.Post),
		Admission: optionalDate(req.Admission),
		Rotation:  rotation,
		Anchor:    optionalDate(req.Anchor),
		Profile: rota.Profile{
			Registration: req.Profile.Registration,
			TaxID:        req.Profile.TaxID,
			Role:         req.Profile.Role,
			Branch:       req.Profile.Branch,
			BranchTaxID:  req.Profile.BranchTaxID,
			Address:      req.Profile.Address,
			City:         req.Profile.City,
		},
	}
}

// =============================================================================
// HOLIDAYS
// =============================================================================

// HolidayDTO represents a holiday definition.
type HolidayDTO struct {
	ID    string   `json:"id"`
	Date  string   `json:"date"`
	Name  string   `json:"name"`
	Scope string   `json:"scope"`
	Posts []string `json:"posts"`
	City  string   `json:"city,omitempty"`
}

// CreateHolidayRequest registers a holiday. Date is the registration
// date; the holiday recurs on its day and month from that year on. A LOCAL
// holiday takes its posts from City when one is given.
type CreateHolidayRequest struct {
	Date  string   `json:"date" validate:"required,rota_date"`
	Name  string   `json:"name" validate:"required"`
	Scope string   `json:"scope" validate:"omitempty,holiday_scope"`
	Posts []string `json:"posts" validate:"dive,required"`
	City  string   `json:"city"`
}

// DefaultHolidaysRequest seeds the fixed national holidays registered in
// Year (the current year when zero).
type DefaultHolidaysRequest struct {
	Year int `json:"year" validate:"omitempty,min=1900,max=9999"`
}

func toHolidayDTO(h rota.HolidayRecord) HolidayDTO {
	posts := h.Posts
	if posts == nil {
		posts = []string{}
	}
	return HolidayDTO{
		ID:    h.ID,
		Date:  h.Registered.String(),
		Name:  h.Name,
		Scope: string(h.Scope),
		Posts: posts,
		City:  h.City,
	}
}

// =============================================================================
// CITIES
// =============================================================================

// CityDTO represents a city and the posts it groups.
type CityDTO struct {
	Name  string   `json:"name"`
	Posts []string `json:"posts"`
}

// CreateCityRequest is the body of POST /cities.
type CreateCityRequest struct {
	Name  string   `json:"name" validate:"required"`
	Posts []string `json:"posts" validate:"dive,required"`
}

// UpdateCityRequest is the body of PUT /cities/{city}. The posts replace
// the city's current ones.
type UpdateCityRequest struct {
	Posts []string `json:"posts" validate:"dive,required"`
}

func toCityDTO(c rota.City) CityDTO {
	return CityDTO{Name: c.Name, Posts: nonNil(c.Posts)}
}

// =============================================================================
// MANUAL EVENTS
// =============================================================================

// EventDTO represents a manual override.
type EventDTO struct {
	Employee string `json:"employee"`
	Date     string `json:"date"`
	Kind     string `json:"kind"`
}

// SetEventRequest is the body of PUT /employees/{name}/events/{date}.
type SetEventRequest struct {
	Kind string `json:"kind" validate:"required,event_kind"`
}

// SetEventsRequest is the body of PUT /employees/{name}/events. It marks
// Days consecutive days from Start.
type SetEventsRequest struct {
	Kind  string `json:"kind" validate:"required,event_kind"`
	Start string `json:"start" validate:"required,rota_date"`
	Days  int    `json:"days" validate:"required,min=1,max=365"`
}

func toEventDTOs(events []rota.ManualEvent) []EventDTO {
	dtos := make([]EventDTO, 0, len(events))
	for _, e := range events {
		dtos = append(dtos, EventDTO{Employee: e.Employee, Date: e.Date.String(), Kind: string(e.Kind)})
	}
	return dtos
}

// =============================================================================
// SCHEDULES
// =============================================================================

// DayRecordDTO is one classified day.
type DayRecordDTO struct {
	Date           string `json:"date"`
	Weekday        string `json:"weekday"`
	Classification string `json:"classification"`
	Note           string `json:"note,omitempty"`
}

// MonthSummaryDTO counts a month's classifications.
type MonthSummaryDTO struct {
	Month         string          `json:"month"`
	Counts        map[string]int  `json:"counts"`
	Worked        int             `json:"worked"`
	Scheduled     int             `json:"scheduled"`
	WorkloadShare decimal.Decimal `json:"workload_share"`
}

// SkippedMonthDTO is a month with no timesheet page.
type SkippedMonthDTO struct {
	Month  string `json:"month"`
	Reason string `json:"reason"`
}

// ScheduleResponse is one employee's schedule over a period.
type ScheduleResponse struct {
	Employee  EmployeeDTO       `json:"employee"`
	Start     string            `json:"start"`
	End       string            `json:"end"`
	Records   []DayRecordDTO    `json:"records"`
	Pages     []string          `json:"pages"`
	Skipped   []SkippedMonthDTO `json:"skipped"`
	Reason    string            `json:"reason,omitempty"`
	Summaries []MonthSummaryDTO `json:"summaries"`
}

// BatchRequest generates schedules for a selection of the roster.
type BatchRequest struct {
	Start  string   `json:"start" validate:"required,rota_date"`
	End    string   `json:"end" validate:"required,rota_date"`
	Mode   string   `json:"mode" validate:"omitempty,oneof=all posts names"`
	Values []string `json:"values" validate:"dive,required"`
}

// BatchResponse holds one schedule per selected employee, in roster order.
type BatchResponse struct {
	Start     string             `json:"start"`
	End       string             `json:"end"`
	Schedules []ScheduleResponse `json:"schedules"`
	Warnings  []string           `json:"warnings"`
}

// NewScheduleResponse converts one batch result.
func NewScheduleResponse(res rota.BatchResult) ScheduleResponse {
	s := res.Schedule
	resp := ScheduleResponse{
		Employee:  toEmployeeDTO(s.Employee),
		Start:     s.Period.Start.String(),
		End:       s.Period.End.String(),
		Records:   make([]DayRecordDTO, 0, s.Len()),
		Pages:     make([]string, 0, len(res.Pages)),
		Skipped:   make([]SkippedMonthDTO, 0, len(res.Skipped)),
		Reason:    string(res.Reason),
		Summaries: []MonthSummaryDTO{},
	}
	for rec := range s.All() {
		resp.Records = append(resp.Records, DayRecordDTO{
			Date:           rec.Date.String(),
			Weekday:        rec.Date.Weekday().String(),
			Classification: string(rec.Classification),
			Note:           rec.Note,
		})
	}
	for _, p := range res.Pages {
		resp.Pages = append(resp.Pages, p.Month.String())
	}
	for _, sk := range res.Skipped {
		resp.Skipped = append(resp.Skipped, SkippedMonthDTO{Month: sk.Month.String(), Reason: string(sk.Reason)})
	}
	for _, sum := range s.Summarize() {
		counts := make(map[string]int, len(sum.Counts))
		for c, n := range sum.Counts {
			counts[string(c)] = n
		}
		resp.Summaries = append(resp.Summaries, MonthSummaryDTO{
			Month:         sum.Month.String(),
			Counts:        counts,
			Worked:        sum.Worked,
			Scheduled:     sum.Scheduled,
			WorkloadShare: sum.WorkloadShare,
		})
	}
	return resp
}

// =============================================================================
// ROSTER
// =============================================================================

// ImportResponse reports a roster or legacy store import.
type ImportResponse struct {
	BatchID  string         `json:"batch_id,omitempty"`
	Imported int            `json:"imported"`
	Holidays int            `json:"holidays,omitempty"`
	Events   int            `json:"events,omitempty"`
	Posts    []string       `json:"posts"`
	Skipped  []roster.Issue `json:"skipped,omitempty"`
	Warnings []string       `json:"warnings"`
}

// =============================================================================
// HELPERS
// =============================================================================

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func dateString(d *generic.Date) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}

func optionalDate(s string) *generic.Date {
	if s == "" {
		return nil
	}
	d, err := generic.ParseDate(s)
	if err != nil {
		return nil
	}
	return &d
}
