package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/warp/rota-engine/generic"
	"github.com/warp/rota-engine/rota"
)

// errInvalidRequest marks request bodies that fail decoding or validation.
var errInvalidRequest = errors.New("invalid request")

// newValidator registers the domain validations used by the DTO tags.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("rota_date", validateDate)
	_ = v.RegisterValidation("rota_variant", validateVariant)
	_ = v.RegisterValidation("holiday_scope", validateScope)
	_ = v.RegisterValidation("event_kind", validateEventKind)
	return v
}

// validateDate accepts the layouts generic.ParseDate accepts.
func validateDate(fl validator.FieldLevel) bool {
	_, err := generic.ParseDate(fl.Field().String())
	return err == nil
}

// validateVariant rejects rotation names that would silently fall back.
func validateVariant(fl validator.FieldLevel) bool {
	_, ok := rota.LookupVariant(fl.Field().String())
	return ok
}

func validateScope(fl validator.FieldLevel) bool {
	_, err := rota.ParseScope(fl.Field().String())
	return err == nil
}

func validateEventKind(fl validator.FieldLevel) bool {
	_, err := rota.ParseEventKind(fl.Field().String())
	return err == nil
}

// decodeJSON reads a JSON body into dst and validates it.
func (h *Handler) decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", errInvalidRequest, err)
	}
	return h.validateStruct(dst)
}

func (h *Handler) validateStruct(dst any) error {
	err := h.validate.Struct(dst)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", errInvalidRequest, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return fmt.Errorf("%w: %s", errInvalidRequest, strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "rota_date":
		return fmt.Sprintf("%s: invalid date %q (use YYYY-MM-DD or DD/MM/YYYY)", field, fe.Value())
	case "rota_variant":
		return fmt.Sprintf("%s: unknown rotation %q", field, fe.Value())
	case "holiday_scope":
		return fmt.Sprintf("%s: scope must be NATIONAL or LOCAL", field)
	case "event_kind":
		return fmt.Sprintf("%s: kind must be REST or HOLIDAY", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	}
	return fmt.Sprintf("%s failed %s", field, fe.Tag())
}
