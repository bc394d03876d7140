package feedback

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// ErrConstraint is wrapped by FieldError when a parsed value breaks a schema rule.
var ErrConstraint = errors.New("constraint violated")

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func recordValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		// Report header names rather than Go field names.
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := fld.Tag.Get("csv")
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})
		if err := v.RegisterValidation("halfstep", isHalfStep); err != nil {
			panic(fmt.Sprintf("register halfstep validator: %v", err))
		}
		validate = v
	})
	return validate
}

// isHalfStep accepts integer and half-integer ratings (1, 1.5, 2, ...).
func isHalfStep(fl validator.FieldLevel) bool {
	f := fl.Field()
	switch f.Kind() {
	case reflect.Float32, reflect.Float64:
		x := f.Float() * 2
		return !math.IsNaN(x) && !math.IsInf(x, 0) && x == math.Trunc(x)
	case reflect.Int, reflect.Int64, reflect.Int32:
		return true
	}
	return false
}

// validateRecord applies struct rules and the location set. row is used for
// error reporting only.
func validateRecord(rec *Record, row int, locations []string) error {
	if err := recordValidator().Struct(rec); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			rule := fe.Tag()
			if p := fe.Param(); p != "" {
				rule += "=" + p
			}
			return &FieldError{
				Row:    row,
				Column: Column(fe.Field()),
				Value:  fmt.Sprint(fe.Value()),
				Err:    fmt.Errorf("%w: %s", ErrConstraint, rule),
			}
		}
		return fmt.Errorf("validate row %d: %w", row, err)
	}
	if rec.FeedbackDate.IsZero() {
		return &FieldError{Row: row, Column: ColFeedbackDate, Err: fmt.Errorf("%w: zero date", ErrConstraint)}
	}
	if len(locations) > 0 {
		for _, l := range locations {
			if strings.EqualFold(l, rec.Location) {
				rec.Location = l
				return nil
			}
		}
		return &FieldError{
			Row:    row,
			Column: ColLocation,
			Value:  rec.Location,
			Err:    fmt.Errorf("%w: expected one of %s", ErrConstraint, strings.Join(locations, ", ")),
		}
	}
	return nil
}
