package domain

import (
	"errors"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() { validate = validator.New(validator.WithRequiredStructEnabled()) })
	return validate
}

// Validate runs struct-tag validation and converts failures to *ValidationError.
func Validate(v any) error {
	err := validatorInstance().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &ValidationError{Reason: err.Error()}
	}
	fields := make([]string, 0, len(verrs))
	tags := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, strings.ToLower(fe.Field()))
		tags = append(tags, fe.Tag())
	}
	return &ValidationError{Fields: fields, Reason: "failed " + strings.Join(tags, ",")}
}

// NearbyQuery describes a coordinate search.
type NearbyQuery struct {
	Lat      float64 `validate:"latitude"`
	Lng      float64 `validate:"longitude"`
	RadiusKm float64 `validate:"gt=0,lte=500"`
	Page     int     `validate:"gte=0"`
	Limit    int     `validate:"gte=0,lte=100"`
}

func (q NearbyQuery) Validate() error { return Validate(q) }
