package validators

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var one = decimal.NewFromInt(1)

// decimalRules are tags for decimal.Decimal fields; the registered type func
// hands them the decimal's string form.
var decimalRules = map[string]func(decimal.Decimal) bool{
	"dec_gte0": func(d decimal.Decimal) bool { return d.Sign() >= 0 },
	"dec_gt0":  func(d decimal.Decimal) bool { return d.Sign() > 0 },
	"dec_rate": func(d decimal.Decimal) bool { return d.Sign() >= 0 && d.LessThanOrEqual(one) },
}

var messages = map[string]string{
	"required":         "is required",
	"required_with":    "is required",
	"required_without": "is required",
	"dec_gte0":         "must not be negative",
	"dec_gt0":          "must be greater than 0",
	"dec_rate":         "must be between 0 and 1",
	"uuid_set":         "must be a non-nil uuid",
}

var bounded = map[string]string{
	"min": "must be at least %s",
	"max": "must be at most %s",
	"gt":  "must be greater than %s",
}

var validate = build()

func build() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(jsonName)
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})

	for tag, ok := range decimalRules {
		register(v, tag, func(fl validator.FieldLevel) bool {
			d, err := decimal.NewFromString(fl.Field().String())
			return err == nil && ok(d)
		})
	}
	register(v, "uuid_set", func(fl validator.FieldLevel) bool {
		id, ok := fl.Field().Interface().(uuid.UUID)
		return ok && id != uuid.Nil
	})
	return v
}

func register(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" {
		return f.Name
	}
	return name
}

func message(fe validator.FieldError) string {
	if msg, ok := messages[fe.Tag()]; ok {
		return msg
	}
	if format, ok := bounded[fe.Tag()]; ok {
		return fmt.Sprintf(format, fe.Param())
	}
	return "is invalid"
}

// fieldPath drops the root struct name: "items[0].quantity" rather than
// "calculateRequest.items[0].quantity".
func fieldPath(fe validator.FieldError) string {
	if _, rest, ok := strings.Cut(fe.Namespace(), "."); ok {
		return rest
	}
	return fe.Field()
}
