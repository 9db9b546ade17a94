package validator

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"strings"

	"tablebook/config"
	"tablebook/shared/failure"

	val "github.com/go-playground/validator/v10"
)

// TagRule is the custom tag that delegates to the field's own rule.
const TagRule = "tablebook"

// Rule is implemented by field types whose validity depends on configuration,
// e.g. a table number bounded by the configured floor size.
type Rule interface {
	Validate(cfg *config.Config) error
}

var (
	validate *val.Validate
	cfg      *config.Config
)

type configKey struct{}

func configFrom(ctx context.Context) *config.Config {
	if c, ok := ctx.Value(configKey{}).(*config.Config); ok && c != nil {
		return c
	}

	return cfg
}

func init() {
	cfg = config.Get()

	validate = val.New(val.WithRequiredStructEnabled())

	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return field.Name
		}

		return name
	})

	err := validate.RegisterValidationCtx(TagRule, func(ctx context.Context, fl val.FieldLevel) bool {
		rule, ok := fl.Field().Interface().(Rule)
		if !ok {
			return false
		}

		return rule.Validate(configFrom(ctx)) == nil
	})
	if err != nil {
		panic(err)
	}
}

// Validate decodes a JSON body into data and validates it.
// https://github.com/go-playground/validator
func Validate[T any](r io.Reader, data *T) error {
	decoder := json.NewDecoder(r)

	if err := decoder.Decode(data); err != nil {
		return failure.BadRequest(fmt.Errorf("failed to decode request body: %w", err)) //nolint:wrapcheck
	}

	return ValidateStruct(data)
}

// ValidateStruct validates data against the process configuration.
func ValidateStruct[T any](data *T) error {
	return ValidateStructWith(cfg, data)
}

// ValidateStructWith validates data, resolving `tablebook` rules against c.
func ValidateStructWith[T any](c *config.Config, data *T) error {
	ctx := context.WithValue(context.Background(), configKey{}, c)

	if err := validate.StructCtx(ctx, data); err != nil {
		return failure.BadRequestFromString(message(err, configFrom(ctx))) //nolint:wrapcheck
	}

	return nil
}
