package validator

import (
	"errors"
	"strings"

	"tablebook/config"

	val "github.com/go-playground/validator/v10"
)

var (
	messages = map[string]string{
		"required": "{field} is required",
		"gte":      "{field} must be greater than or equal to {param}",
		"lte":      "{field} must be less than or equal to {param}",
		"oneof":    "{field} must be one of {param}",
		"max":      "{field} must be at most {param} characters",
		"min":      "{field} must be at least {param} characters",
		"alphanum": "{field} must contain only letters and digits",
		"uuid":     "{field} must be a valid id",
		"datetime": "{field} must match the layout {param}",
		"numeric":  "{field} must be a number",
	}
)

func message(err error, c *config.Config) string {
	var valErrors val.ValidationErrors

	if !errors.As(err, &valErrors) {
		return err.Error()
	}

	for _, valErr := range valErrors {
		if valErr.Tag() == TagRule {
			if rule, ok := valErr.Value().(Rule); ok {
				if ruleErr := rule.Validate(c); ruleErr != nil {
					return ruleErr.Error()
				}
			}
		}

		errStr := messages[valErr.Tag()]
		if errStr != "" {
			errStr = strings.ReplaceAll(errStr, "{field}", valErr.Field())
			errStr = strings.ReplaceAll(errStr, "{param}", valErr.Param())

			return errStr
		}
	}

	return valErrors.Error()
}
