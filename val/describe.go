package val

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// fixed holds descriptions of tags that take no parameter.
var fixed = map[string]string{
	"required": "this field is required",
	"email":    "must be a valid email",
	"url":      "must be a valid URL",
	"uri":      "must be a valid URI",
	"uuid":     "must be a valid UUID",
	"uuid4":    "must be a valid UUID v4",
	"json":     "must be valid JSON",
	"base64":   "must be valid base64",
	"hostname": "must be a valid hostname",
	"ip":       "must be a valid IP address",
	"alpha":    "must contain only letters",
	"alphanum": "must contain only letters and digits",
	"numeric":  "must be a number",
}

// parameterized holds format strings of tags whose parameter is shown.
var parameterized = map[string]string{
	"gt":         "must be greater than %s",
	"gte":        "must be greater than or equal to %s",
	"lt":         "must be less than %s",
	"lte":        "must be less than or equal to %s",
	"eqfield":    "must be equal to %s",
	"nefield":    "must not be equal to %s",
	"startswith": "must start with %s",
	"endswith":   "must end with %s",
	"excludes":   "must not contain %s",
	"datetime":   "must be a datetime in format %s",
}

func describe(fe validator.FieldError) string {
	tag, param := fe.Tag(), fe.Param()

	if desc, ok := fixed[tag]; ok {
		return desc
	}
	if format, ok := parameterized[tag]; ok {
		return fmt.Sprintf(format, param)
	}

	text := fe.Kind() == reflect.String
	switch tag {
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(param, " ", ", ")
	case "min":
		if text {
			return fmt.Sprintf("must be at least %s characters", param)
		}
		return "must be at least " + param
	case "max":
		if text {
			return fmt.Sprintf("must be at most %s characters", param)
		}
		return "must be at most " + param
	case "len":
		if text {
			return fmt.Sprintf("must be exactly %s characters", param)
		}
		return fmt.Sprintf("must have exactly %s items", param)
	}

	if param != "" {
		return fmt.Sprintf("failed validation: %s=%s", tag, param)
	}
	return "failed validation: " + tag
}
