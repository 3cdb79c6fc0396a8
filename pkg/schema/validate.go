package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/techwithparamesh/agentflow/pkg/domain"
	"github.com/techwithparamesh/agentflow/pkg/expression"
)

// FieldResult is the outcome of validating one field.
type FieldResult struct {
	Valid   bool             `json:"valid"`
	Active  bool             `json:"active"`
	Kind    domain.ErrorKind `json:"errorKind,omitempty"`
	Message string           `json:"message,omitempty"`
}

// Err converts a failed result to a FieldError. It returns nil for valid results.
func (r FieldResult) Err(field string) *FieldError {
	if r.Valid {
		return nil
	}
	return &FieldError{Field: field, Kind: r.Kind, Message: r.Message}
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ValidateField checks a single value against its schema and visibility rule.
// A missing value falls back to the schema default. Strings containing a
// {{ ... }} expression pass type checks since they are resolved at run time.
func ValidateField(field FieldSchema, value any, siblings map[string]any) FieldResult {
	if !IsActive(field, siblings) {
		return FieldResult{Valid: true, Active: false}
	}
	if value == nil {
		value = field.Default
	}

	if isEmpty(value) {
		if field.Required {
			return fail(domain.KindMissingRequiredField, "%s is required", field.Label())
		}
		return pass()
	}

	if s, isString := value.(string); isString && expression.HasExpression(s) {
		if field.Type == TypeJSON && !json.Valid([]byte(expression.PlaceholderJSON(s))) {
			return fail(domain.KindInvalidFieldType, "%s must be valid JSON", field.Label())
		}
		return pass()
	}

	switch field.Type {
	case TypeNumber:
		return validateNumber(field, value)
	case TypeBoolean:
		if _, valid := CoerceBool(value); !valid {
			return fail(domain.KindInvalidFieldType, "%s must be true or false", field.Label())
		}
	case TypeOptions:
		if !containsOption(field.Options, value) {
			return fail(domain.KindInvalidFieldType, "%s must be one of %s", field.Label(), optionList(field.Options))
		}
	case TypeMultiOptions:
		elems, isSlice := asSlice(value)
		if !isSlice {
			return fail(domain.KindInvalidFieldType, "%s must be a list", field.Label())
		}
		for _, e := range elems {
			if !containsOption(field.Options, e) {
				return fail(domain.KindInvalidFieldType, "%s contains %v, allowed: %s", field.Label(), e, optionList(field.Options))
			}
		}
	case TypeJSON:
		if !validJSON(value) {
			return fail(domain.KindInvalidFieldType, "%s must be valid JSON", field.Label())
		}
	case TypeDateTime:
		if _, valid := CoerceTime(value); !valid {
			return fail(domain.KindInvalidFieldType, "%s must be a valid date and time", field.Label())
		}
	case TypeFixedCollection, TypeCollection:
		switch value.(type) {
		case map[string]any, []any:
		default:
			return fail(domain.KindInvalidFieldType, "%s must be an object", field.Label())
		}
	case TypeString, TypeText:
		if field.Pattern != "" {
			return validatePattern(field, value)
		}
	}
	return pass()
}

// ValidateFields runs ValidateField over every field against config and
// collects every failure in schema order.
func ValidateFields(fields []FieldSchema, config map[string]any) Errors {
	effective := EffectiveConfig(fields, config)
	var errs Errors
	for _, f := range fields {
		if e := ValidateField(f, config[f.Name], effective).Err(f.Name); e != nil {
			errs = append(errs, *e)
		}
	}
	return errs
}

func pass() FieldResult { return FieldResult{Valid: true, Active: true} }

func fail(kind domain.ErrorKind, format string, args ...any) FieldResult {
	return FieldResult{Active: true, Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	s, isString := v.(string)
	return isString && s == ""
}

func validateNumber(field FieldSchema, value any) FieldResult {
	n, valid := CoerceNumber(value)
	if !valid {
		return fail(domain.KindInvalidFieldType, "%s must be a number", field.Label())
	}
	if field.Min != nil && n < *field.Min {
		return fail(domain.KindOutOfRange, "%s must be at least %s", field.Label(), formatFloat(*field.Min))
	}
	if field.Max != nil && n > *field.Max {
		return fail(domain.KindOutOfRange, "%s must be at most %s", field.Label(), formatFloat(*field.Max))
	}
	return pass()
}

func validatePattern(field FieldSchema, value any) FieldResult {
	s, isString := value.(string)
	if !isString {
		return fail(domain.KindInvalidFieldType, "%s must be text", field.Label())
	}
	re, err := regexp.Compile(field.Pattern)
	if err != nil {
		return fail(domain.KindInvalidFieldType, "%s has an invalid pattern %q", field.Label(), field.Pattern)
	}
	if !re.MatchString(s) {
		return fail(domain.KindInvalidFieldType, "%s does not match %s", field.Label(), field.Pattern)
	}
	return pass()
}

// CoerceNumber accepts numeric values and numeric strings. NaN and infinities are rejected.
func CoerceNumber(v any) (float64, bool) {
	n, isNum := numeric(v)
	if !isNum {
		s, isString := v.(string)
		if !isString {
			return 0, false
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, false
		}
		n = f
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

// CoerceBool accepts booleans and the strings "true" and "false".
func CoerceBool(v any) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		switch b {
		case "true":
			return true, true
		case "false":
			return false, true
		}
	}
	return false, false
}

// CoerceTime accepts time.Time, common ISO-8601 layouts, and unix milliseconds.
func CoerceTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, !t.IsZero()
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed, true
			}
		}
		return time.Time{}, false
	}
	if ms, isNum := numeric(v); isNum && !math.IsNaN(ms) && !math.IsInf(ms, 0) {
		return time.UnixMilli(int64(ms)).UTC(), true
	}
	return time.Time{}, false
}

func validJSON(v any) bool {
	if s, isString := v.(string); isString {
		return json.Valid([]byte(s))
	}
	_, err := json.Marshal(v)
	return err == nil
}

func containsOption(options []Option, v any) bool {
	for _, o := range options {
		if sameValue(o.Value, v) {
			return true
		}
	}
	return false
}

func optionList(options []Option) string {
	vals := make([]string, len(options))
	for i, o := range options {
		vals[i] = fmt.Sprintf("%v", o.Value)
	}
	return strings.Join(vals, ", ")
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
