package tool

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	fderrors "github.com/osanhueza/fleetdesk/internal/errors"
)

// FieldError is one failed field in an argument payload.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ArgumentError collects every failing field of one validation pass so the
// committed failure message can name all of them at once.
type ArgumentError struct {
	Tool   string
	Fields []FieldError
}

func (e *ArgumentError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		names = append(names, f.Field)
	}
	return fmt.Sprintf("invalid arguments for %s: %s", e.Tool, strings.Join(names, ", "))
}

func (e *ArgumentError) Unwrap() error {
	return fderrors.ErrInvalidArguments
}

// ValidateArguments checks model-supplied raw arguments against a tool's
// JSON-schema-shaped parameter declaration. Compatible primitives are
// coerced (a numeric string satisfies a number field); anything else fails.
// On success the returned payload is the normalized argument object.
func ValidateArguments(toolName string, schema map[string]any, input json.RawMessage) (json.RawMessage, error) {
	args := map[string]any{}
	if len(input) > 0 {
		if err := json.Unmarshal(input, &args); err != nil {
			return nil, &ArgumentError{
				Tool:   toolName,
				Fields: []FieldError{{Field: "(payload)", Reason: "not a JSON object"}},
			}
		}
	}

	var failed []FieldError

	for _, fieldName := range requiredFields(schema) {
		if _, exists := args[fieldName]; !exists {
			failed = append(failed, FieldError{Field: fieldName, Reason: "required field missing"})
		}
	}

	properties, _ := schema["properties"].(map[string]any)
	for key, value := range args {
		propSchema, defined := properties[key]
		if !defined {
			// Models occasionally invent extra fields; drop them.
			delete(args, key)
			continue
		}

		propSchemaMap, ok := propSchema.(map[string]any)
		if !ok {
			continue
		}

		coerced, err := coerceValue(propSchemaMap, value)
		if err != nil {
			failed = append(failed, FieldError{Field: key, Reason: err.Error()})
			continue
		}
		args[key] = coerced
	}

	if len(failed) > 0 {
		sortFieldErrors(failed)
		return nil, &ArgumentError{Tool: toolName, Fields: failed}
	}

	normalized, err := json.Marshal(args)
	if err != nil {
		return nil, fderrors.Wrap(err, "marshal normalized arguments")
	}
	return normalized, nil
}

func requiredFields(schema map[string]any) []string {
	switch required := schema["required"].(type) {
	case []any:
		fields := make([]string, 0, len(required))
		for _, field := range required {
			if name, ok := field.(string); ok {
				fields = append(fields, name)
			}
		}
		return fields
	case []string:
		return required
	default:
		return nil
	}
}

func coerceValue(schema map[string]any, value any) (any, error) {
	expectedType, ok := schema["type"].(string)
	if !ok {
		return value, nil
	}

	switch expectedType {
	case "string":
		switch v := value.(type) {
		case string:
			return v, nil
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64), nil
		default:
			return nil, fmt.Errorf("expected string, got %T", value)
		}

	case "number":
		return coerceNumber(value)

	case "integer":
		num, err := coerceNumber(value)
		if err != nil {
			return nil, err
		}
		f := num.(float64)
		if f != math.Trunc(f) {
			return nil, fmt.Errorf("expected integer, got %v", f)
		}
		return f, nil

	case "boolean":
		switch v := value.(type) {
		case bool:
			return v, nil
		case string:
			parsed, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return nil, fmt.Errorf("expected boolean, got %q", v)
			}
			return parsed, nil
		default:
			return nil, fmt.Errorf("expected boolean, got %T", value)
		}

	case "array":
		arr, ok := value.([]any)
		if !ok {
			return nil, fmt.Errorf("expected array, got %T", value)
		}
		itemsSchema, ok := schema["items"].(map[string]any)
		if !ok {
			return arr, nil
		}
		for i, item := range arr {
			coerced, err := coerceValue(itemsSchema, item)
			if err != nil {
				return nil, fmt.Errorf("item %d: %s", i, err.Error())
			}
			arr[i] = coerced
		}
		return arr, nil

	case "object":
		obj, ok := value.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("expected object, got %T", value)
		}
		return obj, nil

	default:
		return value, nil
	}
}

func coerceNumber(value any) (any, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, fmt.Errorf("expected number, got %q", v)
		}
		return parsed, nil
	default:
		return nil, fmt.Errorf("expected number, got %T", value)
	}
}

func sortFieldErrors(fields []FieldError) {
	sort.Slice(fields, func(i, j int) bool {
		return fields[i].Field < fields[j].Field
	})
}
