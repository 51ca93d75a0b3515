package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"slices"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Kind is the primitive type of a schema field.
type Kind uint8

const (
	// KindString is a JSON string.
	KindString Kind = iota + 1
	// KindInteger is a JSON number without a fractional part.
	KindInteger
	// KindBoolean is a JSON boolean.
	KindBoolean
	// KindEnum is a JSON string restricted to a closed set.
	KindEnum
	// KindObject is a nested object described by its own schema.
	KindObject
	// KindObjectList is a list of nested objects sharing one schema.
	KindObjectList
	// KindStringList is a list of strings.
	KindStringList
	// KindMap is an open object; only customFields uses it.
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInteger:
		return "integer"
	case KindBoolean:
		return "boolean"
	case KindEnum:
		return "enum"
	case KindObject:
		return "object"
	case KindObjectList:
		return "list of objects"
	case KindStringList:
		return "list of strings"
	case KindMap:
		return "map"
	default:
		return "unknown"
	}
}

// ErrMalformedJSON reports a body that is not valid JSON at all.
var ErrMalformedJSON = errors.New("zscale: malformed JSON")

// FieldError names a field (wire name, dotted for nested fields) and the rule
// it violated.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) String() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// MismatchError is returned when a payload does not conform to the schema it
// is parsed against.
type MismatchError struct {
	Schema   string
	Problems []FieldError
}

func (e *MismatchError) Error() string {
	parts := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		parts = append(parts, p.String())
	}
	return fmt.Sprintf("zscale: response does not match %s schema: %s", e.Schema, strings.Join(parts, "; "))
}

// Field returns the first offending field name.
func (e *MismatchError) Field() string {
	if e == nil || len(e.Problems) == 0 {
		return ""
	}
	return e.Problems[0].Field
}

// Field declares one member of a Schema. Build fields with String, Integer,
// Boolean, Enum, Object, ObjectList, StringList or Map and refine them with the
// chained constraint methods.
type Field struct {
	name        string
	kind        Kind
	required    bool
	notBlank    bool
	minLen      int
	maxLen      int
	min         *int64
	max         *int64
	minItems    int
	maxItems    int
	pattern     *regexp.Regexp
	patternHint string
	enum        []string
	object      *Schema
}

// String declares a string field.
func String(name string) Field { return Field{name: name, kind: KindString} }

// Integer declares an integer field.
func Integer(name string) Field { return Field{name: name, kind: KindInteger} }

// Boolean declares a boolean field.
func Boolean(name string) Field { return Field{name: name, kind: KindBoolean} }

// Enum declares a string field restricted to values.
func Enum(name string, values ...string) Field {
	return Field{name: name, kind: KindEnum, enum: slices.Clone(values)}
}

// Object declares a nested object field.
func Object(name string, s *Schema) Field { return Field{name: name, kind: KindObject, object: s} }

// ObjectList declares a list of nested objects.
func ObjectList(name string, s *Schema) Field {
	return Field{name: name, kind: KindObjectList, object: s}
}

// StringList declares a list of strings.
func StringList(name string) Field { return Field{name: name, kind: KindStringList} }

// Map declares an open object field.
func Map(name string) Field { return Field{name: name, kind: KindMap} }

// Required marks the field as mandatory. JSON null does not satisfy it.
func (f Field) Required() Field {
	f.required = true
	return f
}

// Length bounds the rune length of a string field. Zero disables a bound.
func (f Field) Length(min, max int) Field {
	f.minLen, f.maxLen = min, max
	return f
}

// NotBlank rejects strings (or string list items) that are empty after trimming.
func (f Field) NotBlank() Field {
	f.notBlank = true
	return f
}

// AtLeast sets an inclusive lower bound on an integer field.
func (f Field) AtLeast(min int64) Field {
	f.min = &min
	return f
}

// AtMost sets an inclusive upper bound on an integer field.
func (f Field) AtMost(max int64) Field {
	f.max = &max
	return f
}

// Items bounds the number of list entries. Zero disables a bound.
func (f Field) Items(min, max int) Field {
	f.minItems, f.maxItems = min, max
	return f
}

// Pattern requires string values to match re; hint describes the expected
// format in error messages.
func (f Field) Pattern(re *regexp.Regexp, hint string) Field {
	f.pattern = re
	f.patternHint = hint
	return f
}

// Name returns the wire name.
func (f Field) Name() string { return f.name }

// Kind returns the primitive type.
func (f Field) Kind() Kind { return f.kind }

// IsRequired reports whether the field is mandatory.
func (f Field) IsRequired() bool { return f.required }

// Values returns the set accepted by an enum field.
func (f Field) Values() []string { return slices.Clone(f.enum) }

// Schema is a named, immutable shape. Schemas are declared as package-level
// values and checked once when the package initializes.
type Schema struct {
	name   string
	closed bool
	fields []Field
	byName map[string]int
}

// Input declares a closed schema: undeclared fields are rejected.
func Input(name string, fields ...Field) *Schema {
	return newSchema(name, true, fields)
}

// Output declares a schema for remote payloads. Undeclared fields are not
// carried into the decoded entity.
func Output(name string, fields ...Field) *Schema {
	return newSchema(name, false, fields)
}

func newSchema(name string, closed bool, fields []Field) *Schema {
	if strings.TrimSpace(name) == "" {
		panic("api: schema name required")
	}
	s := &Schema{
		name:   name,
		closed: closed,
		fields: slices.Clone(fields),
		byName: make(map[string]int, len(fields)),
	}
	for i, f := range s.fields {
		if f.name == "" {
			panic(fmt.Sprintf("api: schema %s: field %d has no name", name, i))
		}
		if _, dup := s.byName[f.name]; dup {
			panic(fmt.Sprintf("api: schema %s: duplicate field %q", name, f.name))
		}
		switch f.kind {
		case KindObject, KindObjectList:
			if f.object == nil {
				panic(fmt.Sprintf("api: schema %s: field %q needs a nested schema", name, f.name))
			}
		case KindEnum:
			if len(f.enum) == 0 {
				panic(fmt.Sprintf("api: schema %s: enum field %q has no values", name, f.name))
			}
		}
		if f.min != nil && f.max != nil && *f.min > *f.max {
			panic(fmt.Sprintf("api: schema %s: field %q has an empty range", name, f.name))
		}
		s.byName[f.name] = i
	}
	return s
}

// Name returns the schema name used in error messages.
func (s *Schema) Name() string { return s.name }

// Closed reports whether undeclared fields are rejected.
func (s *Schema) Closed() bool { return s.closed }

// Fields returns the declared fields in declaration order.
func (s *Schema) Fields() []Field { return slices.Clone(s.fields) }

// Field looks up a declared field.
func (s *Schema) Field(name string) (Field, bool) {
	i, ok := s.byName[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

// Check validates a decoded JSON object and returns every violation in field
// declaration order, followed by undeclared fields for closed schemas.
func (s *Schema) Check(obj map[string]any) []FieldError {
	return s.check("", obj, nil)
}

// CheckValue encodes v to JSON and checks the result. It is used to re-check
// canonical inputs right before they are sent.
func (s *Schema) CheckValue(v any) []FieldError {
	data, err := json.Marshal(v)
	if err != nil {
		return []FieldError{{Message: "cannot encode value: " + err.Error()}}
	}
	raw, err := decodeRaw(data)
	if err != nil {
		return []FieldError{{Message: err.Error()}}
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return []FieldError{{Message: "expected object, got " + jsonType(raw)}}
	}
	return s.Check(obj)
}

// Decode parses data against the schema and, when it conforms, unmarshals it
// into out. Invalid JSON yields an error wrapping ErrMalformedJSON; a shape
// violation yields *MismatchError.
func (s *Schema) Decode(data []byte, out any) error {
	raw, err := decodeRaw(data)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return &MismatchError{Schema: s.name, Problems: []FieldError{{Message: "expected object, got " + jsonType(raw)}}}
	}
	if problems := s.Check(obj); len(problems) > 0 {
		return &MismatchError{Schema: s.name, Problems: problems}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &MismatchError{Schema: s.name, Problems: []FieldError{{Message: err.Error()}}}
	}
	return nil
}

func (s *Schema) check(prefix string, obj map[string]any, errs []FieldError) []FieldError {
	for _, f := range s.fields {
		path := joinPath(prefix, f.name)
		raw, present := obj[f.name]
		if !present || raw == nil {
			if f.required {
				if present {
					errs = append(errs, FieldError{Field: path, Message: "must not be null"})
				} else {
					errs = append(errs, FieldError{Field: path, Message: "is required"})
				}
			}
			continue
		}
		errs = f.check(path, raw, errs)
	}
	if s.closed {
		var unknown []string
		for key := range obj {
			if _, ok := s.byName[key]; !ok {
				unknown = append(unknown, key)
			}
		}
		sort.Strings(unknown)
		for _, key := range unknown {
			errs = append(errs, FieldError{Field: joinPath(prefix, key), Message: "is not a recognized field"})
		}
	}
	return errs
}

func (f Field) check(path string, raw any, errs []FieldError) []FieldError {
	switch f.kind {
	case KindString:
		s, ok := raw.(string)
		if !ok {
			return append(errs, typeError(path, "string", raw))
		}
		return f.checkString(path, s, errs)
	case KindEnum:
		s, ok := raw.(string)
		if !ok {
			return append(errs, typeError(path, "string", raw))
		}
		if !slices.Contains(f.enum, s) {
			return append(errs, FieldError{Field: path, Message: fmt.Sprintf("must be one of %s (got %q)", strings.Join(f.enum, ", "), s)})
		}
	case KindInteger:
		n, ok := toInt64(raw)
		if !ok {
			return append(errs, typeError(path, "integer", raw))
		}
		if f.min != nil && n < *f.min {
			errs = append(errs, FieldError{Field: path, Message: fmt.Sprintf("must be at least %d", *f.min)})
		}
		if f.max != nil && n > *f.max {
			errs = append(errs, FieldError{Field: path, Message: fmt.Sprintf("must be at most %d", *f.max)})
		}
	case KindBoolean:
		if _, ok := raw.(bool); !ok {
			return append(errs, typeError(path, "boolean", raw))
		}
	case KindObject:
		obj, ok := raw.(map[string]any)
		if !ok {
			return append(errs, typeError(path, "object", raw))
		}
		return f.object.check(path, obj, errs)
	case KindMap:
		if _, ok := raw.(map[string]any); !ok {
			return append(errs, typeError(path, "object", raw))
		}
	case KindObjectList:
		list, ok := raw.([]any)
		if !ok {
			return append(errs, typeError(path, "array", raw))
		}
		errs = f.checkItems(path, len(list), errs)
		for i, item := range list {
			at := itemPath(path, i)
			obj, ok := item.(map[string]any)
			if !ok {
				errs = append(errs, typeError(at, "object", item))
				continue
			}
			errs = f.object.check(at, obj, errs)
		}
	case KindStringList:
		list, ok := raw.([]any)
		if !ok {
			return append(errs, typeError(path, "array", raw))
		}
		errs = f.checkItems(path, len(list), errs)
		for i, item := range list {
			at := itemPath(path, i)
			s, ok := item.(string)
			if !ok {
				errs = append(errs, typeError(at, "string", item))
				continue
			}
			errs = f.checkString(at, s, errs)
		}
	}
	return errs
}

func (f Field) checkString(path, s string, errs []FieldError) []FieldError {
	if f.notBlank && strings.TrimSpace(s) == "" {
		return append(errs, FieldError{Field: path, Message: "cannot be empty"})
	}
	n := utf8.RuneCountInString(s)
	if f.minLen > 0 && n < f.minLen {
		errs = append(errs, FieldError{Field: path, Message: fmt.Sprintf("must be at least %d characters", f.minLen)})
	}
	if f.maxLen > 0 && n > f.maxLen {
		errs = append(errs, FieldError{Field: path, Message: fmt.Sprintf("must be at most %d characters (got %d)", f.maxLen, n)})
	}
	if f.pattern != nil && !f.pattern.MatchString(s) {
		hint := f.patternHint
		if hint == "" {
			hint = "pattern " + f.pattern.String()
		}
		errs = append(errs, FieldError{Field: path, Message: fmt.Sprintf("must match %s (got %q)", hint, s)})
	}
	return errs
}

func (f Field) checkItems(path string, n int, errs []FieldError) []FieldError {
	if f.minItems > 0 && n < f.minItems {
		errs = append(errs, FieldError{Field: path, Message: fmt.Sprintf("must contain at least %d item(s)", f.minItems)})
	}
	if f.maxItems > 0 && n > f.maxItems {
		errs = append(errs, FieldError{Field: path, Message: fmt.Sprintf("must contain at most %d items (got %d)", f.maxItems, n)})
	}
	return errs
}

func decodeRaw(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("unexpected data after top-level value")
	}
	return raw, nil
}

func toInt64(raw any) (int64, bool) {
	switch v := raw.(type) {
	case json.Number:
		n, err := strconv.ParseInt(v.String(), 10, 64)
		if err == nil {
			return n, true
		}
		f, err := v.Float64()
		if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt64 {
			return 0, false
		}
		return int64(f), true
	case float64:
		if v != math.Trunc(v) || math.Abs(v) > math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	case int:
		return int64(v), true
	case int64:
		return v, true
	default:
		return 0, false
	}
}

func typeError(path, want string, raw any) FieldError {
	return FieldError{Field: path, Message: fmt.Sprintf("expected %s, got %s", want, jsonType(raw))}
}

func jsonType(raw any) string {
	switch v := raw.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number:
		if _, ok := toInt64(v); ok {
			return "integer"
		}
		return "number"
	case float64, int, int64:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", raw)
	}
}

func quote(s string) string {
	return strconv.Quote(s)
}

func itemPath(path string, i int) string {
	return path + "[" + strconv.Itoa(i) + "]"
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
