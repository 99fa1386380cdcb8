package models

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/diewo77/go-talent/internal/apperr"
	"gorm.io/datatypes"
)

// Value is a typed response. The concrete type follows the question kind:
// TextValue, SelectValue, MultiSelectValue, NumberValue, DateValue or BoolValue,
// and RawValue for kinds without a dedicated shape.
type Value interface {
	Kind() QuestionType
	// JSON returns the stored form of the value.
	JSON() (datatypes.JSON, error)
}

type (
	TextValue        string
	SelectValue      string
	MultiSelectValue []string
	// NumberValue keeps the submitted literal so "1.50" is not rewritten as 1.5.
	NumberValue json.Number
	DateValue   string
	BoolValue   bool
	// RawValue is compacted JSON for a kind added after this code.
	RawValue struct {
		Type QuestionType
		Raw  datatypes.JSON
	}
)

func (TextValue) Kind() QuestionType        { return QuestionTypeText }
func (SelectValue) Kind() QuestionType      { return QuestionTypeSelect }
func (MultiSelectValue) Kind() QuestionType { return QuestionTypeMultiSelect }
func (NumberValue) Kind() QuestionType      { return QuestionTypeNumber }
func (DateValue) Kind() QuestionType        { return QuestionTypeDate }
func (BoolValue) Kind() QuestionType        { return QuestionTypeBoolean }
func (v RawValue) Kind() QuestionType       { return v.Type }

func (v TextValue) JSON() (datatypes.JSON, error)        { return encode(string(v)) }
func (v SelectValue) JSON() (datatypes.JSON, error)      { return encode(string(v)) }
func (v MultiSelectValue) JSON() (datatypes.JSON, error) { return encode([]string(v)) }
func (v NumberValue) JSON() (datatypes.JSON, error)      { return datatypes.JSON(v), nil }
func (v DateValue) JSON() (datatypes.JSON, error)        { return encode(string(v)) }
func (v BoolValue) JSON() (datatypes.JSON, error)        { return encode(bool(v)) }
func (v RawValue) JSON() (datatypes.JSON, error)         { return v.Raw, nil }

// encode marshals without HTML escaping, so "<" stays "<".
func encode(v any) (datatypes.JSON, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return datatypes.JSON(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

const dateLayout = "2006-01-02"

// ParseValue checks that raw has the shape q expects and returns the typed value.
// Choice answers must name existing options once the question has any.
func ParseValue(q *Question, raw json.RawMessage) (Value, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, apperr.Validation("response", "required")
	}

	switch q.QuestionType {
	case QuestionTypeText, QuestionTypeTextarea:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, apperr.Validation("response", "expected_string")
		}
		return TextValue(s), nil

	case QuestionTypeSelect:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, apperr.Validation("response", "expected_string")
		}
		if len(q.Options) > 0 && !q.HasOption(s) {
			return nil, apperr.Validation("response", "unknown_option")
		}
		return SelectValue(s), nil

	case QuestionTypeMultiSelect:
		var ss []string
		if err := json.Unmarshal(raw, &ss); err != nil || ss == nil {
			return nil, apperr.Validation("response", "expected_string_array")
		}
		seen := make(map[string]bool, len(ss))
		for _, s := range ss {
			if seen[s] {
				return nil, apperr.Validation("response", "duplicate_option")
			}
			seen[s] = true
			if len(q.Options) > 0 && !q.HasOption(s) {
				return nil, apperr.Validation("response", "unknown_option")
			}
		}
		return MultiSelectValue(ss), nil

	case QuestionTypeNumber:
		var n float64
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, apperr.Validation("response", "expected_number")
		}
		return NumberValue(raw), nil

	case QuestionTypeDate:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, apperr.Validation("response", "expected_date")
		}
		if _, err := time.Parse(dateLayout, s); err != nil {
			return nil, apperr.Validation("response", "expected_date")
		}
		return DateValue(s), nil

	case QuestionTypeBoolean:
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, apperr.Validation("response", "expected_boolean")
		}
		return BoolValue(b), nil
	}

	// Kinds added later are stored as submitted.
	compact, err := EncodeRaw(raw)
	if err != nil {
		return nil, err
	}
	return RawValue{Type: q.QuestionType, Raw: compact}, nil
}

// EncodeRaw compacts a submitted value for storage without changing its content.
func EncodeRaw(raw json.RawMessage) (datatypes.JSON, error) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return nil, apperr.Validation("response", "invalid_json")
	}
	return datatypes.JSON(buf.Bytes()), nil
}
