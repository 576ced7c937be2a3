package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"regexp"
	"strconv"
)

// numberLiteral is the JSON number grammar. Literals are emitted verbatim,
// so anything ParseFloat accepts beyond it (".5", "+1", hex) stays text.
var numberLiteral = regexp.MustCompile(`^-?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][+-]?[0-9]+)?$`)

// ErrNotScalar is returned when a cell value is a JSON array or object.
var ErrNotScalar = errors.New("cell value is not a scalar")

// Kind identifies the type of a cell value.
type Kind int

const (
	// KindString is a text value. The empty string is the sentinel for
	// missing cells.
	KindString Kind = iota
	// KindNumber is a numeric value kept as its literal text.
	KindNumber
	// KindNull marks a missing cell on raw engine output. It never appears
	// in a normalized Table.
	KindNull
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindNull:
		return "null"
	default:
		return "unknown"
	}
}

// Value is a scalar table cell.
//
// Numbers keep the literal they were read from so that a value decoded from
// JSON or a spreadsheet is written back unchanged. Value is comparable.
type Value struct {
	kind Kind
	text string
}

// Empty is the canonical sentinel for missing cells.
var Empty = Value{}

// Null is the raw missing-value marker emitted by extraction engines.
var Null = Value{kind: KindNull}

// String returns a text value.
func String(s string) Value {
	return Value{kind: KindString, text: s}
}

// Number returns a numeric value. NaN and infinities have no textual
// representation in the exports and are reported as Null.
func Number(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Null
	}
	return Value{kind: KindNumber, text: strconv.FormatFloat(f, 'f', -1, 64)}
}

// NumberLiteral returns a numeric value from its literal text. It returns
// false if lit is not a finite number.
func NumberLiteral(lit string) (Value, bool) {
	if !numberLiteral.MatchString(lit) {
		return Value{}, false
	}
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}, false
	}
	return Value{kind: KindNumber, text: lit}, true
}

// Kind returns the kind of the value.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is the raw missing-value marker.
func (v Value) IsNull() bool { return v.kind == KindNull }

// String returns the string form of the value: the text, the numeric
// literal, or "" for Null.
func (v Value) String() string {
	return v.text
}

// Float returns the numeric value of v. ok is false for non-numbers.
func (v Value) Float() (f float64, ok bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	f, err := strconv.ParseFloat(v.text, 64)
	return f, err == nil
}

// Int returns v as an integer when it is a number without a fractional
// part that fits into an int64.
func (v Value) Int() (int64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	i, err := strconv.ParseInt(v.text, 10, 64)
	return i, err == nil
}

// Clean returns the sentinel for Null and v otherwise.
func (v Value) Clean() Value {
	if v.kind == KindNull {
		return Empty
	}
	return v
}

// MarshalJSON encodes strings as JSON strings, numbers as JSON numbers and
// Null as null.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNumber:
		return []byte(v.text), nil
	case KindNull:
		return []byte("null"), nil
	default:
		return json.Marshal(v.text)
	}
}

// UnmarshalJSON decodes a JSON scalar. Booleans become their text form and
// null becomes Null; arrays and objects are rejected.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}

	val, err := FromToken(tok)
	if err != nil {
		return err
	}

	*v = val
	return nil
}

// FromToken converts a token produced by a json.Decoder with UseNumber
// enabled into a Value.
func FromToken(tok json.Token) (Value, error) {
	switch t := tok.(type) {
	case nil:
		return Null, nil
	case string:
		return String(t), nil
	case bool:
		return String(strconv.FormatBool(t)), nil
	case json.Number:
		if val, ok := NumberLiteral(t.String()); ok {
			return val, nil
		}
		return String(t.String()), nil
	case float64:
		return Number(t), nil
	default:
		return Value{}, ErrNotScalar
	}
}
