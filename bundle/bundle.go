// Package bundle implements a self-describing record keyed by small integer
// field numbers. Records tolerate missing and unknown fields, so values
// encoded with one schema revision can be read by another.
package bundle

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"reflect"
	"strconv"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
)

var (
	// ErrFieldType is returned when a field is present but holds a value
	// of the wrong shape.
	ErrFieldType = errors.New("bundle: unexpected field type")

	// ErrNotRecord is returned by Unmarshal when the payload is not a JSON object.
	ErrNotRecord = errors.New("bundle: payload is not a record")

	// ErrTrailingData is returned by Unmarshal when bytes follow the record.
	ErrTrailingData = errors.New("bundle: trailing data after record")
)

// Bundle maps base-36 field keys to values. The zero value is a valid
// empty record for reading; use New before writing.
type Bundle map[string]any

// New returns an empty Bundle.
func New() Bundle {
	return make(Bundle)
}

// Key renders a field number the way it is stored in a record.
func Key(field int) string {
	return strconv.FormatInt(int64(field), 36)
}

// Has reports whether field holds a non-nil value.
func (b Bundle) Has(field int) bool {
	_, ok := b.lookup(field)
	return ok
}

func (b Bundle) lookup(field int) (any, bool) {
	v, ok := b[Key(field)]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

func (b Bundle) PutBool(field int, v bool) {
	b[Key(field)] = v
}

func (b Bundle) PutInt(field int, v int) {
	b[Key(field)] = v
}

func (b Bundle) PutFloat(field int, v float64) {
	b[Key(field)] = v
}

func (b Bundle) PutString(field int, v string) {
	b[Key(field)] = v
}

// PutIntSlice stores a copy of v.
func (b Bundle) PutIntSlice(field int, v []int) {
	cp := make([]int, len(v))
	copy(cp, v)
	b[Key(field)] = cp
}

// PutBoolSlice stores a copy of v.
func (b Bundle) PutBoolSlice(field int, v []bool) {
	cp := make([]bool, len(v))
	copy(cp, v)
	b[Key(field)] = cp
}

func (b Bundle) PutBundle(field int, v Bundle) {
	b[Key(field)] = v
}

// PutBundleSlice stores a copy of the slice header list; the nested
// records themselves are shared.
func (b Bundle) PutBundleSlice(field int, v []Bundle) {
	cp := make([]Bundle, len(v))
	copy(cp, v)
	b[Key(field)] = cp
}

// Bool reads a boolean field. ok is false when the field is absent.
func (b Bundle) Bool(field int) (v bool, ok bool, err error) {
	err = b.get(field, &v, &ok)
	return v, ok, err
}

func (b Bundle) Int(field int) (v int, ok bool, err error) {
	err = b.get(field, &v, &ok)
	return v, ok, err
}

func (b Bundle) Float(field int) (v float64, ok bool, err error) {
	err = b.get(field, &v, &ok)
	return v, ok, err
}

func (b Bundle) String(field int) (v string, ok bool, err error) {
	err = b.get(field, &v, &ok)
	return v, ok, err
}

func (b Bundle) IntSlice(field int) (v []int, ok bool, err error) {
	err = b.get(field, &v, &ok)
	return v, ok, err
}

func (b Bundle) BoolSlice(field int) (v []bool, ok bool, err error) {
	err = b.get(field, &v, &ok)
	return v, ok, err
}

// Sub reads a nested record.
func (b Bundle) Sub(field int) (Bundle, bool, error) {
	raw, ok := b.lookup(field)
	if !ok {
		return nil, false, nil
	}

	switch v := raw.(type) {
	case Bundle:
		return v, true, nil
	case map[string]any:
		return Bundle(v), true, nil
	}

	return nil, true, errors.Wrapf(ErrFieldType, "field %s: got %T, want record", Key(field), raw)
}

// SubSlice reads a list of nested records.
func (b Bundle) SubSlice(field int) (v []Bundle, ok bool, err error) {
	err = b.get(field, &v, &ok)
	return v, ok, err
}

// get converts the stored value into out. Values straight from Put* and
// values that went through the JSON wire form (json.Number, []any,
// map[string]any) are both accepted; anything else is ErrFieldType.
func (b Bundle) get(field int, out any, ok *bool) error {
	raw, present := b.lookup(field)
	*ok = present
	if !present {
		return nil
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: false,
		DecodeHook:       strictNumbers,
	})
	if err != nil {
		return errors.Wrap(err, "bundle: decoder")
	}

	if err := dec.Decode(raw); err != nil {
		return errors.Wrapf(ErrFieldType, "field %s: %v", Key(field), err)
	}

	return nil
}

// strictNumbers keeps numeric fields exact. A wire number never becomes a
// string or a bool, and a fractional value never becomes an integer.
func strictNumbers(from, to reflect.Type, data any) (any, error) {
	if n, ok := data.(json.Number); ok {
		switch to.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			v, err := n.Int64()
			if err != nil {
				return nil, errors.Errorf("number %s is not an integer", n)
			}
			return v, nil
		case reflect.Float32, reflect.Float64:
			v, err := n.Float64()
			if err != nil {
				return nil, errors.Errorf("number %s is out of range", n)
			}
			return v, nil
		case reflect.String, reflect.Bool:
			return nil, errors.Errorf("got number %s, want %s", n, to.Kind())
		}
		return data, nil
	}

	switch from.Kind() {
	case reflect.Float32, reflect.Float64:
		switch to.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			v := reflect.ValueOf(data).Float()
			if v != math.Trunc(v) || math.IsInf(v, 0) || v > math.MaxInt64 || v < math.MinInt64 {
				return nil, errors.Errorf("float %v is not an integer", v)
			}
			return int64(v), nil
		}
	}

	return data, nil
}

// Marshal encodes b into its JSON wire form.
func Marshal(b Bundle) ([]byte, error) {
	if b == nil {
		b = New()
	}

	out, err := json.Marshal(b)
	if err != nil {
		return nil, errors.Wrap(err, "bundle: marshal")
	}

	return out, nil
}

// Unmarshal decodes a JSON wire form produced by Marshal. Numbers are kept
// as json.Number so integer fields round-trip without float rounding.
func Unmarshal(data []byte) (Bundle, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, errors.Wrap(err, "bundle: unmarshal")
	}

	if m == nil {
		return nil, ErrNotRecord
	}

	if _, err := dec.Token(); err != io.EOF {
		return nil, ErrTrailingData
	}

	return Bundle(m), nil
}
