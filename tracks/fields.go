package tracks

import "go2tv.app/trackstate/bundle"

// fieldReader reads optional scalar fields, leaving the destination
// untouched when a field is absent. The first type error sticks.
type fieldReader struct {
	b   bundle.Bundle
	err error
}

func (r *fieldReader) str(field int, dst *string) {
	if r.err != nil {
		return
	}
	v, ok, err := r.b.String(field)
	r.set(ok, err, func() { *dst = v })
}

func (r *fieldReader) integer(field int, dst *int) {
	if r.err != nil {
		return
	}
	v, ok, err := r.b.Int(field)
	r.set(ok, err, func() { *dst = v })
}

func (r *fieldReader) float(field int, dst *float64) {
	if r.err != nil {
		return
	}
	v, ok, err := r.b.Float(field)
	r.set(ok, err, func() { *dst = v })
}

func (r *fieldReader) boolean(field int, dst *bool) {
	if r.err != nil {
		return
	}
	v, ok, err := r.b.Bool(field)
	r.set(ok, err, func() { *dst = v })
}

func (r *fieldReader) set(ok bool, err error, assign func()) {
	if err != nil {
		r.err = err
		return
	}
	if ok {
		assign()
	}
}
