package config

import (
	"sort"

	"github.com/zclconf/go-cty/cty"

	"github.com/McLeodMoores/xl4j-sub002/errors"
	"github.com/McLeodMoores/xl4j-sub002/wire"
)

// Defaults converts a defaults object to wire values keyed by argument
// name. A null value yields no defaults.
func Defaults(v cty.Value) (map[string]wire.Value, error) {
	if v.Type() == cty.NilType || v.IsNull() {
		return nil, nil
	}
	ty := v.Type()
	if !ty.IsObjectType() && !ty.IsMapType() {
		return nil, errors.TypeMismatch(errors.PhaseConfig, []string{"defaults"}, "object", ty.FriendlyName())
	}
	out := make(map[string]wire.Value)
	for it := v.ElementIterator(); it.Next(); {
		key, val := it.Element()
		wv, err := ToWire(val)
		if err != nil {
			return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "default "+key.AsString())
		}
		out[key.AsString()] = wv
	}
	return out, nil
}

// ToWire converts a cty value to a wire value. Strings, numbers and bools
// map to their wire kinds, null to Nil, a sequence of scalars to a row
// and a sequence of sequences to a grid.
func ToWire(v cty.Value) (wire.Value, error) {
	if v.IsNull() {
		return wire.Nil, nil
	}
	if !v.IsKnown() {
		return nil, errors.InvalidInput(errors.PhaseConfig, "value is not known")
	}
	ty := v.Type()
	switch {
	case ty == cty.String:
		return wire.Text(v.AsString()), nil
	case ty == cty.Number:
		f, _ := v.AsBigFloat().Float64()
		return wire.Number(f), nil
	case ty == cty.Bool:
		return wire.Boolean(v.True()), nil
	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		return sequence(v)
	}
	return nil, errors.Unsupported(errors.PhaseConfig, "cannot use "+ty.FriendlyName()+" as a wire value")
}

func sequence(v cty.Value) (wire.Value, error) {
	var (
		rows   [][]wire.Value
		flat   []wire.Value
		nested bool
	)
	for it := v.ElementIterator(); it.Next(); {
		_, el := it.Element()
		t := el.Type()
		if !el.IsNull() && (t.IsListType() || t.IsTupleType() || t.IsSetType()) {
			nested = true
			var row []wire.Value
			for rit := el.ElementIterator(); rit.Next(); {
				_, cell := rit.Element()
				wv, err := ToWire(cell)
				if err != nil {
					return nil, err
				}
				if wv.Kind() == wire.KindArray {
					return nil, errors.Unsupported(errors.PhaseConfig, "arrays nest at most two levels")
				}
				row = append(row, wv)
			}
			rows = append(rows, row)
			continue
		}
		wv, err := ToWire(el)
		if err != nil {
			return nil, err
		}
		flat = append(flat, wv)
	}
	if nested {
		if len(flat) > 0 {
			return nil, errors.Unsupported(errors.PhaseConfig, "cannot mix rows and scalars")
		}
		return wire.NewArray(rows), nil
	}
	return wire.Row(flat...), nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
