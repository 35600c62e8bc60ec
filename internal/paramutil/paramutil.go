// Package paramutil implements the string parameter conventions of the
// command surface: numeric values are ASCII decimal.
package paramutil

import "strconv"

// ParseFloat parses an ASCII-decimal def_params/dyn_params element.
func ParseFloat(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}

// ParseFloats parses every element of ss as ASCII decimal.
func ParseFloats(ss []string) ([]float64, error) {
	out := make([]float64, len(ss))
	for i, s := range ss {
		v, err := ParseFloat(s)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
