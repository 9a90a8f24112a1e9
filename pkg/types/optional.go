package types

import "strconv"

// OptionalInt is an integer field that may be unknown. The zero value is
// unknown, so an extractor that finds nothing leaves the field untouched.
type OptionalInt struct {
	Value int
	Known bool
}

// IntValue wraps a known integer.
func IntValue(v int) OptionalInt {
	return OptionalInt{Value: v, Known: true}
}

func (o OptionalInt) String() string {
	if !o.Known {
		return UnknownSentinel
	}
	return strconv.Itoa(o.Value)
}

// OptionalFloat is a float field that may be unknown. Known values render
// with two decimals, matching the litre precision of the artifact.
type OptionalFloat struct {
	Value float64
	Known bool
}

// FloatValue wraps a known float.
func FloatValue(v float64) OptionalFloat {
	return OptionalFloat{Value: v, Known: true}
}

func (o OptionalFloat) String() string {
	if !o.Known {
		return UnknownSentinel
	}
	return strconv.FormatFloat(o.Value, 'f', 2, 64)
}
