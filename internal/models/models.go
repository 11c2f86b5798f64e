package models

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Kind is the JSON type of a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	}
	return "unknown"
}

// Value is a node of the repaired value tree. The set of implementations is
// closed: Null, Bool, Int, Float, String, Array and *Object.
type Value interface {
	Kind() Kind
	isValue()
}

// Null is the JSON null.
type Null struct{}

// Bool is a JSON boolean.
type Bool bool

// Int is a JSON number written without fraction or exponent.
type Int int64

// Float is a JSON number written with a fraction or exponent.
type Float float64

// String holds the raw text found between the quotes of a string token.
// Escape sequences are kept undecoded; the serializer resolves them.
type String string

// Array is an ordered JSON array.
type Array []Value

func (Null) Kind() Kind    { return KindNull }
func (Bool) Kind() Kind    { return KindBool }
func (Int) Kind() Kind     { return KindNumber }
func (Float) Kind() Kind   { return KindNumber }
func (String) Kind() Kind  { return KindString }
func (Array) Kind() Kind   { return KindArray }
func (*Object) Kind() Kind { return KindObject }

func (Null) isValue()    {}
func (Bool) isValue()    {}
func (Int) isValue()     {}
func (Float) isValue()   {}
func (String) isValue()  {}
func (Array) isValue()   {}
func (*Object) isValue() {}

// Object is a JSON object that remembers the order in which keys were first
// set. Setting an existing key replaces its value in place.
type Object struct {
	entries *orderedmap.OrderedMap[string, Value]
}

// NewObject returns an empty object.
func NewObject() *Object {
	return &Object{entries: orderedmap.New[string, Value]()}
}

// Set stores value under key. It reports whether key was already present.
func (o *Object) Set(key string, value Value) bool {
	_, present := o.entries.Set(key, value)
	return present
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (Value, bool) {
	return o.entries.Get(key)
}

// Len returns the number of distinct keys.
func (o *Object) Len() int {
	if o == nil || o.entries == nil {
		return 0
	}
	return o.entries.Len()
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	keys := make([]string, 0, o.Len())
	o.Each(func(key string, _ Value) {
		keys = append(keys, key)
	})
	return keys
}

// Each calls fn for every entry in insertion order.
func (o *Object) Each(fn func(key string, value Value)) {
	if o == nil || o.entries == nil {
		return
	}
	for pair := o.entries.Oldest(); pair != nil; pair = pair.Next() {
		fn(pair.Key, pair.Value)
	}
}

// ParseResult is the unit of composition of the parser: the value found at a
// position (nil when there is none) and the index of the next unconsumed token.
type ParseResult struct {
	Value Value
	Index int
}

// Found reports whether a value was produced.
func (r ParseResult) Found() bool {
	return r.Value != nil
}
