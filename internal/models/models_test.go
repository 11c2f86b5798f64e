package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObject_PreservesInsertionOrder(t *testing.T) {
	obj := NewObject()
	obj.Set("zeta", Int(1))
	obj.Set("alpha", Int(2))
	obj.Set("mid", Int(3))

	assert.Equal(t, []string{"zeta", "alpha", "mid"}, obj.Keys())
	assert.Equal(t, 3, obj.Len())
}

func TestObject_OverwriteKeepsPosition(t *testing.T) {
	obj := NewObject()
	assert.False(t, obj.Set("a", Int(1)))
	assert.False(t, obj.Set("b", Int(2)))
	assert.True(t, obj.Set("a", String("x")))

	assert.Equal(t, []string{"a", "b"}, obj.Keys())
	v, ok := obj.Get("a")
	assert.True(t, ok)
	assert.Equal(t, String("x"), v)
}

func TestObject_Get_Missing(t *testing.T) {
	_, ok := NewObject().Get("missing")
	assert.False(t, ok)
}

func TestObject_Each(t *testing.T) {
	obj := NewObject()
	obj.Set("a", Null{})
	obj.Set("b", Bool(true))

	var seen []string
	obj.Each(func(key string, value Value) {
		seen = append(seen, key+"="+value.Kind().String())
	})
	assert.Equal(t, []string{"a=null", "b=bool"}, seen)
}

func TestObject_NilSafe(t *testing.T) {
	var obj *Object
	assert.Equal(t, 0, obj.Len())
	assert.Empty(t, obj.Keys())
	obj.Each(func(string, Value) { t.Fatal("unexpected entry") })
}

func TestValue_Kinds(t *testing.T) {
	tests := []struct {
		value Value
		kind  Kind
	}{
		{Null{}, KindNull},
		{Bool(false), KindBool},
		{Int(1), KindNumber},
		{Float(1.5), KindNumber},
		{String("s"), KindString},
		{Array{}, KindArray},
		{NewObject(), KindObject},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.value.Kind())
		})
	}
	assert.Equal(t, "unknown", Kind(99).String())
}

func TestParseResult_Found(t *testing.T) {
	assert.False(t, ParseResult{Index: 3}.Found())
	assert.True(t, ParseResult{Value: Null{}, Index: 1}.Found())
}
