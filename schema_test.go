package dowse

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSchemaOf(t *testing.T) {
	type Config struct {
		VarInt   int
		VarStr   string
		APIKey   string
		Renamed  bool `conf:"use_color"`
		Skipped  int  `conf:"-"`
		Timeout  time.Duration
		internal int
	}

	schema := SchemaOf[Config]()

	assert.Equal(t, Schema{
		"var_int":   reflect.TypeOf(0),
		"var_str":   reflect.TypeOf(""),
		"api_key":   reflect.TypeOf(""),
		"use_color": reflect.TypeOf(false),
		"timeout":   reflect.TypeOf(time.Duration(0)),
	}, schema)
}

func TestSchemaOf_TagOptions(t *testing.T) {
	type Config struct {
		Port int `conf:"port,omitempty"`
	}
	schema := SchemaOf[Config]()
	assert.Equal(t, reflect.TypeOf(0), schema["port"])
}

func TestSchemaOf_NonStruct(t *testing.T) {
	// Non-introspectable targets have no schema; coercion degrades to
	// pass-through.
	assert.Nil(t, SchemaOf[map[string]any]())
	assert.Nil(t, SchemaOf[int]())
}

func TestSchemaOf_PointerTarget(t *testing.T) {
	type Config struct {
		Host string
	}
	schema := SchemaOf[*Config]()
	assert.Equal(t, reflect.TypeOf(""), schema["host"])
}
