package logger

import (
	"time"

	"github.com/rs/zerolog"
)

// Field is one typed key/value pair. The raw value is kept for the collector.
type Field struct {
	key   string
	value interface{}
	apply func(e *zerolog.Event)
}

func (f Field) Key() string        { return f.key }
func (f Field) Value() interface{} { return f.value }

func String(key, v string) Field {
	return Field{key, v, func(e *zerolog.Event) { e.Str(key, v) }}
}

func Strings(key string, v []string) Field {
	return Field{key, v, func(e *zerolog.Event) { e.Strs(key, v) }}
}

func Int(key string, v int) Field {
	return Field{key, v, func(e *zerolog.Event) { e.Int(key, v) }}
}

func Int64(key string, v int64) Field {
	return Field{key, v, func(e *zerolog.Event) { e.Int64(key, v) }}
}

func Uint64(key string, v uint64) Field {
	return Field{key, v, func(e *zerolog.Event) { e.Uint64(key, v) }}
}

func Float64(key string, v float64) Field {
	return Field{key, v, func(e *zerolog.Event) { e.Float64(key, v) }}
}

func Bool(key string, v bool) Field {
	return Field{key, v, func(e *zerolog.Event) { e.Bool(key, v) }}
}

// Duration is written in milliseconds.
func Duration(key string, v time.Duration) Field {
	return Field{key, v.Milliseconds(), func(e *zerolog.Event) { e.Dur(key, v) }}
}

// Error uses the "error" key. A nil error is written as null.
func Error(err error) Field {
	var v interface{}
	if err != nil {
		v = err.Error()
	}
	return Field{zerolog.ErrorFieldName, v, func(e *zerolog.Event) { e.Err(err) }}
}

func Any(key string, v interface{}) Field {
	return Field{key, v, func(e *zerolog.Event) { e.Interface(key, v) }}
}

func fieldMap(fields []Field) map[string]interface{} {
	if len(fields) == 0 {
		return nil
	}
	m := make(map[string]interface{}, len(fields))
	for _, f := range fields {
		m[f.key] = f.value
	}
	return m
}
