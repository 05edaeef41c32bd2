package logging

import (
	"time"

	"github.com/felixgeelhaar/bolt/v3"
)

// Field is a function that applies structured data to a log event.
type Field func(*bolt.Event) *bolt.Event

// Component adds a component field for categorization.
func Component(name string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("component", name)
	}
}

// Route adds the HTTP method and path.
func Route(method, path string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("method", method).Str("path", path)
	}
}

// Status adds an HTTP status code.
func Status(code int) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int("status", code)
	}
}

// RequestID adds a request ID field.
func RequestID(id string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("request_id", id)
	}
}

// Duration adds a duration field in milliseconds.
func Duration(d time.Duration) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int64("duration_ms", d.Milliseconds())
	}
}

// Rows adds a row count.
func Rows(n int) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int("rows", n)
	}
}

// Columns adds a column count.
func Columns(n int) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int("columns", n)
	}
}

// Chart adds the chart kind being shaped.
func Chart(kind string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("chart", kind)
	}
}

// File adds a source file path.
func File(path string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("file", path)
	}
}

// Key adds a dataset store key.
func Key(key string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("key", key)
	}
}

// Backend adds a store backend name.
func Backend(name string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("backend", name)
	}
}

// ErrorField adds an error field.
func ErrorField(err error) Field {
	return func(e *bolt.Event) *bolt.Event {
		if err == nil {
			return e
		}
		return e.Err(err)
	}
}

// Str adds a string field with custom key.
func Str(key, value string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str(key, value)
	}
}
