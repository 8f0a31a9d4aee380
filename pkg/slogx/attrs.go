package slogx

import (
	"fmt"
	"log/slog"
	"reflect"
)

// KeyLoggerName is the attribute key that names the component emitting a record.
const KeyLoggerName = "logger"

// Error creates a slog.Attr for the given error.
//
// Parameters:
//   - err: The error to be converted into a slog.Attr.
//
// Returns:
//   - slog.Attr: An attribute with the key "error" and the error's message as the value.
func Error(err error) slog.Attr {
	return slog.String("error", err.Error())
}

// Stringer creates a slog.Attr from a value that implements fmt.Stringer.
//
// Parameters:
//   - key: The key for the attribute.
//   - value: An object that implements the fmt.Stringer interface.
//
// Returns:
//   - slog.Attr: An attribute containing the key and the string representation of the value.
func Stringer(key string, value fmt.Stringer) slog.Attr {
	return slog.String(key, value.String())
}

// Type creates a slog.Attr holding the name of a Go type.
//
// Parameters:
//   - key: The key for the attribute.
//   - value: The type to name. A nil type is logged as "<nil>".
//
// Returns:
//   - slog.Attr: An attribute containing the key and the type name, e.g. "string" or "[]int".
func Type(key string, value reflect.Type) slog.Attr {
	if value == nil {
		return slog.String(key, "<nil>")
	}
	return slog.String(key, value.String())
}

// LoggerName creates a slog.Attr naming the component that owns a logger.
//
// Parameters:
//   - name: The name of the logger.
//
// Returns:
//
//	A slog.Attr with the key KeyLoggerName and the name as the value.
func LoggerName(name string) slog.Attr {
	return slog.String(KeyLoggerName, name)
}
