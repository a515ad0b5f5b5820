package validation

import (
	"fmt"
	"sort"
	"strings"
)

// Error collects per-field validation failures. Fields are keyed by their JSON path,
// e.g. "portfolio[1].weight". The first message recorded for a field wins.
type Error struct {
	Fields map[string]string
}

// Add records msg for field unless the field already failed.
func (e *Error) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

// Err returns e when any field failed and nil otherwise.
func (e *Error) Err() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// Error lists the failures sorted by field so the message is stable.
func (e *Error) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	msgs := make([]string, 0, len(fields))
	for _, field := range fields {
		msgs = append(msgs, fmt.Sprintf("%s: %s", field, e.Fields[field]))
	}
	return strings.Join(msgs, "; ")
}
