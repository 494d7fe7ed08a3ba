package internal

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrTableMissing is returned when a configured table is absent from the database.
var ErrTableMissing = errors.New("table does not exist")

// Column is a column as reported by the database catalog. Type is lower case.
type Column struct {
	Type     string
	Nullable bool
}

// TableSchema pairs a configured table name with the columns the repo needs.
type TableSchema struct {
	Name    string
	Columns map[string]Column
}

// SchemaError lists how an existing table differs from its TableSchema.
type SchemaError struct {
	Table      string
	Missing    []string
	Mismatched []string
}

func (e *SchemaError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "table %s does not match the gallery schema", e.Table)
	if len(e.Missing) > 0 {
		fmt.Fprintf(&b, "; missing columns: %s", strings.Join(e.Missing, ", "))
	}
	if len(e.Mismatched) > 0 {
		fmt.Fprintf(&b, "; mismatched columns: %s", strings.Join(e.Mismatched, "; "))
	}
	return b.String()
}

// CheckColumns compares the catalog's view of a table with want. Extra
// columns are allowed. The result is nil or a *SchemaError with sorted
// entries.
func CheckColumns(want TableSchema, got map[string]Column) error {
	names := make([]string, 0, len(want.Columns))
	for name := range want.Columns {
		names = append(names, name)
	}
	sort.Strings(names)

	schemaErr := &SchemaError{Table: want.Name}
	for _, name := range names {
		expected := want.Columns[name]
		actual, ok := got[name]
		if !ok {
			schemaErr.Missing = append(schemaErr.Missing, name)
			continue
		}
		if actual.Type != expected.Type {
			schemaErr.Mismatched = append(schemaErr.Mismatched,
				fmt.Sprintf("%s: expected %s, got %s", name, expected.Type, actual.Type))
		}
		if actual.Nullable != expected.Nullable {
			schemaErr.Mismatched = append(schemaErr.Mismatched,
				fmt.Sprintf("%s: expected nullable=%v, got nullable=%v", name, expected.Nullable, actual.Nullable))
		}
	}

	if len(schemaErr.Missing) == 0 && len(schemaErr.Mismatched) == 0 {
		return nil
	}
	return schemaErr
}
