package normalize

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	"github.com/mjoubert/kraken-sync/internal/record"
)

// StructuralError reports a source entry that cannot be normalized: a
// missing required sub-object or a field that fails validation. It aborts
// the whole category's normalize call.
type StructuralError struct {
	Category string
	Key      string
	Detail   string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("%s: entry %q: %s", e.Category, e.Key, e.Detail)
}

// amountField pairs a field name with its decimal-string value for
// validation.
type amountField struct {
	name  string
	value string
}

// checkAmounts verifies that monetary string fields parse as decimals.
// Empty strings pass; the venue omits optional amounts that way.
func checkAmounts(category, key string, fields []amountField) error {
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		if _, err := decimal.NewFromString(f.value); err != nil {
			return &StructuralError{
				Category: category,
				Key:      key,
				Detail:   fmt.Sprintf("field %s: %q is not a decimal amount", f.name, f.value),
			}
		}
	}
	return nil
}

// sortedKeys returns the map keys in lexical order so batches are
// deterministic regardless of map iteration order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func nullableString(p *string) record.Value {
	if p == nil {
		return nil
	}
	return *p
}

func nullableInt(p *int64) record.Value {
	if p == nil {
		return nil
	}
	return *p
}

func nullableFloat(p *float64) record.Value {
	if p == nil {
		return nil
	}
	return *p
}

// joinInts renders an integer list as a comma-separated string column.
func joinInts(values []int64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatInt(v, 10)
	}
	return strings.Join(parts, ",")
}

// joinStrings renders a string list as a comma-separated string column, nil
// when the list is empty.
func joinStrings(values []string) record.Value {
	if len(values) == 0 {
		return nil
	}
	return strings.Join(values, ",")
}

// jsonText renders a nested structure as a JSON text column.
func jsonText(category, key, field string, v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", &StructuralError{Category: category, Key: key, Detail: fmt.Sprintf("field %s: %v", field, err)}
	}
	return string(data), nil
}
