package core

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

func toInt(val any) (int64, error) {
	var idInt int64
	switch v := val.(type) {
	case int64:
		idInt = v
	case float64:
		idInt = int64(v)
	case int:
		idInt = int64(v)
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("unexpected value for integer field: %q", v)
		}
		idInt = parsed
	default:
		return 0, fmt.Errorf("unexpected type for integer field: %T", v)
	}
	return idInt, nil
}

// ToBool converts loosely typed form input ("yes", 1, "on", true) into a bool.
func ToBool(val any) (bool, error) {
	switch v := val.(type) {
	case nil:
		return false, nil
	case bool:
		return v, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "1", "yes", "y", "on":
			return true, nil
		case "false", "0", "no", "n", "off", "":
			return false, nil
		}
		return false, fmt.Errorf("cannot convert %q to bool", v)
	case int:
		return v != 0, nil
	case int32:
		return v != 0, nil
	case int64:
		return v != 0, nil
	case uint:
		return v != 0, nil
	case uint64:
		return v != 0, nil
	case float32:
		return v != 0, nil
	case float64:
		return v != 0, nil
	}
	return false, fmt.Errorf("cannot convert %T to bool", val)
}

// ToRecord copies a generic map into a Record.
func ToRecord(m map[string]any) Record {
	converted := make(Record, len(m))
	for k, v := range m {
		converted[k] = v
	}
	return converted
}

// ToRecordSet converts a list of generic maps into a RecordSet.
func ToRecordSet(list []map[string]any) RecordSet {
	records := make(RecordSet, 0, len(list))
	for _, item := range list {
		records = append(records, ToRecord(item))
	}
	return records
}

// anyToRecordSet converts decoded JSON array content. Non-object items are skipped.
func anyToRecordSet(list []any) RecordSet {
	records := make(RecordSet, 0, len(list))
	for _, item := range list {
		if m, ok := item.(map[string]any); ok {
			records = append(records, ToRecord(m))
		}
	}
	return records
}

// contains checks if a string is present in a slice
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func sortedInts(values []int) []int {
	out := append([]int(nil), values...)
	sort.Ints(out)
	return out
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(fmt.Sprintf("must: %v", err))
	}
	return v
}
