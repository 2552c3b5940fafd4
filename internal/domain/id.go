package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ID is the normalized identifier used across the dashboard. The backend
// returns ids as JSON numbers on some endpoints and as strings on others;
// both decode into the same ID.
type ID string

// ParseID coerces string, integer, integral float and json.Number values
// into an ID. The second result is false when v cannot be an identifier.
func ParseID(v any) (ID, bool) {
	switch t := v.(type) {
	case ID:
		return t, t != ""
	case *ID:
		if t == nil {
			return "", false
		}
		return *t, *t != ""
	case string:
		s := strings.TrimSpace(t)
		return ID(s), s != ""
	case json.Number:
		return numberID(t)
	case int:
		return ID(strconv.FormatInt(int64(t), 10)), true
	case int8:
		return ID(strconv.FormatInt(int64(t), 10)), true
	case int16:
		return ID(strconv.FormatInt(int64(t), 10)), true
	case int32:
		return ID(strconv.FormatInt(int64(t), 10)), true
	case int64:
		return ID(strconv.FormatInt(t, 10)), true
	case uint:
		return ID(strconv.FormatUint(uint64(t), 10)), true
	case uint8:
		return ID(strconv.FormatUint(uint64(t), 10)), true
	case uint16:
		return ID(strconv.FormatUint(uint64(t), 10)), true
	case uint32:
		return ID(strconv.FormatUint(uint64(t), 10)), true
	case uint64:
		return ID(strconv.FormatUint(t, 10)), true
	case float32:
		return floatID(float64(t))
	case float64:
		return floatID(t)
	default:
		return "", false
	}
}

func numberID(n json.Number) (ID, bool) {
	if i, err := n.Int64(); err == nil {
		return ID(strconv.FormatInt(i, 10)), true
	}
	// Integer literals past int64 keep every digit.
	if s := strings.TrimPrefix(n.String(), "-"); s != "" && strings.Trim(s, "0123456789") == "" {
		return ParseID(n.String())
	}
	if f, err := n.Float64(); err == nil {
		return floatID(f)
	}
	return ParseID(string(n))
}

func floatID(f float64) (ID, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return "", false
	}
	return ID(strconv.FormatFloat(f, 'f', 0, 64)), true
}

// String returns the raw identifier.
func (id ID) String() string {
	return string(id)
}

// IsZero reports whether the id is empty.
func (id ID) IsZero() bool {
	return id == ""
}

func (id ID) numeric() bool {
	if id == "" || len(id) > 18 {
		return false
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return false
		}
	}
	return id == "0" || id[0] != '0'
}

// MarshalJSON writes numeric ids as JSON numbers so the backend receives the
// representation it issued.
func (id ID) MarshalJSON() ([]byte, error) {
	if id.numeric() {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// UnmarshalJSON accepts both number and string ids.
func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(strings.TrimSpace(s))
		return nil
	}
	n := json.Number(b)
	if _, err := n.Float64(); err != nil {
		return fmt.Errorf("invalid id %s", b)
	}
	parsed, ok := numberID(n)
	if !ok {
		return fmt.Errorf("invalid id %s", b)
	}
	*id = parsed
	return nil
}
