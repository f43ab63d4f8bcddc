package common

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseDpid converts a dpid as delivered by a snapshot into a Node.
// Colon-delimited hex ("00:00:00:00:00:00:00:01"), decimal strings and numbers are accepted.
func ParseDpid(v interface{}) (Node, error) {
	switch d := v.(type) {
	case string:
		s := strings.TrimSpace(d)
		if strings.Contains(s, ":") {
			n, err := strconv.ParseUint(strings.ReplaceAll(s, ":", ""), 16, 64)
			if err != nil {
				return 0, fmt.Errorf("invalid dpid %q: %w", d, err)
			}
			return Node(n), nil
		}
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid dpid %q: %w", d, err)
		}
		return Node(n), nil
	case Node:
		return d, nil
	default:
		n, err := toUint(v, math.MaxUint64)
		if err != nil {
			return 0, fmt.Errorf("invalid dpid %v: %w", v, err)
		}
		return Node(n), nil
	}
}

// FormatDpid renders a Node as 8 colon-delimited hex bytes
func FormatDpid(n Node) string {
	h := fmt.Sprintf("%016x", uint64(n))
	parts := make([]string, 0, 8)
	for i := 0; i < len(h); i += 2 {
		parts = append(parts, h[i:i+2])
	}
	return strings.Join(parts, ":")
}

// ParsePort converts a port number given as a number or a numeric string
func ParsePort(v interface{}) (Port, error) {
	switch p := v.(type) {
	case string:
		n, err := strconv.ParseUint(strings.TrimSpace(p), 10, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid port %q: %w", p, err)
		}
		return Port(n), nil
	case Port:
		return p, nil
	default:
		n, err := toUint(v, math.MaxUint32)
		if err != nil {
			return 0, fmt.Errorf("invalid port %v: %w", v, err)
		}
		return Port(n), nil
	}
}

func toUint(v interface{}, max uint64) (uint64, error) {
	var n uint64
	switch x := v.(type) {
	case int:
		if x < 0 {
			return 0, fmt.Errorf("negative value")
		}
		n = uint64(x)
	case int32:
		if x < 0 {
			return 0, fmt.Errorf("negative value")
		}
		n = uint64(x)
	case int64:
		if x < 0 {
			return 0, fmt.Errorf("negative value")
		}
		n = uint64(x)
	case uint:
		n = uint64(x)
	case uint16:
		n = uint64(x)
	case uint32:
		n = uint64(x)
	case uint64:
		n = x
	case float64:
		if x < 0 || x != math.Trunc(x) || x >= math.MaxUint64 {
			return 0, fmt.Errorf("not an unsigned integer")
		}
		n = uint64(x)
	case json.Number:
		u, err := strconv.ParseUint(x.String(), 10, 64)
		if err != nil {
			return 0, err
		}
		n = u
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
	if n > max {
		return 0, fmt.Errorf("value %d out of range", n)
	}
	return n, nil
}
