package flowtable

import (
	"encoding/json"
	"math"
	"strings"

	"flowpath/common"

	log "github.com/sirupsen/logrus"
)

type rewrite struct {
	field    string
	valueKey string
}

// rewrite action types and the match field they overwrite
var rewriteActions = map[string]rewrite{
	"DL_DST":       {field: "dl_dst", valueKey: "dl_dst"},
	"DL_SRC":       {field: "dl_src", valueKey: "dl_src"},
	"NW_DST":       {field: "nw_dst", valueKey: "nw_dst"},
	"NW_SRC":       {field: "nw_src", valueKey: "nw_src"},
	"NW_TOS":       {field: "nw_tos", valueKey: "nw_tos"},
	"TP_DST":       {field: "tp_dst", valueKey: "tp_dst"},
	"TP_SRC":       {field: "tp_src", valueKey: "tp_src"},
	"SET_VLAN":     {field: "dl_vlan", valueKey: "vlan_id"},
	"SET_VLAN_PCP": {field: "dl_vlan_pcp", valueKey: "vlan_pcp"},
}

// action types that carry no header rewrite
var noopActions = map[string]bool{
	"STRIP_VLAN":   true,
	"ENQUEUE":      true,
	"SET_FIELD":    true,
	"EXPERIMENTER": true,
}

// Canonicalize lower-cases string values, turns in_port into a port number and
// folds integral numbers to int64 so json and yaml snapshots compare equal.
func Canonicalize(m map[string]interface{}) Match {
	c := make(Match, len(m))
	for k, v := range m {
		c[k] = canonicalValue(k, v)
	}
	return c
}

func canonicalValue(field string, v interface{}) interface{} {
	if field == FieldInPort {
		if p, err := common.ParsePort(v); err == nil {
			return int64(p)
		}
	}
	switch x := v.(type) {
	case string:
		return strings.ToLower(x)
	case float64:
		if x == math.Trunc(x) && x >= math.MinInt64 && x < math.MaxInt64 {
			return int64(x)
		}
		return x
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return n
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case uint64:
		if x <= math.MaxInt64 {
			return int64(x)
		}
		return x
	default:
		return v
	}
}

// decodeAction interprets one actionsList element. ok is false when the action is unusable.
func decodeAction(raw map[string]interface{}) (Action, bool) {
	t, _ := raw["type"].(string)
	if t == "" {
		return Action{}, false
	}
	typ := strings.ToUpper(t)

	if typ == ActionOutput {
		p, err := common.ParsePort(raw["port"])
		if err != nil {
			log.Warningf("ignoring OUTPUT action with bad port %v: %v", raw["port"], err)
			return Action{}, false
		}
		return Action{Type: typ, Port: p}, true
	}

	if noopActions[typ] {
		return Action{Type: typ}, true
	}

	rw, known := rewriteActions[typ]
	if !known {
		f := strings.ToLower(typ)
		rw = rewrite{field: f, valueKey: f}
	}
	v, ok := raw[rw.valueKey]
	if !ok {
		return Action{Type: typ}, true
	}
	return Action{Type: typ, Field: rw.field, Value: canonicalValue(rw.field, v)}, true
}

// NewFlowEntry canonicalizes a raw entry
func NewFlowEntry(raw RawEntry) *FlowEntry {
	e := &FlowEntry{
		Match:   Canonicalize(raw.Match),
		Raw:     Match(raw.Match).Clone(),
		Actions: make([]Action, 0, len(raw.Actions)),
	}
	for _, ra := range raw.Actions {
		if a, ok := decodeAction(ra); ok {
			e.Actions = append(e.Actions, a)
		}
	}
	return e
}
