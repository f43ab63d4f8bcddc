package flowtable

import (
	"fmt"
	"reflect"

	"flowpath/common"
)

// Match field names used by the tracer
const (
	FieldInPort = "in_port"
	FieldDlSrc  = "dl_src"
	FieldDlDst  = "dl_dst"
)

// ActionOutput is the forwarding action type, every other type rewrites or is ignored
const ActionOutput = "OUTPUT"

// RawEntry is one flow entry as delivered by the control plane
type RawEntry struct {
	Match   map[string]interface{}   `json:"match" yaml:"match"`
	Actions []map[string]interface{} `json:"actionsList" yaml:"actionsList"`
}

// Match maps header-field names to values
type Match map[string]interface{}

// Clone returns a shallow copy, values are immutable scalars after canonicalization
func (m Match) Clone() Match {
	c := make(Match, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

// Equal compares the full key/value set
func (m Match) Equal(other Match) bool {
	if len(m) != len(other) {
		return false
	}
	for k, v := range m {
		ov, ok := other[k]
		if !ok || !reflect.DeepEqual(v, ov) {
			return false
		}
	}
	return true
}

// InPort returns the canonical in_port of the match
func (m Match) InPort() (common.Port, bool) {
	v, ok := m[FieldInPort]
	if !ok {
		return 0, false
	}
	p, err := common.ParsePort(v)
	if err != nil {
		return 0, false
	}
	return p, true
}

// SetInPort stores p in the canonical in_port representation
func (m Match) SetInPort(p common.Port) {
	m[FieldInPort] = int64(p)
}

// Action is either an OUTPUT to Port, or a rewrite of Field to Value.
// A non-output action with an empty Field changes nothing.
type Action struct {
	Type  string
	Port  common.Port
	Field string
	Value interface{}
}

func (a Action) IsOutput() bool {
	return a.Type == ActionOutput
}

func (a Action) String() string {
	if a.IsOutput() {
		return fmt.Sprintf("%s:%d", a.Type, a.Port)
	}
	if a.Field == "" {
		return a.Type
	}
	return fmt.Sprintf("%s:%s=%v", a.Type, a.Field, a.Value)
}

// FlowEntry is a canonical Match with its ordered actions.
// Raw keeps the match exactly as the snapshot supplied it.
type FlowEntry struct {
	Match   Match
	Raw     Match
	Actions []Action
}

// OutputPort returns the port of the last OUTPUT action
func (e *FlowEntry) OutputPort() (common.Port, bool) {
	var (
		port  common.Port
		found bool
	)
	for _, a := range e.Actions {
		if a.IsOutput() {
			port, found = a.Port, true
		}
	}
	return port, found
}

// FlowTable is the ordered entry list of one switch
type FlowTable []*FlowEntry
