// Package command parses client JSON frames and applies them to a
// session, replying on the same entry's outbound queue where the
// command calls for it.
package command

import (
	"encoding/json"
	"strconv"
	"strings"
)

// wireCommand is the generic shape every inbound frame is unmarshaled
// into before the type switch in Apply picks it apart further.
type wireCommand struct {
	Type      string          `json:"type"`
	Config    *wireConfig     `json:"config,omitempty"`
	Value     json.RawMessage `json:"value,omitempty"`
	Timeframe int             `json:"timeframe,omitempty"`
	Timestamp json.RawMessage `json:"timestamp,omitempty"`
}

// wireConfig mirrors the embedded config object of a "start" command.
// Every field is a pointer so omission can be distinguished from an
// explicit zero value.
type wireConfig struct {
	Symbol    *string  `json:"symbol,omitempty"`
	Price     *float64 `json:"price,omitempty"`
	Spread    *float64 `json:"spread,omitempty"`
	Sentiment *string  `json:"sentiment,omitempty"`
	Intensity *string  `json:"intensity,omitempty"`
	Speed     *float64 `json:"speed,omitempty"`
}

func parse(raw []byte) (*wireCommand, error) {
	var c wireCommand
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// asString unwraps a JSON string value, tolerating an already-bare
// token (clients in the wild send both quoted and unquoted scalars).
func asString(raw json.RawMessage) string {
	s := strings.TrimSpace(string(raw))
	s = strings.Trim(s, `"`)
	return s
}

func asBool(raw json.RawMessage) (bool, bool) {
	switch asString(raw) {
	case "true":
		return true, true
	case "false":
		return false, true
	default:
		return false, false
	}
}

func asFloat(raw json.RawMessage) (float64, bool) {
	v, err := strconv.ParseFloat(asString(raw), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
