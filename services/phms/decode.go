package phms

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

var errNoID = errors.New("response carries no id")

// parseID accepts a bare number, a numeric string, or an object carrying the
// id under one of the keys the backend has been seen to use.
func parseID(raw json.RawMessage) (int64, error) {
	raw = json.RawMessage(strings.TrimSpace(string(raw)))
	if len(raw) == 0 || string(raw) == "null" {
		return 0, errNoID
	}

	var num json.Number
	if err := json.Unmarshal(raw, &num); err == nil {
		return num.Int64()
	}
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return strconv.ParseInt(str, 10, 64)
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return 0, err
	}
	for _, key := range []string{"id", "slot_id", "slotId"} {
		if v, ok := obj[key]; ok {
			return parseID(v)
		}
	}
	if nested, ok := obj["slot"]; ok {
		return parseID(nested)
	}
	return 0, errNoID
}

// unwrap returns obj[key] when raw is an object holding key, else raw.
func unwrap(raw json.RawMessage, key string) json.RawMessage {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return raw
	}
	if inner, ok := obj[key]; ok {
		return inner
	}
	return raw
}
