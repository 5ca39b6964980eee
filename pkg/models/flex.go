package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// FlexUint32 decodes a count or size the APIs return either as a JSON number
// or as a numeric string. Values that cannot be read leave Valid false.
type FlexUint32 struct {
	Value uint32
	Valid bool
}

func NewFlexUint32(v uint32) FlexUint32 {
	return FlexUint32{Value: v, Valid: true}
}

func (f *FlexUint32) UnmarshalJSON(data []byte) error {
	*f = FlexUint32{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	var raw interface{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil
	}

	var text string
	switch v := raw.(type) {
	case json.Number:
		text = v.String()
	case string:
		text = strings.TrimSpace(v)
	default:
		return nil
	}

	n, err := strconv.ParseUint(text, 10, 32)
	if err != nil {
		return nil
	}
	f.Value = uint32(n)
	f.Valid = true
	return nil
}

func (f FlexUint32) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatUint(uint64(f.Value), 10)), nil
}

func (f FlexUint32) String() string {
	if !f.Valid {
		return ""
	}
	return strconv.FormatUint(uint64(f.Value), 10)
}

// FlexBool accepts true/false, 0/1 and the strings yes/no, y/n, true/false, 1/0.
type FlexBool struct {
	Value bool
	Valid bool
}

func NewFlexBool(v bool) FlexBool {
	return FlexBool{Value: v, Valid: true}
}

func (f *FlexBool) UnmarshalJSON(data []byte) error {
	*f = FlexBool{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	var raw interface{}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil
	}

	switch v := raw.(type) {
	case bool:
		f.Value, f.Valid = v, true
	case json.Number:
		if n, err := strconv.ParseUint(v.String(), 10, 64); err == nil {
			f.Value, f.Valid = n != 0, true
		}
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "yes", "y", "1":
			f.Value, f.Valid = true, true
		case "false", "no", "n", "0":
			f.Value, f.Valid = false, true
		}
	}
	return nil
}

func (f FlexBool) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatBool(f.Value)), nil
}

func (f FlexBool) String() string {
	if !f.Valid {
		return ""
	}
	return strconv.FormatBool(f.Value)
}
