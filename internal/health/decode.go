// Vigil - Infrastructure Monitoring Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vigil

package health

import (
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// Wire field names shared by every variant.
const (
	fieldType      = "@type"
	fieldName      = "statusName"
	fieldResource  = "resourceName"
	fieldDetails   = "serverDetails"
	fieldTimestamp = "timeStamp"
	fieldCritical  = "isCritical"
	fieldError     = "error"
	fieldAttribute = "attributeName"
	fieldValue     = "attributeValue"
)

// Decode maps a status fragment to a Status. It never fails: an unknown or
// missing "@type" yields a GenericMalfunction holding the unconsumed fields,
// and a fragment that is not a JSON object yields a GenericMalfunction whose
// ServerDetails carry the raw text.
//
// name is the status (check) name; when empty the fragment's own
// "statusName" is used.
func Decode(name string, raw []byte) Status {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return &GenericMalfunction{
			Common: Common{Name: name, Details: strings.TrimSpace(string(raw))},
		}
	}

	common := Common{
		Name:      takeString(fields, fieldName),
		Resource:  takeString(fields, fieldResource),
		Details:   takeString(fields, fieldDetails),
		Timestamp: ParseTime(take(fields, fieldTimestamp)),
		Critical:  takeBool(fields, fieldCritical),
	}
	if name != "" {
		common.Name = name
	}

	kind := takeString(fields, fieldType)
	switch Kind(kind) {
	case KindOk:
		common.Critical = false
		return &Ok{Common: common}
	case KindResourceUnavailable:
		return &ResourceUnavailable{Common: common, Error: takeString(fields, fieldError)}
	case KindConnectionProblem:
		return &ConnectionProblem{Common: common, Error: takeString(fields, fieldError)}
	case KindInvalidAttributeValue:
		return &InvalidAttributeValue{
			Common:    common,
			Attribute: takeString(fields, fieldAttribute),
			Value:     text(take(fields, fieldValue)),
		}
	default:
		gm := &GenericMalfunction{Common: common, Type: kind}
		if len(fields) > 0 {
			gm.Fields = fields
		}
		return gm
	}
}

// Marshal writes s in the wire form accepted by Decode. A GenericMalfunction
// writes back its preserved fields, so an unknown kind survives a
// persist/restore cycle.
func Marshal(s Status) ([]byte, error) {
	out := map[string]any{}

	if gm, ok := s.(*GenericMalfunction); ok {
		for k, v := range gm.Fields {
			out[k] = v
		}
		if gm.Type != "" {
			out[fieldType] = gm.Type
		}
	} else {
		out[fieldType] = string(s.Kind())
	}

	out[fieldName] = s.StatusName()
	out[fieldResource] = s.ResourceName()
	out[fieldCritical] = s.IsCritical()
	if d := s.ServerDetails(); d != "" {
		out[fieldDetails] = d
	}
	if ts := s.ServerTimestamp(); !ts.IsZero() {
		out[fieldTimestamp] = ts.UTC().Format(time.RFC3339Nano)
	}

	switch v := s.(type) {
	case *ResourceUnavailable:
		out[fieldError] = v.Error
	case *ConnectionProblem:
		out[fieldError] = v.Error
	case *InvalidAttributeValue:
		out[fieldAttribute] = v.Attribute
		out[fieldValue] = v.Value
	}

	return json.Marshal(out)
}

// ParseTime accepts epoch milliseconds (number or numeric string) or an
// RFC 3339 string. Anything else, including null, yields the zero time.
func ParseTime(raw json.RawMessage) time.Time {
	if len(raw) == 0 || string(raw) == "null" {
		return time.Time{}
	}

	var ms float64
	if err := json.Unmarshal(raw, &ms); err == nil {
		return time.UnixMilli(int64(ms)).UTC()
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil || s == "" {
		return time.Time{}
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(n).UTC()
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC()
	}
	return time.Time{}
}

// take removes and returns a field.
func take(fields map[string]json.RawMessage, key string) json.RawMessage {
	v, ok := fields[key]
	if !ok {
		return nil
	}
	delete(fields, key)
	return v
}

func takeString(fields map[string]json.RawMessage, key string) string {
	return text(take(fields, key))
}

func takeBool(fields map[string]json.RawMessage, key string) bool {
	raw := take(fields, key)
	var b bool
	if len(raw) == 0 || json.Unmarshal(raw, &b) != nil {
		return false
	}
	return b
}

// text returns a JSON string's value, or the raw JSON for any other value.
func text(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
