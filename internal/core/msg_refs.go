package core

import (
	"strings"

	"rosmsg-packages/internal/types"
)

var builtinFieldTypes = map[string]struct{}{
	"bool": {}, "byte": {}, "char": {},
	"int8": {}, "uint8": {}, "int16": {}, "uint16": {},
	"int32": {}, "uint32": {}, "int64": {}, "uint64": {},
	"float32": {}, "float64": {},
	"string": {}, "time": {}, "duration": {},
}

// ParseMessageRefs returns the message types a msg or srv body refers to,
// qualified against pkg and in first-seen order. Builtins and constants
// are skipped; a bare Header means std_msgs/Header.
func ParseMessageRefs(pkg string, body string) []types.MessageRef {
	var refs []types.MessageRef
	seen := map[types.MessageRef]struct{}{}
	for _, line := range strings.Split(body, "\n") {
		if idx := strings.Index(line, "#"); idx != -1 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, actionSectionDelimiter) {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		if strings.Contains(line, "=") {
			continue
		}
		fieldType := fields[0]
		if idx := strings.Index(fieldType, "["); idx != -1 {
			fieldType = fieldType[:idx]
		}
		ref, ok := qualifyFieldType(pkg, fieldType)
		if !ok {
			continue
		}
		if _, dup := seen[ref]; dup {
			continue
		}
		seen[ref] = struct{}{}
		refs = append(refs, ref)
	}
	return refs
}

func qualifyFieldType(pkg string, fieldType string) (types.MessageRef, bool) {
	if _, ok := builtinFieldTypes[fieldType]; ok {
		return types.MessageRef{}, false
	}
	if fieldType == "Header" {
		return types.MessageRef{Package: "std_msgs", Name: "Header"}, true
	}
	if idx := strings.Index(fieldType, "/"); idx != -1 {
		return types.MessageRef{Package: fieldType[:idx], Name: fieldType[idx+1:]}, true
	}
	return types.MessageRef{Package: pkg, Name: fieldType}, true
}
