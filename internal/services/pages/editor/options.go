package editor

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedOptions indicates a data-module-options attribute that is
// present but does not decode as JSON. This is distinct from an absent
// attribute, which reads as nil options.
var ErrMalformedOptions = errors.New("malformed module options")

// optionsAttr carries the JSON-encoded module options blob on an element.
// The HTML parser and renderer handle attribute escaping on the way in and
// out.
const optionsAttr = "data-module-options"

// Options is the decoded module options object. Member access goes through
// the explicit path helpers instead of dynamic lookups.
type Options map[string]any

// GetPath reads the value at a nested key path, reporting whether every
// intermediate object existed.
func GetPath(options Options, path ...string) (any, bool) {
	if options == nil || len(path) == 0 {
		return nil, false
	}
	var current any = map[string]any(options)
	for _, key := range path {
		object, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = object[key]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// SetPath writes a value at a nested key path, creating intermediate
// objects as needed, and returns the options (allocating them when nil).
func SetPath(options Options, value any, path ...string) Options {
	if len(path) == 0 {
		return options
	}
	if options == nil {
		options = Options{}
	}
	current := map[string]any(options)
	for _, key := range path[:len(path)-1] {
		next, ok := current[key].(map[string]any)
		if !ok {
			next = map[string]any{}
			current[key] = next
		}
		current = next
	}
	current[path[len(path)-1]] = value
	return options
}

// ModuleOptions reads and decodes the element's module options attribute.
// An absent or blank attribute is nil options; a present attribute that is
// not valid JSON fails loudly.
func (e *Editor) ModuleOptions(element Element) (Options, error) {
	if !element.Valid() {
		return nil, nil
	}
	raw := strings.TrimSpace(attrValue(element.node, optionsAttr))
	if raw == "" {
		return nil, nil
	}
	var options Options
	if err := json.Unmarshal([]byte(raw), &options); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOptions, err)
	}
	return options, nil
}

// SetModuleOptions encodes and writes the element's module options
// attribute. Nil options clear the attribute. Reading the options back
// yields an equal value as long as no other writer touches the attribute.
func (e *Editor) SetModuleOptions(element Element, options Options) error {
	if !element.Valid() {
		return nil
	}
	if options == nil {
		removeAttr(element.node, optionsAttr)
		return nil
	}
	encoded, err := json.Marshal(options)
	if err != nil {
		return fmt.Errorf("encode module options: %w", err)
	}
	setAttr(element.node, optionsAttr, string(encoded))
	return nil
}
