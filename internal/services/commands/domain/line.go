package domain

import (
	"errors"
	"strings"
)

// ErrMalformedLine indicates an operation line that does not follow the
// `OPERATION ! type:id >> type:id` grammar.
var ErrMalformedLine = errors.New("malformed operation line")

const (
	operationSeparator = " ! "
	refSeparator       = " >> "
	refTypeSeparator   = ":"
)

// Ref is one typed object reference inside an operation line. Unknown types
// are tolerated and carried through as opaque strings.
type Ref struct {
	Type string
	ID   string
}

// ParseLine splits an operation line into its operation name and object
// references. A line without an operation is malformed; a line without
// references is accepted and yields an empty reference list.
func ParseLine(line string) (string, []Ref, error) {
	head, tail, found := strings.Cut(line, operationSeparator)
	operation := strings.TrimSpace(head)
	if operation == "" {
		return "", nil, ErrMalformedLine
	}
	if !found {
		return operation, nil, nil
	}
	var refs []Ref
	for _, token := range strings.Split(tail, refSeparator) {
		token = strings.TrimSpace(token)
		if token == "" {
			return "", nil, ErrMalformedLine
		}
		refType, refID, hasType := strings.Cut(token, refTypeSeparator)
		if !hasType {
			return "", nil, ErrMalformedLine
		}
		refs = append(refs, Ref{Type: refType, ID: refID})
	}
	return operation, refs, nil
}

// RenderLine builds the operation line for an operation and its references.
// It is the inverse of ParseLine for operations and reference parts that do
// not themselves contain the grammar separators.
func RenderLine(operation string, refs []Ref) string {
	var b strings.Builder
	b.WriteString(operation)
	for i, ref := range refs {
		if i == 0 {
			b.WriteString(operationSeparator)
		} else {
			b.WriteString(refSeparator)
		}
		b.WriteString(ref.Type)
		b.WriteString(refTypeSeparator)
		b.WriteString(ref.ID)
	}
	return b.String()
}
