package domain

import (
	"fmt"
	"strings"

	commands "github.com/louisbranch/signalpost/internal/services/commands/domain"
	"github.com/louisbranch/signalpost/internal/services/pages/editor"
)

// Module type classes recognized by the default kind set.
const (
	ClassHTML  = "html"
	ClassImage = "image"
)

// ModuleKind is one closed module capability: it names the class token that
// tags its elements and applies the update operation to them.
type ModuleKind interface {
	Class() string
	Update(ed *editor.Editor, element editor.Element, htmlPayload string, textPayload string) (commands.Result, error)
}

// KindSet is the module kind lookup table, built once at startup.
type KindSet struct {
	kinds []ModuleKind
}

// NewKindSet builds a kind set from a static list of kinds.
func NewKindSet(kinds ...ModuleKind) (*KindSet, error) {
	seen := make(map[string]bool, len(kinds))
	for _, kind := range kinds {
		class := kind.Class()
		if class == "" {
			return nil, fmt.Errorf("module kind class is required")
		}
		if seen[class] {
			return nil, fmt.Errorf("module kind already registered for class %q", class)
		}
		seen[class] = true
	}
	return &KindSet{kinds: kinds}, nil
}

// DefaultKinds returns the built-in module kinds: html and image.
func DefaultKinds() *KindSet {
	kinds, err := NewKindSet(htmlKind{}, imageKind{})
	if err != nil {
		panic(err)
	}
	return kinds
}

// For returns the first kind whose class tags the element, or nil.
func (s *KindSet) For(ed *editor.Editor, element editor.Element) ModuleKind {
	if s == nil {
		return nil
	}
	for _, kind := range s.kinds {
		if ed.IsTypeOf(element, kind.Class()) {
			return kind
		}
	}
	return nil
}

// htmlKind replaces a module's inner markup with the command's HTML payload.
type htmlKind struct{}

func (htmlKind) Class() string { return ClassHTML }

func (htmlKind) Update(ed *editor.Editor, element editor.Element, htmlPayload string, _ string) (commands.Result, error) {
	ed.SetContent(element, htmlPayload)
	return commands.Succeeded(""), nil
}

// imageKind rewrites the image URL inside the module's options blob from
// the command's text payload. A blank payload clears the URL.
type imageKind struct{}

func (imageKind) Class() string { return ClassImage }

func (imageKind) Update(ed *editor.Editor, element editor.Element, _ string, textPayload string) (commands.Result, error) {
	options, err := ed.ModuleOptions(element)
	if err != nil {
		return commands.Result{}, err
	}
	var imageURL any
	if trimmed := strings.TrimSpace(textPayload); trimmed != "" {
		imageURL = trimmed
	}
	options = editor.SetPath(options, imageURL, "image", "url")
	if err := ed.SetModuleOptions(element, options); err != nil {
		return commands.Result{}, err
	}
	return commands.Succeeded(""), nil
}
