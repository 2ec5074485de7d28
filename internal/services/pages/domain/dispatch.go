package domain

import (
	commands "github.com/louisbranch/signalpost/internal/services/commands/domain"
	"github.com/louisbranch/signalpost/internal/services/pages/editor"
)

// ApplyModuleCommand dispatches one decoded module command against an
// editor. It mutates the tree in place; the caller serializes and persists
// when the result is success.
//
// The policy table:
//   - UPDATE on a module whose class matches a registered kind applies that
//     kind's update.
//   - DELETE detaches the module element, whatever its kind.
//   - INSERT fails explicitly: its semantics are undefined so far and a
//     silent success would mask that.
//   - Any other combination, a missing element, or empty content is
//     NoAction with the tree untouched.
func (s *KindSet) ApplyModuleCommand(ed *editor.Editor, operation string, moduleID string, htmlPayload string, textPayload string) (commands.Result, error) {
	if ed.IsEmpty() {
		return commands.NoAction(), nil
	}
	element := ed.FindElementByID(moduleID)
	if !element.Valid() {
		return commands.NoAction(), nil
	}

	switch operation {
	case OperationUpdate:
		kind := s.For(ed, element)
		if kind == nil {
			return commands.NoAction(), nil
		}
		return kind.Update(ed, element, htmlPayload, textPayload)
	case OperationDelete:
		ed.DeleteElement(element)
		return commands.Succeeded(""), nil
	case OperationInsert:
		return commands.Result{}, ErrInsertNotSupported
	default:
		return commands.NoAction(), nil
	}
}
