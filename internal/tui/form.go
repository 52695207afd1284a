// pattern: Imperative Shell

package tui

import "strings"

// FormField represents the currently focused form field.
type FormField int

const (
	FieldName FormField = iota
	FieldBranch
	FieldBase
	fieldCount // Used for wrap-around
)

// Form state accessors for testing and view rendering.

// IsFormOpen returns true if the worktree creation form is open.
func (m Model) IsFormOpen() bool {
	return m.formOpen
}

// FormName returns the current worktree name input.
func (m Model) FormName() string {
	return m.formName
}

// FormBranch returns the current branch input.
func (m Model) FormBranch() string {
	return m.formBranch
}

// FormBase returns the current base branch input.
func (m Model) FormBase() string {
	return m.formBase
}

// FormFocusedField returns the currently focused form field index.
func (m Model) FormFocusedField() int {
	return int(m.formField)
}

// FormError returns any validation error message.
func (m Model) FormError() string {
	return m.formError
}

// openForm opens the creation form, pre-filling the base branch with the
// repository's preferred one.
func (m *Model) openForm() {
	m.formOpen = true
	m.formName = ""
	m.formBranch = ""
	m.formBase = m.eng.DefaultBaseBranch()
	m.formField = FieldName
	m.formError = ""
}

// resetForm clears the form state.
func (m *Model) resetForm() {
	m.formOpen = false
	m.formName = ""
	m.formBranch = ""
	m.formBase = ""
	m.formField = FieldName
	m.formError = ""
}

// validateForm validates form inputs before submission.
func (m *Model) validateForm() bool {
	if strings.TrimSpace(m.formName) == "" {
		m.formError = "Name is required"
		return false
	}
	m.formError = ""
	return true
}

// effectiveBranch is the branch the form will create: the explicit branch
// input, or the worktree name when left blank.
func (m Model) effectiveBranch() string {
	if strings.TrimSpace(m.formBranch) != "" {
		return m.formBranch
	}
	return m.formName
}

// focusedInput returns a pointer to the string behind the focused field.
func (m *Model) focusedInput() *string {
	switch m.formField {
	case FieldBranch:
		return &m.formBranch
	case FieldBase:
		return &m.formBase
	default:
		return &m.formName
	}
}
