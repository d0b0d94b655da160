package storage

// Confirmer approves or declines a destructive action such as overwriting an
// existing file. A decline may carry a human-readable reason.
type Confirmer interface {
	Confirm(prompt string) (ok bool, reason string)
}

// ConfirmFunc adapts a function to the Confirmer interface.
type ConfirmFunc func(prompt string) (bool, string)

// Confirm calls f.
func (f ConfirmFunc) Confirm(prompt string) (bool, string) {
	return f(prompt)
}

// AlwaysConfirm approves every prompt.
var AlwaysConfirm Confirmer = ConfirmFunc(func(string) (bool, string) { return true, "" })

// DeclineConfirm returns a Confirmer that declines every prompt with reason.
func DeclineConfirm(reason string) Confirmer {
	return ConfirmFunc(func(string) (bool, string) { return false, reason })
}
