package types

// Reply is the assistant's answer. Degraded replies carry the fallback text and the
// collaborator failure that caused them.
type Reply struct {
	Text     string
	Degraded bool
	Cause    error
}
