package trigger

// Trigger is the game's single input: a parameterless jump. The game's own
// state machine decides what a jump means mid-jump (it is expected to be a
// no-op), so Trigger implementations just deliver the signal.
type Trigger interface {
	Jump() error
}
