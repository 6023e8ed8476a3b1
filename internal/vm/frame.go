package vm

// callFrame is one entry of the VM's frame stack (§4.5, §9 glossary
// "Frame"): the instruction to resume the caller at, the caller's own
// frame-local cursor to restore, and the stack length to truncate back to
// once the callee's return value has been lifted off the top.
type callFrame struct {
	returnIP int
	callerFC int
	cursor   int
}
