package kernel

// Error describes a kernel error. Kernel code cannot rely on the errors
// package from the standard library as error values may need to be
// constructed and returned before the Go allocator is available. All kernel
// errors are therefore declared as package-level values and returned by
// pointer.
type Error struct {
	// The module where the error occurred.
	Module string

	// The error message.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}
