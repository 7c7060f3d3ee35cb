package state

// UserState is the user's current position in a multi-step dialog
type UserState string

const (
	StateNone UserState = ""

	// Creating a recurring class template
	StateAddClassSpec UserState = "add_class_spec"

	// Entering a manual work log
	StateAddLogSpec UserState = "add_log_spec"
)
