package diag

// Shower wraps the Show function.
type Shower interface {
	// Show takes an indentation string and shows.
	Show(indent string) string
}

// ShowError shows an error. It uses the Show method if the error implements
// Shower, and the Error method otherwise.
func ShowError(err error) string {
	if shower, ok := err.(Shower); ok {
		return shower.Show("")
	}
	return "error: " + err.Error()
}
