package console

const (
	// Default terminal width in characters.
	defaultTermWidth = 80
)
