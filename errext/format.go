package errext

import (
	"errors"
)

// Format formats the given error as a message (string) and a map of fields.
// In case of [HasHint], the hint is added as a field.
func Format(err error) (string, map[string]interface{}) {
	if err == nil {
		return "", nil
	}

	errText := err.Error()

	fields := make(map[string]interface{})
	var herr HasHint
	if errors.As(err, &herr) {
		fields["hint"] = herr.Hint()
	}

	return errText, fields
}
