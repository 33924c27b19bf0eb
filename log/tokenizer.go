package log

import (
	"fmt"
	"strings"
)

type token struct {
	key   string
	value string
}

// tokenize splits a comma-separated list of key=value pairs. Values keep any
// '=' characters after the first one, so paths like `file=/dir/a=b.log` work.
func tokenize(input string) ([]token, error) {
	tokens := []token{}
	for _, kv := range strings.Split(input, ",") {
		key, value, found := strings.Cut(kv, "=")
		if !found {
			return nil, fmt.Errorf("token `%s` is missing a value", kv)
		}
		tokens = append(tokens, token{key: key, value: value})
	}

	return tokens, nil
}
