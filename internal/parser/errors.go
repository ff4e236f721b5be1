package parser

import (
	"fmt"
	"strings"
)

// Usage maps each command to its syntax.
var Usage = map[string]string{
	"attack":  "attack [to:] <unit id|name>",
	"defend":  "defend",
	"wait":    "wait",
	"retreat": "retreat",
	"resolve": "resolve",
	"auto":    "auto",
	"targets": "targets",
	"status":  "status",
	"queue":   "queue",
	"help":    "help [command]",
}

// MapError takes a raw input and a participle error, and returns a human-friendly guidance message.
func MapError(input string, err error) error {
	parts := strings.Fields(strings.ToLower(input))
	if len(parts) == 0 {
		return fmt.Errorf("I wasn't able to understand your command")
	}
	if usage, ok := Usage[parts[0]]; ok {
		return fmt.Errorf("The command %s must be: %s", parts[0], usage)
	}
	return fmt.Errorf("I wasn't able to understand your command")
}
