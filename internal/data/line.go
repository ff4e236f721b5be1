package data

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/suderio/warband/internal/engine"
)

// Line is a squad line. YAML accepts "front", "back" or the line number.
type Line int

var lineMap = map[string]Line{
	"front": engine.FrontLine,
	"back":  engine.BackLine,
}

// ParseLine converts a string into a Line.
func ParseLine(s string) (Line, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if val, ok := lineMap[s]; ok {
		return val, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || (n != engine.FrontLine && n != engine.BackLine) {
		return 0, fmt.Errorf("unknown line %q", s)
	}
	return Line(n), nil
}

func (l Line) String() string {
	if l == engine.BackLine {
		return "back"
	}
	return "front"
}

func (l *Line) UnmarshalYAML(node *yaml.Node) error {
	v, err := ParseLine(node.Value)
	if err != nil {
		return err
	}
	*l = v
	return nil
}

func (l Line) MarshalYAML() (any, error) {
	return l.String(), nil
}
