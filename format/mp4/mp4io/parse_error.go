// nolint: all
package mp4io

import (
	"errors"
	"fmt"
	"strings"
)

type ParseError struct {
	Debug  string
	Offset int
	prev   *ParseError
}

func (p *ParseError) Error() string {
	s := []string{}
	for err := p; err != nil; err = err.prev {
		s = append(s, fmt.Sprintf("%s:%d", err.Debug, err.Offset))
	}
	return "mp4io: parse error: " + strings.Join(s, ",")
}

// parseErr chains a new frame onto prev. Errors that are not parse errors pass through.
func parseErr(debug string, offset int, prev error) error {
	var ppe *ParseError
	if prev != nil && !errors.As(prev, &ppe) {
		return prev
	}
	return &ParseError{Debug: debug, Offset: offset, prev: ppe}
}
