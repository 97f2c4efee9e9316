package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// confirm writes question to w and reads a y/n answer from r. Anything other
// than "y" or "yes" is a refusal, including end of input.
func confirm(r io.Reader, w io.Writer, question string) (bool, error) {
	fmt.Fprintf(w, "%s (y/n): ", question)

	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("read answer: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
