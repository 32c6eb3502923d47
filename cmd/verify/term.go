package main

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// readTerminalSecret reads without echo when stdin is a terminal; ok is false otherwise.
func readTerminalSecret(label string, out io.Writer) (secret string, ok bool, err error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", false, nil
	}
	fmt.Fprint(out, label)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(out)
	return string(b), true, err
}
