package main

import (
	"fmt"
	"io"
)

// terminalNavigator reports where the user lands after verifying.
type terminalNavigator struct {
	out   io.Writer
	route string
}

func (n *terminalNavigator) Navigate(route, message string) {
	n.route = route
	if message != "" {
		fmt.Fprintln(n.out, message)
	}
	fmt.Fprintf(n.out, "Continue at %s\n", route)
}
