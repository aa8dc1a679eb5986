// Command relay runs the chat relay server and generates bearer tokens
// for players, following cmd/gate/gate.go's Run()-returns-error,
// fatal-on-startup-error composition.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
