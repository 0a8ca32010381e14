// ./main.go
package main

import (
	"github.com/xkilldash9x/unitbrowser/cmd"
)

// main is the entry point for the unitbrowser CLI.
func main() {
	cmd.Execute()
}
