// The main package for the shopsight executable.
package main

import (
	"github.com/shopsight/shopsight/cmd"
)

func main() {
	cmd.Execute()
}
