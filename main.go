package main

import (
	"slumberpod/cmd"
)

func main() {
	cmd.Execute()
}
