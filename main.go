package main

import (
	"loopcut/cmd"
)

func main() {
	cmd.Execute()
}
