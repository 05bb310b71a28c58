package main

import (
	"os"

	"github.com/thenoetrevino/ticks/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
