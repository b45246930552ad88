package main

import (
	"github.com/enigma29/cluehunt/internal/cli"
)

func main() {
	cli.Execute()
}
