package main

import (
	"os"

	"github.com/avasquez/pythrun/cmd/pythrun/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
