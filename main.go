package main

import (
	"os"

	"github.com/vikavorkin/Spoolman/spoolci"
)

func main() {
	spoolci.New(os.Stdout, os.Stderr).Run()
}
