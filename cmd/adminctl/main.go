package main

import (
	"os"

	"github.com/simp-lee/shopadmin/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
