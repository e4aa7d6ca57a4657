package main

import (
	"fmt"
	"os"

	"github.com/hpn777/shmio/cmd/shmioctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
