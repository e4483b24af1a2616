package main

import (
	"fmt"
	"os"

	"github.com/aoiro-dev/aoiro/internal/commands"
	"github.com/aoiro-dev/aoiro/internal/common"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", common.UserMessage(err))
		os.Exit(1)
	}
}
