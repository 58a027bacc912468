package main

import (
	"fmt"
	"os"

	"github.com/compozy/jsswitch/cli"
	_ "github.com/compozy/jsswitch/engine/goja"
	_ "github.com/compozy/jsswitch/engine/otto"
	_ "github.com/compozy/jsswitch/engine/quickjs"
)

func main() {
	cmd := cli.RootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
