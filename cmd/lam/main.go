// Command lam is the VM's CLI: run a bytecode file, start an interactive
// REPL, or print a file's resolved instruction vector for debugging.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"lam/version"
)

func main() {
	app := &cli.Command{
		Name:  "lam",
		Usage: "a concurrent register-based process virtual machine",
		Commands: []*cli.Command{
			runCommand,
			replCommand,
			asmCommand,
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "version",
				Usage: "print lam's version and exit",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Bool("version") {
				fmt.Println(version.Version())
				return nil
			}
			return cli.ShowAppHelp(cmd)
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "lam:", err)
		os.Exit(1)
	}
}
