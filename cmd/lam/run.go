package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"lam/asm"
	"lam/vm"
)

var runCommand = &cli.Command{
	Name:      "run",
	Usage:     "parse a bytecode file, spawn it as a process, and wait for the VM to drain",
	ArgsUsage: "<file>",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "config",
			Usage: "path to a YAML VM config file (scheduler count, quantum size, routing policy)",
		},
		&cli.IntFlag{
			Name:  "schedulers",
			Usage: "number of scheduler goroutines (default: NumCPU-1)",
		},
		&cli.DurationFlag{
			Name:  "grace",
			Usage: "how long to let the VM run before asking it to drain; spawned children and in-flight sends need the window",
			Value: 500 * time.Millisecond,
		},
	},
	Action: runAction,
}

func runAction(ctx context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return fmt.Errorf("usage: lam run <file>")
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	instrs, err := asm.Parse(string(src))
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	var opts []vm.Option
	if cfg := cmd.String("config"); cfg != "" {
		fileOpts, err := vm.OptionsFromFile(cfg)
		if err != nil {
			return fmt.Errorf("run: %w", err)
		}
		opts = append(opts, fileOpts...)
	}
	if n := cmd.Int("schedulers"); n > 0 {
		opts = append(opts, vm.WithSchedulers(int(n)))
	}

	machine := vm.New(opts...)
	pid := machine.Spawn(instrs)
	fmt.Printf("spawned %s\n", pid)

	time.Sleep(cmd.Duration("grace"))
	machine.Kill()
	machine.Wait()
	return nil
}
