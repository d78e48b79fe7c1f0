package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/chzyer/readline"
	"github.com/urfave/cli/v3"

	"lam/asm"
	"lam/vm"
)

// replCommand is an interactive shell: each line is parsed as one process
// body and spawned immediately.
var replCommand = &cli.Command{
	Name:   "repl",
	Usage:  "interactively spawn one process per line of bytecode",
	Action: replAction,
}

func replAction(ctx context.Context, cmd *cli.Command) error {
	rl, err := readline.New("lam> ")
	if err != nil {
		return fmt.Errorf("repl: %w", err)
	}
	defer rl.Close()

	machine := vm.New()
	defer func() {
		machine.Kill()
		machine.Wait()
	}()

	for {
		line, err := rl.Readline()
		if errors.Is(err, io.EOF) || errors.Is(err, readline.ErrInterrupt) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("repl: %w", err)
		}
		if line == "" {
			continue
		}

		instrs, err := asm.Parse(line)
		if err != nil {
			fmt.Println("parse error:", err)
			continue
		}
		pid := machine.Spawn(instrs)
		fmt.Printf("spawned %s\n", pid)
	}
}
