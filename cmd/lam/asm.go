package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"lam/asm"
	"lam/vm"
)

// asmCommand parses a bytecode file and prints its resolved instruction
// vector (labels already resolved to absolute indices) without running it,
// for debugging assembly.
var asmCommand = &cli.Command{
	Name:      "asm",
	Usage:     "parse a bytecode file and print its resolved instruction vector",
	ArgsUsage: "<file>",
	Action:    asmAction,
}

func asmAction(ctx context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return fmt.Errorf("usage: lam asm <file>")
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("asm: %w", err)
	}

	instrs, err := asm.Parse(string(src))
	if err != nil {
		return fmt.Errorf("asm: %w", err)
	}

	fmt.Printf("; run %s\n", vm.NewRunID())
	for i, in := range instrs {
		fmt.Printf("%4d: %s\n", i, in.String())
	}
	return nil
}
