package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunActionParsesAndSpawns(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.lam")
	require.NoError(t, os.WriteFile(path, []byte("{move, {x, 0}, 1}.\n{ret}.\n"), 0o644))

	err := runCommand.Run(context.Background(), []string{"run", "--schedulers", "1", "--grace", "1ms", path})
	assert.NoError(t, err)
}

func TestRunActionMissingFileArgErrors(t *testing.T) {
	err := runCommand.Run(context.Background(), []string{"run"})
	assert.Error(t, err)
}

func TestAsmActionPrintsResolvedInstructions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.lam")
	require.NoError(t, os.WriteFile(path, []byte("{move, {x, 0}, 1}.\n{ret}.\n"), 0o644))

	err := asmCommand.Run(context.Background(), []string{"asm", path})
	assert.NoError(t, err)
}
