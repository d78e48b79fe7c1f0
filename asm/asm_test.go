package asm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lam/asm"
	"lam/instr"
	"lam/value"
)

func TestParseMoveAndAdd(t *testing.T) {
	src := `
		{move, {x, 0}, 41}.
		{move, {x, 1}, 1}.
		{add, {x, 0}, {x, 1}, {x, 2}}.
		{ret}.
	`
	got, err := asm.Parse(src)
	require.NoError(t, err)
	require.Len(t, got, 4)

	assert.Equal(t, instr.OpMove, got[0].Op)
	assert.Equal(t, instr.X(0), got[0].Dest)
	assert.Equal(t, value.NewSmall(41), got[0].Src)

	assert.Equal(t, instr.OpAdd, got[2].Op)
	assert.Equal(t, instr.X(2), got[2].Ret)
}

func TestParseResolvesForwardLabel(t *testing.T) {
	src := `
		{is_lt, 1, {x, 0}, {x, 1}}.
		{label, 1}.
		{ret}.
	`
	got, err := asm.Parse(src)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Label, "label 1 should resolve to the index of the instruction right after it")
}

func TestParseUndefinedLabelErrors(t *testing.T) {
	src := `{jmp, 99}.`
	_, err := asm.Parse(src)
	assert.Error(t, err)
}

func TestParseAtomAndNilAndPidLiterals(t *testing.T) {
	src := `
		{move, {x, 0}, ok}.
		{move, {x, 1}, {nil}}.
		{move, {x, 2}, {pid, 0, 3}}.
		{ret}.
	`
	got, err := asm.Parse(src)
	require.NoError(t, err)
	assert.Equal(t, value.NewAtom("ok"), got[0].Src)
	assert.Equal(t, value.Nil, got[1].Src)
	assert.Equal(t, value.NewPid(value.PID{Scheduler: 0, Sequence: 3}), got[2].Src)
}

func TestParseNestedSpawn(t *testing.T) {
	src := `
		{spawn, {{move, {x, 0}, 1}, {ret}}}.
		{ret}.
	`
	got, err := asm.Parse(src)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, instr.OpSpawn, got[0].Op)
	assert.Len(t, got[0].Child, 2)
}

func TestParseRegisterVocabulary(t *testing.T) {
	src := `
		{move, {y, 0}, 1}.
		{is_eq, 3, {fcalls}, {I}}.
		{label, 3}.
		{ret}.
	`
	got, err := asm.Parse(src)
	require.NoError(t, err)
	assert.Equal(t, instr.Y(0), got[0].Dest)
	assert.Equal(t, instr.Operand{Kind: instr.RegFcalls}, got[1].ArgA)
	assert.Equal(t, instr.Operand{Kind: instr.RegI}, got[1].ArgB)
}

func TestParseBracketedSpawnBody(t *testing.T) {
	src := `
		{spawn, [{move, {x, 0}, 1}, {ret}]}.
		{ret}.
	`
	got, err := asm.Parse(src)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, instr.OpSpawn, got[0].Op)
	assert.Len(t, got[0].Child, 2)
}

func TestParseMismatchedListDelimitersErrors(t *testing.T) {
	_, err := asm.Parse(`{spawn, [{ret}}}.`)
	assert.Error(t, err)
}

func TestParseRejectsMalformedInput(t *testing.T) {
	_, err := asm.Parse(`{move, {x, 0}, 1}`) // missing trailing period
	assert.Error(t, err)
}
