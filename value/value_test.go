package value_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"lam/value"
)

func TestPIDString(t *testing.T) {
	p := value.PID{Scheduler: 2, Sequence: 7}
	assert.Equal(t, "<2>7", p.String())
}

func TestValueEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b value.Value
		want bool
	}{
		{"small equal", value.NewSmall(3), value.NewSmall(3), true},
		{"small differ", value.NewSmall(3), value.NewSmall(4), false},
		{"atom equal", value.NewAtom("ok"), value.NewAtom("ok"), true},
		{"atom differ", value.NewAtom("ok"), value.NewAtom("no"), false},
		{"pid equal", value.NewPid(value.PID{1, 1}), value.NewPid(value.PID{1, 1}), true},
		{"nil equal", value.Nil, value.Nil, true},
		{"kind mismatch", value.NewSmall(0), value.Nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Equal(tt.b))
		})
	}
}

func TestExpectSmallPanicsOnWrongKind(t *testing.T) {
	assert.Panics(t, func() {
		value.Nil.ExpectSmall()
	})
}

func TestExpectPidPanicsOnWrongKind(t *testing.T) {
	assert.Panics(t, func() {
		value.NewSmall(1).ExpectPid()
	})
}

func TestExpectSmallReturnsPayload(t *testing.T) {
	v := value.NewSmall(42)
	assert.Equal(t, uint32(42), v.ExpectSmall())
}
