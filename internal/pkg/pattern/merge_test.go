package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepsMergesConsecutiveLiterals(t *testing.T) {
	steps := Parse("www.fint.me").Steps()

	require.Len(t, steps, 1)
	assert.Equal(t, StepCompare, steps[0].Kind)
	assert.True(t, steps[0].Final)

	// One run, byte-for-byte concatenation of every label's encoding,
	// length bytes included, no separators.
	want := []byte("\x03www\x04fint\x02me\x00")
	assert.Equal(t, want, Values(steps[0].Bytes))
}

func TestStepsWildcardClosesRun(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		kinds []StepKind
	}{
		{"leading wildcard", "*.b.c", []StepKind{StepSkipLabel, StepCompare}},
		{"interior wildcard", "a.*.c", []StepKind{StepCompare, StepSkipLabel, StepCompare}},
		{"two wildcards", "*.*.c", []StepKind{StepSkipLabel, StepSkipLabel, StepCompare}},
		{"sole wildcard", "*", []StepKind{StepSkipLabel, StepCompare}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			steps := Parse(tt.raw).Steps()
			require.Len(t, steps, len(tt.kinds))
			for i, k := range tt.kinds {
				assert.Equal(t, k, steps[i].Kind, "step %d", i)
				assert.Equal(t, i == len(tt.kinds)-1, steps[i].Final, "step %d", i)
			}
		})
	}
}

func TestStepsNeverSpanWildcard(t *testing.T) {
	steps := Parse("a.*.c").Steps()
	require.Len(t, steps, 3)

	assert.Equal(t, []byte("\x01a"), Values(steps[0].Bytes))
	assert.Equal(t, []byte("\x01c\x00"), Values(steps[2].Bytes))
}

// Total bytes across compare steps must equal the pattern's wire
// length; skips account for their label at run time, not here.
func TestStepsPreserveWireLength(t *testing.T) {
	for _, raw := range []string{"example.com", "a.*.c", "*.www.fint.me", "a..b", "fin?.me"} {
		p := Parse(raw)
		total := 0
		for _, s := range p.Steps() {
			total += len(s.Bytes)
		}
		assert.Equal(t, p.WireLength(), total, "raw=%q", raw)
	}
}

func TestStepsEmptyInteriorLabel(t *testing.T) {
	steps := Parse("a..b").Steps()
	require.Len(t, steps, 1)

	// The empty label contributes a bare zero length byte inside the run.
	assert.Equal(t, []byte("\x01a\x00\x01b\x00"), Values(steps[0].Bytes))
}
