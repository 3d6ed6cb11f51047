package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/endorses/dnsbpf/internal/pkg/constants"
)

// resetOptions restores the package-level flag values between tests.
func resetOptions() {
	negate = false
	ignoreCase = false
	assembly = false
	l3Offset = constants.EthernetHeaderLen
	inet6 = false
}

// runCompile invokes the compile step with a fresh output sink.
func runCompile(t *testing.T, args []string) (string, error) {
	t.Helper()

	buf := &bytes.Buffer{}
	c := &cobra.Command{}
	c.SetOut(buf)
	err := compile(c, args)
	return buf.String(), err
}

func TestCompileNoDomains(t *testing.T) {
	resetOptions()

	out, err := runCompile(t, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one domain name required")
	assert.Empty(t, out, "no partial output on error")
}

func TestCompileBytecodeOutput(t *testing.T) {
	resetOptions()

	out, err := runCompile(t, []string{"example.com"})
	require.NoError(t, err)

	// 4 preamble + 8 compare + accept + reject = 14 instructions.
	assert.True(t, strings.HasPrefix(out, "14,"), "got %q", out)
	assert.True(t, strings.HasSuffix(out, "\n"))
	assert.NotContains(t, out, "jneq", "bytecode mode must not print mnemonics")
}

func TestCompileAssemblyOutput(t *testing.T) {
	resetOptions()
	assembly = true

	out, err := runCompile(t, []string{"example.com"})
	require.NoError(t, err)

	assert.Contains(t, out, "ldx 4*([14]&0xf)")
	assert.Contains(t, out, "jneq #0x07657861, lb_1")
	assert.Contains(t, out, "ret #1")
	assert.Contains(t, out, "ret #0")
}

func TestCompileNegateFlag(t *testing.T) {
	resetOptions()
	assembly = true
	negate = true

	out, err := runCompile(t, []string{"example.com"})
	require.NoError(t, err)

	// Verdicts swap under negation.
	accept := strings.Index(out, "ret #0")
	reject := strings.Index(out, "ret #1")
	require.GreaterOrEqual(t, accept, 0)
	require.GreaterOrEqual(t, reject, 0)
	assert.Less(t, accept, reject)
}

func TestCompileInet6Flag(t *testing.T) {
	resetOptions()
	assembly = true
	inet6 = true

	out, err := runCompile(t, []string{"example.com"})
	require.NoError(t, err)

	assert.Contains(t, out, "ld #74")
	assert.NotContains(t, out, "ldx 4*(")
}

func TestCompileOffsetFlag(t *testing.T) {
	resetOptions()
	assembly = true
	l3Offset = 0

	out, err := runCompile(t, []string{"example.com"})
	require.NoError(t, err)

	assert.Contains(t, out, "ldx 4*([0]&0xf)")
	assert.Contains(t, out, "ld #20")
}

func TestRootCommandRejectsNoArgs(t *testing.T) {
	resetOptions()

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetArgs([]string{})

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one domain name required")
}
