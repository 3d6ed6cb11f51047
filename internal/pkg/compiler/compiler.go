// Package compiler turns parsed domain patterns into a classic BPF
// program that matches the first query name of a DNS packet.
//
// The generated program is a chain of blocks, one per pattern plus a
// terminal reject block. Each block restarts from the query name
// offset and tries its pattern's steps in order; the first mismatch
// falls through to the next block. There is no backtracking: a
// failure inside a pattern never retries at another offset, it only
// moves on to the next whole pattern.
package compiler

import (
	"errors"
	"fmt"

	"github.com/endorses/dnsbpf/internal/pkg/bpfasm"
	"github.com/endorses/dnsbpf/internal/pkg/constants"
	"github.com/endorses/dnsbpf/internal/pkg/pattern"
)

// ErrNoDomains is returned when Compile is called without patterns.
var ErrNoDomains = errors.New("at least one domain name required")

// Options control code generation.
type Options struct {
	// Negate swaps the accept and reject verdicts: the program matches
	// packets whose query name matches none of the patterns.
	Negate bool

	// IgnoreCase compares literal characters case-insensitively by
	// ORing the 0x20 case bit into every character byte. The bit is
	// applied to non-alphabetic characters too, exactly like the
	// masks the kernel tooling historically produced.
	IgnoreCase bool

	// L3Offset is the byte offset of the IP header within the packet.
	L3Offset int

	// IPVersion selects the network layer, 4 or 6.
	IPVersion int
}

// DefaultOptions returns options for IPv4 DNS over Ethernet.
func DefaultOptions() Options {
	return Options{
		L3Offset:  constants.EthernetHeaderLen,
		IPVersion: 4,
	}
}

// Compile builds a filter program accepting packets whose first DNS
// query name matches any of the domain patterns.
func Compile(domains []string, opts Options) (*bpfasm.Program, error) {
	if len(domains) == 0 {
		return nil, ErrNoDomains
	}
	switch opts.IPVersion {
	case 4, 6:
	default:
		return nil, fmt.Errorf("unsupported IP version %d", opts.IPVersion)
	}
	if opts.L3Offset < 0 {
		return nil, fmt.Errorf("negative L3 offset %d", opts.L3Offset)
	}

	patterns := make([]pattern.Pattern, len(domains))
	for i, d := range domains {
		p := pattern.Parse(d)
		if err := p.Validate(); err != nil {
			return nil, err
		}
		patterns[i] = p
	}

	b := &builder{opts: opts, prog: &bpfasm.Program{}}

	// With a single pattern no block ever restarts from the query
	// offset, so the scratch store and reloads are omitted.
	b.emitQueryOffset(len(patterns) > 1)

	for i, p := range patterns {
		b.emitPatternBlock(p, i, len(patterns))
	}

	b.prog.Add(
		bpfasm.Label{Name: blockName(len(patterns))},
		bpfasm.Ret{Val: b.rejectVerdict()},
	)

	return b.prog, nil
}

// blockName returns the label of the i-th pattern's entry block. The
// block after the last pattern is the terminal reject block.
func blockName(i int) string {
	return fmt.Sprintf("lb_%d", i)
}
