package compiler

import (
	"encoding/hex"
	"fmt"

	"golang.org/x/net/bpf"

	"github.com/endorses/dnsbpf/internal/pkg/bpfasm"
	"github.com/endorses/dnsbpf/internal/pkg/constants"
	"github.com/endorses/dnsbpf/internal/pkg/pattern"
)

type builder struct {
	opts Options
	prog *bpfasm.Program
}

func (b *builder) acceptVerdict() uint32 {
	if b.opts.Negate {
		return 0
	}
	return 1
}

func (b *builder) rejectVerdict() uint32 {
	if b.opts.Negate {
		return 1
	}
	return 0
}

// emitQueryOffset computes the offset of the first DNS query byte and
// leaves it in both X and the accumulator. For IPv4 the variable
// header length is read from the IHL nibble at runtime; IPv6 headers
// are a fixed 40 bytes (extension headers are not walked). With more
// than one pattern the offset is also stored to scratch for the later
// blocks to reload.
func (b *builder) emitQueryOffset(store bool) {
	l3 := uint32(b.opts.L3Offset)
	fixed := uint32(constants.UDPHeaderLen + constants.DNSHeaderLen)

	switch b.opts.IPVersion {
	case 4:
		b.prog.Add(
			bpfasm.LoadMemShift{Off: l3},
			bpfasm.Comment{Text: fmt.Sprintf("l3_off(%d) + 8 of udp + 12 of dns", l3)},
			bpfasm.LoadConstant{Val: l3 + fixed},
			bpfasm.ALUOpX{Op: bpf.ALUOpAdd},
		)
	case 6:
		// assuming first "next header" is UDP
		b.prog.Add(bpfasm.LoadConstant{Val: l3 + constants.IPv6HeaderLen + fixed})
	}

	b.prog.Add(bpfasm.TAX{})
	if store {
		b.prog.Add(
			bpfasm.Comment{Text: "a = x = M[0] = offset of first dns query byte"},
			bpfasm.StoreScratch{N: constants.QueryOffsetSlot},
		)
	} else {
		b.prog.Add(bpfasm.Comment{Text: "a = x = offset of first dns query byte"})
	}
}

// emitPatternBlock lays out the i-th pattern's entry block. Blocks
// after the first reload the stored query offset into the cursor;
// failures branch to the next block (or the terminal reject block for
// the last pattern).
func (b *builder) emitPatternBlock(p pattern.Pattern, i, total int) {
	b.prog.Add(bpfasm.Label{Name: blockName(i)})
	if i > 0 {
		b.prog.Add(bpfasm.LoadScratchX{N: constants.QueryOffsetSlot})
	}

	fail := blockName(i + 1)
	for _, step := range p.Steps() {
		switch step.Kind {
		case pattern.StepSkipLabel:
			b.emitSkipLabel()
		case pattern.StepCompare:
			b.emitCompareRun(step, fail)
		}
	}

	b.prog.Add(bpfasm.Ret{Val: b.acceptVerdict()})
}

// emitCompareRun emits chunked comparisons of the run against the
// packet at the cursor, branching to fail on the first mismatch. The
// run is consumed front-aligned in 4-, 2- and 1-byte chunks. Unless
// the step is the pattern's final one, the cursor is advanced past the
// run afterwards.
func (b *builder) emitCompareRun(step pattern.Step, fail string) {
	values := pattern.Values(step.Bytes)
	masks := make([]byte, len(step.Bytes))
	for i, eb := range step.Bytes {
		masks[i] = b.byteMask(eb)
	}

	b.prog.Add(bpfasm.Comment{Text: fmt.Sprintf("Match: %s %q mask=%s",
		hex.EncodeToString(values), values, hex.EncodeToString(masks))})

	off := 0
	for off < len(values) {
		size := chunkSize(len(values) - off)
		val := packBigEndian(values[off : off+size])
		mask := packBigEndian(masks[off : off+size])

		b.prog.Add(bpfasm.LoadIndirect{Off: uint32(off), Size: size})
		if mask != 0 {
			// Masked bits of the live byte must not fail the equality
			// test, so the expected value absorbs the mask too.
			b.prog.Add(bpfasm.ALUOpConstant{Op: bpf.ALUOpOr, Val: mask, Size: size})
			val |= mask
		}
		b.prog.Add(bpfasm.JumpIfNotEqual{Val: val, Size: size, Target: fail})

		off += size
	}

	if !step.Final {
		b.prog.Add(
			bpfasm.TXA{},
			bpfasm.ALUOpConstant{Op: bpf.ALUOpAdd, Val: uint32(off), Size: 4},
			bpfasm.TAX{},
		)
	}
}

// emitSkipLabel advances the cursor past one label: the byte at the
// cursor is the next label's length, so the new cursor is
// cursor + length + 1. A wildcard cannot fail; it only consumes bytes.
func (b *builder) emitSkipLabel() {
	b.prog.Add(
		bpfasm.Comment{Text: "Match: *"},
		bpfasm.LoadIndirect{Off: 0, Size: 1},
		bpfasm.ALUOpX{Op: bpf.ALUOpAdd},
		bpfasm.ALUOpConstant{Op: bpf.ALUOpAdd, Val: 1, Size: 4},
		bpfasm.TAX{},
	)
}

// byteMask returns the comparison mask for one encoded byte: all ones
// for '?' positions, the 0x20 case bit for character bytes under
// IgnoreCase, zero otherwise. Length bytes are always exact.
func (b *builder) byteMask(eb pattern.EncodedByte) byte {
	switch {
	case eb.Kind == pattern.ByteAnyChar:
		return 0xff
	case eb.Kind == pattern.ByteChar && b.opts.IgnoreCase:
		return 0x20
	default:
		return 0x00
	}
}

// chunkSize returns the widest load (4, 2 or 1 bytes) that fits the
// remaining run.
func chunkSize(remaining int) int {
	switch {
	case remaining >= 4:
		return 4
	case remaining >= 2:
		return 2
	default:
		return 1
	}
}

// packBigEndian packs up to four bytes into a network-order word.
func packBigEndian(bs []byte) uint32 {
	var v uint32
	for _, b := range bs {
		v = v<<8 | uint32(b)
	}
	return v
}
