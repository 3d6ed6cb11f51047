package bpfasm

import (
	"fmt"
	"strings"

	"golang.org/x/net/bpf"
)

// maxSkip is the largest relative jump a classic BPF conditional
// branch can encode.
const maxSkip = 255

// Resolve lowers the symbolic program into x/net/bpf instructions,
// replacing every label reference with a relative skip count. Labels
// and comments occupy no slots. It returns an error for duplicate or
// undefined labels, for backward jumps (the target VM is single-pass,
// forward-only) and for jumps too far for the instruction encoding --
// all of which indicate a bug in the code generator, not bad user
// input.
func Resolve(p *Program) ([]bpf.Instruction, error) {
	// First pass: map each label to the index of the next real
	// instruction.
	labels := make(map[string]int)
	n := 0
	for _, inst := range p.Instructions {
		switch v := inst.(type) {
		case Label:
			if _, dup := labels[v.Name]; dup {
				return nil, fmt.Errorf("bpfasm: duplicate label %q", v.Name)
			}
			labels[v.Name] = n
		case Comment:
		default:
			n++
		}
	}

	out := make([]bpf.Instruction, 0, n)
	for _, inst := range p.Instructions {
		var lowered bpf.Instruction
		switch v := inst.(type) {
		case Label, Comment:
			continue
		case LoadConstant:
			lowered = bpf.LoadConstant{Dst: bpf.RegA, Val: v.Val}
		case LoadIndirect:
			lowered = bpf.LoadIndirect{Off: v.Off, Size: v.Size}
		case LoadMemShift:
			lowered = bpf.LoadMemShift{Off: v.Off}
		case LoadScratchX:
			lowered = bpf.LoadScratch{Dst: bpf.RegX, N: v.N}
		case StoreScratch:
			lowered = bpf.StoreScratch{Src: bpf.RegA, N: v.N}
		case ALUOpConstant:
			lowered = bpf.ALUOpConstant{Op: v.Op, Val: v.Val}
		case ALUOpX:
			lowered = bpf.ALUOpX{Op: v.Op}
		case TAX:
			lowered = bpf.TAX{}
		case TXA:
			lowered = bpf.TXA{}
		case JumpIfNotEqual:
			target, ok := labels[v.Target]
			if !ok {
				return nil, fmt.Errorf("bpfasm: undefined label %q", v.Target)
			}
			skip := target - len(out) - 1
			if skip < 0 {
				return nil, fmt.Errorf("bpfasm: backward jump to %q from instruction %d", v.Target, len(out))
			}
			if skip > maxSkip {
				return nil, fmt.Errorf("bpfasm: jump to %q spans %d instructions, limit %d", v.Target, skip, maxSkip)
			}
			lowered = bpf.JumpIf{Cond: bpf.JumpNotEqual, Val: v.Val, SkipTrue: uint8(skip)}
		case Ret:
			lowered = bpf.RetConstant{Val: v.Val}
		default:
			return nil, fmt.Errorf("bpfasm: unknown instruction %T", inst)
		}
		out = append(out, lowered)
	}
	return out, nil
}

// Assemble resolves the program and assembles it into raw fixed-size
// instruction records.
func Assemble(p *Program) ([]bpf.RawInstruction, error) {
	insts, err := Resolve(p)
	if err != nil {
		return nil, err
	}
	raw, err := bpf.Assemble(insts)
	if err != nil {
		return nil, fmt.Errorf("bpfasm: %w", err)
	}
	return raw, nil
}

// FormatRaw renders raw instructions in the classic bytecode text
// format, "count,op jt jf k,...", accepted by iptables -m bpf and
// friends.
func FormatRaw(raw []bpf.RawInstruction) string {
	parts := make([]string, 0, len(raw)+1)
	parts = append(parts, fmt.Sprintf("%d", len(raw)))
	for _, r := range raw {
		parts = append(parts, fmt.Sprintf("%d %d %d %d", r.Op, r.Jt, r.Jf, r.K))
	}
	return strings.Join(parts, ",")
}
