// Package bpfasm provides a symbolic representation of classic BPF
// programs: an instruction list with named jump labels that can be
// printed as conventional bpf_asm mnemonics or assembled into
// golang.org/x/net/bpf instructions.
//
// The compiler builds one Program per invocation and hands the same
// Program to both the textual printer and the binary assembler, so the
// two outputs can never drift apart.
package bpfasm

import (
	"fmt"
	"strings"

	"golang.org/x/net/bpf"
)

// Instruction is one symbolic instruction or pseudo-instruction
// (Label, Comment) in a Program.
type Instruction interface {
	// mnemonic renders the instruction in bpf_asm syntax, without
	// indentation.
	mnemonic() string
}

// Program is an append-only list of symbolic instructions.
type Program struct {
	Instructions []Instruction
}

// Add appends instructions to the program.
func (p *Program) Add(insts ...Instruction) {
	p.Instructions = append(p.Instructions, insts...)
}

// String renders the program as a bpf_asm listing: labels flush left
// with a trailing colon, instructions and comments indented, a blank
// line before each label.
func (p *Program) String() string {
	var b strings.Builder
	for _, inst := range p.Instructions {
		switch v := inst.(type) {
		case Label:
			b.WriteString("\n")
			b.WriteString(v.mnemonic())
			b.WriteString("\n")
		default:
			b.WriteString("    ")
			b.WriteString(inst.mnemonic())
			b.WriteString("\n")
		}
	}
	return b.String()
}

// Label declares a named jump target. Pseudo-instruction: it occupies
// no slot in the assembled program.
type Label struct {
	Name string
}

func (l Label) mnemonic() string { return l.Name + ":" }

// Comment is a listing-only annotation. Pseudo-instruction.
type Comment struct {
	Text string
}

func (c Comment) mnemonic() string { return "; " + c.Text }

// LoadConstant loads an immediate into the accumulator: ld #val.
type LoadConstant struct {
	Val uint32
}

func (i LoadConstant) mnemonic() string { return fmt.Sprintf("ld #%d", i.Val) }

// LoadIndirect loads Size bytes (1, 2 or 4) from the packet at
// X + Off into the accumulator: ld|ldh|ldb [x + off].
type LoadIndirect struct {
	Off  uint32
	Size int
}

func (i LoadIndirect) mnemonic() string {
	return fmt.Sprintf("%s [x + %d]", loadName(i.Size), i.Off)
}

func loadName(size int) string {
	switch size {
	case 1:
		return "ldb"
	case 2:
		return "ldh"
	default:
		return "ld"
	}
}

// LoadMemShift loads 4*(pkt[Off]&0xf) into X -- the IPv4 header
// length idiom: ldx 4*([off]&0xf).
type LoadMemShift struct {
	Off uint32
}

func (i LoadMemShift) mnemonic() string { return fmt.Sprintf("ldx 4*([%d]&0xf)", i.Off) }

// LoadScratchX loads scratch slot N into X: ldx M[n].
type LoadScratchX struct {
	N int
}

func (i LoadScratchX) mnemonic() string { return fmt.Sprintf("ldx M[%d]", i.N) }

// StoreScratch stores the accumulator into scratch slot N: st M[n].
type StoreScratch struct {
	N int
}

func (i StoreScratch) mnemonic() string { return fmt.Sprintf("st M[%d]", i.N) }

// ALUOpConstant applies Op with an immediate operand to the
// accumulator. Size controls hex formatting width in the listing for
// bitwise ops; arithmetic ops print decimal.
type ALUOpConstant struct {
	Op   bpf.ALUOp
	Val  uint32
	Size int
}

func (i ALUOpConstant) mnemonic() string {
	switch i.Op {
	case bpf.ALUOpAnd, bpf.ALUOpOr, bpf.ALUOpXor:
		return fmt.Sprintf("%s #0x%0*x", aluName(i.Op), hexWidth(i.Size), i.Val)
	default:
		return fmt.Sprintf("%s #%d", aluName(i.Op), i.Val)
	}
}

// ALUOpX applies Op with X as the operand to the accumulator: add x.
type ALUOpX struct {
	Op bpf.ALUOp
}

func (i ALUOpX) mnemonic() string { return aluName(i.Op) + " x" }

func aluName(op bpf.ALUOp) string {
	switch op {
	case bpf.ALUOpAdd:
		return "add"
	case bpf.ALUOpSub:
		return "sub"
	case bpf.ALUOpMul:
		return "mul"
	case bpf.ALUOpDiv:
		return "div"
	case bpf.ALUOpMod:
		return "mod"
	case bpf.ALUOpAnd:
		return "and"
	case bpf.ALUOpOr:
		return "or"
	case bpf.ALUOpXor:
		return "xor"
	case bpf.ALUOpShiftLeft:
		return "lsh"
	case bpf.ALUOpShiftRight:
		return "rsh"
	default:
		return fmt.Sprintf("alu<%d>", op)
	}
}

// TAX copies the accumulator into X.
type TAX struct{}

func (TAX) mnemonic() string { return "tax" }

// TXA copies X into the accumulator.
type TXA struct{}

func (TXA) mnemonic() string { return "txa" }

// JumpIfNotEqual branches to the named label when the accumulator
// differs from Val: jneq #val, target. Size controls hex formatting
// width in the listing.
type JumpIfNotEqual struct {
	Val    uint32
	Size   int
	Target string
}

func (i JumpIfNotEqual) mnemonic() string {
	return fmt.Sprintf("jneq #0x%0*x, %s", hexWidth(i.Size), i.Val, i.Target)
}

// Ret terminates the program with a verdict: ret #val.
type Ret struct {
	Val uint32
}

func (i Ret) mnemonic() string { return fmt.Sprintf("ret #%d", i.Val) }

func hexWidth(size int) int {
	switch size {
	case 1:
		return 2
	case 2:
		return 4
	default:
		return 8
	}
}
