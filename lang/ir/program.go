package ir

import "strings"

// Program is the lowerer's output contract (spec.md §4.1): Decls holds
// function headers and bodies, Code holds top-level statements, and
// CodeStart is the index of the first top-level instruction once Decls and
// Code are concatenated into one instruction stream for execution.
type Program struct {
	Decls        []Instruction
	Code         []Instruction
	CodeStart    int
	CodeRegCount int // size of the register window the top-level frame needs
	JumpTab      JumpTab
	FnTab        FnTab
}

// Combined returns the single instruction stream (decls followed by code)
// that the VM and the optimizer operate on (lang/cfg is given one section,
// such as Code, on its own). CodeStart is the index into this slice at
// which Code begins.
func (p *Program) Combined() []Instruction {
	out := make([]Instruction, 0, len(p.Decls)+len(p.Code))
	out = append(out, p.Decls...)
	out = append(out, p.Code...)
	return out
}

// SetCombined splits a rewritten combined stream back into Decls and Code at
// newCodeStart, and updates CodeStart. Used by the optimizer after a pass
// may have removed instructions from the decls section.
func (p *Program) SetCombined(combined []Instruction, newCodeStart int) {
	p.Decls = append([]Instruction(nil), combined[:newCodeStart]...)
	p.Code = append([]Instruction(nil), combined[newCodeStart:]...)
	p.CodeStart = newCodeStart
}

// RecomputeTables recomputes JumpTab and FnTab from the current Decls+Code,
// as required after any pass that rewrites the instruction stream (§4.1,
// §4.5).
func (p *Program) RecomputeTables() {
	p.JumpTab, p.FnTab = ComputeTables(p.Combined())
}

// String renders the whole program in the textual form used by --emit-ir.
func (p *Program) String() string {
	var sb strings.Builder
	sb.WriteString("; decls\n")
	for _, in := range p.Decls {
		sb.WriteString(in.String())
		sb.WriteByte('\n')
	}
	sb.WriteString("; code\n")
	for _, in := range p.Code {
		sb.WriteString(in.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
