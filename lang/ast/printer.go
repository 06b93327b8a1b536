package ast

import (
	"fmt"
	"io"
	"strings"
)

// Printer renders an AST in a compact s-expression form for the --emit-ast
// driver flag, analogous to the teacher's ast.Printer (lang/ast/printer.go
// in the teacher repo) which writes a resolved AST to an io.Writer.
type Printer struct {
	Output io.Writer
}

// Print writes a textual dump of prog to p.Output.
func (p *Printer) Print(prog *Program) error {
	var sb strings.Builder
	for _, d := range prog.Decls {
		printDecl(&sb, d, 0)
	}
	_, err := io.WriteString(p.Output, sb.String())
	return err
}

func indent(sb *strings.Builder, depth int) {
	for i := 0; i < depth; i++ {
		sb.WriteString("  ")
	}
}

func printDecl(sb *strings.Builder, d Decl, depth int) {
	indent(sb, depth)
	switch d := d.(type) {
	case *VarDecl:
		fmt.Fprintf(sb, "(var %s global=%v", d.Name, d.IsGlobal)
		if d.Rhs != nil {
			sb.WriteString(" ")
			printExpr(sb, d.Rhs)
		}
		sb.WriteString(")\n")
	case *FnDecl:
		fmt.Fprintf(sb, "(fn %s (%s)\n", d.Name, strings.Join(d.Params.Names, " "))
		printBlock(sb, d.Body, depth+1)
		indent(sb, depth)
		sb.WriteString(")\n")
	case *IfStmt:
		sb.WriteString("(if ")
		printExpr(sb, d.Cond)
		sb.WriteString("\n")
		printBlock(sb, d.Then, depth+1)
		for _, e := range d.Elifs {
			indent(sb, depth)
			sb.WriteString("(elif ")
			printExpr(sb, e.Cond)
			sb.WriteString("\n")
			printBlock(sb, e.Then, depth+1)
			indent(sb, depth)
			sb.WriteString(")\n")
		}
		if d.Else != nil {
			indent(sb, depth)
			sb.WriteString("(else\n")
			printBlock(sb, d.Else, depth+1)
			indent(sb, depth)
			sb.WriteString(")\n")
		}
		indent(sb, depth)
		sb.WriteString(")\n")
	case *ForStmt:
		fmt.Fprintf(sb, "(for %s %s in ", d.Vars.Index, d.Vars.Val)
		printExpr(sb, d.Iter)
		sb.WriteString("\n")
		printBlock(sb, d.Body, depth+1)
		indent(sb, depth)
		sb.WriteString(")\n")
	case *ReturnStmt:
		sb.WriteString("(return")
		if d.Expr != nil {
			sb.WriteString(" ")
			printExpr(sb, d.Expr)
		}
		sb.WriteString(")\n")
	case *ExprStmt:
		printExpr(sb, d.X)
		sb.WriteString("\n")
	case *Block:
		printBlock(sb, d, depth)
	case *Null:
		sb.WriteString("(null)\n")
	default:
		fmt.Fprintf(sb, "(unknown-decl %T)\n", d)
	}
}

func printBlock(sb *strings.Builder, b *Block, depth int) {
	for _, d := range b.Decls {
		printDecl(sb, d, depth)
	}
}

func printExpr(sb *strings.Builder, e Expr) {
	switch e := e.(type) {
	case *BinaryExpr:
		fmt.Fprintf(sb, "(%s ", e.Op.GoString())
		printExpr(sb, e.Lhs)
		sb.WriteString(" ")
		printExpr(sb, e.Rhs)
		sb.WriteString(")")
	case *UnaryExpr:
		fmt.Fprintf(sb, "(%s ", e.Op.GoString())
		printExpr(sb, e.Operand)
		sb.WriteString(")")
	case *PrimaryExpr:
		switch e.Kind {
		case PrimaryIdent:
			sb.WriteString(e.Name)
		case PrimaryNumber:
			fmt.Fprintf(sb, "%g", e.NumVal)
		case PrimaryString:
			fmt.Fprintf(sb, "%q", e.StrVal)
		case PrimaryBool:
			fmt.Fprintf(sb, "%v", e.BoolVal)
		case PrimaryNull:
			sb.WriteString("null")
		}
	case *FnCallExpr:
		prefix := ""
		if e.IsStdlib {
			prefix = "@"
		}
		fmt.Fprintf(sb, "(call %s%s", prefix, e.Name)
		for _, a := range e.Args {
			sb.WriteString(" ")
			printExpr(sb, a)
		}
		sb.WriteString(")")
	case *VarAssignExpr:
		fmt.Fprintf(sb, "(= %s ", e.Name)
		printExpr(sb, e.Rhs)
		sb.WriteString(")")
	case *Table:
		fmt.Fprintf(sb, "(table %s", e.Name)
		for _, it := range e.Items.Items {
			sb.WriteString(" (")
			sb.WriteString(it.Key)
			sb.WriteString(" => ")
			printExpr(sb, it.Val)
			sb.WriteString(")")
		}
		sb.WriteString(")")
	case *TableAccess:
		fmt.Fprintf(sb, "(. %s %s)", e.Name, e.Field)
	case *Array:
		fmt.Fprintf(sb, "(array %s", e.Name)
		for _, it := range e.Body.Items {
			sb.WriteString(" ")
			printExpr(sb, it)
		}
		sb.WriteString(")")
	case *ArrayAccess:
		fmt.Fprintf(sb, "([] %s ", e.Name)
		printExpr(sb, e.Index)
		sb.WriteString(")")
	case *ArrayMutExpr:
		fmt.Fprintf(sb, "(=[] %s ", e.Name)
		printExpr(sb, e.Index)
		sb.WriteString(" ")
		printExpr(sb, e.Rhs)
		sb.WriteString(")")
	case *Null:
		sb.WriteString("(null)")
	default:
		fmt.Fprintf(sb, "(unknown-expr %T)", e)
	}
}
