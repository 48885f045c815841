package parse

import (
	"fmt"
	"strings"
)

// Unparse renders an AST back to source text. Reparsing the output yields a
// structurally identical AST (spans aside); the rendering normalizes layout
// to one compound per line with single spaces.
func Unparse(ast *AST) string {
	var u unparser
	for i, c := range ast.Sequence {
		if i > 0 {
			u.write("\n")
		}
		u.compound(c)
	}
	return u.String()
}

// UnparseCompound renders a single compound.
func UnparseCompound(c Compound) string {
	var u unparser
	u.compound(c)
	return u.String()
}

type unparser struct {
	strings.Builder
}

func (u *unparser) write(s string)               { u.WriteString(s) }
func (u *unparser) writef(f string, args ...any) { fmt.Fprintf(u, f, args...) }

func (u *unparser) compound(c Compound) {
	switch c := c.(type) {
	case Statement:
		u.stmt(c)
	case Expr:
		u.expr(c)
	}
}

func (u *unparser) stmt(s Statement) {
	switch s := s.(type) {
	case *Block:
		u.block(s)
	case *Decl:
		if s.Export {
			u.write("export ")
		} else {
			u.write("let ")
		}
		u.writef("$%s", s.Var.Name)
		if s.Rhs != nil {
			u.write(" = ")
			u.expr(s.Rhs)
		}
	case *Assignment:
		u.writef("$%s = ", s.Var.Name)
		u.expr(s.Rhs)
	case *AssignOp:
		u.writef("$%s %s= ", s.Var.Name, s.Op)
		u.expr(s.Rhs)
	case *IfStmt:
		u.write("if ")
		u.expr(s.Cond)
		u.write(" ")
		u.block(s.Body)
		switch e := s.Else.(type) {
		case nil:
		case *IfStmt:
			u.write(" else ")
			u.stmt(e)
		case *Block:
			u.write(" else ")
			u.block(e)
		}
	case *WhileStmt:
		u.write("while ")
		u.expr(s.Cond)
		u.write(" ")
		u.block(s.Body)
	case *LoopStmt:
		u.write("loop ")
		u.block(s.Body)
	case *ForStmt:
		u.writef("for $%s in ", s.Var.Name)
		u.expr(s.Iter)
		u.write(" ")
		u.block(s.Body)
	case *FnDecl:
		u.writef("fn %s(", s.Name)
		for i, param := range s.Params {
			if i > 0 {
				u.write(", ")
			}
			u.writef("$%s", param.Name)
		}
		u.write(") ")
		u.block(s.Body)
	case *ReturnStmt:
		u.write("return")
		if s.Value != nil {
			u.write(" ")
			u.expr(s.Value)
		}
	case *BreakStmt:
		u.write("break")
	case *ContinueStmt:
		u.write("continue")
	}
}

func (u *unparser) block(b *Block) {
	if len(b.Sequence) == 0 {
		u.write("{ }")
		return
	}
	u.write("{ ")
	for i, c := range b.Sequence {
		if i > 0 {
			u.write("; ")
		}
		u.compound(c)
	}
	u.write(" }")
}

func (u *unparser) expr(e Expr) {
	switch e := e.(type) {
	case *VarRef:
		u.writef("$%s", e.Name)
	case *Binary:
		u.expr(e.LHS)
		u.writef(" %s ", e.Op)
		u.expr(e.RHS)
	case *Unary:
		u.write(e.Op.String())
		u.expr(e.Operand)
	case *SubExpr:
		u.write("(")
		u.expr(e.Inner)
		u.write(")")
	case *ErrorCheck:
		u.write("?(")
		u.expr(e.Inner)
		u.write(")")
	case *Column:
		u.expr(e.Expr)
		u.writef(".%s", e.Name)
	case *Index:
		u.expr(e.Expr)
		u.write("[")
		u.expr(e.Index)
		u.write("]")
	case *Closure:
		u.closure(e)
	case *Pipeline:
		for i, item := range e.Items {
			if redir, ok := item.(*Redirect); ok {
				u.write(" ")
				u.redirect(redir)
				continue
			}
			if i > 0 {
				u.write(" | ")
			}
			u.expr(item)
		}
	case *Call:
		for _, part := range e.Command {
			u.commandPart(part)
		}
		for _, arg := range e.Args {
			u.write(" ")
			u.argument(arg)
		}
	case *Redirect:
		u.redirect(e)
	case *StringLit:
		u.quoted(e.Value)
	case *IntLit:
		u.write(e.Text)
	case *FloatLit:
		u.write(e.Text)
	case *BoolLit:
		if e.Value {
			u.write("true")
		} else {
			u.write("false")
		}
	case *ListLit:
		u.write("[")
		for i, item := range e.Items {
			if i > 0 {
				u.write(", ")
			}
			u.expr(item)
		}
		u.write("]")
	case *MapLit:
		u.write("@{")
		for i, pair := range e.Pairs {
			if i > 0 {
				u.write(", ")
			}
			u.expr(pair.Key)
			u.write(": ")
			u.expr(pair.Value)
		}
		u.write("}")
	case *RegexLit:
		u.writef("@'%s'", e.Text)
	case *ExpandLit:
		u.expand(e.Expand)
	}
}

func (u *unparser) redirect(r *Redirect) {
	switch {
	case r.Dir == RedirIn:
		u.write("< ")
	case r.Append:
		u.write(">> ")
	default:
		u.write("> ")
	}
	u.argument(r.File)
}

func (u *unparser) closure(c *Closure) {
	u.write("{|")
	for i, param := range c.Params {
		if i > 0 {
			u.write(", ")
		}
		u.writef("$%s", param.Name)
	}
	u.write("| ")
	for i, item := range c.Body.Sequence {
		if i > 0 {
			u.write("; ")
		}
		u.compound(item)
	}
	u.write(" }")
}

func (u *unparser) commandPart(p CommandPart) {
	switch p := p.(type) {
	case *BareCmd:
		u.write(escapeBare(p.Text))
	case *VarCmd:
		u.writef("$%s", p.Var.Name)
	case *ExpandCmd:
		u.expand(p.Expand)
	}
}

func (u *unparser) argument(a *Argument) {
	for _, part := range a.Parts {
		switch part := part.(type) {
		case *BareArg:
			u.write(escapeBare(part.Text))
		case *QuotedArg:
			u.quoted(part.Text)
		case *ExpandArg:
			u.expand(part.Expand)
		case *VarArg:
			u.writef("$%s", part.Var.Name)
		case *IntArg:
			u.write(part.Text)
		case *FloatArg:
			u.write(part.Text)
		case *ExprArg:
			u.expr(part.Expr)
		}
	}
}

func (u *unparser) expand(e *Expand) {
	u.write(`"`)
	for _, part := range e.Parts {
		switch part := part.(type) {
		case *ExpandText:
			u.write(escapeExpand(part.Text))
		case *ExpandVar:
			u.writef("$%s", part.Var.Name)
		case *ExpandExpr:
			u.write("$")
			u.expr(part.Expr)
		}
	}
	u.write(`"`)
}

// quoted prefers a raw string; text that already contains a quote cannot be
// spelled raw and falls back to a backslash-escaped bare word.
func (u *unparser) quoted(s string) {
	if strings.ContainsRune(s, '\'') {
		u.write(escapeBare(s))
		return
	}
	u.writef("'%s'", s)
}

// escapeBare renders text so it lexes back into one bare word: bytes that
// would terminate or re-kind the word get a backslash, and named escapes
// render symbolically.
func escapeBare(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		case ' ':
			b.WriteString(`\s`)
		case 0:
			b.WriteString(`\0`)
		case '\\':
			b.WriteString(`\\`)
		default:
			if strings.IndexByte(wordStop, c) >= 0 || i == 0 && isDigit(c) {
				b.WriteByte('\\')
			}
			b.WriteByte(c)
		}
	}
	out := b.String()
	if _, ok := keywords[out]; ok {
		return `\` + out
	}
	return out
}

// escapeExpand renders literal text inside an interpolated string region.
func escapeExpand(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"', '$', '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case 0:
			b.WriteString(`\0`)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
