package parse

import (
	"fmt"
	"math/big"
	"regexp"
	"strconv"
	"strings"

	"github.com/krillsh/krill/pkg/diag"
)

// Parse parses one source unit. It returns the first syntax error found;
// there is no recovery and no partial AST.
func Parse(src Source) (*AST, error) {
	p := &parser{src: src, tokens: lex(src.Code)}
	seq, err := p.parseSequence(false, ctxNone)
	if err != nil {
		return nil, err
	}
	return &AST{Source: src, Sequence: seq}, nil
}

// parseCtx tracks which statements are legal at the current position.
type parseCtx uint

const (
	ctxNone parseCtx = 0
	inLoop  parseCtx = 1 << iota
	inFunction
)

// parser holds the token stream and a single position; lookahead is one
// token, there is no backtracking.
type parser struct {
	src    Source
	tokens []Token
	pos    int
}

func (p *parser) at(i int) Token {
	if i < len(p.tokens) {
		return p.tokens[i]
	}
	return Token{Kind: EOF, Ranging: diag.PointRanging(len(p.src.Code))}
}

// skipComment advances past a comment run: the Comment token and everything
// up to, but not including, the next newline.
func (p *parser) skipComment() {
	for p.pos < len(p.tokens) && p.tokens[p.pos].Kind == Comment {
		for p.pos < len(p.tokens) && p.tokens[p.pos].Kind != Newline {
			p.pos++
		}
	}
}

func (p *parser) peek() Token {
	p.skipComment()
	return p.at(p.pos)
}

func (p *parser) next() Token {
	p.skipComment()
	return p.nextRaw()
}

// peekRaw and nextRaw do not skip comments; they are used inside quoted
// regions where # is literal text.
func (p *parser) peekRaw() Token { return p.at(p.pos) }

func (p *parser) nextRaw() Token {
	t := p.at(p.pos)
	if t.Kind != EOF {
		p.pos++
	}
	return t
}

func (p *parser) expect(k Kind) (Token, error) {
	t := p.next()
	if t.Kind != k {
		if t.Kind == EOF {
			return t, syntaxError(ExpectedToken,
				fmt.Sprintf("expected %v, found end of input", k), p.src, t)
		}
		return t, syntaxError(UnexpectedToken,
			fmt.Sprintf("expected %v, found %v", k, t.Kind), p.src, t)
	}
	return t, nil
}

func (p *parser) unexpected(t Token) error {
	if t.Kind == EOF {
		return syntaxError(ExpectedToken, "unexpected end of input", p.src, t)
	}
	return syntaxError(UnexpectedToken, fmt.Sprintf("unexpected %v", t.Kind), p.src, t)
}

func (p *parser) skipSpace() {
	for p.peek().Kind == Space {
		p.next()
	}
}

func (p *parser) skipWhitespace() {
	for k := p.peek().Kind; k == Space || k == Newline; k = p.peek().Kind {
		p.next()
	}
}

func (p *parser) skipSeparators() {
	for k := p.peek().Kind; k == Space || k == Newline || k == Semicolon; k = p.peek().Kind {
		p.next()
	}
}

func (p *parser) parseSequence(block bool, ctx parseCtx) ([]Compound, error) {
	var seq []Compound
	for {
		p.skipSeparators()
		t := p.peek()
		if t.Kind == EOF {
			return seq, nil
		}
		if block && t.Kind == RBrace {
			return seq, nil
		}

		c, err := p.parseCompound(ctx)
		if err != nil {
			return nil, err
		}
		seq = append(seq, c)

		p.skipSpace()
		if block && p.peek().Kind == RBrace {
			return seq, nil
		}
		switch t := p.next(); t.Kind {
		case Semicolon, Newline:
		case EOF:
			return seq, nil
		default:
			return nil, p.unexpected(t)
		}
	}
}

func (p *parser) parseCompound(ctx parseCtx) (Compound, error) {
	switch t := p.peek(); t.Kind {
	case LBrace:
		lbrace := p.next()
		p.skipWhitespace()
		if k := p.peek().Kind; k == Pipe || k == Or {
			return p.parseClosureRest(lbrace)
		}
		return p.parseBlockRest(lbrace, ctx)
	case Variable, Dollar:
		return p.parseVarCompound()
	case Fn:
		return p.parseFn(ctx)
	case Loop:
		start := p.next()
		p.skipWhitespace()
		body, err := p.parseBlock(ctx | inLoop)
		if err != nil {
			return nil, err
		}
		return &LoopStmt{stmtNode{diag.MixedRanging(start, body)}, body}, nil
	case For:
		return p.parseFor(ctx)
	case While:
		start := p.next()
		p.skipWhitespace()
		cond, err := p.parseExpr(false)
		if err != nil {
			return nil, err
		}
		p.skipWhitespace()
		body, err := p.parseBlock(ctx | inLoop)
		if err != nil {
			return nil, err
		}
		return &WhileStmt{stmtNode{diag.MixedRanging(start, body)}, cond, body}, nil
	case If:
		return p.parseIf(ctx)
	case Break:
		t := p.next()
		if ctx&inLoop == 0 {
			return nil, syntaxError(BreakOutsideLoop, "break outside loop", p.src, t)
		}
		return &BreakStmt{stmtNode{t.Ranging}}, nil
	case Continue:
		t := p.next()
		if ctx&inLoop == 0 {
			return nil, syntaxError(ContinueOutsideLoop, "continue outside loop", p.src, t)
		}
		return &ContinueStmt{stmtNode{t.Ranging}}, nil
	case Return:
		return p.parseReturn(ctx)
	case Let:
		return p.parseDecl(false)
	case Export:
		return p.parseDecl(true)
	case Symbol, Dot, Div, Exec, QuestionMark, At, Int, Float, Quote,
		DoubleQuote, Sub, Not, LParen, LBracket, True, False:
		return p.parseExpr(true)
	default:
		return nil, p.unexpected(p.next())
	}
}

// parseVarCompound parses a compound led by a variable: an assignment, a
// compound assignment, a binary expression or a lone reference.
func (p *parser) parseVarCompound() (Compound, error) {
	v, err := p.parseVariable(true)
	if err != nil {
		return nil, err
	}

	switch p.peek().Kind {
	case Dot:
		return p.parseColumn(v)
	case LBracket:
		return p.parseIndex(v)
	}

	for {
		t := p.peek()
		switch {
		case t.Kind == Space:
			p.next()
		case t.Kind == Assign:
			p.next()
			p.skipSpace()
			rhs, err := p.parseExpr(false)
			if err != nil {
				return nil, err
			}
			return &Assignment{stmtNode{diag.MixedRanging(v, rhs)}, v, rhs}, nil
		case t.Kind.isAssignOp():
			p.next()
			p.skipSpace()
			rhs, err := p.parseExpr(false)
			if err != nil {
				return nil, err
			}
			op := assignBinOp(t.Kind)
			return &AssignOp{stmtNode{diag.MixedRanging(v, rhs)}, v, op, rhs}, nil
		case t.Kind == Pipe:
			return p.parsePipe(v)
		case t.Kind.isBinaryOp():
			return p.parseBinary(v, 0)
		case t.Kind == Newline || t.Kind == Semicolon || t.Kind == EOF || t.Kind == RBrace:
			return v, nil
		default:
			return nil, p.unexpected(p.next())
		}
	}
}

// parseVariable parses a variable reference. With sigil set a $ form is
// required ($name, $?); without it a bare identifier is also accepted, as in
// parameter lists and declarations.
func (p *parser) parseVariable(sigil bool) (*VarRef, error) {
	t := p.next()
	switch t.Kind {
	case Variable:
		return &VarRef{exprNode{t.Ranging}, t.Val}, nil
	case Dollar:
		q := p.next()
		if q.Kind == QuestionMark {
			return &VarRef{exprNode{diag.MixedRanging(t, q)}, "?"}, nil
		}
		return nil, p.unexpected(q)
	case Symbol:
		if !sigil {
			if !isValidIdent(t.Text) {
				return nil, syntaxError(InvalidIdentifier,
					fmt.Sprintf("invalid identifier %q", t.Text), p.src, t)
			}
			return &VarRef{exprNode{t.Ranging}, t.Text}, nil
		}
	}
	return nil, p.unexpected(t)
}

func (p *parser) parseFn(ctx parseCtx) (Compound, error) {
	start := p.next()
	p.skipWhitespace()

	t := p.next()
	if t.Kind != Symbol {
		return nil, p.unexpected(t)
	}
	if !isValidIdent(t.Text) {
		return nil, syntaxError(InvalidIdentifier,
			fmt.Sprintf("invalid identifier %q", t.Text), p.src, t)
	}
	name := t.Text

	p.skipWhitespace()
	if _, err := p.expect(LParen); err != nil {
		return nil, err
	}
	params, err := p.parseParams(RParen)
	if err != nil {
		return nil, err
	}

	p.skipWhitespace()
	body, err := p.parseBlock(inFunction)
	if err != nil {
		return nil, err
	}
	return &FnDecl{stmtNode{diag.MixedRanging(start, body)}, name, params, body}, nil
}

// parseParams parses a comma-separated parameter list up to the end token,
// which has already had its opener consumed.
func (p *parser) parseParams(end Kind) ([]*VarRef, error) {
	var params []*VarRef
	for {
		p.skipWhitespace()
		t := p.peek()
		switch t.Kind {
		case end:
			p.next()
			return params, nil
		case Dollar, Variable, Symbol:
			v, err := p.parseVariable(false)
			if err != nil {
				return nil, err
			}
			params = append(params, v)
		default:
			return nil, p.unexpected(p.next())
		}

		p.skipWhitespace()
		switch t := p.next(); t.Kind {
		case end:
			return params, nil
		case Comma:
		default:
			return nil, p.unexpected(t)
		}
	}
}

func (p *parser) parseFor(ctx parseCtx) (Compound, error) {
	start := p.next()
	p.skipWhitespace()
	v, err := p.parseVariable(false)
	if err != nil {
		return nil, err
	}
	p.skipWhitespace()
	if _, err := p.expect(In); err != nil {
		return nil, err
	}
	p.skipWhitespace()
	iter, err := p.parseExpr(false)
	if err != nil {
		return nil, err
	}
	p.skipWhitespace()
	body, err := p.parseBlock(ctx | inLoop)
	if err != nil {
		return nil, err
	}
	return &ForStmt{stmtNode{diag.MixedRanging(start, body)}, v, iter, body}, nil
}

func (p *parser) parseIf(ctx parseCtx) (Statement, error) {
	start, err := p.expect(If)
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	cond, err := p.parseExpr(false)
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	body, err := p.parseBlock(ctx)
	if err != nil {
		return nil, err
	}
	p.skipSpace()

	var elseStmt Statement
	if p.peek().Kind == Else {
		p.next()
		p.skipSpace()
		switch p.peek().Kind {
		case If:
			elseStmt, err = p.parseIf(ctx)
			if err != nil {
				return nil, err
			}
		case LBrace:
			block, err := p.parseBlock(ctx)
			if err != nil {
				return nil, err
			}
			elseStmt = block
		default:
			return nil, p.unexpected(p.next())
		}
	}

	end := diag.Ranger(body)
	if elseStmt != nil {
		end = elseStmt
	}
	return &IfStmt{stmtNode{diag.MixedRanging(start, end)}, cond, body, elseStmt}, nil
}

func (p *parser) parseReturn(ctx parseCtx) (Compound, error) {
	start := p.next()
	if ctx&inFunction == 0 {
		return nil, syntaxError(ReturnOutsideFunction, "return outside function", p.src, start)
	}
	p.skipSpace()
	switch p.peek().Kind {
	case Newline, Semicolon, EOF, RBrace:
		return &ReturnStmt{stmtNode{start.Ranging}, nil}, nil
	}
	value, err := p.parseExpr(false)
	if err != nil {
		return nil, err
	}
	return &ReturnStmt{stmtNode{diag.MixedRanging(start, value)}, value}, nil
}

// parseDecl parses a let or export declaration. The initializer is optional;
// a declaration without one binds null.
func (p *parser) parseDecl(export bool) (Compound, error) {
	start := p.next()
	p.skipSpace()
	v, err := p.parseVariable(false)
	if err != nil {
		return nil, err
	}
	p.skipSpace()

	switch p.peek().Kind {
	case Assign:
		p.next()
		p.skipSpace()
		rhs, err := p.parseExpr(false)
		if err != nil {
			return nil, err
		}
		return &Decl{stmtNode{diag.MixedRanging(start, rhs)}, v, rhs, export}, nil
	case Newline, Semicolon, EOF, RBrace:
		return &Decl{stmtNode{diag.MixedRanging(start, v)}, v, nil, export}, nil
	default:
		return nil, p.unexpected(p.next())
	}
}

func (p *parser) parseBlock(ctx parseCtx) (*Block, error) {
	lbrace, err := p.expect(LBrace)
	if err != nil {
		return nil, err
	}
	return p.parseBlockRest(lbrace, ctx)
}

func (p *parser) parseBlockRest(lbrace Token, ctx parseCtx) (*Block, error) {
	seq, err := p.parseSequence(true, ctx)
	if err != nil {
		return nil, err
	}
	rbrace, err := p.expect(RBrace)
	if err != nil {
		return nil, err
	}
	return &Block{stmtNode{diag.MixedRanging(lbrace, rbrace)}, seq}, nil
}

// parseClosureRest parses a closure literal after its opening brace:
// {|a, b| body}. The empty parameter list {|| body} lexes the bars as Or.
func (p *parser) parseClosureRest(lbrace Token) (Expr, error) {
	var params []*VarRef
	switch t := p.next(); t.Kind {
	case Or:
	case Pipe:
		var err error
		params, err = p.parseParams(Pipe)
		if err != nil {
			return nil, err
		}
	default:
		return nil, p.unexpected(t)
	}

	p.skipWhitespace()
	body, err := p.parseBlockRest(lbrace, inFunction)
	if err != nil {
		return nil, err
	}
	return &Closure{exprNode{body.Ranging}, params, body}, nil
}

// parseExpr parses a full expression. With parseCmd set a leading bare word
// starts a command call rather than a string literal.
func (p *parser) parseExpr(parseCmd bool) (Expr, error) {
	primary, err := p.parsePrimary(parseCmd)
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	return p.parseBinary(primary, 0)
}

// parseBinary climbs operator precedence starting from lhs. Left-associative
// operators recurse with min+1 so equal precedence binds to the left;
// right-associative exponentiation recurses with its own precedence.
func (p *parser) parseBinary(lhs Expr, minPrec int) (Expr, error) {
	var err error
	if lhs == nil {
		lhs, err = p.parsePrimary(false)
		if err != nil {
			return nil, err
		}
		p.skipSpace()
	}
	if p.peek().Kind == Pipe {
		lhs, err = p.parsePipe(lhs)
		if err != nil {
			return nil, err
		}
	}

	for {
		t := p.peek()
		if !t.Kind.isBinaryOp() {
			break
		}
		op := binOpOf(t.Kind)
		prec, assoc := op.Precedence()
		if prec < minPrec {
			break
		}
		nextMin := prec
		if assoc == Left {
			nextMin++
		}
		opToken := p.next()
		p.skipWhitespace()

		rhs, err := p.parseBinary(nil, nextMin)
		if err != nil {
			return nil, err
		}
		p.skipSpace()

		if op.IsComparison() {
			if chained(lhs) || chained(rhs) {
				return nil, syntaxError(ComparisonChaining,
					"comparison operators cannot be chained", p.src, opToken)
			}
		}

		lhs = &Binary{exprNode{diag.MixedRanging(lhs, rhs)}, op, lhs, rhs}
	}
	p.skipSpace()
	return lhs, nil
}

func chained(e Expr) bool {
	b, ok := e.(*Binary)
	return ok && b.Op.IsComparison()
}

func (p *parser) parsePrimary(parseCmd bool) (Expr, error) {
	var expr Expr
	switch t := p.peek(); t.Kind {
	case True, False:
		p.next()
		expr = &BoolLit{exprNode{t.Ranging}, t.Kind == True}
	case Symbol:
		if parseCmd {
			return p.parsePipe(nil)
		}
		text, err := p.unescape(p.next())
		if err != nil {
			return nil, err
		}
		expr = &StringLit{exprNode{t.Ranging}, text}
	case Dot, Div:
		if !parseCmd {
			return nil, p.unexpected(p.next())
		}
		return p.parsePipe(nil)
	case Exec:
		return p.parsePipe(nil)
	case LParen:
		sub, err := p.parseSubExpr()
		if err != nil {
			return nil, err
		}
		expr = sub
	case Variable, Dollar:
		v, err := p.parseVariable(true)
		if err != nil {
			return nil, err
		}
		expr = v
	case Quote:
		text, r, err := p.parseString()
		if err != nil {
			return nil, err
		}
		expr = &StringLit{exprNode{r}, text}
	case Int:
		p.next()
		value, _ := new(big.Int).SetString(t.Val, 10)
		expr = &IntLit{exprNode{t.Ranging}, value, t.Text}
	case Float:
		p.next()
		value, _ := strconv.ParseFloat(t.Val, 64)
		expr = &FloatLit{exprNode{t.Ranging}, value, t.Text}
	case DoubleQuote:
		expand, err := p.parseExpand()
		if err != nil {
			return nil, err
		}
		expr = &ExpandLit{exprNode{expand.Ranging}, expand}
	case Sub, Not:
		p.next()
		op := OpNot
		if t.Kind == Sub {
			op = OpNeg
		}
		p.skipSpace()
		operand, err := p.parsePrimary(parseCmd)
		if err != nil {
			return nil, err
		}
		return &Unary{exprNode{diag.MixedRanging(t, operand)}, op, operand}, nil
	case LBracket:
		list, err := p.parseList()
		if err != nil {
			return nil, err
		}
		expr = list
	case At:
		e, err := p.parseRegexOrMap()
		if err != nil {
			return nil, err
		}
		expr = e
	case QuestionMark:
		e, err := p.parseErrorCheck()
		if err != nil {
			return nil, err
		}
		expr = e
	case LBrace:
		lbrace := p.next()
		p.skipWhitespace()
		var err error
		if k := p.peek().Kind; k == Pipe || k == Or {
			expr, err = p.parseClosureRest(lbrace)
		} else {
			expr, err = p.parseMapRest(lbrace)
		}
		if err != nil {
			return nil, err
		}
	default:
		return nil, p.unexpected(p.next())
	}

	return p.parsePostfix(expr)
}

// parsePostfix applies chained column and index accesses.
func (p *parser) parsePostfix(expr Expr) (Expr, error) {
	for {
		switch p.peek().Kind {
		case Dot:
			col, err := p.parseColumn(expr)
			if err != nil {
				return nil, err
			}
			expr = col
		case LBracket:
			idx, err := p.parseIndex(expr)
			if err != nil {
				return nil, err
			}
			expr = idx
		default:
			return expr, nil
		}
	}
}

func (p *parser) parseColumn(expr Expr) (Expr, error) {
	p.next() // dot
	t := p.next()
	var name string
	switch t.Kind {
	case Symbol:
		name = t.Text
	case Int:
		name = t.Val
	default:
		return nil, p.unexpected(t)
	}
	return p.parsePostfix(&Column{exprNode{diag.MixedRanging(expr, t)}, expr, name})
}

func (p *parser) parseIndex(expr Expr) (Expr, error) {
	p.next() // [
	p.skipWhitespace()
	index, err := p.parseExpr(false)
	if err != nil {
		return nil, err
	}
	p.skipWhitespace()
	rbracket, err := p.expect(RBracket)
	if err != nil {
		return nil, err
	}
	node := &Index{exprNode{diag.MixedRanging(expr, rbracket)}, expr, index}
	return p.parsePostfix(node)
}

func (p *parser) parseSubExpr() (Expr, error) {
	lparen, err := p.expect(LParen)
	if err != nil {
		return nil, err
	}
	p.skipWhitespace()
	inner, err := p.parseExpr(true)
	if err != nil {
		return nil, err
	}
	p.skipWhitespace()
	rparen, err := p.expect(RParen)
	if err != nil {
		return nil, err
	}
	return &SubExpr{exprNode{diag.MixedRanging(lparen, rparen)}, inner}, nil
}

func (p *parser) parseErrorCheck() (Expr, error) {
	start, err := p.expect(QuestionMark)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(LParen); err != nil {
		return nil, err
	}
	p.skipWhitespace()
	inner, err := p.parseExpr(true)
	if err != nil {
		return nil, err
	}
	p.skipWhitespace()
	rparen, err := p.expect(RParen)
	if err != nil {
		return nil, err
	}
	return &ErrorCheck{exprNode{diag.MixedRanging(start, rparen)}, inner}, nil
}

func (p *parser) parseList() (Expr, error) {
	lbracket, err := p.expect(LBracket)
	if err != nil {
		return nil, err
	}
	var items []Expr
	lastWasComma := true
	for {
		p.skipWhitespace()
		switch p.peek().Kind {
		case RBracket:
			rbracket := p.next()
			return &ListLit{exprNode{diag.MixedRanging(lbracket, rbracket)}, items}, nil
		case Comma:
			if lastWasComma {
				return nil, p.unexpected(p.next())
			}
			p.next()
			lastWasComma = true
		default:
			lastWasComma = false
			item, err := p.parseExpr(false)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
	}
}

func (p *parser) parseRegexOrMap() (Expr, error) {
	at, err := p.expect(At)
	if err != nil {
		return nil, err
	}
	switch t := p.peek(); t.Kind {
	case LBrace:
		lbrace := p.next()
		m, err := p.parseMapRest(lbrace)
		if err != nil {
			return nil, err
		}
		m.From = at.From
		return m, nil
	case Quote:
		return p.parseRegex(at)
	default:
		return nil, p.unexpected(p.next())
	}
}

func (p *parser) parseMapRest(lbrace Token) (*MapLit, error) {
	var pairs []MapPair
	lastWasComma := true
	for {
		p.skipWhitespace()
		switch p.peek().Kind {
		case RBrace:
			rbrace := p.next()
			return &MapLit{exprNode{diag.MixedRanging(lbrace, rbrace)}, pairs}, nil
		case Comma:
			if lastWasComma {
				return nil, p.unexpected(p.next())
			}
			p.next()
			lastWasComma = true
		default:
			lastWasComma = false
			key, err := p.parseExpr(false)
			if err != nil {
				return nil, err
			}
			p.skipWhitespace()
			if _, err := p.expect(Colon); err != nil {
				return nil, err
			}
			p.skipWhitespace()
			value, err := p.parseExpr(false)
			if err != nil {
				return nil, err
			}
			pairs = append(pairs, MapPair{key, value})
		}
	}
}

func (p *parser) parseRegex(at Token) (Expr, error) {
	text, r, err := p.parseString()
	if err != nil {
		return nil, err
	}
	span := diag.MixedRanging(at, r)
	pattern, err := regexp.Compile(text)
	if err != nil {
		return nil, syntaxError(InvalidRegex, err.Error(), p.src, span)
	}
	return &RegexLit{exprNode{span}, pattern, text}, nil
}

// parseString reassembles a raw string region between Quote tokens from the
// spanned source text of the tokens inside it.
func (p *parser) parseString() (string, diag.Ranging, error) {
	open, err := p.expect(Quote)
	if err != nil {
		return "", diag.Ranging{}, err
	}
	var b strings.Builder
	for {
		t := p.nextRaw()
		switch t.Kind {
		case Quote:
			return b.String(), diag.MixedRanging(open, t), nil
		case EOF:
			return "", diag.Ranging{}, syntaxError(ExpectedToken,
				"unterminated string", p.src, diag.MixedRanging(open, t))
		default:
			b.WriteString(t.Text)
		}
	}
}

// parseExpand parses an interpolated string region between DoubleQuote
// tokens: literal text with embedded $variables and $(expressions). Only $
// introduces interpolation; a bare ( is literal text.
func (p *parser) parseExpand() (*Expand, error) {
	open, err := p.expect(DoubleQuote)
	if err != nil {
		return nil, err
	}
	var parts []ExpandPart
	for {
		t := p.peekRaw()
		switch t.Kind {
		case DoubleQuote:
			end := p.nextRaw()
			return &Expand{diag.MixedRanging(open, end), parts}, nil
		case EOF:
			return nil, syntaxError(ExpectedToken,
				"unterminated string", p.src, diag.MixedRanging(open, t))
		case Variable:
			v, err := p.parseVariable(true)
			if err != nil {
				return nil, err
			}
			parts = append(parts, &ExpandVar{v.Range(), v})
		case Dollar:
			dollar := p.nextRaw()
			switch q := p.peekRaw(); q.Kind {
			case QuestionMark:
				end := p.nextRaw()
				span := diag.MixedRanging(dollar, end)
				parts = append(parts, &ExpandVar{span, &VarRef{exprNode{span}, "?"}})
			case LParen:
				expr, err := p.parseSubExpr()
				if err != nil {
					return nil, err
				}
				parts = append(parts, &ExpandExpr{diag.MixedRanging(dollar, expr), expr})
			default:
				return nil, p.unexpected(p.nextRaw())
			}
		default:
			p.nextRaw()
			text := t.Text
			if t.Kind == Symbol {
				text, err = p.unescape(t)
				if err != nil {
					return nil, err
				}
			}
			if last, ok := lastPart(parts).(*ExpandText); ok {
				last.Text += text
				last.To = t.To
			} else {
				parts = append(parts, &ExpandText{t.Ranging, text})
			}
		}
	}
}

func lastPart(parts []ExpandPart) ExpandPart {
	if len(parts) == 0 {
		return nil
	}
	return parts[len(parts)-1]
}

// parsePipe parses a chain of calls separated by | with optional trailing
// redirects. first, when non-nil, is an already-parsed expression acting as
// the first stage.
func (p *parser) parsePipe(first Expr) (Expr, error) {
	var items []Expr
	if first != nil {
		items = append(items, first)
	} else {
		call, err := p.parseCall()
		if err != nil {
			return nil, err
		}
		items = append(items, call)
	}

	p.skipSpace()
	for {
		switch p.peek().Kind {
		case Pipe:
			p.next()
			p.skipWhitespace()
			call, err := p.parseCall()
			if err != nil {
				return nil, err
			}
			items = append(items, call)
			p.skipSpace()
		case Gt, Lt:
			redir, err := p.parseRedirect()
			if err != nil {
				return nil, err
			}
			items = append(items, redir)
			p.skipSpace()
		default:
			span := diag.MixedRanging(items[0], items[len(items)-1])
			return &Pipeline{exprNode{span}, items}, nil
		}
	}
}

func (p *parser) parseRedirect() (Expr, error) {
	t := p.next()
	dir := RedirOut
	appendFile := false
	if t.Kind == Lt {
		dir = RedirIn
	} else if p.peek().Kind == Gt {
		p.next()
		appendFile = true
	}
	p.skipWhitespace()
	file, err := p.parseArgument()
	if err != nil {
		return nil, err
	}
	span := diag.MixedRanging(t, file)
	return &Redirect{exprNode{span}, dir, appendFile, file}, nil
}

func (p *parser) parseCall() (Expr, error) {
	command, err := p.parseCommand()
	if err != nil {
		return nil, err
	}
	span := command[0].Range()

	var args []*Argument
	for {
		t := p.peek()
		if t.Kind == Space {
			p.next()
			continue
		}
		if !t.Kind.isArgPart() {
			break
		}
		arg, err := p.parseArgument()
		if err != nil {
			return nil, err
		}
		span = diag.MixedRanging(span, arg)
		args = append(args, arg)
	}
	return &Call{exprNode{span}, command, args}, nil
}

// parseCommand parses the command-name parts of a call. A leading & is
// accepted and ignored.
func (p *parser) parseCommand() ([]CommandPart, error) {
	if p.peek().Kind == Exec {
		p.next()
		p.skipWhitespace()
	}

	var parts []CommandPart
	for {
		t := p.peek()
		switch t.Kind {
		case DoubleQuote:
			expand, err := p.parseExpand()
			if err != nil {
				return nil, err
			}
			parts = append(parts, &ExpandCmd{expand.Ranging, expand})
			continue
		case Variable, Dollar:
			v, err := p.parseVariable(true)
			if err != nil {
				return nil, err
			}
			parts = append(parts, &VarCmd{v.Range(), v})
			continue
		case Quote:
			text, r, err := p.parseString()
			if err != nil {
				return nil, err
			}
			parts = append(parts, &BareCmd{r, text})
			continue
		}

		var text string
		switch t.Kind {
		case Symbol:
			var err error
			text, err = p.unescape(t)
			if err != nil {
				return nil, err
			}
		case Int, Float:
			text = t.Text
		default:
			if s, ok := argText[t.Kind]; ok {
				text = s
			}
		}
		if text == "" {
			break
		}
		p.next()
		parts = append(parts, &BareCmd{t.Ranging, text})
	}

	if len(parts) == 0 {
		return nil, p.unexpected(p.next())
	}
	return parts, nil
}

// parseArgument parses one argument as an ordered list of parts. Adjacent
// bare parts merge, adjacent quoted parts merge; other kinds keep their own
// part so that foo$bar.txt concatenates at evaluation time.
func (p *parser) parseArgument() (*Argument, error) {
	var parts []ArgumentPart
	concat := true

	switch t := p.peek(); t.Kind {
	case Quote:
		text, r, err := p.parseString()
		if err != nil {
			return nil, err
		}
		parts = append(parts, &QuotedArg{r, text})
	case DoubleQuote:
		expand, err := p.parseExpand()
		if err != nil {
			return nil, err
		}
		parts = append(parts, &ExpandArg{expand.Ranging, expand})
	case LParen:
		expr, err := p.parseSubExpr()
		if err != nil {
			return nil, err
		}
		parts = append(parts, &ExprArg{expr.Range(), expr})
	case Variable, Dollar:
		v, err := p.parseVariable(true)
		if err != nil {
			return nil, err
		}
		parts = append(parts, &VarArg{v.Range(), v})
	case LBracket:
		expr, err := p.parseList()
		if err != nil {
			return nil, err
		}
		parts = append(parts, &ExprArg{expr.Range(), expr})
		concat = false
	case At:
		expr, err := p.parseRegexOrMap()
		if err != nil {
			return nil, err
		}
		parts = append(parts, &ExprArg{expr.Range(), expr})
		concat = false
	case LBrace:
		lbrace := p.next()
		p.skipWhitespace()
		expr, err := p.parseClosureRest(lbrace)
		if err != nil {
			return nil, err
		}
		parts = append(parts, &ExprArg{expr.Range(), expr})
		concat = false
	default:
		part, err := p.tokenArgPart(nil)
		if err != nil {
			return nil, err
		}
		parts = append(parts, part)
	}

	if !concat {
		switch t := p.peek(); t.Kind {
		case RParen, Space, Newline, Semicolon, Pipe, EOF:
			return p.argument(parts), nil
		default:
			return nil, p.unexpected(p.next())
		}
	}

	for {
		t := p.peek()
		if !t.Kind.isArgPart() {
			return p.argument(parts), nil
		}
		switch t.Kind {
		case DoubleQuote:
			expand, err := p.parseExpand()
			if err != nil {
				return nil, err
			}
			parts = append(parts, &ExpandArg{expand.Ranging, expand})
		case LParen:
			expr, err := p.parseSubExpr()
			if err != nil {
				return nil, err
			}
			parts = append(parts, &ExprArg{expr.Range(), expr})
		case Quote:
			text, r, err := p.parseString()
			if err != nil {
				return nil, err
			}
			if last, ok := lastArgPart(parts).(*QuotedArg); ok {
				last.Text += text
				last.To = r.To
			} else {
				parts = append(parts, &QuotedArg{r, text})
			}
		case Variable, Dollar:
			v, err := p.parseVariable(true)
			if err != nil {
				return nil, err
			}
			parts = append(parts, &VarArg{v.Range(), v})
		default:
			part, err := p.tokenArgPart(parts)
			if err != nil {
				return nil, err
			}
			if part != nil {
				parts = append(parts, part)
			}
		}
	}
}

// tokenArgPart converts the next single token into an argument part, merging
// bare text into the previous part when it is also bare. A nil return with
// nil error means the text was merged.
func (p *parser) tokenArgPart(parts []ArgumentPart) (ArgumentPart, error) {
	t := p.next()
	switch t.Kind {
	case Int:
		value, _ := new(big.Int).SetString(t.Val, 10)
		return &IntArg{t.Ranging, value, t.Text}, nil
	case Float:
		value, _ := strconv.ParseFloat(t.Val, 64)
		return &FloatArg{t.Ranging, value, t.Text}, nil
	}

	var text string
	if t.Kind == Symbol {
		var err error
		text, err = p.unescape(t)
		if err != nil {
			return nil, err
		}
	} else if s, ok := argText[t.Kind]; ok {
		text = s
	} else {
		return nil, p.unexpected(t)
	}

	if last, ok := lastArgPart(parts).(*BareArg); ok {
		last.Text += text
		last.To = t.To
		return nil, nil
	}
	return &BareArg{t.Ranging, text}, nil
}

func lastArgPart(parts []ArgumentPart) ArgumentPart {
	if len(parts) == 0 {
		return nil
	}
	return parts[len(parts)-1]
}

func (p *parser) argument(parts []ArgumentPart) *Argument {
	span := diag.MixedRanging(parts[0], parts[len(parts)-1])
	return &Argument{span, parts}
}

// Escape sequences live in bare words and interpolated strings; decoding
// them here rather than in the lexer keeps the lexer total and token spans
// exact.
var escapes = map[byte]byte{
	'n': '\n', 't': '\t', '0': 0, 'r': '\r', 's': ' ', '\\': '\\',
}

func (p *parser) unescape(t Token) (string, error) {
	s := t.Text
	if !strings.Contains(s, `\`) {
		return s, nil
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i == len(s)-1 {
			b.WriteByte(c)
			continue
		}
		i++
		e := s[i]
		if r, ok := escapes[e]; ok {
			b.WriteByte(r)
			continue
		}
		if e == 'x' {
			if i+2 >= len(s) {
				return "", syntaxError(InvalidEscape, "invalid hex escape", p.src, t)
			}
			hex := s[i+1 : i+3]
			v, err := strconv.ParseUint(hex, 16, 8)
			if err != nil || v > 0x7f {
				return "", syntaxError(InvalidEscape, "invalid hex escape", p.src, t)
			}
			b.WriteByte(byte(v))
			i += 2
			continue
		}
		b.WriteByte(e)
	}
	return b.String(), nil
}

func binOpOf(k Kind) BinOp {
	switch k {
	case Add:
		return OpAdd
	case Sub:
		return OpSub
	case Mul:
		return OpMul
	case Div:
		return OpDiv
	case Mod:
		return OpMod
	case Pow:
		return OpPow
	case Range:
		return OpRange
	case Eq:
		return OpEq
	case Ne:
		return OpNe
	case Lt:
		return OpLt
	case Le:
		return OpLe
	case Gt:
		return OpGt
	case Ge:
		return OpGe
	case And:
		return OpAnd
	default:
		return OpOr
	}
}

func assignBinOp(k Kind) BinOp {
	switch k {
	case AddAssign:
		return OpAdd
	case SubAssign:
		return OpSub
	case MulAssign:
		return OpMul
	case DivAssign:
		return OpDiv
	case ModAssign:
		return OpMod
	default:
		return OpPow
	}
}
