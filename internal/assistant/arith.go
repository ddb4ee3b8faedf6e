package assistant

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

const (
	// maxExprDepth bounds parenthesis and unary nesting.
	maxExprDepth = 32

	// maxPlainNumber is the magnitude from which results print as 1e+15.
	maxPlainNumber = 1e15
)

var (
	errEmptyExpr     = errors.New("empty expression")
	errDivisionZero  = errors.New("division by zero")
	errTooDeep       = errors.New("expression nested too deeply")
	errNotFinite     = errors.New("result is not a finite number")
	errUnexpectedEOF = errors.New("unexpected end of expression")
)

var (
	// Multi-word operators are rewritten before single words.
	operatorPhrases = []struct {
		re   *regexp.Regexp
		repl string
	}{
		{regexp.MustCompile(`\b(dividido|divido)\s+(por|entre)\b`), " / "},
		{regexp.MustCompile(`\bmultiplicado\s+por\b`), " * "},
		{regexp.MustCompile(`\belevado\s+(a|al)\b`), " ^ "},
	}

	operatorWords = map[string]string{
		"mas":          "+",
		"menos":        "-",
		"por":          "*",
		"x":            "*",
		"multiplicado": "*",
		"entre":        "/",
		"dividido":     "/",
		"divido":       "/",
		"modulo":       "%",
		"mod":          "%",
		"elevado":      "^",
	}

	// Letters glued to digits ("3x4") are split by this pattern too.
	wordPattern       = regexp.MustCompile(`[a-z]+`)
	exprRunPattern    = regexp.MustCompile(`[0-9.+\-*/%^() ]+`)
	binaryOpPattern   = regexp.MustCompile(`[0-9)]\s*(\*\*|[-+*/%^])`)
	allowedExprChars  = regexp.MustCompile(`^[0-9.+\-*/%^() ]+$`)
	containsDigitExpr = regexp.MustCompile(`[0-9]`)
	// Phone numbers and dates: "300-123-4567", "2024-01-15".
	digitChainPattern = regexp.MustCompile(`^[0-9]+(-[0-9]+){2,}$`)
)

// ExtractArithmetic looks for a simple arithmetic expression in free text,
// spelled with symbols or Spanish operator words, and returns
// "Resultado: X". It reports false when no expression evaluates cleanly.
func ExtractArithmetic(text string) (string, bool) {
	s := Normalize(text)
	if s == "" {
		return "", false
	}

	for _, p := range operatorPhrases {
		s = p.re.ReplaceAllString(s, p.repl)
	}
	s = wordPattern.ReplaceAllStringFunc(s, func(w string) string {
		if op, ok := operatorWords[w]; ok {
			return " " + op + " "
		}
		return w
	})

	var candidates []string
	for _, loc := range exprRunPattern.FindAllStringIndex(s, -1) {
		if touchesWord(s, loc[0], loc[1]) {
			continue
		}
		if c := trimExprRun(s[loc[0]:loc[1]]); !digitChainPattern.MatchString(c) {
			candidates = append(candidates, c)
		}
	}
	slices.SortStableFunc(candidates, func(a, b string) int {
		return cmp.Compare(len(b), len(a))
	})
	for _, c := range candidates {
		if !looksArithmetic(c) {
			continue
		}
		v, err := Evaluate(c)
		if err != nil {
			continue
		}
		return "Resultado: " + FormatNumber(v), true
	}
	return "", false
}

// touchesWord reports whether the run s[start:end] is glued to a letter, as
// the "5" of "1e5" or a code like "a3-5".
func touchesWord(s string, start, end int) bool {
	isLetter := func(c byte) bool { return 'a' <= c && c <= 'z' }
	return (start > 0 && s[start] != ' ' && isLetter(s[start-1])) ||
		(end < len(s) && s[end-1] != ' ' && isLetter(s[end]))
}

// trimExprRun drops dangling operators left by surrounding words,
// as in "(2+3)*4 * favor".
func trimExprRun(run string) string {
	run = strings.TrimRight(run, " +-*/%^.")
	return strings.TrimLeft(run, " */%^")
}

func looksArithmetic(expr string) bool {
	return allowedExprChars.MatchString(expr) &&
		containsDigitExpr.MatchString(expr) &&
		binaryOpPattern.MatchString(expr)
}

// FormatNumber prints integral values without decimals and everything else
// rounded to six decimals. Magnitudes of 1e15 and above use exponent form.
func FormatNumber(v float64) string {
	if math.Abs(v) >= maxPlainNumber {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	if v == math.Trunc(v) {
		return strconv.FormatInt(int64(v), 10)
	}
	r := math.Round(v*1e6) / 1e6
	if r == 0 {
		return "0"
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}

// Evaluate parses and evaluates expr with the grammar
//
//	expr    := term (('+' | '-') term)*
//	term    := unary (('*' | '/' | '%') unary)*
//	unary   := ('+' | '-') unary | power
//	power   := primary (('^' | '**') unary)?
//	primary := number | '(' expr ')'
//
// Anything else, including identifiers, is rejected.
func Evaluate(expr string) (float64, error) {
	toks, err := lexExpr(expr)
	if err != nil {
		return 0, err
	}
	if len(toks) == 0 {
		return 0, errEmptyExpr
	}

	p := &exprParser{toks: toks}
	v, err := p.expr()
	if err != nil {
		return 0, err
	}
	if p.pos < len(p.toks) {
		return 0, fmt.Errorf("unexpected %q at position %d", p.toks[p.pos].text, p.pos)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errNotFinite
	}
	return v, nil
}

type exprTokenKind int

const (
	tokNumber exprTokenKind = iota
	tokOp
	tokLParen
	tokRParen
)

type exprToken struct {
	kind  exprTokenKind
	text  string
	value float64
}

func lexExpr(s string) ([]exprToken, error) {
	var toks []exprToken
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == ' ':
			i++
		case c >= '0' && c <= '9' || c == '.':
			j := i
			dots := 0
			for j < len(s) && (s[j] >= '0' && s[j] <= '9' || s[j] == '.') {
				if s[j] == '.' {
					dots++
				}
				j++
			}
			if dots > 1 || s[i:j] == "." {
				return nil, fmt.Errorf("invalid number %q", s[i:j])
			}
			v, err := strconv.ParseFloat(s[i:j], 64)
			if err != nil {
				return nil, fmt.Errorf("invalid number %q: %w", s[i:j], err)
			}
			toks = append(toks, exprToken{kind: tokNumber, text: s[i:j], value: v})
			i = j
		case c == '*' && i+1 < len(s) && s[i+1] == '*':
			toks = append(toks, exprToken{kind: tokOp, text: "^"})
			i += 2
		case strings.IndexByte("+-*/%^", c) >= 0:
			toks = append(toks, exprToken{kind: tokOp, text: string(c)})
			i++
		case c == '(':
			toks = append(toks, exprToken{kind: tokLParen, text: "("})
			i++
		case c == ')':
			toks = append(toks, exprToken{kind: tokRParen, text: ")"})
			i++
		default:
			return nil, fmt.Errorf("character %q not allowed", c)
		}
	}
	return toks, nil
}

type exprParser struct {
	toks  []exprToken
	pos   int
	depth int
}

func (p *exprParser) peekOp(ops string) (string, bool) {
	if p.pos >= len(p.toks) || p.toks[p.pos].kind != tokOp {
		return "", false
	}
	op := p.toks[p.pos].text
	return op, strings.Contains(ops, op)
}

func (p *exprParser) expr() (float64, error) {
	left, err := p.term()
	if err != nil {
		return 0, err
	}
	for {
		op, ok := p.peekOp("+-")
		if !ok {
			return left, nil
		}
		p.pos++
		right, err := p.term()
		if err != nil {
			return 0, err
		}
		if op == "+" {
			left += right
		} else {
			left -= right
		}
	}
}

func (p *exprParser) term() (float64, error) {
	left, err := p.unary()
	if err != nil {
		return 0, err
	}
	for {
		op, ok := p.peekOp("*/%")
		if !ok {
			return left, nil
		}
		p.pos++
		right, err := p.unary()
		if err != nil {
			return 0, err
		}
		switch op {
		case "*":
			left *= right
		case "/":
			if right == 0 {
				return 0, errDivisionZero
			}
			left /= right
		case "%":
			if right == 0 {
				return 0, errDivisionZero
			}
			// Floored modulo: the result takes the sign of the divisor.
			m := math.Mod(left, right)
			if m != 0 && (m < 0) != (right < 0) {
				m += right
			}
			left = m
		}
	}
}

func (p *exprParser) unary() (float64, error) {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > maxExprDepth {
		return 0, errTooDeep
	}

	if op, ok := p.peekOp("+-"); ok {
		p.pos++
		v, err := p.unary()
		if err != nil {
			return 0, err
		}
		if op == "-" {
			return -v, nil
		}
		return v, nil
	}
	return p.power()
}

func (p *exprParser) power() (float64, error) {
	base, err := p.primary()
	if err != nil {
		return 0, err
	}
	if _, ok := p.peekOp("^"); !ok {
		return base, nil
	}
	p.pos++
	exp, err := p.unary()
	if err != nil {
		return 0, err
	}
	return math.Pow(base, exp), nil
}

func (p *exprParser) primary() (float64, error) {
	if p.pos >= len(p.toks) {
		return 0, errUnexpectedEOF
	}
	tok := p.toks[p.pos]
	switch tok.kind {
	case tokNumber:
		p.pos++
		return tok.value, nil
	case tokLParen:
		p.pos++
		p.depth++
		defer func() { p.depth-- }()
		if p.depth > maxExprDepth {
			return 0, errTooDeep
		}
		v, err := p.expr()
		if err != nil {
			return 0, err
		}
		if p.pos >= len(p.toks) || p.toks[p.pos].kind != tokRParen {
			return 0, errors.New("missing closing parenthesis")
		}
		p.pos++
		return v, nil
	default:
		return 0, fmt.Errorf("unexpected %q", tok.text)
	}
}
