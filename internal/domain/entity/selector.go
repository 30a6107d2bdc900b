package entity

import (
	"fmt"
	"strings"
)

type By string

const (
	ByID    By = "id"
	ByName  By = "name"
	ByCSS   By = "css"
	ByXPath By = "xpath"
)

func (b By) Valid() bool {
	switch b {
	case ByID, ByName, ByCSS, ByXPath:
		return true
	}
	return false
}

type Selector struct {
	By   By     `yaml:"by"`
	Expr string `yaml:"expr"`
}

func ID(id string) Selector      { return Selector{By: ByID, Expr: id} }
func Name(name string) Selector  { return Selector{By: ByName, Expr: name} }
func CSS(expr string) Selector   { return Selector{By: ByCSS, Expr: expr} }
func XPath(expr string) Selector { return Selector{By: ByXPath, Expr: expr} }

// Query returns the expression a driver should evaluate and whether it is XPath.
// ID and name selectors are rendered as attribute CSS so ids with dots or colons still match.
func (s Selector) Query() (string, bool) {
	switch s.By {
	case ByID:
		return fmt.Sprintf(`[id=%q]`, s.Expr), false
	case ByName:
		return fmt.Sprintf(`[name=%q]`, s.Expr), false
	case ByXPath:
		return s.Expr, true
	default:
		return s.Expr, false
	}
}

func (s Selector) String() string {
	return string(s.By) + "=" + s.Expr
}

// Strategy is an ordered, non-empty list of selectors for one logical element.
type Strategy struct {
	name      string
	selectors []Selector
}

func NewStrategy(name string, selectors ...Selector) Strategy {
	if len(selectors) == 0 {
		panic(fmt.Sprintf("strategy %q: at least one selector required", name))
	}
	cp := make([]Selector, len(selectors))
	copy(cp, selectors)
	return Strategy{name: name, selectors: cp}
}

func (s Strategy) Name() string {
	return s.name
}

func (s Strategy) Selectors() []Selector {
	cp := make([]Selector, len(s.selectors))
	copy(cp, s.selectors)
	return cp
}

func (s Strategy) Len() int {
	return len(s.selectors)
}

func (s Strategy) String() string {
	parts := make([]string, len(s.selectors))
	for i, sel := range s.selectors {
		parts[i] = sel.String()
	}
	return s.name + "[" + strings.Join(parts, " | ") + "]"
}
