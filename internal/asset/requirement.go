// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package asset

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/samber/oops"
)

var requirementLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Ident", Pattern: `[a-zA-Z_][\w\-]*`},
	{Name: "Punct", Pattern: `[!|]`},
	{Name: "whitespace", Pattern: `\s+`},
})

// requirementExpr is the grammar of a requirement expression:
//
//	expr := term ( "|" term )*
//	term := [ "!" ] Ident
type requirementExpr struct {
	Terms []*requirementTerm `parser:"@@ ( '|' @@ )*"`
}

type requirementTerm struct {
	Negated   bool   `parser:"@'!'?"`
	Attribute string `parser:"@Ident"`
}

var requirementParser = participle.MustBuild[requirementExpr](
	participle.Lexer(requirementLexer),
)

// RequirementTerm is a single attribute check.
type RequirementTerm struct {
	Attribute string
	Negated   bool
}

// Requirement is satisfied when any of its terms holds.
// A plain term holds when the attribute is present; a negated term when it is absent.
type Requirement struct {
	Terms []RequirementTerm
}

// ParseRequirement parses expressions such as "Mouth_Open", "!Blindfold" or
// "Collar | Harness".
func ParseRequirement(expr string) (Requirement, error) {
	ast, err := requirementParser.ParseString("", expr)
	if err != nil {
		return Requirement{}, oops.Code("REQUIREMENT_INVALID").With("expression", expr).Wrapf(err, "parse requirement")
	}
	req := Requirement{Terms: make([]RequirementTerm, 0, len(ast.Terms))}
	for _, t := range ast.Terms {
		req.Terms = append(req.Terms, RequirementTerm{Attribute: t.Attribute, Negated: t.Negated})
	}
	return req, nil
}

// Satisfied evaluates the requirement against the attributes reported by has.
func (r Requirement) Satisfied(has func(attribute string) bool) bool {
	for _, t := range r.Terms {
		if has(t.Attribute) != t.Negated {
			return true
		}
	}
	return false
}

// Attributes returns the attributes referenced by the requirement.
func (r Requirement) Attributes() []string {
	attrs := make([]string, 0, len(r.Terms))
	for _, t := range r.Terms {
		attrs = append(attrs, t.Attribute)
	}
	return attrs
}

func (r Requirement) String() string {
	parts := make([]string, 0, len(r.Terms))
	for _, t := range r.Terms {
		if t.Negated {
			parts = append(parts, fmt.Sprintf("!%s", t.Attribute))
		} else {
			parts = append(parts, t.Attribute)
		}
	}
	return strings.Join(parts, " | ")
}
