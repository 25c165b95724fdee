package db

import (
	"fmt"
	"strings"
)

// queryEscaper neutralizes FT.SEARCH query syntax in user-supplied terms.
var queryEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`"`, `\"`,
	`@`, `\@`,
	`{`, `\{`,
	`}`, `\}`,
	`(`, `\(`,
	`)`, `\)`,
	`|`, `\|`,
	`-`, `\-`,
	`~`, `\~`,
	`*`, `\*`,
	`[`, `\[`,
	`]`, `\]`,
	`!`, `\!`,
	`%`, `\%`,
	`^`, `\^`,
	`$`, `\$`,
	`<`, `\<`,
	`>`, `\>`,
	`=`, `\=`,
	`;`, `\;`,
	`+`, `\+`,
	`,`, `\,`,
	`.`, `\.`,
	`:`, `\:`,
	` `, `\ `,
)

// EscapeQuery escapes FT.SEARCH special characters in a user term.
func EscapeQuery(s string) string {
	return queryEscaper.Replace(s)
}

// InfixQuery builds a substring-match query on one TEXT field.
// Requires the field to be indexed with a suffix trie.
func InfixQuery(field, term string) string {
	return fmt.Sprintf("@%s:(*%s*)", field, EscapeQuery(term))
}

// AnyInfixQuery builds an OR of substring matches across several TEXT fields.
func AnyInfixQuery(fields []string, term string) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = InfixQuery(f, term)
	}
	return "(" + strings.Join(parts, " | ") + ")"
}

// TagQuery builds an exact TAG-field match.
func TagQuery(field, value string) string {
	return fmt.Sprintf("@%s:{%s}", field, EscapeQuery(value))
}

// MatchAll matches every document in the index.
func MatchAll() string { return "*" }
