// Package respond turns a pipeline output into a user-facing message. The
// song list itself is rendered by the caller; this package only produces the
// accompanying text, falling back to canned templates when the optional LLM
// generator is absent or failing.
package respond

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/worshipdeck/sheetsearch/internal/domain"
	"github.com/worshipdeck/sheetsearch/internal/logger"
)

// Generator produces a short natural-language reply for queries that matched
// nothing. Pass nil to New to disable generation entirely.
type Generator interface {
	Reply(ctx context.Context, query, lang string, titles, history []string) (string, error)
}

// Assembler builds the reply message for one search output.
type Assembler struct {
	generator Generator // nil falls straight through to templates
}

// New creates an assembler. generator may be nil.
func New(generator Generator) *Assembler {
	return &Assembler{generator: generator}
}

// Message returns the user-facing text for the output. lang is an optional
// hint ("ko", "en"); when empty the query script decides. history holds the
// caller's recent conversation turns, used only for LLM clarification.
func (a *Assembler) Message(ctx context.Context, query, lang string, history []string, out *domain.SearchOutput) string {
	if lang == "" {
		lang = detectLang(query)
	}

	switch out.Outcome {
	case domain.OutcomeOK:
		return okMessage(lang, len(out.Songs))
	case domain.OutcomeNeedsKeySelection:
		return keySelectionMessage(lang, out)
	default:
		return a.zeroResultsMessage(ctx, query, lang, history)
	}
}

func (a *Assembler) zeroResultsMessage(ctx context.Context, query, lang string, history []string) string {
	if a.generator != nil {
		reply, err := a.generator.Reply(ctx, query, lang, nil, history)
		if err == nil && reply != "" {
			return reply
		}
		if err != nil {
			logger.FromContext(ctx).Warn("reply generation failed, using template",
				zap.Error(err))
		}
	}

	if lang == "ko" {
		return "찾으시는 악보가 없습니다. 제목을 조금 더 정확하게 입력해 주세요."
	}
	return "No matching chord sheets found. Please try a more specific title."
}

func okMessage(lang string, n int) string {
	if lang == "ko" {
		if n == 1 {
			return "악보를 찾았습니다."
		}
		return fmt.Sprintf("악보 %d곡을 찾았습니다.", n)
	}
	if n == 1 {
		return "Found a chord sheet."
	}
	return fmt.Sprintf("Found %d songs.", n)
}

func keySelectionMessage(lang string, out *domain.SearchOutput) string {
	keys := strings.Join(out.Keys, ", ")
	title := ""
	if len(out.Songs) > 0 {
		title = out.Songs[0].Title
	}

	if lang == "ko" {
		return fmt.Sprintf("\"%s\" 악보가 %s 키로 있습니다. 원하시는 키를 선택해 주세요.", title, keys)
	}
	return fmt.Sprintf("%q is available in keys %s. Which key would you like?", title, keys)
}

// detectLang guesses the reply language from the query script. Any Hangul
// rune makes the reply Korean.
func detectLang(query string) string {
	for _, r := range query {
		if unicode.Is(unicode.Hangul, r) {
			return "ko"
		}
	}
	return "en"
}
