// Package classify parses raw user queries into a structured intent.
package classify

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/worshipdeck/sheetsearch/internal/domain"
	"github.com/worshipdeck/sheetsearch/internal/domain/musickey"
	"github.com/worshipdeck/sheetsearch/internal/songtext"
)

// keyListPatterns detect "give me songs in key X" requests. The key capture
// group is always group 1. Word-boundary anchors keep ordinary words like
// "Amazing" from being read as the key A.
var keyListPatterns = []*regexp.Regexp{
	// "G키 찬양", "Em 코드 곡 리스트", "C# key 노래"
	regexp.MustCompile(`(?i)(?:^|[\s"'(])([A-G][#♯b♭]?m?)\s*(?:키|코드|key)\s*(?:로\s*된\s*)?(?:찬양|곡|노래|악보|songs?|list|리스트|목록)`),
	// "songs in G", "worship songs in Em"
	regexp.MustCompile(`(?i)\bsongs?\s+in\s+([A-G][#♯b♭]?m?)(?:\s|$|[.,!?])`),
	// "G key songs", "Em songs" with explicit list-ish tail
	regexp.MustCompile(`(?i)(?:^|\s)([A-G][#♯b♭]?m?)\s+key\s+songs?\b`),
	// "찬양 G키로", "곡 리스트 Em 코드" (noun first, key after)
	regexp.MustCompile(`(?i)(?:찬양|곡|노래|리스트|목록)\s*([A-G][#♯b♭]?m?)\s*(?:키|코드)(?:\s|$|로)`),
}

// filterKeyPattern captures a trailing key selection appended to a title,
// e.g. "주 은혜임을 G키". Matched only after key-list patterns failed.
var filterKeyPattern = regexp.MustCompile(`(?i)[\s]([A-G][#♯b♭]?m?)\s*(?:키|key)(?:로|\s*버전)?\s*$`)

// countPatterns extract a requested result count.
var countPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(\d+)\s*개`),
	regexp.MustCompile(`(\d+)\s*곡`),
	regexp.MustCompile(`(?i)\btop\s*(\d+)\b`),
	regexp.MustCompile(`(?i)\b(\d+)\s*songs?\b`),
}

// koreanFillers are stripped as substrings; Korean has no word boundaries
// usable by \b.
var koreanFillers = []string{
	"찾아줘", "찾아주세요", "찾아봐", "찾아", "검색해줘", "검색", "보여줘", "보여주세요",
	"알려줘", "알려주세요", "틀어줘", "주세요", "해줘", "악보", "좀",
}

// englishFillerRe strips request verbs and noise words at word boundaries.
var englishFillerRe = regexp.MustCompile(
	`(?i)\b(please|find|search|show|give|get|me|for|the|chord\s*sheet|sheet|chords?|lyrics)\b`)

// Classifier turns query text into a QueryIntent. It is stateless and never
// fails; garbage in produces an ambiguous intent out.
type Classifier struct{}

// New creates a classifier.
func New() *Classifier { return &Classifier{} }

// Classify parses the query. The result always carries cleaned search terms,
// even for key-list intents (callers may log them).
func (c *Classifier) Classify(query string) domain.QueryIntent {
	text := songtext.Clean(query)

	count := extractCount(text)

	if key, ok := matchKeyList(text); ok {
		return domain.NewQueryIntent(domain.IntentKeyList, key, count, "")
	}

	terms := stripFillers(text)

	var filterKey string
	if m := filterKeyPattern.FindStringSubmatch(terms); m != nil {
		if k := musickey.Normalize(m[1]); musickey.IsValid(k) {
			filterKey = k
			terms = songtext.Clean(terms[:len(terms)-len(m[0])])
		}
	}

	if terms == "" {
		return domain.NewQueryIntent(domain.IntentAmbiguous, filterKey, count, "")
	}

	return domain.NewQueryIntent(domain.IntentSpecificSong, filterKey, count, terms)
}

func matchKeyList(text string) (string, bool) {
	for _, re := range keyListPatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		key := musickey.Normalize(m[1])
		if musickey.IsValid(key) {
			return key, true
		}
	}
	return "", false
}

func extractCount(text string) int {
	for _, re := range countPatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if n < domain.MinRequestedCount {
			n = domain.MinRequestedCount
		}
		if n > domain.MaxRequestedCount {
			n = domain.MaxRequestedCount
		}
		return n
	}
	return 0
}

func stripFillers(text string) string {
	for _, f := range koreanFillers {
		text = strings.ReplaceAll(text, f, " ")
	}
	text = englishFillerRe.ReplaceAllString(text, " ")

	// Drop count collocations already consumed by extractCount.
	for _, re := range countPatterns {
		text = re.ReplaceAllString(text, " ")
	}

	return songtext.Clean(text)
}
