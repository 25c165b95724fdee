package songs

import (
	"strconv"
	"strings"

	"github.com/worshipdeck/sheetsearch/internal/db"
	"github.com/worshipdeck/sheetsearch/internal/domain"
)

// Hash field names written by the ingestion pipeline.
const (
	fieldTitle          = "title"
	fieldTitleAlt       = "title_en"
	fieldKeys           = "keys"
	fieldKeyTags        = "key_tags"
	fieldImageURL       = "image_url"
	fieldRecognizedText = "recognized_text"
	fieldFilename       = "filename"
	fieldGroupID        = "group_id"
	fieldPage           = "page"
)

var returnFields = []string{
	fieldTitle, fieldTitleAlt, fieldKeys, fieldImageURL,
	fieldRecognizedText, fieldFilename, fieldGroupID, fieldPage,
}

// candidateFromEntry maps one FT.SEARCH row to a domain candidate.
func candidateFromEntry(entry db.SearchEntry, keyPrefix string) (domain.Candidate, error) {
	f := entry.Fields
	page := 0
	if p, err := strconv.Atoi(f[fieldPage]); err == nil {
		page = p
	}

	return domain.NewCandidate(
		strings.TrimPrefix(entry.Key, keyPrefix),
		f[fieldTitle],
		f[fieldTitleAlt],
		f[fieldKeys],
		f[fieldImageURL],
		f[fieldRecognizedText],
		f[fieldFilename],
		f[fieldGroupID],
		page,
	)
}

// candidatesFromEntries maps rows to candidates, skipping unmappable rows.
func candidatesFromEntries(entries []db.SearchEntry, keyPrefix string) []domain.Candidate {
	out := make([]domain.Candidate, 0, len(entries))
	for _, e := range entries {
		c, err := candidateFromEntry(e, keyPrefix)
		if err != nil {
			continue
		}
		out = append(out, c)
	}
	return out
}
