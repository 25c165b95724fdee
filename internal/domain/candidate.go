package domain

import "github.com/worshipdeck/sheetsearch/internal/domain/matchkind"

// Candidate is one raw hit from one retrieval adapter. Immutable once returned
// by an adapter; the pipeline never persists it.
type Candidate struct {
	id             string
	title          string
	titleAlt       string
	key            string
	imageRef       string
	recognizedText string
	filename       string
	groupID        string
	page           int
}

// NewCandidate creates a retrieval candidate.
func NewCandidate(
	id, title, titleAlt, key, imageRef, recognizedText, filename, groupID string,
	page int,
) (Candidate, error) {
	if id == "" {
		return Candidate{}, ErrMissingCandidateID
	}
	return Candidate{
		id: id, title: title, titleAlt: titleAlt, key: key,
		imageRef: imageRef, recognizedText: recognizedText,
		filename: filename, groupID: groupID, page: page,
	}, nil
}

// ID returns the stable sheet identifier.
func (c *Candidate) ID() string { return c.id }

// Title returns the canonical song title.
func (c *Candidate) Title() string { return c.title }

// TitleAlt returns the localized title variant, if any.
func (c *Candidate) TitleAlt() string { return c.titleAlt }

// Key returns the raw key field. May hold a comma-separated list ("D, B").
func (c *Candidate) Key() string { return c.key }

// ImageRef returns the sheet image reference.
func (c *Candidate) ImageRef() string { return c.imageRef }

// RecognizedText returns the OCR text blob for this sheet.
func (c *Candidate) RecognizedText() string { return c.recognizedText }

// Filename returns the source filename of the upload.
func (c *Candidate) Filename() string { return c.filename }

// GroupID returns the explicit upload group identifier, if any.
func (c *Candidate) GroupID() string { return c.groupID }

// Page returns the page number within the upload (0 when unknown).
func (c *Candidate) Page() int { return c.page }

// RankedCandidate is a candidate annotated with its fused relevance score and
// the adapters that contributed it. The score derives from rank positions
// only, never from the adapters' raw score scales.
type RankedCandidate struct {
	Candidate Candidate
	Score     float64
	Kinds     []matchkind.Kind
}

// ContributedBy reports whether the given adapter kind contributed this candidate.
func (r *RankedCandidate) ContributedBy(k matchkind.Kind) bool {
	for _, kk := range r.Kinds {
		if kk == k {
			return true
		}
	}
	return false
}
