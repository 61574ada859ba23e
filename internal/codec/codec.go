// Package codec converts exam records to and from the text persisted in the
// local slot, and normalizes remote catalog documents into records.
//
// The slot format is a JSON array. Field names follow the mobile app that
// first wrote the slot, so blobs it left behind decode unchanged:
//
//	[{"id":"1700000000000","nome":"ENEM","data":"03/11/2024","descricao":"","origem":"user"}]
//
// Elements without "origem" are user records.
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/provas/internal/common"
	"github.com/dmitrijs2005/provas/internal/models"
)

// storedRecord is the persisted shape of models.ExamRecord.
type storedRecord struct {
	ID               string `json:"id"`
	Name             string `json:"nome"`
	Date             string `json:"data"`
	Description      string `json:"descricao"`
	StudyContent     string `json:"conteudo,omitempty"`
	RegistrationLink string `json:"linkInscricao,omitempty"`
	Origin           string `json:"origem,omitempty"`
}

// Encode serializes the full list. A nil list encodes as an empty array.
func Encode(list []models.ExamRecord) ([]byte, error) {
	out := make([]storedRecord, 0, len(list))
	for _, r := range list {
		out = append(out, storedRecord{
			ID:               r.ID,
			Name:             r.Name,
			Date:             r.Date,
			Description:      r.Description,
			StudyContent:     r.StudyContent,
			RegistrationLink: r.RegistrationLink,
			Origin:           string(r.Origin),
		})
	}

	b, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("encode records: %w", err)
	}
	return b, nil
}

// Decode parses text produced by Encode. Empty input, whitespace or a JSON
// null yields an empty list. Anything else that is not an array of complete
// records fails with common.ErrMalformedData.
func Decode(text []byte) ([]models.ExamRecord, error) {
	text = bytes.TrimSpace(text)
	if len(text) == 0 {
		return []models.ExamRecord{}, nil
	}

	var stored []*storedRecord
	if err := json.Unmarshal(text, &stored); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrMalformedData, err)
	}

	result := make([]models.ExamRecord, 0, len(stored))
	seen := make(map[string]struct{}, len(stored))

	for i, s := range stored {
		if s == nil {
			return nil, fmt.Errorf("%w: element %d is null", common.ErrMalformedData, i)
		}
		if s.ID == "" || s.Name == "" || s.Date == "" {
			return nil, fmt.Errorf("%w: element %d lacks id, nome or data", common.ErrMalformedData, i)
		}
		if _, dup := seen[s.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %q", common.ErrMalformedData, s.ID)
		}
		seen[s.ID] = struct{}{}

		origin := models.OriginUser
		if s.Origin != "" {
			origin = models.Origin(s.Origin)
			if !origin.Valid() {
				return nil, fmt.Errorf("%w: element %d has unknown origin %q", common.ErrMalformedData, i, s.Origin)
			}
		}

		result = append(result, models.ExamRecord{
			ID:               s.ID,
			Name:             s.Name,
			Date:             s.Date,
			Description:      s.Description,
			StudyContent:     s.StudyContent,
			RegistrationLink: s.RegistrationLink,
			Origin:           origin,
		})
	}

	return result, nil
}
