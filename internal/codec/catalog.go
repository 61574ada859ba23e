package codec

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/provas/internal/common"
	"github.com/dmitrijs2005/provas/internal/models"
)

// Field names used by documents in the remote catalog collection.
const (
	FieldName             = "nome"
	FieldDate             = "data"
	FieldDescription      = "descricao"
	FieldStudyContent     = "conteudo"
	FieldRegistrationLink = "linkInscricao"
)

// Document is one key/value document returned by a remote store.
type Document struct {
	ID     string
	Fields map[string]any
}

// DecodeCatalog converts documents into catalog records, preserving order.
// Documents without a usable name or date are skipped; the number skipped is
// returned so callers can report it.
func DecodeCatalog(docs []Document) ([]models.ExamRecord, int) {
	result := make([]models.ExamRecord, 0, len(docs))
	dropped := 0

	for _, d := range docs {
		rec, ok := decodeDocument(d)
		if !ok {
			dropped++
			continue
		}
		result = append(result, rec)
	}

	return result, dropped
}

func decodeDocument(d Document) (models.ExamRecord, bool) {
	if d.ID == "" || d.Fields == nil {
		return models.ExamRecord{}, false
	}

	name, ok := text(d.Fields[FieldName])
	if !ok || strings.TrimSpace(name) == "" {
		return models.ExamRecord{}, false
	}
	date, ok := text(d.Fields[FieldDate])
	if !ok || strings.TrimSpace(date) == "" {
		return models.ExamRecord{}, false
	}

	// optional fields of the wrong type are treated as absent
	description, _ := text(d.Fields[FieldDescription])
	content, _ := text(d.Fields[FieldStudyContent])
	link, _ := text(d.Fields[FieldRegistrationLink])

	return models.ExamRecord{
		ID:               d.ID,
		Name:             name,
		Date:             date,
		Description:      description,
		StudyContent:     content,
		RegistrationLink: link,
		Origin:           models.OriginCatalog,
	}, true
}

// text renders a document value as a display string. Strings pass through,
// timestamps use the display layout, numbers are printed plainly.
func text(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case time.Time:
		return x.Format(common.DisplayDateLayout), true
	case *time.Time:
		if x == nil {
			return "", false
		}
		return x.Format(common.DisplayDateLayout), true
	case int, int32, int64, float64:
		return fmt.Sprint(x), true
	default:
		return "", false
	}
}
