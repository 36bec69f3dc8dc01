package index

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/hubline-chat/hubline-server/internal/message"
)

// messageDoc is the document shape indexed for each message: content is the
// only tokenized field, id and sender are stored for byte-identity lookup,
// created_ms is a numeric field available for range queries.
type messageDoc struct {
	Content   string `json:"content"`
	CreatedMS int64  `json:"created_ms"`
	ID        string `json:"id"`
	Sender    string `json:"sender"`
}

func toDoc(m message.Message) messageDoc {
	return messageDoc{
		Content:   m.Content,
		CreatedMS: m.CreatedMS,
		ID:        m.ID.String(),
		Sender:    m.Sender.String(),
	}
}

// buildMapping constructs the index mapping for one channel's messages:
// content gets the default analyzer, id/sender are exact-match keyword
// fields, created_ms is numeric.
func buildMapping() mapping.IndexMapping {
	contentField := bleve.NewTextFieldMapping()

	idField := bleve.NewKeywordFieldMapping()
	senderField := bleve.NewKeywordFieldMapping()

	createdField := bleve.NewNumericFieldMapping()
	createdField.Index = true
	createdField.Store = false

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt("content", contentField)
	doc.AddFieldMappingsAt("id", idField)
	doc.AddFieldMappingsAt("sender", senderField)
	doc.AddFieldMappingsAt("created_ms", createdField)

	im := bleve.NewIndexMapping()
	im.DefaultMapping = doc
	return im
}
