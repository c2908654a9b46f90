package insight

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/blevesearch/bleve/v2"
	_ "github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/mapping"
)

const defaultSearchLimit = 10

// ErrEmptyQuery is returned by Search for a blank query string.
var ErrEmptyQuery = errors.New("empty search query")

// SearchHit is one matching insight with its relevance score.
type SearchHit struct {
	Insight Insight `json:"insight"`
	Score   float64 `json:"score"`
}

// Search indexes records in memory and runs query against project name,
// summary, highlights, skills, languages and frameworks. The query uses
// bleve query-string syntax (field scoping, phrases, +/- terms). Hits are
// returned best first; limit <= 0 selects the default of 10.
func Search(records []Insight, query string, limit int) ([]SearchHit, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	index, err := bleve.NewMemOnly(buildSearchMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create bleve index: %w", err)
	}
	defer index.Close()

	batch := index.NewBatch()
	for i, r := range records {
		if err := batch.Index(strconv.Itoa(i), insightToDocument(r)); err != nil {
			return nil, fmt.Errorf("failed to add insight %s to batch: %w", r.ID, err)
		}
	}
	if batch.Size() > 0 {
		if err := index.Batch(batch); err != nil {
			return nil, fmt.Errorf("failed to index insights: %w", err)
		}
	}

	req := bleve.NewSearchRequestOptions(bleve.NewQueryStringQuery(query), limit, 0, false)
	res, err := index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("bleve search failed: %w", err)
	}

	hits := make([]SearchHit, 0, len(res.Hits))
	for _, hit := range res.Hits {
		i, err := strconv.Atoi(hit.ID)
		if err != nil || i < 0 || i >= len(records) {
			continue
		}
		hits = append(hits, SearchHit{Insight: records[i], Score: hit.Score})
	}
	return hits, nil
}

// buildSearchMapping indexes prose fields with the standard analyzer and
// label fields (skills, languages, frameworks) with the simple analyzer, so
// "skills:flask" matches "Flask".
func buildSearchMapping() *mapping.IndexMappingImpl {
	indexMapping := bleve.NewIndexMapping()

	prose := bleve.NewTextFieldMapping()
	prose.Analyzer = "standard"
	prose.Store = false

	labels := bleve.NewTextFieldMapping()
	labels.Analyzer = "simple"
	labels.Store = false

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt("project_name", prose)
	doc.AddFieldMappingsAt("summary", prose)
	doc.AddFieldMappingsAt("highlights", prose)
	doc.AddFieldMappingsAt("skills", labels)
	doc.AddFieldMappingsAt("languages", labels)
	doc.AddFieldMappingsAt("frameworks", labels)

	indexMapping.DefaultMapping = doc
	return indexMapping
}

func insightToDocument(in Insight) map[string]interface{} {
	return map[string]interface{}{
		"project_name": in.ProjectName,
		"summary":      in.Summary,
		"highlights":   in.Highlights,
		"skills":       in.Skills,
		"languages":    in.Languages,
		"frameworks":   in.Frameworks,
	}
}
