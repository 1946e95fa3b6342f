// internal/submission/indexer.go
package submission

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	stderrors "elab-credentialing/internal/common/errors"
	"elab-credentialing/internal/common/logger"
	"elab-credentialing/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// indexedApplication is the flat search document. Only the fields consultant
// dashboards filter on are indexed; the JSONB payload stays in Postgres.
type indexedApplication struct {
	ID              string    `json:"id"`
	ApplicantID     string    `json:"applicantId"`
	ApplicantName   string    `json:"applicantName"`
	ApplicationType string    `json:"applicationType"`
	TargetCountry   string    `json:"targetCountry"`
	Urgency         string    `json:"urgency"`
	Status          string    `json:"status"`
	Nationality     string    `json:"nationality"`
	SubmittedAt     time.Time `json:"submittedAt"`
}

// Indexer mirrors submitted applications into Elasticsearch for the
// consultant search surface.
type Indexer struct {
	es     *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewIndexer(es *elasticsearch.Client, index string, log logger.Logger) *Indexer {
	return &Indexer{
		es:     es,
		index:  index,
		logger: log.WithFields(map[string]interface{}{"component": "indexer", "index": index}),
	}
}

// IndexApplication writes the search document for one submitted application.
func (i *Indexer) IndexApplication(ctx context.Context, app *models.Application) error {
	doc := indexedApplication{
		ID:              app.ID,
		ApplicantID:     app.ApplicantID,
		ApplicationType: string(app.ApplicationType),
		TargetCountry:   app.TargetCountry,
		Urgency:         string(app.Urgency),
		Status:          string(app.Status),
		SubmittedAt:     app.SubmittedAt,
	}
	if app.Payload != nil {
		doc.ApplicantName = strings.TrimSpace(
			app.Payload.PersonalInfo.FirstName + " " + app.Payload.PersonalInfo.LastName)
		doc.Nationality = app.Payload.PersonalInfo.Nationality
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return stderrors.NewSearchIndexFailedError(fmt.Errorf("marshal document: %w", err))
	}

	req := esapi.IndexRequest{
		Index:      i.index,
		DocumentID: app.ID,
		Body:       bytes.NewReader(body),
		Refresh:    "false",
	}
	res, err := req.Do(ctx, i.es)
	if err != nil {
		return stderrors.NewSearchIndexFailedError(fmt.Errorf("index request: %w", err))
	}
	defer res.Body.Close()

	if res.IsError() {
		return stderrors.NewSearchIndexFailedError(fmt.Errorf("index response: %s", res.Status()))
	}

	i.logger.Debug("application indexed", map[string]interface{}{
		"applicationId": app.ID,
	})
	return nil
}

// UpdateStatus patches the indexed status after a backend lifecycle change.
func (i *Indexer) UpdateStatus(ctx context.Context, applicationID string, status models.ApplicationStatus) error {
	body, _ := json.Marshal(map[string]interface{}{
		"doc": map[string]interface{}{"status": string(status)},
	})

	req := esapi.UpdateRequest{
		Index:      i.index,
		DocumentID: applicationID,
		Body:       bytes.NewReader(body),
	}
	res, err := req.Do(ctx, i.es)
	if err != nil {
		return stderrors.NewSearchIndexFailedError(fmt.Errorf("update request: %w", err))
	}
	defer res.Body.Close()

	if res.IsError() {
		return stderrors.NewSearchIndexFailedError(fmt.Errorf("update response: %s", res.Status()))
	}
	return nil
}

// SearchFilters narrows a consultant search. Zero values are skipped.
type SearchFilters struct {
	Keywords        string
	ApplicationType models.ApplicationType
	Status          models.ApplicationStatus
	Urgency         models.Urgency
	TargetCountry   string
	SubmittedAfter  time.Time
	SubmittedBefore time.Time
	From            int
	Size            int
}

// SearchResult is one hit, already flattened for the caller.
type SearchResult struct {
	ID              string    `json:"id"`
	ApplicantID     string    `json:"applicantId"`
	ApplicantName   string    `json:"applicantName"`
	ApplicationType string    `json:"applicationType"`
	Status          string    `json:"status"`
	Urgency         string    `json:"urgency"`
	SubmittedAt     time.Time `json:"submittedAt"`
}

// buildSearchQuery assembles the bool query body for the given filters.
func buildSearchQuery(f SearchFilters) map[string]interface{} {
	mustClauses := []interface{}{}
	filterClauses := []interface{}{}

	if f.Keywords != "" {
		mustClauses = append(mustClauses, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  f.Keywords,
				"fields": []string{"applicantName^3", "nationality", "targetCountry"},
				"type":   "best_fields",
			},
		})
	}
	if f.ApplicationType != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"applicationType": string(f.ApplicationType)},
		})
	}
	if f.Status != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"status": string(f.Status)},
		})
	}
	if f.Urgency != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"urgency": string(f.Urgency)},
		})
	}
	if f.TargetCountry != "" {
		filterClauses = append(filterClauses, map[string]interface{}{
			"term": map[string]interface{}{"targetCountry": f.TargetCountry},
		})
	}
	if !f.SubmittedAfter.IsZero() || !f.SubmittedBefore.IsZero() {
		rangeClause := map[string]interface{}{}
		if !f.SubmittedAfter.IsZero() {
			rangeClause["gte"] = f.SubmittedAfter.Format(time.RFC3339)
		}
		if !f.SubmittedBefore.IsZero() {
			rangeClause["lte"] = f.SubmittedBefore.Format(time.RFC3339)
		}
		filterClauses = append(filterClauses, map[string]interface{}{
			"range": map[string]interface{}{"submittedAt": rangeClause},
		})
	}

	boolQuery := map[string]interface{}{}
	if len(mustClauses) > 0 {
		boolQuery["must"] = mustClauses
	}
	if len(filterClauses) > 0 {
		boolQuery["filter"] = filterClauses
	}
	if len(boolQuery) == 0 {
		return map[string]interface{}{
			"query": map[string]interface{}{"match_all": map[string]interface{}{}},
			"sort":  []interface{}{map[string]interface{}{"submittedAt": "desc"}},
		}
	}
	return map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
		"sort":  []interface{}{map[string]interface{}{"submittedAt": "desc"}},
	}
}

// Search runs a consultant query against the application index.
func (i *Indexer) Search(ctx context.Context, f SearchFilters) ([]SearchResult, int64, error) {
	if f.Size <= 0 {
		f.Size = 20
	}

	body, err := json.Marshal(buildSearchQuery(f))
	if err != nil {
		return nil, 0, stderrors.NewSearchIndexFailedError(fmt.Errorf("marshal query: %w", err))
	}

	req := esapi.SearchRequest{
		Index: []string{i.index},
		Body:  bytes.NewReader(body),
		From:  &f.From,
		Size:  &f.Size,
	}
	res, err := req.Do(ctx, i.es)
	if err != nil {
		return nil, 0, stderrors.NewSearchIndexFailedError(fmt.Errorf("search request: %w", err))
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, 0, stderrors.NewSearchIndexFailedError(fmt.Errorf("search response: %s", res.Status()))
	}

	var parsed struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source SearchResult `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, 0, stderrors.NewSearchIndexFailedError(fmt.Errorf("decode response: %w", err))
	}

	results := make([]SearchResult, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		results = append(results, hit.Source)
	}
	return results, parsed.Hits.Total.Value, nil
}
