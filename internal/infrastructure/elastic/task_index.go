package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/go-task-tracker/internal/domain/entity"
)

const requestTimeout = 3 * time.Second

type taskDoc struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	Priority  string    `json:"priority,omitempty"`
	DueDate   string    `json:"due_date,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toDoc(t *entity.Task) taskDoc {
	return taskDoc{
		ID:        t.ID,
		UserID:    t.UserID,
		Text:      t.Text,
		Completed: t.Completed,
		Priority:  t.Priority,
		DueDate:   t.DueDate,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func (d taskDoc) task() entity.Task {
	return entity.Task{
		ID:        d.ID,
		UserID:    d.UserID,
		Text:      d.Text,
		Completed: d.Completed,
		Priority:  d.Priority,
		DueDate:   d.DueDate,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// TaskIndex mirrors tasks into an Elasticsearch index for full-text search.
type TaskIndex struct {
	ES        *elasticsearch.Client
	IndexName string
}

func NewTaskIndex(es *elasticsearch.Client, index string) *TaskIndex {
	return &TaskIndex{ES: es, IndexName: index}
}

func (x *TaskIndex) Index(ctx context.Context, t *entity.Task) error {
	b, err := json.Marshal(toDoc(t))
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: x.IndexName, DocumentID: t.ID, Body: bytes.NewReader(b), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, x.ES)
	if err != nil {
		return fmt.Errorf("es index: %w", err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("es index: %s", res.Status())
	}
	return nil
}

func (x *TaskIndex) Delete(ctx context.Context, id string) error {
	req := esapi.DeleteRequest{Index: x.IndexName, DocumentID: id}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, x.ES)
	if err != nil {
		return fmt.Errorf("es delete: %w", err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("es delete: %s", res.Status())
	}
	return nil
}

// Search matches q against task text, always filtered to the owner.
func (x *TaskIndex) Search(ctx context.Context, userID, q string, size int) ([]entity.Task, error) {
	query := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": []any{
					map[string]any{"match": map[string]any{
						"text": map[string]any{"query": q, "fuzziness": "AUTO"},
					}},
				},
				"filter": []any{
					map[string]any{"term": map[string]any{"user_id": userID}},
				},
			},
		},
		"sort": []any{"_score", map[string]any{"created_at": "desc"}},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res, err := x.ES.Search(
		x.ES.Search.WithContext(c),
		x.ES.Search.WithIndex(x.IndexName),
		x.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, fmt.Errorf("es search: %w", err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, fmt.Errorf("es search: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source taskDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]entity.Task, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		// the filter already scopes by owner; this guards against a mis-mapped index
		if h.Source.UserID != userID {
			continue
		}
		out = append(out, h.Source.task())
	}
	return out, nil
}
