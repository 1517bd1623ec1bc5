// Package memory stores agent interactions and retrieves similar past
// interactions by embedding similarity. Vectors live in an embedded
// chromem-go database, one collection per agent, with a deterministic
// hashed-token embedding so retrieval works without any external
// embedding service.
package memory

import (
	"context"
	"fmt"
	"sync"

	chromem "github.com/philippgille/chromem-go"

	"github.com/leadflowhq/leadflow/internal/model"
)

// Snippet is one retrieved interaction.
type Snippet struct {
	Text     string            `json:"text"`
	Score    float32           `json:"score"`
	Metadata map[string]string `json:"metadata"`
}

// Store is the similarity memory contract consumed by the agents.
type Store interface {
	Save(ctx context.Context, agent string, lead *model.Lead, text, outcome string) error
	Retrieve(ctx context.Context, agent, query string, k int) ([]Snippet, error)
}

// VectorStore implements Store over chromem-go.
type VectorStore struct {
	mu          sync.Mutex
	db          *chromem.DB
	collections map[string]*chromem.Collection
	embed       chromem.EmbeddingFunc
}

func NewVectorStore(embedDims int) *VectorStore {
	if embedDims <= 0 {
		embedDims = 64
	}
	return &VectorStore{
		db:          chromem.NewDB(),
		collections: make(map[string]*chromem.Collection),
		embed:       hashedEmbedding(embedDims),
	}
}

func (s *VectorStore) collection(agent string) (*chromem.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if col, ok := s.collections[agent]; ok {
		return col, nil
	}
	col, err := s.db.GetOrCreateCollection("memory_"+agent, nil, s.embed)
	if err != nil {
		return nil, fmt.Errorf("get/create collection for agent %q: %w", agent, err)
	}
	s.collections[agent] = col
	return col, nil
}

// Save records one interaction. An empty text falls back to the outcome
// so the entry remains searchable.
func (s *VectorStore) Save(ctx context.Context, agent string, lead *model.Lead, text, outcome string) error {
	col, err := s.collection(agent)
	if err != nil {
		return err
	}

	document := text
	if document == "" {
		document = outcome
	}
	if document == "" {
		return fmt.Errorf("empty interaction for agent %q", agent)
	}

	id, err := model.NewID(model.IDTypeMemory)
	if err != nil {
		return fmt.Errorf("memory id: %w", err)
	}

	metadata := map[string]string{"outcome": outcome}
	if lead != nil {
		metadata["lead_id"] = lead.ID
		metadata["lead_name"] = lead.Name
		if lead.Message != "" {
			metadata["lead_message"] = lead.Message
		}
	}

	doc := chromem.Document{
		ID:       id,
		Content:  document,
		Metadata: metadata,
	}
	if err := col.AddDocuments(ctx, []chromem.Document{doc}, 1); err != nil {
		return fmt.Errorf("add interaction: %w", err)
	}
	return nil
}

// Retrieve returns up to k interactions ranked by similarity to query.
func (s *VectorStore) Retrieve(ctx context.Context, agent, query string, k int) ([]Snippet, error) {
	col, err := s.collection(agent)
	if err != nil {
		return nil, err
	}

	count := col.Count()
	if count == 0 || k <= 0 {
		return nil, nil
	}
	if k > count {
		k = count
	}

	results, err := col.Query(ctx, query, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query memory: %w", err)
	}

	snippets := make([]Snippet, 0, len(results))
	for _, r := range results {
		metadata := make(map[string]string, len(r.Metadata))
		for key, value := range r.Metadata {
			metadata[key] = value
		}
		snippets = append(snippets, Snippet{
			Text:     r.Content,
			Score:    r.Similarity,
			Metadata: metadata,
		})
	}
	return snippets, nil
}

var _ Store = (*VectorStore)(nil)
