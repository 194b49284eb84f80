package game

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/fadedpez/blackjack/pkg/entities"
)

// DefaultSearchLimit caps history searches that don't ask for a limit
const DefaultSearchLimit = 20

// ElasticsearchConfig holds configuration options for the Elasticsearch repository
type ElasticsearchConfig struct {
	URL             string
	Username        string
	Password        string
	IndexPrefix     string
	RetentionPeriod time.Duration // How long to keep round results searchable
}

// DefaultElasticsearchConfig returns a default configuration for Elasticsearch
func DefaultElasticsearchConfig() *ElasticsearchConfig {
	return &ElasticsearchConfig{
		URL:             "http://localhost:9200",
		IndexPrefix:     "blackjack",
		RetentionPeriod: 90 * 24 * time.Hour, // 90 days
	}
}

// ElasticsearchRepository indexes round results for search and serves round
// history from the index. Writes go to the base repository first, which also
// stays the source of truth for statistics.
type ElasticsearchRepository struct {
	baseRepo    Repository
	client      *elasticsearch.Client
	config      *ElasticsearchConfig
	roundsIndex string
}

// esRoundDocument is the indexed form of a round; players is denormalised
// so history lookups are a single term query
type esRoundDocument struct {
	*entities.RoundResult
	Players []string `json:"players"`
}

const roundsMapping = `{
	"mappings": {
		"properties": {
			"table_id": { "type": "keyword" },
			"round_id": { "type": "keyword" },
			"completed_at": { "type": "date" },
			"dealer_score": { "type": "integer" },
			"dealer_bust": { "type": "boolean" },
			"dealer_blackjack": { "type": "boolean" },
			"players": { "type": "keyword" },
			"hands": {
				"type": "nested",
				"properties": {
					"player": { "type": "keyword" },
					"seat": { "type": "integer" },
					"hand": { "type": "integer" },
					"score": { "type": "integer" },
					"bet": { "type": "long" },
					"payout": { "type": "long" },
					"outcome": { "type": "keyword" },
					"blackjack": { "type": "boolean" },
					"bust": { "type": "boolean" },
					"split": { "type": "boolean" },
					"doubled": { "type": "boolean" },
					"is_ai": { "type": "boolean" }
				}
			}
		}
	}
}`

// NewElasticsearchRepository creates a new Elasticsearch repository
func NewElasticsearchRepository(baseRepo Repository, config *ElasticsearchConfig) (*ElasticsearchRepository, error) {
	cfg := elasticsearch.Config{
		Addresses: []string{config.URL},
	}

	// Add authentication if provided
	if config.Username != "" && config.Password != "" {
		cfg.Username = config.Username
		cfg.Password = config.Password
	}

	client, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("error creating Elasticsearch client: %w", err)
	}

	if config.IndexPrefix == "" {
		config.IndexPrefix = "blackjack"
	}
	if config.RetentionPeriod == 0 {
		config.RetentionPeriod = 90 * 24 * time.Hour // 90 days default
	}

	repo := &ElasticsearchRepository{
		baseRepo:    baseRepo,
		client:      client,
		config:      config,
		roundsIndex: config.IndexPrefix + "_rounds",
	}

	if err := repo.initIndices(context.Background()); err != nil {
		return nil, fmt.Errorf("error initializing indices: %w", err)
	}

	return repo, nil
}

// initIndices creates the rounds index if it doesn't exist
func (r *ElasticsearchRepository) initIndices(ctx context.Context) error {
	res, err := r.client.Indices.Exists([]string{r.roundsIndex}, r.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("error checking if rounds index exists: %w", err)
	}
	res.Body.Close()

	if res.StatusCode != 404 {
		return nil
	}

	req := esapi.IndicesCreateRequest{
		Index: r.roundsIndex,
		Body:  strings.NewReader(roundsMapping),
	}
	res, err = req.Do(ctx, r.client)
	if err != nil {
		return fmt.Errorf("error creating rounds index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("error creating rounds index: %s", res.String())
	}
	return nil
}

// SaveRoundResult saves a round to the base repository and indexes it in Elasticsearch
func (r *ElasticsearchRepository) SaveRoundResult(ctx context.Context, result *entities.RoundResult) error {
	if err := r.baseRepo.SaveRoundResult(ctx, result); err != nil {
		return fmt.Errorf("error saving round result to base repository: %w", err)
	}
	return r.IndexRoundResult(ctx, result)
}

// IndexRoundResult indexes a round result, keyed by round ID
func (r *ElasticsearchRepository) IndexRoundResult(ctx context.Context, result *entities.RoundResult) error {
	jsonData, err := json.Marshal(esRoundDocument{RoundResult: result, Players: result.Players()})
	if err != nil {
		return fmt.Errorf("error marshaling round result: %w", err)
	}

	res, err := r.client.Index(
		r.roundsIndex,
		bytes.NewReader(jsonData),
		r.client.Index.WithDocumentID(result.RoundID),
		r.client.Index.WithContext(ctx),
		r.client.Index.WithRefresh("true"),
	)
	if err != nil {
		return fmt.Errorf("error indexing round result: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("error indexing round result: %s", res.String())
	}
	return nil
}

// GetTableResults searches the index for a table's recent rounds
func (r *ElasticsearchRepository) GetTableResults(ctx context.Context, tableID string, limit int) ([]*entities.RoundResult, error) {
	return r.searchWithFallback(ctx, termQuery("table_id", tableID), limit, r.baseRepo.GetTableResults, tableID)
}

// GetPlayerResults searches the index for rounds a player took part in
func (r *ElasticsearchRepository) GetPlayerResults(ctx context.Context, player string, limit int) ([]*entities.RoundResult, error) {
	return r.searchWithFallback(ctx, termQuery("players", player), limit, r.baseRepo.GetPlayerResults, player)
}

// searchWithFallback reads from the base repository when the index comes back
// short, so rounds pruned from the index stay in history
func (r *ElasticsearchRepository) searchWithFallback(
	ctx context.Context,
	query map[string]interface{},
	limit int,
	base func(ctx context.Context, key string, limit int) ([]*entities.RoundResult, error),
	key string,
) ([]*entities.RoundResult, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	rounds, err := r.searchRounds(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	if len(rounds) >= limit {
		return rounds, nil
	}

	older, err := base(ctx, key, limit)
	if err != nil || len(older) <= len(rounds) {
		return rounds, nil
	}
	return older, nil
}

// GetPlayerStatistics delegates to the base repository
func (r *ElasticsearchRepository) GetPlayerStatistics(ctx context.Context, player string) (*entities.PlayerStatistics, error) {
	return r.baseRepo.GetPlayerStatistics(ctx, player)
}

// GetAllPlayerStatistics delegates to the base repository
func (r *ElasticsearchRepository) GetAllPlayerStatistics(ctx context.Context) ([]*entities.PlayerStatistics, error) {
	return r.baseRepo.GetAllPlayerStatistics(ctx)
}

// PruneRoundsBefore deletes indexed rounds completed before cutoff and
// returns how many were removed. The base repository keeps its copy, and
// history reads fall back to it once the index runs short.
func (r *ElasticsearchRepository) PruneRoundsBefore(ctx context.Context, cutoff time.Time) (int, error) {
	query := map[string]interface{}{
		"query": map[string]interface{}{
			"range": map[string]interface{}{
				"completed_at": map[string]interface{}{"lt": cutoff.UTC().Format(time.RFC3339)},
			},
		},
	}
	body, err := json.Marshal(query)
	if err != nil {
		return 0, err
	}

	res, err := r.client.DeleteByQuery(
		[]string{r.roundsIndex},
		bytes.NewReader(body),
		r.client.DeleteByQuery.WithContext(ctx),
		r.client.DeleteByQuery.WithRefresh(true),
	)
	if err != nil {
		return 0, fmt.Errorf("error pruning round results: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, fmt.Errorf("error pruning round results: %s", res.String())
	}

	var result struct {
		Deleted int `json:"deleted"`
	}
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("error parsing prune response: %w", err)
	}
	return result.Deleted, nil
}

// PruneExpired removes rounds older than the configured retention period
func (r *ElasticsearchRepository) PruneExpired(ctx context.Context, now time.Time) (int, error) {
	return r.PruneRoundsBefore(ctx, now.Add(-r.config.RetentionPeriod))
}

// GetConfig returns the repository configuration
func (r *ElasticsearchRepository) GetConfig() ElasticsearchConfig {
	return *r.config
}

// Close closes the base repository
func (r *ElasticsearchRepository) Close() error {
	return r.baseRepo.Close()
}

func termQuery(field, value string) map[string]interface{} {
	return map[string]interface{}{
		"query": map[string]interface{}{
			"term": map[string]interface{}{field: value},
		},
		"sort": []interface{}{
			map[string]interface{}{"completed_at": map[string]interface{}{"order": "desc"}},
		},
	}
}

func (r *ElasticsearchRepository) searchRounds(ctx context.Context, query map[string]interface{}, limit int) ([]*entities.RoundResult, error) {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	body, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}

	res, err := r.client.Search(
		r.client.Search.WithContext(ctx),
		r.client.Search.WithIndex(r.roundsIndex),
		r.client.Search.WithBody(bytes.NewReader(body)),
		r.client.Search.WithSize(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("error searching round results: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("error searching round results: %s", res.String())
	}

	var result struct {
		Hits struct {
			Hits []struct {
				Source json.RawMessage `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("error parsing round results: %w", err)
	}

	rounds := make([]*entities.RoundResult, 0, len(result.Hits.Hits))
	for _, hit := range result.Hits.Hits {
		doc := esRoundDocument{RoundResult: &entities.RoundResult{}}
		if err := json.Unmarshal(hit.Source, &doc); err != nil {
			return nil, fmt.Errorf("error decoding round result: %w", err)
		}
		rounds = append(rounds, doc.RoundResult)
	}
	return rounds, nil
}
