package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/reno-ai/reno-backend/internal/projects/domain"
)

const (
	projectKeyPrefix = "reno:project:" // Key for project data: reno:project:{id}
	projectIDSetKey  = "reno:projects" // Set of all project ids
)

// RedisRepository handles Redis operations for project records.
type RedisRepository struct {
	client *redis.Client
}

// NewRedisRepository creates a new RedisRepository.
func NewRedisRepository(client *redis.Client) *RedisRepository {
	return &RedisRepository{client: client}
}

func (r *RedisRepository) projectKey(id string) string {
	return projectKeyPrefix + id
}

// Save writes the full project record and registers its id.
func (r *RedisRepository) Save(ctx context.Context, p *domain.Project) error {
	if p.ID == "" {
		return fmt.Errorf("project id required")
	}

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal project: %w", err)
	}

	pipe := r.client.Pipeline()
	pipe.Set(ctx, r.projectKey(p.ID), data, 0)
	pipe.SAdd(ctx, projectIDSetKey, p.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save project: %w", err)
	}
	return nil
}

// Load retrieves one project by id.
func (r *RedisRepository) Load(ctx context.Context, id string) (*domain.Project, error) {
	data, err := r.client.Get(ctx, r.projectKey(id)).Result()
	if err == redis.Nil {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}

	var p domain.Project
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return nil, fmt.Errorf("unmarshal project: %w", err)
	}
	return &p, nil
}

// LoadAll retrieves every stored project, sorted by target date descending.
func (r *RedisRepository) LoadAll(ctx context.Context) ([]domain.Project, error) {
	ids, err := r.client.SMembers(ctx, projectIDSetKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list project ids: %w", err)
	}
	if len(ids) == 0 {
		return []domain.Project{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.projectKey(id)
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("load projects: %w", err)
	}

	out := make([]domain.Project, 0, len(values))
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			// id in the set without a record; skip stale entries
			continue
		}
		var p domain.Project
		if err := json.Unmarshal([]byte(s), &p); err != nil {
			return nil, fmt.Errorf("unmarshal project: %w", err)
		}
		out = append(out, p)
	}

	SortByTargetDate(out)
	return out, nil
}

// Delete removes the project record and its id from the index.
func (r *RedisRepository) Delete(ctx context.Context, id string) error {
	pipe := r.client.Pipeline()
	pipe.Del(ctx, r.projectKey(id))
	pipe.SRem(ctx, projectIDSetKey, id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return nil
}

func (r *RedisRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisRepository) Close() error {
	return r.client.Close()
}

// SortByTargetDate orders projects newest target date first; ties fall back
// to creation time descending. YYYY-MM-DD compares correctly as a string.
func SortByTargetDate(projects []domain.Project) {
	sort.SliceStable(projects, func(i, j int) bool {
		if projects[i].Date != projects[j].Date {
			return projects[i].Date > projects[j].Date
		}
		return projects[i].CreatedAt.After(projects[j].CreatedAt)
	})
}
