package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/incident-service/internal/domain"
	"github.com/spec-kit/incident-service/internal/repository"
	apperrors "github.com/spec-kit/incident-service/pkg/util"
)

const (
	technicianCacheKey = "directory:technicians"
	technicianCacheTTL = 5 * time.Minute
)

// TechnicianEntry is a directory row offered to admins when assigning work.
type TechnicianEntry struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// DirectoryService lists technician accounts, caching the listing in Redis.
type DirectoryService struct {
	users  repository.UserRepository
	cache  *redis.Client
	logger *zap.Logger
}

// NewDirectoryService constructs the service. The cache client may be nil.
func NewDirectoryService(users repository.UserRepository, cache *redis.Client, logger *zap.Logger) *DirectoryService {
	return &DirectoryService{users: users, cache: cache, logger: logger}
}

// ListTechnicians returns all TECHNICIAN accounts ordered by name.
func (s *DirectoryService) ListTechnicians(ctx context.Context) ([]TechnicianEntry, error) {
	if cached, ok := s.fromCache(ctx); ok {
		return cached, nil
	}

	users, err := s.users.ListByRole(ctx, domain.RoleTechnician)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	entries := make([]TechnicianEntry, 0, len(users))
	for _, u := range users {
		entries = append(entries, TechnicianEntry{ID: u.ID, Name: u.Name, Email: u.Email})
	}

	s.toCache(ctx, entries)
	return entries, nil
}

// InvalidateCache drops the cached listing, e.g. after account provisioning.
func (s *DirectoryService) InvalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, technicianCacheKey).Err(); err != nil {
		s.logger.Warn("technician cache invalidation failed", zap.Error(err))
	}
}

func (s *DirectoryService) fromCache(ctx context.Context) ([]TechnicianEntry, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, technicianCacheKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn("technician cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var entries []TechnicianEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, false
	}
	return entries, true
}

func (s *DirectoryService) toCache(ctx context.Context, entries []TechnicianEntry) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, technicianCacheKey, raw, technicianCacheTTL).Err(); err != nil {
		s.logger.Warn("technician cache write failed", zap.Error(err))
	}
}
