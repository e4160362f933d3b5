package service

import (
	"fmt"
	"strconv"

	"newsagg/internal/cache"
	"newsagg/internal/config"
	"newsagg/internal/models"
	"newsagg/internal/storage"
)

// ValidationError rejects an invalid preference before anything is
// written.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var validPreferenceTypes = map[string]bool{
	models.PreferenceSource:   true,
	models.PreferenceCategory: true,
	models.PreferenceAuthor:   true,
}

// PreferenceService manages per-user preference sets and the
// personalized feed built from them.
type PreferenceService struct {
	storage storage.Storage
	cache   *cache.Manager
	cfg     *config.Config
}

func NewPreferenceService(st storage.Storage, cm *cache.Manager, cfg *config.Config) *PreferenceService {
	return &PreferenceService{
		storage: st,
		cache:   cm,
		cfg:     cfg,
	}
}

func prefsKey(userID string) string {
	return "prefs:" + userID
}

func feedKey(userID string, page int) string {
	if page > 1 {
		return "feed:" + userID + ":p" + strconv.Itoa(page)
	}
	return "feed:" + userID
}

// List returns the user's stored preferences, cached briefly.
func (s *PreferenceService) List(userID string) ([]models.UserPreference, error) {
	key := prefsKey(userID)

	value, err := s.cache.GetOrCompute(key, s.cfg.PreferencesTTL, func() (interface{}, error) {
		prefs, err := s.storage.ListPreferences(userID)
		if err != nil {
			return nil, fmt.Errorf("failed to list preferences: %v", err)
		}
		if prefs == nil {
			prefs = []models.UserPreference{}
		}
		return prefs, nil
	})
	if err != nil {
		return nil, err
	}

	prefs, ok := value.([]models.UserPreference)
	if !ok {
		return nil, fmt.Errorf("unexpected cached value for key %s", key)
	}
	return prefs, nil
}

// Set validates and upserts one preference, then evicts the user's
// preference and feed entries. Invalidation runs after the store write
// so a concurrent reader cannot repopulate the cache with pre-write
// data and keep it past this call.
func (s *PreferenceService) Set(userID, prefType, prefValue string) error {
	if !validPreferenceTypes[prefType] {
		return &ValidationError{Field: "preference_type", Message: "must be one of source, category, author"}
	}
	if prefValue == "" {
		return &ValidationError{Field: "preference_value", Message: "must not be empty"}
	}

	pref := &models.UserPreference{
		UserID:          userID,
		PreferenceType:  prefType,
		PreferenceValue: prefValue,
	}
	if err := s.storage.SavePreference(pref); err != nil {
		return err
	}

	s.cache.Delete(prefsKey(userID))
	s.cache.DeletePrefix("feed:" + userID)

	return nil
}

// Feed returns the user's personalized article page: stored preferences
// expanded into an OR-filter over the article store. A user with no
// preferences gets the unfiltered listing — deliberate policy, not an
// error.
func (s *PreferenceService) Feed(userID string, page int) (*models.ArticlePage, error) {
	if page < 1 {
		page = 1
	}
	key := feedKey(userID, page)

	value, err := s.cache.GetOrCompute(key, s.cfg.FeedTTL, func() (interface{}, error) {
		prefs, err := s.storage.ListPreferences(userID)
		if err != nil {
			return nil, fmt.Errorf("failed to list preferences: %v", err)
		}

		articles, total, err := s.storage.QueryArticlesByPreferences(prefs, page)
		if err != nil {
			return nil, fmt.Errorf("failed to query personalized feed: %v", err)
		}
		return newArticlePage(articles, page, total), nil
	})
	if err != nil {
		return nil, err
	}

	feed, ok := value.(*models.ArticlePage)
	if !ok {
		return nil, fmt.Errorf("unexpected cached value for key %s", key)
	}
	return feed, nil
}
