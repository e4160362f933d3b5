package storage

import (
	"errors"
	"time"

	"newsagg/internal/models"
)

// ErrNotFound is returned when the requested record does not exist.
var ErrNotFound = errors.New("not found")

// Storage defines the interface for the persistent record store.
type Storage interface {
	// Articles. UpsertArticle is keyed by URL and reports whether the
	// row was created or changed; a no-op upsert returns false.
	UpsertArticle(article *models.Article) (bool, error)
	QueryArticles(q *models.ArticleQuery) ([]models.Article, int, error)
	GetArticle(id int64) (*models.Article, error)

	// Preferences. SavePreference upserts on the
	// (user_id, preference_type, preference_value) triple.
	SavePreference(pref *models.UserPreference) error
	ListPreferences(userID string) ([]models.UserPreference, error)
	QueryArticlesByPreferences(prefs []models.UserPreference, page int) ([]models.Article, int, error)

	Close() error

	// Storage maintenance methods
	CleanupOldArticles(retention time.Duration) error
	OptimizeDatabase() error
	GetDatabaseStats() (map[string]interface{}, error)
}
