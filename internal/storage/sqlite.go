package storage

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"newsagg/internal/models"

	_ "github.com/mattn/go-sqlite3"
)

// timeLayout is the store's canonical timestamp representation. Keeping
// every timestamp in this exact UTC form makes the change-detecting
// upsert comparison and the inclusive date range filter both exact.
const timeLayout = "2006-01-02 15:04:05"

type SQLiteStorage struct {
	db    *sql.DB
	mutex sync.Mutex
}

func NewSQLiteStorage(dataDir string) (*SQLiteStorage, error) {
	// Ensure data directory exists with secure permissions (0750)
	if err := os.MkdirAll(dataDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %v", err)
	}

	dbPath := filepath.Join(dataDir, "news_aggregator.db")
	log.Printf("Initializing database at: %s", dbPath)

	db, err := sql.Open("sqlite3", dbPath+"?_journal=WAL&_synchronous=NORMAL&_cache_size=10000&_temp_store=MEMORY&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite only supports one writer at a time
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 30000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			log.Printf("Warning: failed to set %s: %v", pragma, err)
		}
	}

	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %v", err)
	}

	return &SQLiteStorage{db: db}, nil
}

func createTables(db *sql.DB) error {
	articlesTable := `
	CREATE TABLE IF NOT EXISTS articles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		content TEXT,
		source TEXT NOT NULL,
		author TEXT NOT NULL,
		category TEXT NOT NULL,
		published_at TEXT NOT NULL,
		url TEXT UNIQUE NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);`

	preferencesTable := `
	CREATE TABLE IF NOT EXISTS user_preferences (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		preference_type TEXT NOT NULL,
		preference_value TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		UNIQUE(user_id, preference_type, preference_value)
	);`

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_articles_published_at ON articles(published_at);",
		"CREATE INDEX IF NOT EXISTS idx_articles_category ON articles(category);",
		"CREATE INDEX IF NOT EXISTS idx_articles_source ON articles(source);",
		"CREATE INDEX IF NOT EXISTS idx_articles_author ON articles(author);",
		"CREATE INDEX IF NOT EXISTS idx_preferences_user ON user_preferences(user_id);",
	}

	if _, err := db.Exec(articlesTable); err != nil {
		return fmt.Errorf("failed to create articles table: %v", err)
	}

	if _, err := db.Exec(preferencesTable); err != nil {
		return fmt.Errorf("failed to create user_preferences table: %v", err)
	}

	for _, index := range indexes {
		if _, err := db.Exec(index); err != nil {
			return fmt.Errorf("failed to create index: %v", err)
		}
	}

	return nil
}

// UpsertArticle inserts the article or updates the existing row with the
// same URL. The conflict update only fires when at least one field
// differs, so RowsAffected tells created-or-changed apart from a no-op
// re-ingestion. The conflict resolution is atomic in SQLite: a
// duplicate-URL race between concurrent runs resolves to a single row.
func (s *SQLiteStorage) UpsertArticle(article *models.Article) (bool, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	now := time.Now().UTC().Format(timeLayout)

	result, err := s.db.Exec(`
		INSERT INTO articles (title, content, source, author, category, published_at, url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			title = excluded.title,
			content = excluded.content,
			source = excluded.source,
			author = excluded.author,
			category = excluded.category,
			published_at = excluded.published_at,
			updated_at = excluded.updated_at
		WHERE title != excluded.title
			OR content != excluded.content
			OR source != excluded.source
			OR author != excluded.author
			OR category != excluded.category
			OR published_at != excluded.published_at
	`,
		article.Title,
		article.Content,
		article.Source,
		article.Author,
		article.Category,
		article.PublishedAt.UTC().Format(timeLayout),
		article.URL,
		now,
		now,
	)
	if err != nil {
		return false, fmt.Errorf("failed to upsert article: %v", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %v", err)
	}

	return affected > 0, nil
}

// QueryArticles returns one page of articles matching the filters plus
// the total match count. Filters combine with AND; the keyword predicate
// is one parenthesized OR-group over title and content so it cannot
// widen results past the other constraints.
func (s *SQLiteStorage) QueryArticles(q *models.ArticleQuery) ([]models.Article, int, error) {
	where, args := buildArticleFilters(q)
	return s.queryArticlePage(where, args, q.Page)
}

func buildArticleFilters(q *models.ArticleQuery) (string, []interface{}) {
	conditions := []string{"1=1"}
	args := []interface{}{}

	if q.Keyword != "" {
		conditions = append(conditions, "(title LIKE ? OR content LIKE ?)")
		args = append(args, "%"+q.Keyword+"%", "%"+q.Keyword+"%")
	}

	if q.HasDateRange {
		conditions = append(conditions, "published_at BETWEEN ? AND ?")
		args = append(args, q.DateFrom.UTC().Format(timeLayout), q.DateTo.UTC().Format(timeLayout))
	}

	if q.Category != "" {
		conditions = append(conditions, "category = ?")
		args = append(args, q.Category)
	}

	if q.Source != "" {
		conditions = append(conditions, "source = ?")
		args = append(args, q.Source)
	}

	return strings.Join(conditions, " AND "), args
}

func (s *SQLiteStorage) queryArticlePage(where string, args []interface{}, page int) ([]models.Article, int, error) {
	if page < 1 {
		page = 1
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM articles WHERE " + where
	if err := s.db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count articles: %v", err)
	}

	// Insertion order, stable under repeated identical calls
	query := `
		SELECT id, title, content, source, author, category, published_at, url, created_at, updated_at
		FROM articles
		WHERE ` + where + `
		ORDER BY id
		LIMIT ? OFFSET ?`
	pageArgs := append(append([]interface{}{}, args...), models.PageSize, (page-1)*models.PageSize)

	rows, err := s.db.Query(query, pageArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query articles: %v", err)
	}
	defer rows.Close()

	var articles []models.Article
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, 0, err
		}
		articles = append(articles, *article)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error during rows iteration: %v", err)
	}

	return articles, total, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanArticle(row rowScanner) (*models.Article, error) {
	var article models.Article
	var publishedAt, createdAt, updatedAt string

	err := row.Scan(
		&article.ID,
		&article.Title,
		&article.Content,
		&article.Source,
		&article.Author,
		&article.Category,
		&publishedAt,
		&article.URL,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	article.PublishedAt = parseStoredTime(publishedAt)
	article.CreatedAt = parseStoredTime(createdAt)
	article.UpdatedAt = parseStoredTime(updatedAt)

	return &article, nil
}

func parseStoredTime(value string) time.Time {
	t, err := time.ParseInLocation(timeLayout, value, time.UTC)
	if err != nil {
		log.Printf("Warning: failed to parse stored timestamp %q: %v", value, err)
		return time.Time{}
	}
	return t
}

func (s *SQLiteStorage) GetArticle(id int64) (*models.Article, error) {
	row := s.db.QueryRow(`
		SELECT id, title, content, source, author, category, published_at, url, created_at, updated_at
		FROM articles
		WHERE id = ?`, id)

	article, err := scanArticle(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get article: %v", err)
	}

	return article, nil
}

// SavePreference upserts on the (user_id, preference_type,
// preference_value) triple; re-saving an existing preference only
// refreshes updated_at.
func (s *SQLiteStorage) SavePreference(pref *models.UserPreference) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	now := time.Now().UTC().Format(timeLayout)

	_, err := s.db.Exec(`
		INSERT INTO user_preferences (user_id, preference_type, preference_value, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id, preference_type, preference_value) DO UPDATE SET
			updated_at = excluded.updated_at
	`, pref.UserID, pref.PreferenceType, pref.PreferenceValue, now, now)
	if err != nil {
		return fmt.Errorf("failed to save preference: %v", err)
	}

	return nil
}

func (s *SQLiteStorage) ListPreferences(userID string) ([]models.UserPreference, error) {
	rows, err := s.db.Query(`
		SELECT id, user_id, preference_type, preference_value, created_at, updated_at
		FROM user_preferences
		WHERE user_id = ?
		ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list preferences: %v", err)
	}
	defer rows.Close()

	var prefs []models.UserPreference
	for rows.Next() {
		var pref models.UserPreference
		var createdAt, updatedAt string

		err := rows.Scan(&pref.ID, &pref.UserID, &pref.PreferenceType, &pref.PreferenceValue, &createdAt, &updatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan preference: %v", err)
		}

		pref.CreatedAt = parseStoredTime(createdAt)
		pref.UpdatedAt = parseStoredTime(updatedAt)
		prefs = append(prefs, pref)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration: %v", err)
	}

	return prefs, nil
}

// QueryArticlesByPreferences expands the preference rows into an OR of
// one equality condition each. With no preferences the result is the
// unfiltered article listing.
func (s *SQLiteStorage) QueryArticlesByPreferences(prefs []models.UserPreference, page int) ([]models.Article, int, error) {
	if len(prefs) == 0 {
		return s.queryArticlePage("1=1", nil, page)
	}

	var conditions []string
	var args []interface{}

	for _, pref := range prefs {
		switch pref.PreferenceType {
		case models.PreferenceSource:
			conditions = append(conditions, "source = ?")
		case models.PreferenceCategory:
			conditions = append(conditions, "category = ?")
		case models.PreferenceAuthor:
			conditions = append(conditions, "author = ?")
		default:
			log.Printf("Warning: ignoring preference with unknown type %q", pref.PreferenceType)
			continue
		}
		args = append(args, pref.PreferenceValue)
	}

	if len(conditions) == 0 {
		return s.queryArticlePage("1=1", nil, page)
	}

	where := "(" + strings.Join(conditions, " OR ") + ")"
	return s.queryArticlePage(where, args, page)
}

// CleanupOldArticles removes articles older than the retention period.
func (s *SQLiteStorage) CleanupOldArticles(retention time.Duration) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	cutoff := time.Now().UTC().Add(-retention).Format(timeLayout)

	result, err := s.db.Exec("DELETE FROM articles WHERE published_at < ?", cutoff)
	if err != nil {
		return fmt.Errorf("failed to delete old articles: %v", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %v", err)
	}

	if rowsAffected > 0 {
		log.Printf("Cleaned up %d old articles (older than %v)", rowsAffected, retention)
	}

	return nil
}

func (s *SQLiteStorage) OptimizeDatabase() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, err := s.db.Exec("VACUUM"); err != nil {
		return fmt.Errorf("failed to vacuum database: %v", err)
	}

	if _, err := s.db.Exec("ANALYZE"); err != nil {
		return fmt.Errorf("failed to analyze database: %v", err)
	}

	return nil
}

func (s *SQLiteStorage) GetDatabaseStats() (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	var articleCount int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM articles").Scan(&articleCount); err != nil {
		return nil, fmt.Errorf("failed to count articles: %v", err)
	}
	stats["article_count"] = articleCount

	var preferenceCount int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM user_preferences").Scan(&preferenceCount); err != nil {
		return nil, fmt.Errorf("failed to count preferences: %v", err)
	}
	stats["preference_count"] = preferenceCount

	var pageCount, pageSize int64
	if err := s.db.QueryRow("PRAGMA page_count").Scan(&pageCount); err == nil {
		if err := s.db.QueryRow("PRAGMA page_size").Scan(&pageSize); err == nil {
			stats["database_size_bytes"] = pageCount * pageSize
		}
	}

	return stats, nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
