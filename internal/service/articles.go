package service

import (
	"fmt"
	"strconv"

	"newsagg/internal/cache"
	"newsagg/internal/config"
	"newsagg/internal/models"
	"newsagg/internal/query"
	"newsagg/internal/storage"
)

// ArticleService serves article reads through the query cache. Cache
// misses query the store and populate synchronously; hits never touch
// the store.
type ArticleService struct {
	storage storage.Storage
	cache   *cache.Manager
	cfg     *config.Config
}

func NewArticleService(st storage.Storage, cm *cache.Manager, cfg *config.Config) *ArticleService {
	return &ArticleService{
		storage: st,
		cache:   cm,
		cfg:     cfg,
	}
}

// List returns one page of articles matching the filters, cached under
// the query's canonical key.
func (s *ArticleService) List(q *models.ArticleQuery) (*models.ArticlePage, error) {
	key := query.CacheKey(q)

	value, err := s.cache.GetOrCompute(key, s.cfg.ArticleListTTL, func() (interface{}, error) {
		articles, total, err := s.storage.QueryArticles(q)
		if err != nil {
			return nil, fmt.Errorf("failed to query articles: %v", err)
		}
		return newArticlePage(articles, q.Page, total), nil
	})
	if err != nil {
		return nil, err
	}

	page, ok := value.(*models.ArticlePage)
	if !ok {
		return nil, fmt.Errorf("unexpected cached value for key %s", key)
	}
	return page, nil
}

// Get returns a single article by id, cached per entity. A missing id
// surfaces storage.ErrNotFound and is not cached.
func (s *ArticleService) Get(id int64) (*models.Article, error) {
	key := "article:" + strconv.FormatInt(id, 10)

	value, err := s.cache.GetOrCompute(key, s.cfg.ArticleTTL, func() (interface{}, error) {
		return s.storage.GetArticle(id)
	})
	if err != nil {
		return nil, err
	}

	article, ok := value.(*models.Article)
	if !ok {
		return nil, fmt.Errorf("unexpected cached value for key %s", key)
	}
	return article, nil
}

func newArticlePage(articles []models.Article, page, total int) *models.ArticlePage {
	if articles == nil {
		articles = []models.Article{}
	}
	totalPages := (total + models.PageSize - 1) / models.PageSize
	return &models.ArticlePage{
		Data:       articles,
		Page:       page,
		PerPage:    models.PageSize,
		Total:      total,
		TotalPages: totalPages,
	}
}
