package content

import (
	"time"

	"github.com/mrlokans/readingcenter/internal/entities"
)

type NewsUpdate struct {
	Title     *string
	Summary   *string
	Body      *string
	ImageURL  *string
	Published *bool
}

// ListNews returns articles, most recently published first. With
// publishedOnly, drafts are skipped.
func (r *Repository) ListNews(publishedOnly bool, page Page) ([]entities.News, int64, error) {
	query := r.db.Model(&entities.News{})
	if publishedOnly {
		query = query.Where("published = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var news []entities.News
	err := page.apply(query.Order("published_at DESC, created_at DESC")).Find(&news).Error
	return news, total, err
}

func (r *Repository) GetNews(id uint) (*entities.News, error) {
	var news entities.News
	if err := r.db.First(&news, id).Error; err != nil {
		return nil, err
	}
	return &news, nil
}

// CreateNews inserts an article, stamping PublishedAt when it is published.
func (r *Repository) CreateNews(news *entities.News) error {
	if news.Published && news.PublishedAt == nil {
		now := time.Now()
		news.PublishedAt = &now
	}
	return r.db.Create(news).Error
}

// UpdateNews applies a partial update. Publishing a draft stamps
// PublishedAt; unpublishing keeps the original stamp.
func (r *Repository) UpdateNews(id uint, update NewsUpdate) (*entities.News, error) {
	current, err := r.GetNews(id)
	if err != nil {
		return nil, err
	}

	changes := map[string]interface{}{}
	if update.Title != nil {
		changes["title"] = *update.Title
	}
	if update.Summary != nil {
		changes["summary"] = *update.Summary
	}
	if update.Body != nil {
		changes["body"] = *update.Body
	}
	if update.ImageURL != nil {
		changes["image_url"] = *update.ImageURL
	}
	if update.Published != nil {
		changes["published"] = *update.Published
		if *update.Published && current.PublishedAt == nil {
			changes["published_at"] = time.Now()
		}
	}

	var news entities.News
	if err := r.updates(&news, id, changes); err != nil {
		return nil, err
	}
	return &news, nil
}

func (r *Repository) DeleteNews(id uint) error {
	return r.delete(&entities.News{}, id)
}
