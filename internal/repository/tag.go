package repository

import (
	"context"
	"errors"

	"stackit/internal/cache"
	"stackit/internal/models"

	"gorm.io/gorm"
)

// TagRepository defines persistence operations for tags.
type TagRepository interface {
	List(ctx context.Context, limit, offset int) ([]models.Tag, error)
	GetByName(ctx context.Context, name string) (*models.Tag, error)
	// EnsureAll resolves tag names to rows, creating unknown names.
	EnsureAll(ctx context.Context, names []string) ([]models.Tag, error)
}

type tagRepository struct {
	db *gorm.DB
}

// NewTagRepository returns a new TagRepository implementation.
func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

// tagDetailSelect computes usage and follower counts in one query.
const tagDetailSelect = "tags.*, " +
	"(SELECT COUNT(*) FROM question_tags WHERE question_tags.tag_id = tags.id) as question_count, " +
	"(SELECT COUNT(*) FROM tag_follows WHERE tag_follows.tag_id = tags.id) as follower_count"

func (r *tagRepository) List(ctx context.Context, limit, offset int) ([]models.Tag, error) {
	limit, offset = clampPage(limit, offset)
	var tags []models.Tag
	if err := r.db.WithContext(ctx).
		Select(tagDetailSelect).
		Order("question_count DESC, tags.name ASC").
		Limit(limit).Offset(offset).
		Find(&tags).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return tags, nil
}

func (r *tagRepository) GetByName(ctx context.Context, name string) (*models.Tag, error) {
	var tag models.Tag
	if err := r.db.WithContext(ctx).
		Select(tagDetailSelect).
		Where("tags.name = ?", name).
		First(&tag).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Tag", name)
		}
		return nil, models.NewInternalError(err)
	}
	return &tag, nil
}

func (r *tagRepository) EnsureAll(ctx context.Context, names []string) ([]models.Tag, error) {
	tags := make([]models.Tag, 0, len(names))
	seen := make(map[string]struct{}, len(names))

	for _, name := range names {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}

		var tag models.Tag
		err := r.db.WithContext(ctx).Where("name = ?", name).First(&tag).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			tag = models.Tag{Name: name}
			if err := r.db.WithContext(ctx).Create(&tag).Error; err != nil {
				// Lost a concurrent create race; the row exists now.
				if isUniqueConstraintError(err) {
					if err := r.db.WithContext(ctx).Where("name = ?", name).First(&tag).Error; err != nil {
						return nil, models.NewInternalError(err)
					}
				} else {
					return nil, models.NewInternalError(err)
				}
			}
			cache.InvalidateTags(ctx)
		} else if err != nil {
			return nil, models.NewInternalError(err)
		}
		tags = append(tags, tag)
	}
	return tags, nil
}
