package repository

import (
	"context"
	"errors"
	"time"

	"mindmate-chat/backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormSessionRepository persists sessions in postgres
type GormSessionRepository struct {
	db *gorm.DB
}

// NewGormSessionRepository creates a new session repository
func NewGormSessionRepository(db *gorm.DB) *GormSessionRepository {
	return &GormSessionRepository{db: db}
}

func (r *GormSessionRepository) List(ctx context.Context, includeArchived bool) ([]models.ChatSession, error) {
	var sessions []models.ChatSession
	q := r.db.WithContext(ctx).Order("updated_at DESC")
	if !includeArchived {
		q = q.Where("archived = ?", false)
	}
	if err := q.Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *GormSessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ChatSession, error) {
	var session models.ChatSession
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *GormSessionRepository) Create(ctx context.Context, session *models.ChatSession) error {
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	if session.UpdatedAt.IsZero() {
		session.UpdatedAt = time.Now()
	}
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *GormSessionRepository) Update(ctx context.Context, id uuid.UUID, patch SessionPatch) error {
	updates := map[string]interface{}{}
	if patch.Title != nil {
		updates["title"] = *patch.Title
	}
	if patch.Archived != nil {
		updates["archived"] = *patch.Archived
	}
	if patch.UpdatedAt != nil {
		updates["updated_at"] = *patch.UpdatedAt
	}
	if len(updates) == 0 {
		return nil
	}

	result := r.db.WithContext(ctx).Model(&models.ChatSession{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormSessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	// Messages go first; the FK cascade covers fresh schemas, this covers the rest
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ?", id).Delete(&models.ChatMessage{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&models.ChatSession{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// GormMessageRepository persists messages in postgres
type GormMessageRepository struct {
	db *gorm.DB
}

// NewGormMessageRepository creates a new message repository
func NewGormMessageRepository(db *gorm.DB) *GormMessageRepository {
	return &GormMessageRepository{db: db}
}

func (r *GormMessageRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *GormMessageRepository) Append(ctx context.Context, message *models.ChatMessage) error {
	if message.ID == uuid.Nil {
		message.ID = uuid.New()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}
	return r.db.WithContext(ctx).Create(message).Error
}
