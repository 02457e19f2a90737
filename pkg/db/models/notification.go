package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/khidmaty/khidmaty-backend/pkg/enums"
)

// Notification stores in-app notification payloads. Copy is written in both
// languages at insert time; the reader's preferred_locale picks which to show.
type Notification struct {
	ID        uuid.UUID              `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID              `gorm:"type:uuid;not null;index"`
	Type      enums.NotificationType `gorm:"type:notification_type;not null"`
	TitleEn   string                 `gorm:"column:title_en;type:text;not null"`
	TitleAr   string                 `gorm:"column:title_ar;type:text;not null"`
	MessageEn string                 `gorm:"column:message_en;type:text;not null"`
	MessageAr string                 `gorm:"column:message_ar;type:text;not null"`
	Link      *string                `gorm:"type:text"`
	ReadAt    *time.Time             `gorm:"type:timestamptz"`
	CreatedAt time.Time              `gorm:"type:timestamptz;default:now()"`
}

// Title returns the copy for the given locale.
func (n Notification) Title(locale enums.Locale) string {
	if locale == enums.LocaleArabic {
		return n.TitleAr
	}
	return n.TitleEn
}

// Message returns the copy for the given locale.
func (n Notification) Message(locale enums.Locale) string {
	if locale == enums.LocaleArabic {
		return n.MessageAr
	}
	return n.MessageEn
}
