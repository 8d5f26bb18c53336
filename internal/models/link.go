package models

import "time"

// Link структура модели хранения короткой ссылки.
type Link struct {
	ID          string     `json:"id"           gorm:"primaryKey;type:varchar(36)"`
	Code        string     `json:"code"         gorm:"uniqueIndex;size:8;not null"`
	OriginalURL string     `json:"original_url" gorm:"not null"`
	ClickCount  int64      `json:"click_count"  gorm:"not null;default:0"`
	CreatedAt   time.Time  `json:"created_at"   gorm:"not null;index:idx_links_owner_created,priority:2"`
	LastClicked *time.Time `json:"last_clicked"`
	OwnerID     string     `json:"owner_id"     gorm:"size:255;index:idx_links_owner_created,priority:1"`
}
