package entities

import "time"

type SeriesStatus string

const (
	SeriesStatusOngoing   SeriesStatus = "ongoing"
	SeriesStatusCompleted SeriesStatus = "completed"
	SeriesStatusHiatus    SeriesStatus = "hiatus"
)

// Series is a work, e.g. "Naruto". Title and APIID are each unique.
type Series struct {
	ID           uint         `gorm:"primaryKey" json:"id"`
	APIID        *string      `gorm:"uniqueIndex;size:64" json:"api_id,omitempty"`
	Title        string       `gorm:"uniqueIndex;size:512;not null" json:"title"`
	Authors      []string     `gorm:"serializer:json;type:text" json:"authors"`
	Description  string       `gorm:"type:text" json:"description,omitempty"`
	Status       SeriesStatus `gorm:"size:20" json:"status,omitempty"`
	TotalVolumes *int         `json:"total_volumes,omitempty"`
	CoverURL     string       `gorm:"size:2048" json:"cover_url,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

func (Series) TableName() string {
	return "series"
}

// Edition is a publisher/language printing of a series. (SeriesID, Name) is unique.
type Edition struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	SeriesID     uint      `gorm:"uniqueIndex:idx_editions_series_name;not null" json:"series_id"`
	Name         string    `gorm:"uniqueIndex:idx_editions_series_name;size:255;not null" json:"name"`
	Publisher    string    `gorm:"size:255" json:"publisher,omitempty"`
	Language     string    `gorm:"size:10" json:"language"`
	TotalVolumes *int      `json:"total_volumes,omitempty"`
	Series       *Series   `gorm:"foreignKey:SeriesID" json:"series,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Volume is a single physical book within an edition.
// APIID and ISBN are unique when set; (EditionID, Number) is unique among volumes with neither.
type Volume struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	EditionID     uint      `gorm:"index:idx_volumes_edition_number;not null" json:"edition_id"`
	APIID         *string   `gorm:"uniqueIndex;size:64" json:"api_id,omitempty"`
	ISBN          *string   `gorm:"uniqueIndex;size:20" json:"isbn,omitempty"`
	Number        *int      `gorm:"index:idx_volumes_edition_number" json:"number,omitempty"`
	Title         string    `gorm:"size:512;not null" json:"title"`
	Authors       []string  `gorm:"serializer:json;type:text" json:"authors"`
	Description   string    `gorm:"type:text" json:"description,omitempty"`
	PublishedDate string    `gorm:"size:32" json:"published_date,omitempty"`
	PageCount     *int      `json:"page_count,omitempty"`
	CoverURL      string    `gorm:"size:2048" json:"cover_url,omitempty"`
	Edition       *Edition  `gorm:"foreignKey:EditionID" json:"edition,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// VolumeISBN maps an additional ISBN (e.g. the ISBN-10 form) to an existing volume.
type VolumeISBN struct {
	ISBN      string    `gorm:"primaryKey;size:20" json:"isbn"`
	VolumeID  uint      `gorm:"index;not null" json:"volume_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (VolumeISBN) TableName() string {
	return "volume_isbns"
}

// CollectionEntry records that a user owns a volume.
type CollectionEntry struct {
	UserID    uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	VolumeID  uint      `gorm:"primaryKey;autoIncrement:false;index" json:"volume_id"`
	Volume    *Volume   `gorm:"foreignKey:VolumeID" json:"volume,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (CollectionEntry) TableName() string {
	return "user_volumes"
}

// WishlistEntry records that a user wants a volume. Independent of ownership.
type WishlistEntry struct {
	UserID    uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	VolumeID  uint      `gorm:"primaryKey;autoIncrement:false;index" json:"volume_id"`
	Volume    *Volume   `gorm:"foreignKey:VolumeID" json:"volume,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (WishlistEntry) TableName() string {
	return "wishlist_volumes"
}

// StringPtr returns nil for an empty string.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
