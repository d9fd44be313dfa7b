package entity

import "time"

// DbBatch is a production run of a product.
type DbBatch struct {
	ID        uint       `gorm:"primarykey" json:"id"`
	CreatedAt time.Time  `json:"created_at"`
	ProductID uint       `gorm:"column:product_id;index;not null" json:"product_id"`
	BatchCode string     `gorm:"column:batch_code;type:varchar(128);not null" json:"batch_code"`
	Quantity  int        `gorm:"column:quantity;not null" json:"quantity"`
	StartDate time.Time  `gorm:"column:start_date" json:"start_date"`
	EndDate   *time.Time `gorm:"column:end_date" json:"end_date"`
}

func (DbBatch) TableName() string {
	return "batches"
}

type BatchCreateRequest struct {
	BatchCode string `json:"batch_code" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}
