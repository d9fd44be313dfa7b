package entity

import "time"

// DbFactory is a garment factory that owns users, products and compliance events.
type DbFactory struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Name      string    `gorm:"column:name;type:varchar(255);index;not null" json:"name"`
	Location  string    `gorm:"column:location;type:varchar(255)" json:"location"`
}

func (DbFactory) TableName() string {
	return "factories"
}

type FactoryCreateRequest struct {
	Name     string `json:"name" binding:"required"`
	Location string `json:"location"`
}
