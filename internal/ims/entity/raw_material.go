package entity

import "time"

// Category 原材料分类
type Category struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"size:60;not null;uniqueIndex"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	RawMaterials []RawMaterial `json:"-" gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL"`
}

func (Category) TableName() string {
	return "categories"
}

// RawMaterial 原材料，Code 与 Goods.MaterialCode 关联
type RawMaterial struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Code        string    `json:"code" gorm:"size:60;not null;uniqueIndex"`
	Name        string    `json:"name" gorm:"size:100;not null"`
	DefaultUnit string    `json:"default_unit" gorm:"size:10;not null"`
	CategoryID  *uint     `json:"category_id" gorm:"index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (RawMaterial) TableName() string {
	return "raw_materials"
}
