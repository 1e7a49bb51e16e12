package model

import "time"

const TableNameShip = "ships"

type Ship struct {
	ID            string     `gorm:"column:id;primaryKey" json:"id"`
	OwnerID       string     `gorm:"column:owner_id;not null" json:"owner_id"`
	Name          string     `gorm:"column:name;not null" json:"name"`
	Class         string     `gorm:"column:class;not null" json:"class"`
	CityID        string     `gorm:"column:city_id;not null" json:"city_id"`
	Gold          int64      `gorm:"column:gold;not null" json:"gold"`
	Goods         string     `gorm:"column:goods;not null;default:'{}'::jsonb" json:"goods"`
	Capacity      int64      `gorm:"column:capacity;not null" json:"capacity"`
	Speed         float64    `gorm:"column:speed;not null" json:"speed"`
	Path          *string    `gorm:"column:path" json:"path"`
	PathCreatedAt *time.Time `gorm:"column:path_created_at" json:"path_created_at"`
	Sunk          bool       `gorm:"column:sunk;not null" json:"sunk"`
	Version       int64      `gorm:"column:version;not null;default:1" json:"version"`
	CreatedAt     time.Time  `gorm:"column:created_at;not null;default:now()" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;not null;default:now()" json:"updated_at"`
}

func (*Ship) TableName() string {
	return TableNameShip
}
