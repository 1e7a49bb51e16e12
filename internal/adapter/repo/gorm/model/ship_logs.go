package model

import "time"

const TableNameShipLog = "ship_logs"

type ShipLog struct {
	ID        string    `gorm:"column:id;primaryKey" json:"id"`
	UserID    string    `gorm:"column:user_id;not null" json:"user_id"`
	ShipID    string    `gorm:"column:ship_id;not null" json:"ship_id"`
	Text      string    `gorm:"column:text;not null" json:"text"`
	CreatedAt time.Time `gorm:"column:created_at;not null" json:"created_at"`
}

func (*ShipLog) TableName() string {
	return TableNameShipLog
}
