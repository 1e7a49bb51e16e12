package model

import "time"

const TableNameSailExecution = "sail_executions"

type SailExecution struct {
	UserID         string    `gorm:"column:user_id;primaryKey" json:"user_id"`
	IdempotencyKey string    `gorm:"column:idempotency_key;primaryKey" json:"idempotency_key"`
	ShipID         string    `gorm:"column:ship_id;not null" json:"ship_id"`
	Outcome        string    `gorm:"column:outcome;not null" json:"outcome"`
	Ship           string    `gorm:"column:ship;not null" json:"ship"`
	AppliedAt      time.Time `gorm:"column:applied_at;not null" json:"applied_at"`
}

func (*SailExecution) TableName() string {
	return TableNameSailExecution
}
