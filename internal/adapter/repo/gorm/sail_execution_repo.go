package gormrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"tradewinds/internal/adapter/repo/gorm/model"
	"tradewinds/internal/app/ports"
	"tradewinds/internal/domain/fleet"
	"tradewinds/internal/domain/sail"

	"gorm.io/gorm"
)

type SailExecutionRepo struct {
	db *gorm.DB
}

func NewSailExecutionRepo(db *gorm.DB) SailExecutionRepo {
	return SailExecutionRepo{db: db}
}

func (r SailExecutionRepo) GetByIdempotencyKey(ctx context.Context, userID, key string) (*ports.SailExecutionRecord, error) {
	var m model.SailExecution
	err := getDBFromCtx(ctx, r.db).
		Where(&model.SailExecution{UserID: userID, IdempotencyKey: key}).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	var outcome sail.Outcome
	if err := json.Unmarshal([]byte(m.Outcome), &outcome); err != nil {
		return nil, fmt.Errorf("decode outcome: %w", err)
	}
	var ship fleet.Ship
	if err := json.Unmarshal([]byte(m.Ship), &ship); err != nil {
		return nil, fmt.Errorf("decode ship: %w", err)
	}
	return &ports.SailExecutionRecord{
		UserID:         m.UserID,
		IdempotencyKey: m.IdempotencyKey,
		ShipID:         m.ShipID,
		Outcome:        outcome,
		Ship:           ship,
		AppliedAt:      m.AppliedAt,
	}, nil
}

func (r SailExecutionRepo) SaveExecution(ctx context.Context, execution ports.SailExecutionRecord) error {
	outcomeJSON, err := json.Marshal(execution.Outcome)
	if err != nil {
		return fmt.Errorf("encode outcome: %w", err)
	}
	shipJSON, err := json.Marshal(execution.Ship)
	if err != nil {
		return fmt.Errorf("encode ship: %w", err)
	}
	m := model.SailExecution{
		UserID:         execution.UserID,
		IdempotencyKey: execution.IdempotencyKey,
		ShipID:         execution.ShipID,
		Outcome:        string(outcomeJSON),
		Ship:           string(shipJSON),
		AppliedAt:      execution.AppliedAt,
	}
	if err := getDBFromCtx(ctx, r.db).Create(&m).Error; err != nil {
		return mapWriteError(err)
	}
	return nil
}
