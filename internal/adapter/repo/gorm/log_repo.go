package gormrepo

import (
	"context"

	"tradewinds/internal/adapter/repo/gorm/model"
	"tradewinds/internal/app/ports"
	"tradewinds/internal/domain/fleet"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LogRepo struct {
	db *gorm.DB
}

func NewLogRepo(db *gorm.DB) LogRepo {
	return LogRepo{db: db}
}

func (r LogRepo) Append(ctx context.Context, entries []fleet.LogEntry) error {
	if len(entries) == 0 {
		return nil
	}
	rows := make([]model.ShipLog, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, model.ShipLog{
			ID:        e.ID,
			UserID:    e.UserID,
			ShipID:    e.ShipID,
			Text:      e.Text,
			CreatedAt: e.CreatedAt,
		})
	}
	if err := getDBFromCtx(ctx, r.db).Create(&rows).Error; err != nil {
		return mapWriteError(err)
	}
	return nil
}

func (r LogRepo) ListByUser(ctx context.Context, q ports.LogQuery) ([]fleet.LogEntry, error) {
	rows := []model.ShipLog{}
	query := getDBFromCtx(ctx, r.db).
		Where(&model.ShipLog{UserID: q.UserID}).
		Clauses(clause.OrderBy{
			Columns: []clause.OrderByColumn{
				{Column: clause.Column{Name: "created_at"}, Desc: true},
				{Column: clause.Column{Name: "id"}, Desc: true},
			},
		})
	if !q.From.IsZero() {
		query = query.Where("created_at >= ?", q.From)
	}
	if !q.To.IsZero() {
		query = query.Where("created_at <= ?", q.To)
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]fleet.LogEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, fleet.LogEntry{
			ID:        row.ID,
			UserID:    row.UserID,
			ShipID:    row.ShipID,
			Text:      row.Text,
			CreatedAt: row.CreatedAt,
		})
	}
	return out, nil
}
