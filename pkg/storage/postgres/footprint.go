package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"fpchart/internal/chart/store"

	"gorm.io/gorm/clause"
)

// InsertBar upserts one bar keyed by (symbol, ts). A live update for an
// existing bucket replaces its profile, matching the in-memory merge: the
// latest payload wins.
func (p *PostgresClient) InsertBar(ctx context.Context, record *FootprintRecord) error {
	tx := p.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "symbol"},
			{Name: "ts"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"levels", "total_vol", "max_vol"}),
	}).Create(record)

	return tx.Error
}

func (p *PostgresClient) GetBar(ctx context.Context, symbol string, ts time.Time) (*FootprintRecord, error) {
	var record FootprintRecord
	err := p.DB.WithContext(ctx).
		Where("symbol = ? AND ts = ?", symbol, ts).
		First(&record).Error

	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (p *PostgresClient) DeleteOldBars(ctx context.Context, before time.Time) error {
	return p.DB.WithContext(ctx).
		Where("ts < ?", before).
		Delete(&FootprintRecord{}).Error
}

// SaveBar converts and upserts one in-memory bar. It satisfies the session's
// persister interface.
func (p *PostgresClient) SaveBar(ctx context.Context, symbol string, bar *store.Bar) error {
	record, err := ToFootprintRecord(symbol, bar)
	if err != nil {
		return err
	}
	return p.InsertBar(ctx, record)
}

// ToFootprintRecord converts a bar and symbol into a FootprintRecord for DB
// insertion. The float price keys are re-serialized as strings for the JSON
// column.
func ToFootprintRecord(symbol string, bar *store.Bar) (*FootprintRecord, error) {
	levels := make(map[string]store.PriceLevel, len(bar.Levels))
	for p, lv := range bar.Levels {
		levels[strconv.FormatFloat(p, 'f', -1, 64)] = lv
	}

	encoded, err := json.Marshal(levels)
	if err != nil {
		return nil, fmt.Errorf("encode levels: %w", err)
	}

	return &FootprintRecord{
		Symbol:   symbol,
		Ts:       time.UnixMilli(bar.Ts),
		Levels:   string(encoded),
		TotalVol: bar.TotalVol,
		MaxVol:   bar.MaxVol,
	}, nil
}
