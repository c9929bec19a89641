package postgres

import "time"

// FootprintRecord is one ingested footprint bar stored for later sessions and
// backtests. Levels holds the price->{bid,ask} profile as JSON.
type FootprintRecord struct {
	ID uint `gorm:"primaryKey"`

	// unique index
	Symbol string    `gorm:"type:text;not null;index:idx_fp_symbol;index:idx_fp_symbol_ts,unique"`
	Ts     time.Time `gorm:"not null;index:idx_fp_symbol_ts,unique"`

	Levels string `gorm:"type:jsonb;not null"`

	TotalVol float64 `gorm:"type:numeric;not null"`
	MaxVol   float64 `gorm:"type:numeric;not null"`

	RecordedAt time.Time `gorm:"autoCreateTime"`
}

// TableName overrides the default table name for GORM.
func (FootprintRecord) TableName() string {
	return "footprint_record"
}
