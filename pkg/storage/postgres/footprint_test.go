package postgres_test

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"fpchart/config"
	"fpchart/internal/chart/store"
	"fpchart/pkg/storage/postgres"
)

// go test -v --run TestToFootprintRecord
func TestToFootprintRecord(t *testing.T) {
	bar := &store.Bar{
		Ts: 1700000000000,
		Levels: map[float64]store.PriceLevel{
			50:    {Bid: 1, Ask: 2},
			50.05: {Bid: 3, Ask: 0},
		},
		TotalVol: 6,
		MaxVol:   3,
	}

	record, err := postgres.ToFootprintRecord("NIFTY", bar)
	if err != nil {
		t.Fatal(err)
	}

	if record.Symbol != "NIFTY" {
		t.Errorf("symbol got %q", record.Symbol)
	}
	if record.Ts.UnixMilli() != 1700000000000 {
		t.Errorf("ts got %v", record.Ts)
	}
	if record.TotalVol != 6 || record.MaxVol != 3 {
		t.Errorf("volumes got %v / %v", record.TotalVol, record.MaxVol)
	}

	var levels map[string]store.PriceLevel
	if err := json.Unmarshal([]byte(record.Levels), &levels); err != nil {
		t.Fatalf("levels column is not valid JSON: %v", err)
	}
	if levels["50"].Ask != 2 || levels["50.05"].Bid != 3 {
		t.Errorf("levels round-trip got %v", levels)
	}
}

// go test -v --run ^TestPostgresInvalidDSN$
func TestPostgresInvalidDSN(t *testing.T) {
	invalidDSN := "host=invalid port=5432 user=fail password=fail dbname=fail sslmode=disable"

	_, err := postgres.NewClient(invalidDSN)
	if err == nil {
		t.Fatal("expected error for invalid DSN, got nil")
	}
}

// go test -v --run TestFootprintCRUD
//
// Needs a local database: FPCHART_PG_TEST=1 go test -v --run TestFootprintCRUD
func TestFootprintCRUD(t *testing.T) {
	if os.Getenv("FPCHART_PG_TEST") == "" {
		t.Skip("set FPCHART_PG_TEST=1 to run against a local postgres")
	}

	cfg := config.PostgresConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "yourpw",
		DBName:   "fpchart",
		SSLMode:  "disable",
		TimeZone: "UTC",
	}

	client, err := postgres.NewClient(cfg.DSN("dev"))
	if err != nil {
		t.Fatalf("failed to connect to DB: %v", err)
	}
	defer client.Close()

	ctx := context.Background()

	if err := client.AutoMigrateFootprintRecord(); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	now := time.Now().Truncate(time.Second)
	bar := &store.Bar{
		Ts:       now.UnixMilli(),
		Levels:   map[float64]store.PriceLevel{50: {Bid: 1, Ask: 2}},
		TotalVol: 3,
		MaxVol:   2,
	}

	if err := client.SaveBar(ctx, "TESTSYM", bar); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	got, err := client.GetBar(ctx, "TESTSYM", now)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.TotalVol != 3 {
		t.Errorf("unexpected record values: %+v", got)
	}

	// Upsert: same (symbol, ts) replaces the profile.
	bar.Levels[50.05] = store.PriceLevel{Bid: 4, Ask: 0}
	bar.TotalVol = 7
	if err := client.SaveBar(ctx, "TESTSYM", bar); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	got, err = client.GetBar(ctx, "TESTSYM", now)
	if err != nil {
		t.Fatalf("get after upsert failed: %v", err)
	}
	if got.TotalVol != 7 {
		t.Errorf("upsert did not replace volumes: %+v", got)
	}

	// Delete
	if err := client.DeleteOldBars(ctx, now.Add(time.Second)); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := client.GetBar(ctx, "TESTSYM", now); err == nil {
		t.Error("record still present after delete")
	}
}
