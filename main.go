package main

import (
	"fmt"
	"os"

	"newhouse-etl/config"
	"newhouse-etl/models"
	"newhouse-etl/services"
	"newhouse-etl/storage"
	"newhouse-etl/utils"
)

func main() {
	logger := utils.NewLogger()
	cfg := config.Load()

	logger.Info("=== New-House ETL starting ===")
	logger.Info("Config — input: %s | csv out: %s | workers: %d",
		cfg.InputJSONPath, cfg.CSVOutputPath, cfg.NormalizeWorkers)

	reader := storage.NewJSONReader(logger)
	rawRecords, err := reader.Read(cfg.InputJSONPath)
	if err != nil {
		logger.Error("Failed to read input: %v", err)
		os.Exit(1)
	}

	// An empty dataset is not an error: the run still produces a
	// header-only canonical CSV. Only malformed/unreadable input is fatal.
	if len(rawRecords) == 0 {
		logger.Warn("Input file contains no records — output will be header-only")
	}

	normalizer := services.NewNormalizer(logger, cfg.NormalizeWorkers)
	records := normalizer.Normalize(rawRecords)

	csvWriter, err := storage.NewCSVWriter(cfg.CSVOutputPath)
	if err != nil {
		logger.Error("Failed to create CSV writer: %v", err)
		os.Exit(1)
	}

	if err := csvWriter.Write(records); err != nil {
		logger.Error("CSV write failed: %v", err)
		_ = csvWriter.Close()
		os.Exit(1)
	}
	if err := csvWriter.Close(); err != nil {
		logger.Error("CSV close failed: %v", err)
		os.Exit(1)
	}
	logger.Info("Canonical dataset saved to %s (%d rows)", cfg.CSVOutputPath, len(records))

	// Optional sinks. The CSV above is the primary output; a sink failure is
	// logged but does not fail the run.
	if cfg.SQLiteEnabled {
		writeSQLite(cfg, logger, records)
	}
	if cfg.PostgresEnabled {
		records = writePostgres(cfg, logger, records)
	}

	statsSvc := services.NewStatsService(logger)
	report := statsSvc.Generate(records)
	statsSvc.Print(report)

	fmt.Printf("  Done. Canonical CSV → %s\n\n", cfg.CSVOutputPath)
}

func writeSQLite(cfg *config.Config, logger *utils.Logger, records []*models.Record) {
	sqliteWriter, err := storage.NewSQLiteWriter(cfg.SQLitePath)
	if err != nil {
		logger.Error("SQLite writer unavailable: %v", err)
		return
	}
	defer sqliteWriter.Close()

	if err := sqliteWriter.Write(records); err != nil {
		logger.Error("SQLite write failed: %v", err)
		return
	}
	logger.Info("Canonical dataset stored in SQLite: %s", cfg.SQLitePath)
}

// writePostgres stores records and returns the dataset as read back from
// the database, so the stats report reflects what was actually persisted.
func writePostgres(cfg *config.Config, logger *utils.Logger, records []*models.Record) []*models.Record {
	pgWriter, err := storage.NewPostgresWriter(cfg.DSN(), logger)
	if err != nil {
		logger.Error("PostgreSQL unavailable: %v", err)
		return records
	}
	defer pgWriter.Close()

	if err := pgWriter.Write(records); err != nil {
		logger.Error("PostgreSQL write failed: %v", err)
		return records
	}
	logger.Info("Canonical dataset stored in PostgreSQL (table: listings)")

	dbRecords, err := pgWriter.FetchAll()
	if err != nil {
		logger.Error("Failed to fetch records back from PostgreSQL: %v", err)
		return records
	}
	return dbRecords
}
