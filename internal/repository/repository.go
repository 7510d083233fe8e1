package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/Jamolkhon5/clarifi/internal/ai/clarity/models"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	defaultRecentLimit = 20
	maxRecentLimit     = 100
)

var schemas = map[string]string{
	DriverPostgres: `
        CREATE TABLE IF NOT EXISTS reports (
            id VARCHAR(36) PRIMARY KEY,
            situation TEXT NOT NULL,
            context VARCHAR(32) NOT NULL,
            reality TEXT NOT NULL,
            variables TEXT NOT NULL,
            next_step TEXT NOT NULL,
            created_at BIGINT NOT NULL
        )`,
	DriverSQLite: `
        CREATE TABLE IF NOT EXISTS reports (
            id TEXT PRIMARY KEY,
            situation TEXT NOT NULL,
            context TEXT NOT NULL,
            reality TEXT NOT NULL,
            variables TEXT NOT NULL,
            next_step TEXT NOT NULL,
            created_at INTEGER NOT NULL
        )`,
}

// Repository - журнал отчетов, выданных эталонным сервером
type Repository struct {
	db  *sqlx.DB
	now func() time.Time
}

type reportRow struct {
	ID        string `db:"id"`
	Situation string `db:"situation"`
	Context   string `db:"context"`
	Reality   string `db:"reality"`
	Variables string `db:"variables"`
	NextStep  string `db:"next_step"`
	CreatedAt int64  `db:"created_at"`
}

// Open подключается к базе. Для sqlite используется одно соединение,
// иначе каждая копия ":memory:" получит свою пустую базу.
func Open(driver, dsn string) (*sqlx.DB, error) {
	if _, ok := schemas[driver]; !ok {
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("error connecting to %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	}
	return db, nil
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

func (r *Repository) Migrate(ctx context.Context) error {
	schema, ok := schemas[r.db.DriverName()]
	if !ok {
		return fmt.Errorf("unsupported driver %q", r.db.DriverName())
	}
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("error creating reports table: %w", err)
	}
	return nil
}

func (r *Repository) SaveReport(ctx context.Context, req models.AnalyzeRequest, analysis models.Analysis) (string, error) {
	variables, err := json.Marshal(analysis.Variables)
	if err != nil {
		return "", fmt.Errorf("error marshaling variables: %w", err)
	}

	id := uuid.NewString()
	query := r.db.Rebind(`
        INSERT INTO reports (id, situation, context, reality, variables, next_step, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)`)

	_, err = r.db.ExecContext(ctx, query,
		id, req.Situation, string(req.Context), analysis.Reality, string(variables), analysis.NextStep, r.now().UnixMilli())
	if err != nil {
		return "", fmt.Errorf("error saving report: %w", err)
	}
	return id, nil
}

// RecentReports возвращает последние отчеты, новые первыми
func (r *Repository) RecentReports(ctx context.Context, limit int) ([]models.Report, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}

	query := r.db.Rebind(`
        SELECT id, situation, context, reality, variables, next_step, created_at
        FROM reports
        ORDER BY created_at DESC, id
        LIMIT ?`)

	var rows []reportRow
	if err := r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("error loading reports: %w", err)
	}

	reports := make([]models.Report, 0, len(rows))
	for _, row := range rows {
		var variables []string
		if err := json.Unmarshal([]byte(row.Variables), &variables); err != nil {
			return nil, fmt.Errorf("error decoding variables of report %s: %w", row.ID, err)
		}
		reports = append(reports, models.Report{
			ID:        row.ID,
			Situation: row.Situation,
			Context:   models.Context(row.Context),
			Analysis: models.Analysis{
				Reality:   row.Reality,
				Variables: variables,
				NextStep:  row.NextStep,
			},
			CreatedAt: time.UnixMilli(row.CreatedAt).UTC(),
		})
	}
	return reports, nil
}

func (r *Repository) CountReports(ctx context.Context) (int, error) {
	var total int
	err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM reports`)
	return total, err
}
