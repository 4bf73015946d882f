// Package sqlite persists state in an embedded SQLite database through sqlx.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"guildkeeper/models"
	"guildkeeper/service"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS economy (
	user_id     TEXT PRIMARY KEY,
	wallet      INTEGER NOT NULL DEFAULT 0,
	bank        INTEGER NOT NULL DEFAULT 0,
	last_daily  DATETIME,
	last_work   DATETIME,
	owned_items TEXT NOT NULL DEFAULT '{}',
	business    TEXT
);
CREATE TABLE IF NOT EXISTS quarantines (
	guild_id       TEXT NOT NULL,
	user_id        TEXT NOT NULL,
	channel_id     TEXT NOT NULL,
	reason         TEXT NOT NULL DEFAULT '',
	quarantined_by TEXT NOT NULL DEFAULT '',
	quarantined_at DATETIME NOT NULL,
	PRIMARY KEY (guild_id, user_id)
);
CREATE TABLE IF NOT EXISTS mutes (
	user_id   TEXT PRIMARY KEY,
	guild_id  TEXT NOT NULL,
	unmute_at DATETIME NOT NULL,
	reason    TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS warnings (
	user_id TEXT PRIMARY KEY,
	count   INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS afk_users (
	user_id TEXT PRIMARY KEY,
	reason  TEXT NOT NULL DEFAULT '',
	since   DATETIME NOT NULL
);
CREATE TABLE IF NOT EXISTS shop_items (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	category    TEXT NOT NULL,
	name        TEXT NOT NULL COLLATE NOCASE,
	price       INTEGER NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	emoji       TEXT NOT NULL DEFAULT '',
	UNIQUE (category, name)
);
CREATE TABLE IF NOT EXISTS role_salaries (
	role_name TEXT PRIMARY KEY,
	amount    INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS trivia_scores (
	user_id TEXT PRIMARY KEY,
	score   INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS task_runs (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	task_name    TEXT NOT NULL,
	slot         DATETIME NOT NULL,
	started_at   DATETIME NOT NULL,
	completed_at DATETIME,
	affected     INTEGER NOT NULL DEFAULT 0,
	total_amount INTEGER NOT NULL DEFAULT 0,
	summary      TEXT,
	UNIQUE (task_name, slot)
);`

// Store is a service.Store backed by a SQLite file
type Store struct {
	db *sqlx.DB
}

// Open opens or creates the database at path and ensures the schema exists
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sqlx.Connect("sqlite3", path+"?_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Accounts() service.AccountRepository { return accountRepo{s.db} }
func (s *Store) Quarantines() service.QuarantineRepository { return quarantineRepo{s.db} }
func (s *Store) Mutes() service.MuteRepository { return muteRepo{s.db} }
func (s *Store) Warnings() service.WarningRepository { return warningRepo{s.db} }
func (s *Store) AFK() service.AFKRepository { return afkRepo{s.db} }
func (s *Store) Shop() service.ShopRepository { return shopRepo{s.db} }
func (s *Store) Salaries() service.SalaryRepository { return salaryRepo{s.db} }
func (s *Store) TriviaScores() service.TriviaScoreRepository { return scoreRepo{s.db} }
func (s *Store) TaskRuns() service.TaskRunRepository { return taskRunRepo{s.db} }

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// utc normalises times read back from the driver
func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}

type accountRow struct {
	UserID     string         `db:"user_id"`
	Wallet     int64          `db:"wallet"`
	Bank       int64          `db:"bank"`
	LastDaily  *time.Time     `db:"last_daily"`
	LastWork   *time.Time     `db:"last_work"`
	OwnedItems string         `db:"owned_items"`
	Business   sql.NullString `db:"business"`
}

func (r accountRow) account() (*models.Account, error) {
	account := models.NewAccount(r.UserID)
	account.Wallet = r.Wallet
	account.Bank = r.Bank
	account.LastDaily = utc(r.LastDaily)
	account.LastWork = utc(r.LastWork)
	if r.OwnedItems != "" {
		if err := json.Unmarshal([]byte(r.OwnedItems), &account.OwnedItems); err != nil {
			return nil, fmt.Errorf("failed to unmarshal owned items of %s: %w", r.UserID, err)
		}
	}
	if r.Business.Valid && r.Business.String != "" {
		var business models.Business
		if err := json.Unmarshal([]byte(r.Business.String), &business); err != nil {
			return nil, fmt.Errorf("failed to unmarshal business of %s: %w", r.UserID, err)
		}
		account.Business = &business
	}
	return account, nil
}

func newAccountRow(a *models.Account) (accountRow, error) {
	row := accountRow{UserID: a.UserID, Wallet: a.Wallet, Bank: a.Bank, LastDaily: a.LastDaily, LastWork: a.LastWork}

	owned := a.OwnedItems
	if owned == nil {
		owned = map[string][]string{}
	}
	raw, err := json.Marshal(owned)
	if err != nil {
		return row, fmt.Errorf("failed to marshal owned items: %w", err)
	}
	row.OwnedItems = string(raw)

	if a.Business != nil {
		raw, err := json.Marshal(a.Business)
		if err != nil {
			return row, fmt.Errorf("failed to marshal business: %w", err)
		}
		row.Business = sql.NullString{String: string(raw), Valid: true}
	}
	return row, nil
}

const upsertAccountQuery = `
	INSERT INTO economy (user_id, wallet, bank, last_daily, last_work, owned_items, business)
	VALUES (:user_id, :wallet, :bank, :last_daily, :last_work, :owned_items, :business)
	ON CONFLICT (user_id) DO UPDATE SET
		wallet = excluded.wallet,
		bank = excluded.bank,
		last_daily = excluded.last_daily,
		last_work = excluded.last_work,
		owned_items = excluded.owned_items,
		business = excluded.business`

type accountRepo struct{ db *sqlx.DB }

func (r accountRepo) LoadAll(ctx context.Context) (map[string]*models.Account, error) {
	var rows []accountRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT * FROM economy`); err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	accounts := make(map[string]*models.Account, len(rows))
	for _, row := range rows {
		account, err := row.account()
		if err != nil {
			return nil, err
		}
		accounts[account.UserID] = account
	}
	return accounts, nil
}

func (r accountRepo) Upsert(ctx context.Context, account *models.Account) error {
	row, err := newAccountRow(account)
	if err != nil {
		return err
	}
	if _, err := r.db.NamedExecContext(ctx, upsertAccountQuery, row); err != nil {
		return fmt.Errorf("failed to upsert account %s: %w", account.UserID, err)
	}
	return nil
}

func (r accountRepo) UpsertMany(ctx context.Context, accounts []*models.Account) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, account := range accounts {
		row, err := newAccountRow(account)
		if err != nil {
			return err
		}
		if _, err := tx.NamedExecContext(ctx, upsertAccountQuery, row); err != nil {
			return fmt.Errorf("failed to upsert account %s: %w", account.UserID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

type quarantineRepo struct{ db *sqlx.DB }

func (r quarantineRepo) LoadAll(ctx context.Context) ([]*models.Quarantine, error) {
	var rows []*models.Quarantine
	err := r.db.SelectContext(ctx, &rows, `
		SELECT guild_id, user_id, channel_id, reason, quarantined_by, quarantined_at
		FROM quarantines ORDER BY quarantined_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to query quarantines: %w", err)
	}
	for _, q := range rows {
		q.QuarantinedAt = q.QuarantinedAt.UTC()
	}
	return rows, nil
}

func (r quarantineRepo) Upsert(ctx context.Context, q *models.Quarantine) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO quarantines (guild_id, user_id, channel_id, reason, quarantined_by, quarantined_at)
		VALUES (:guild_id, :user_id, :channel_id, :reason, :quarantined_by, :quarantined_at)
		ON CONFLICT (guild_id, user_id) DO UPDATE SET
			channel_id = excluded.channel_id,
			reason = excluded.reason,
			quarantined_by = excluded.quarantined_by,
			quarantined_at = excluded.quarantined_at`, q)
	if err != nil {
		return fmt.Errorf("failed to upsert quarantine of %s: %w", q.UserID, err)
	}
	return nil
}

func (r quarantineRepo) Delete(ctx context.Context, guildID, userID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM quarantines WHERE guild_id = ? AND user_id = ?`, guildID, userID); err != nil {
		return fmt.Errorf("failed to delete quarantine of %s: %w", userID, err)
	}
	return nil
}

type muteRepo struct{ db *sqlx.DB }

func (r muteRepo) LoadAll(ctx context.Context) (map[string]*models.Mute, error) {
	var rows []*models.Mute
	if err := r.db.SelectContext(ctx, &rows, `SELECT user_id, guild_id, unmute_at, reason FROM mutes`); err != nil {
		return nil, fmt.Errorf("failed to query mutes: %w", err)
	}
	mutes := make(map[string]*models.Mute, len(rows))
	for _, m := range rows {
		m.UnmuteAt = m.UnmuteAt.UTC()
		mutes[m.UserID] = m
	}
	return mutes, nil
}

func (r muteRepo) Upsert(ctx context.Context, m *models.Mute) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO mutes (user_id, guild_id, unmute_at, reason)
		VALUES (:user_id, :guild_id, :unmute_at, :reason)
		ON CONFLICT (user_id) DO UPDATE SET
			guild_id = excluded.guild_id,
			unmute_at = excluded.unmute_at,
			reason = excluded.reason`, m)
	if err != nil {
		return fmt.Errorf("failed to upsert mute of %s: %w", m.UserID, err)
	}
	return nil
}

func (r muteRepo) Delete(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM mutes WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("failed to delete mute of %s: %w", userID, err)
	}
	return nil
}

type warningRepo struct{ db *sqlx.DB }

func (r warningRepo) LoadAll(ctx context.Context) (map[string]int, error) {
	var rows []struct {
		UserID string `db:"user_id"`
		Count  int    `db:"count"`
	}
	if err := r.db.SelectContext(ctx, &rows, `SELECT user_id, count FROM warnings`); err != nil {
		return nil, fmt.Errorf("failed to query warnings: %w", err)
	}
	warnings := make(map[string]int, len(rows))
	for _, row := range rows {
		warnings[row.UserID] = row.Count
	}
	return warnings, nil
}

func (r warningRepo) Upsert(ctx context.Context, userID string, count int) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO warnings (user_id, count) VALUES (?, ?)
		ON CONFLICT (user_id) DO UPDATE SET count = excluded.count`, userID, count)
	if err != nil {
		return fmt.Errorf("failed to upsert warnings of %s: %w", userID, err)
	}
	return nil
}

type afkRepo struct{ db *sqlx.DB }

func (r afkRepo) LoadAll(ctx context.Context) (map[string]*models.AFK, error) {
	var rows []*models.AFK
	if err := r.db.SelectContext(ctx, &rows, `SELECT user_id, reason, since FROM afk_users`); err != nil {
		return nil, fmt.Errorf("failed to query afk users: %w", err)
	}
	afk := make(map[string]*models.AFK, len(rows))
	for _, a := range rows {
		a.Since = a.Since.UTC()
		afk[a.UserID] = a
	}
	return afk, nil
}

func (r afkRepo) Upsert(ctx context.Context, a *models.AFK) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO afk_users (user_id, reason, since) VALUES (:user_id, :reason, :since)
		ON CONFLICT (user_id) DO UPDATE SET reason = excluded.reason, since = excluded.since`, a)
	if err != nil {
		return fmt.Errorf("failed to upsert afk status of %s: %w", a.UserID, err)
	}
	return nil
}

func (r afkRepo) Delete(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM afk_users WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("failed to delete afk status of %s: %w", userID, err)
	}
	return nil
}

type shopRepo struct{ db *sqlx.DB }

func (r shopRepo) LoadAll(ctx context.Context) ([]*models.ShopItem, error) {
	var items []*models.ShopItem
	err := r.db.SelectContext(ctx, &items, `
		SELECT category, name, price, description, emoji FROM shop_items ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query shop items: %w", err)
	}
	return items, nil
}

func (r shopRepo) Upsert(ctx context.Context, item *models.ShopItem) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO shop_items (category, name, price, description, emoji)
		VALUES (:category, :name, :price, :description, :emoji)
		ON CONFLICT (category, name) DO UPDATE SET
			name = excluded.name,
			price = excluded.price,
			description = excluded.description,
			emoji = excluded.emoji`, item)
	if err != nil {
		return fmt.Errorf("failed to upsert shop item %s/%s: %w", item.Category, item.Name, err)
	}
	return nil
}

type keyValue struct {
	Key   string `db:"k"`
	Value int64  `db:"v"`
}

func loadInt64Map(ctx context.Context, db *sqlx.DB, query, what string) (map[string]int64, error) {
	var rows []keyValue
	if err := db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", what, err)
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Key] = row.Value
	}
	return out, nil
}

type salaryRepo struct{ db *sqlx.DB }

func (r salaryRepo) LoadAll(ctx context.Context) (map[string]int64, error) {
	return loadInt64Map(ctx, r.db, `SELECT role_name AS k, amount AS v FROM role_salaries`, "role salaries")
}

func (r salaryRepo) Upsert(ctx context.Context, role string, amount int64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO role_salaries (role_name, amount) VALUES (?, ?)
		ON CONFLICT (role_name) DO UPDATE SET amount = excluded.amount`, role, amount)
	if err != nil {
		return fmt.Errorf("failed to upsert salary of role %s: %w", role, err)
	}
	return nil
}

type scoreRepo struct{ db *sqlx.DB }

func (r scoreRepo) LoadAll(ctx context.Context) (map[string]int64, error) {
	return loadInt64Map(ctx, r.db, `SELECT user_id AS k, score AS v FROM trivia_scores`, "trivia scores")
}

func (r scoreRepo) Upsert(ctx context.Context, userID string, score int64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO trivia_scores (user_id, score) VALUES (?, ?)
		ON CONFLICT (user_id) DO UPDATE SET score = excluded.score`, userID, score)
	if err != nil {
		return fmt.Errorf("failed to upsert trivia score of %s: %w", userID, err)
	}
	return nil
}

type taskRunRow struct {
	models.TaskRun
	SummaryJSON sql.NullString `db:"summary"`
}

type taskRunRepo struct{ db *sqlx.DB }

func (r taskRunRepo) GetLatest(ctx context.Context, taskName string) (*models.TaskRun, error) {
	var row taskRunRow
	err := r.db.GetContext(ctx, &row, `
		SELECT id, task_name, slot, started_at, completed_at, affected, total_amount, summary
		FROM task_runs WHERE task_name = ? ORDER BY slot DESC LIMIT 1`, taskName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest run of task %s: %w", taskName, err)
	}

	run := row.TaskRun
	run.Slot = run.Slot.UTC()
	run.StartedAt = run.StartedAt.UTC()
	run.CompletedAt = utc(run.CompletedAt)
	if row.SummaryJSON.Valid && row.SummaryJSON.String != "" {
		if err := json.Unmarshal([]byte(row.SummaryJSON.String), &run.Summary); err != nil {
			return nil, fmt.Errorf("failed to unmarshal run summary: %w", err)
		}
	}
	return &run, nil
}

func (r taskRunRepo) Create(ctx context.Context, run *models.TaskRun) error {
	res, err := r.db.ExecContext(ctx, `INSERT INTO task_runs (task_name, slot, started_at) VALUES (?, ?, ?)`,
		run.TaskName, run.Slot.UTC(), run.StartedAt.UTC())
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return service.ErrTaskRunExists
		}
		return fmt.Errorf("failed to create run of task %s: %w", run.TaskName, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read run id: %w", err)
	}
	run.ID = id
	return nil
}

func (r taskRunRepo) Complete(ctx context.Context, run *models.TaskRun) error {
	var summary sql.NullString
	if run.Summary != nil {
		raw, err := json.Marshal(run.Summary)
		if err != nil {
			return fmt.Errorf("failed to marshal run summary: %w", err)
		}
		summary = sql.NullString{String: string(raw), Valid: true}
	}
	_, err := r.db.ExecContext(ctx, `
		UPDATE task_runs SET completed_at = ?, affected = ?, total_amount = ?, summary = ?
		WHERE id = ?`, utc(run.CompletedAt), run.Affected, run.TotalAmount, summary, run.ID)
	if err != nil {
		return fmt.Errorf("failed to complete run %d of task %s: %w", run.ID, run.TaskName, err)
	}
	return nil
}
