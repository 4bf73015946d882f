package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"guildkeeper/database"
	"guildkeeper/models"

	"github.com/jackc/pgx/v5"
)

// AccountRepository implements the AccountRepository interface
type AccountRepository struct {
	db *database.DB
	q  queryable
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{db: db, q: db.Pool}
}

// LoadAll returns every ledger entry keyed by user id
func (r *AccountRepository) LoadAll(ctx context.Context) (map[string]*models.Account, error) {
	query := `
		SELECT user_id, wallet, bank, last_daily, last_work, owned_items, business
		FROM economy
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	accounts := make(map[string]*models.Account)
	for rows.Next() {
		var account models.Account
		var ownedJSON, businessJSON []byte
		err := rows.Scan(
			&account.UserID,
			&account.Wallet,
			&account.Bank,
			&account.LastDaily,
			&account.LastWork,
			&ownedJSON,
			&businessJSON,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}

		account.OwnedItems = make(map[string][]string)
		if len(ownedJSON) > 0 {
			if err := json.Unmarshal(ownedJSON, &account.OwnedItems); err != nil {
				return nil, fmt.Errorf("failed to unmarshal owned items of %s: %w", account.UserID, err)
			}
		}
		if len(businessJSON) > 0 {
			var business models.Business
			if err := json.Unmarshal(businessJSON, &business); err != nil {
				return nil, fmt.Errorf("failed to unmarshal business of %s: %w", account.UserID, err)
			}
			account.Business = &business
		}
		accounts[account.UserID] = &account
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accounts: %w", err)
	}

	return accounts, nil
}

// Upsert inserts or replaces the ledger entry of one user
func (r *AccountRepository) Upsert(ctx context.Context, account *models.Account) error {
	return upsertAccount(ctx, r.q, account)
}

// UpsertMany writes several ledger entries in one transaction
func (r *AccountRepository) UpsertMany(ctx context.Context, accounts []*models.Account) error {
	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		for _, account := range accounts {
			if err := upsertAccount(ctx, tx, account); err != nil {
				return err
			}
		}
		return nil
	})
}

func upsertAccount(ctx context.Context, q queryable, account *models.Account) error {
	owned := account.OwnedItems
	if owned == nil {
		owned = map[string][]string{}
	}
	ownedJSON, err := json.Marshal(owned)
	if err != nil {
		return fmt.Errorf("failed to marshal owned items: %w", err)
	}

	var businessJSON []byte
	if account.Business != nil {
		businessJSON, err = json.Marshal(account.Business)
		if err != nil {
			return fmt.Errorf("failed to marshal business: %w", err)
		}
	}

	query := `
		INSERT INTO economy (user_id, wallet, bank, last_daily, last_work, owned_items, business, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			wallet = EXCLUDED.wallet,
			bank = EXCLUDED.bank,
			last_daily = EXCLUDED.last_daily,
			last_work = EXCLUDED.last_work,
			owned_items = EXCLUDED.owned_items,
			business = EXCLUDED.business,
			updated_at = NOW()
	`

	_, err = q.Exec(ctx, query,
		account.UserID,
		account.Wallet,
		account.Bank,
		account.LastDaily,
		account.LastWork,
		ownedJSON,
		businessJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert account %s: %w", account.UserID, err)
	}

	return nil
}
