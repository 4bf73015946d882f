package repository

import (
	"context"
	"fmt"

	"guildkeeper/database"
	"guildkeeper/models"
)

// ShopRepository implements the ShopRepository interface
type ShopRepository struct {
	q queryable
}

// NewShopRepository creates a new shop repository
func NewShopRepository(db *database.DB) *ShopRepository {
	return &ShopRepository{q: db.Pool}
}

// LoadAll returns every catalogue item in insertion order
func (r *ShopRepository) LoadAll(ctx context.Context) ([]*models.ShopItem, error) {
	query := `
		SELECT category, name, price, description, emoji
		FROM shop_items
		ORDER BY id
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query shop items: %w", err)
	}
	defer rows.Close()

	var items []*models.ShopItem
	for rows.Next() {
		var item models.ShopItem
		if err := rows.Scan(&item.Category, &item.Name, &item.Price, &item.Description, &item.Emoji); err != nil {
			return nil, fmt.Errorf("failed to scan shop item: %w", err)
		}
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating shop items: %w", err)
	}
	return items, nil
}

// Upsert inserts or replaces an item identified by category and case-insensitive name
func (r *ShopRepository) Upsert(ctx context.Context, item *models.ShopItem) error {
	query := `
		INSERT INTO shop_items (category, name, price, description, emoji)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (category, LOWER(name)) DO UPDATE SET
			name = EXCLUDED.name,
			price = EXCLUDED.price,
			description = EXCLUDED.description,
			emoji = EXCLUDED.emoji
	`

	_, err := r.q.Exec(ctx, query, item.Category, item.Name, item.Price, item.Description, item.Emoji)
	if err != nil {
		return fmt.Errorf("failed to upsert shop item %s/%s: %w", item.Category, item.Name, err)
	}
	return nil
}
