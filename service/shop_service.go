package service

import (
	"context"
	"fmt"
	"strings"

	"guildkeeper/models"

	"github.com/sahilm/fuzzy"
	log "github.com/sirupsen/logrus"
)

const maxSuggestions = 3

// RoleGranter gives the buyer the guild role behind a roles-category item.
// It returns ErrAlreadyOwned if the buyer already has the role.
type RoleGranter func(item models.ShopItem) error

// ShopService implements the shop catalogue and purchases
type ShopService struct {
	state *State
}

// NewShopService creates a new shop service
func NewShopService(state *State) *ShopService {
	return &ShopService{state: state}
}

// Categories returns the catalogue categories in display order
func (s *ShopService) Categories() []string {
	var categories []string
	s.state.view(func() {
		categories = append(categories, s.state.categories...)
	})
	return categories
}

// Items returns copies of the items in a category
func (s *ShopService) Items(category string) ([]models.ShopItem, error) {
	category = strings.ToLower(category)
	var items []models.ShopItem
	var found bool
	s.state.view(func() {
		var list []*models.ShopItem
		list, found = s.state.shop[category]
		for _, item := range list {
			items = append(items, *item)
		}
	})
	if !found {
		return nil, ErrUnknownCategory
	}
	return items, nil
}

// findItemLocked looks an item up case-insensitively, suggesting close names when missing
func (s *ShopService) findItemLocked(category, name string) (*models.ShopItem, error) {
	items, ok := s.state.shop[category]
	if !ok {
		return nil, ErrUnknownCategory
	}
	names := make([]string, len(items))
	for i, item := range items {
		if strings.EqualFold(item.Name, name) {
			return item, nil
		}
		names[i] = item.Name
	}

	notFound := &ItemNotFoundError{Name: name}
	for _, match := range fuzzy.Find(name, names) {
		notFound.Suggestions = append(notFound.Suggestions, match.Str)
		if len(notFound.Suggestions) == maxSuggestions {
			break
		}
	}
	return nil, notFound
}

// Buy purchases an item from the wallet and records it as owned.
// For roles-category items grant runs before any money moves.
func (s *ShopService) Buy(ctx context.Context, userID, category, name string, grant RoleGranter) (*models.ShopItem, models.Account, error) {
	category = strings.ToLower(category)
	var bought *models.ShopItem
	var result models.Account

	err := s.state.update(ctx, func(tx EventPublisher) error {
		item, err := s.findItemLocked(category, name)
		if err != nil {
			return err
		}
		account := s.state.accountLocked(userID)
		if account.Wallet < item.Price {
			return ErrInsufficientFunds
		}
		if category == models.CategoryRoles && grant != nil {
			if err := grant(*item); err != nil {
				return err
			}
		}

		applyBalanceChange(tx, account, ReasonShopPurchase, -item.Price, 0)
		account.OwnedItems[category] = append(account.OwnedItems[category], item.Name)
		s.state.saveAccountLocked(ctx, account)

		copied := *item
		bought = &copied
		result = *account.Clone()
		return nil
	})
	if err != nil {
		return nil, models.Account{}, err
	}

	log.WithFields(log.Fields{
		"user_id":  userID,
		"category": category,
		"item":     bought.Name,
		"price":    bought.Price,
	}).Info("Shop purchase")
	return bought, result, nil
}

// Inventory returns the items a user owns grouped by category
func (s *ShopService) Inventory(userID string) map[string][]string {
	inventory := make(map[string][]string)
	s.state.view(func() {
		if account, ok := s.state.accounts[userID]; ok {
			for category, items := range account.OwnedItems {
				if len(items) > 0 {
					inventory[category] = append([]string(nil), items...)
				}
			}
		}
	})
	return inventory
}

// AddItem adds an item to a category, creating the category if needed
func (s *ShopService) AddItem(ctx context.Context, category, name string, price int64, description, emoji string) (*models.ShopItem, error) {
	category = strings.ToLower(strings.TrimSpace(category))
	name = strings.TrimSpace(name)
	if price <= 0 {
		return nil, ErrInvalidAmount
	}
	if category == "" || name == "" {
		return nil, fmt.Errorf("category and name are required: %w", ErrItemNotFound)
	}
	if emoji == "" {
		emoji = models.DefaultItemEmoji
	}

	item := &models.ShopItem{
		Category:    category,
		Name:        name,
		Price:       price,
		Description: description,
		Emoji:       emoji,
	}

	err := s.state.update(ctx, func(tx EventPublisher) error {
		for _, existing := range s.state.shop[category] {
			if strings.EqualFold(existing.Name, name) {
				return ErrDuplicateItem
			}
		}
		s.state.addCategoryLocked(category)
		s.state.shop[category] = append(s.state.shop[category], item)
		s.state.logStoreError(s.state.store.Shop().Upsert(ctx, item), "shop item", log.Fields{"item": name})
		return nil
	})
	if err != nil {
		return nil, err
	}
	copied := *item
	return &copied, nil
}

// EditItem changes an item's price and description; it returns the previous price
func (s *ShopService) EditItem(ctx context.Context, category, name string, price int64, description string) (int64, *models.ShopItem, error) {
	category = strings.ToLower(category)
	if price <= 0 {
		return 0, nil, ErrInvalidAmount
	}

	var oldPrice int64
	var edited models.ShopItem
	err := s.state.update(ctx, func(tx EventPublisher) error {
		item, err := s.findItemLocked(category, name)
		if err != nil {
			return err
		}
		oldPrice = item.Price
		item.Price = price
		item.Description = description
		s.state.logStoreError(s.state.store.Shop().Upsert(ctx, item), "shop item", log.Fields{"item": item.Name})
		edited = *item
		return nil
	})
	if err != nil {
		return 0, nil, err
	}
	return oldPrice, &edited, nil
}
