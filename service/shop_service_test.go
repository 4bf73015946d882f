package service_test

import (
	"context"
	"errors"
	"testing"

	"guildkeeper/models"
	"guildkeeper/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedShop(t *testing.T, shop *service.ShopService) {
	t.Helper()
	ctx := context.Background()
	_, err := shop.AddItem(ctx, "vehicles", "Sports Car", 50000, "Fast", "🏎️")
	require.NoError(t, err)
	_, err = shop.AddItem(ctx, "vehicles", "Bicycle", 500, "Slow", "")
	require.NoError(t, err)
	_, err = shop.AddItem(ctx, "roles", "VIP", 1000, "Shiny role", "")
	require.NoError(t, err)
}

func TestShop_CategoriesAndItems(t *testing.T) {
	env := newTestEnv(t)
	shop := service.NewShopService(env.state)
	seedShop(t, shop)

	assert.Equal(t, []string{"roles", "vehicles", "properties", "aircraft", "yachts"}, shop.Categories())

	items, err := shop.Items("Vehicles")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Sports Car", items[0].Name)
	assert.Equal(t, models.DefaultItemEmoji, items[1].Emoji)

	items, err = shop.Items("yachts")
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = shop.Items("spaceships")
	assert.ErrorIs(t, err, service.ErrUnknownCategory)
}

func TestShop_Buy(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	shop := service.NewShopService(env.state)
	seedShop(t, shop)
	env.fund(t, "u1", 1000)

	_, _, err := shop.Buy(ctx, "u1", "vehicles", "sports car", nil)
	require.ErrorIs(t, err, service.ErrInsufficientFunds)

	item, account, err := shop.Buy(ctx, "u1", "vehicles", "BICYCLE", nil)
	require.NoError(t, err)
	assert.Equal(t, "Bicycle", item.Name)
	assert.Equal(t, int64(500), account.Wallet)
	assert.Equal(t, map[string][]string{"vehicles": {"Bicycle"}}, shop.Inventory("u1"))

	_, _, err = shop.Buy(ctx, "u1", "vehicles", "Bicycl", nil)
	var notFound *service.ItemNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Contains(t, notFound.Suggestions, "Bicycle")

	_, _, err = shop.Buy(ctx, "u1", "boats", "Dinghy", nil)
	assert.ErrorIs(t, err, service.ErrUnknownCategory)
}

func TestShop_BuyRoleRunsGranterFirst(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	shop := service.NewShopService(env.state)
	seedShop(t, shop)
	env.fund(t, "u1", 5000)

	var granted []string
	grant := func(item models.ShopItem) error {
		granted = append(granted, item.Name)
		return nil
	}
	_, account, err := shop.Buy(ctx, "u1", "roles", "vip", grant)
	require.NoError(t, err)
	assert.Equal(t, []string{"VIP"}, granted)
	assert.Equal(t, int64(4000), account.Wallet)

	refuse := func(item models.ShopItem) error { return service.ErrAlreadyOwned }
	_, _, err = shop.Buy(ctx, "u1", "roles", "VIP", refuse)
	require.ErrorIs(t, err, service.ErrAlreadyOwned)
	assert.Equal(t, int64(4000), service.NewEconomyService(env.state).Balance("u1").Wallet)
	assert.Equal(t, []string{"VIP"}, shop.Inventory("u1")["roles"])
}

func TestShop_AddAndEditItem(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	shop := service.NewShopService(env.state)
	seedShop(t, shop)

	_, err := shop.AddItem(ctx, "vehicles", "bicycle", 10, "", "")
	assert.ErrorIs(t, err, service.ErrDuplicateItem)

	_, err = shop.AddItem(ctx, "vehicles", "Scooter", 0, "", "")
	assert.ErrorIs(t, err, service.ErrInvalidAmount)

	item, err := shop.AddItem(ctx, "Gadgets", "Phone", 800, "Smart", "📱")
	require.NoError(t, err)
	assert.Equal(t, "gadgets", item.Category)
	assert.Contains(t, shop.Categories(), "gadgets")

	oldPrice, edited, err := shop.EditItem(ctx, "vehicles", "bicycle", 750, "Faster now")
	require.NoError(t, err)
	assert.Equal(t, int64(500), oldPrice)
	assert.Equal(t, int64(750), edited.Price)
	assert.Equal(t, "Faster now", edited.Description)

	_, _, err = shop.EditItem(ctx, "vehicles", "Tank", 10, "")
	assert.ErrorIs(t, err, service.ErrItemNotFound)

	persisted, err := env.store.Shop().LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, persisted, 4)
	for _, p := range persisted {
		if p.Name == "Bicycle" {
			assert.Equal(t, int64(750), p.Price)
		}
	}
}
