package models

// CategoryRoles is the shop category whose purchases grant a guild role
const CategoryRoles = "roles"

// DefaultItemEmoji is shown for items added without an emoji
const DefaultItemEmoji = "🛍️"

// ShopItem is a purchasable catalogue entry
type ShopItem struct {
	Category    string `json:"category" db:"category"`
	Name        string `json:"name" db:"name"`
	Price       int64  `json:"price" db:"price"`
	Description string `json:"description" db:"description"`
	Emoji       string `json:"emoji" db:"emoji"`
}
