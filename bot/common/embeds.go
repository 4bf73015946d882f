package common

import (
	"github.com/bwmarrin/discordgo"
)

// Embed colours
const (
	ColorSuccess = 0x2ECC71
	ColorError   = 0xE74C3C
	ColorWarning = 0xE67E22
	ColorInfo    = 0x3498DB
	ColorGold    = 0xF1C40F
	ColorPurple  = 0x9B59B6
	ColorMuted   = 0x607D8B
)

// NewEmbed creates an embed with a title, description and colour
func NewEmbed(title, description string, color int) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       color,
	}
}

// AddField appends a field to an embed and returns it for chaining
func AddField(embed *discordgo.MessageEmbed, name, value string, inline bool) *discordgo.MessageEmbed {
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:   name,
		Value:  value,
		Inline: inline,
	})
	return embed
}

// SetFooter sets the footer text of an embed
func SetFooter(embed *discordgo.MessageEmbed, text string) *discordgo.MessageEmbed {
	embed.Footer = &discordgo.MessageEmbedFooter{Text: text}
	return embed
}

// ErrorEmbed builds the embed shown for a failed command
func ErrorEmbed(err *BotError) *discordgo.MessageEmbed {
	return NewEmbed("❌ "+err.Title, err.Message, ColorError)
}
