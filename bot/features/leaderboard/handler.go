package leaderboard

import (
	"bytes"
	"fmt"
	"strings"

	"guildkeeper/bot/common"

	"github.com/bwmarrin/discordgo"
)

func (f *Feature) handleRich(inv *common.Invocation) error {
	entries, rank := f.economy.Leaderboard(inv.AuthorID(), size)
	if len(entries) == 0 {
		inv.ReplyEmbed(common.NewEmbed("🏆 Richest Users",
			fmt.Sprintf("No one has any money yet! Use `%sdaily` or `%swork` to get started.", inv.Prefix, inv.Prefix),
			common.ColorGold))
		return nil
	}

	embed := common.NewEmbed("🏆 Richest Users", "Total wealth (wallet + bank)", common.ColorGold)
	for _, entry := range entries {
		common.AddField(embed,
			strings.TrimSpace(fmt.Sprintf("%s %d. %s", common.Medal(entry.Rank, ""), entry.Rank, f.names.DisplayName(inv.GuildID(), entry.UserID))),
			fmt.Sprintf("**%s**", common.FormatMoney(entry.Total)),
			false)
	}
	common.SetFooter(embed, f.footer(inv, rank))
	inv.ReplyEmbed(embed)
	return nil
}

func (f *Feature) footer(inv *common.Invocation, rank int) string {
	if rank == 0 {
		return fmt.Sprintf("You're not on the leaderboard yet! Use %sdaily to get started", inv.Prefix)
	}
	return fmt.Sprintf("Your rank: #%d with %s", rank, common.FormatMoney(f.economy.Balance(inv.AuthorID()).Total()))
}

func (f *Feature) handleCard(inv *common.Invocation) error {
	entries, rank := f.economy.Leaderboard(inv.AuthorID(), size)
	if len(entries) == 0 {
		return common.NewBotError("Error", "No one has any money yet! Use `%sdaily` or `%swork` to get started.", inv.Prefix, inv.Prefix)
	}

	rows := make([]CardRow, len(entries))
	for i, entry := range entries {
		rows[i] = CardRow{
			Rank:   entry.Rank,
			Name:   f.names.DisplayName(inv.GuildID(), entry.UserID),
			Wallet: entry.Wallet,
			Bank:   entry.Bank,
			Total:  entry.Total,
			Self:   entry.UserID == inv.AuthorID(),
		}
	}
	png, err := f.card.Generate(rows)
	if err != nil {
		return fmt.Errorf("failed to render leaderboard card: %w", err)
	}

	_, err = inv.Messenger.ChannelMessageSendComplex(inv.ChannelID(), &discordgo.MessageSend{
		Content: f.footer(inv, rank),
		Files: []*discordgo.File{{
			Name:        "leaderboard.png",
			ContentType: "image/png",
			Reader:      bytes.NewReader(png),
		}},
	})
	if err != nil {
		return fmt.Errorf("failed to send leaderboard card: %w", err)
	}
	return nil
}
