package trivia

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"guildkeeper/bot/common"
	"guildkeeper/models"
	"guildkeeper/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

func (f *Feature) handleStart(inv *common.Invocation) error {
	mode, err := inv.Arg(0)
	if err != nil {
		return err
	}
	continent, err := inv.Arg(1)
	if err != nil {
		return err
	}

	round, err := f.trivia.Start(inv.GuildID(), inv.ChannelID(), mode, continent)
	switch {
	case errors.Is(err, service.ErrGameActive):
		return common.NewBotError("Error", "A game is already running! Use `%sstopcountrygame` first.", inv.Prefix)
	case errors.Is(err, service.ErrUnknownContinent):
		return common.NewBotError("Error", "Continent not available. Choose from: %s", strings.Join(f.trivia.Continents(), ", "))
	case err != nil:
		return err
	}

	f.RoundStarted(round)

	kind, rules := "Capital Guessing", "capital of the country"
	if round.Mode == models.TriviaModeFlag {
		kind, rules = "Flag Guessing", "country or capital from flag"
	}
	inv.ReplyEmbed(common.NewEmbed(
		"🏁 Country Game Started!",
		fmt.Sprintf("**Type:** %s\n**Continent:** %s\n**Rules:** Guess the %s\n**Points:** 🥇 3pts 🥈 2pts 🥉 1pt",
			kind, round.Continent, rules),
		common.ColorInfo,
	))
	return nil
}

func (f *Feature) handlePause(inv *common.Invocation) error {
	err := f.trivia.Pause(inv.GuildID())
	if errors.Is(err, service.ErrNoActiveGame) {
		return common.NewBotError("Error", "No active game to pause!")
	}
	if err != nil {
		return err
	}
	inv.Reply(fmt.Sprintf("⏸️ Game paused! Use `%sresumegame` to continue.", inv.Prefix))
	return nil
}

func (f *Feature) handleResume(inv *common.Invocation) error {
	round, err := f.trivia.Resume(inv.GuildID())
	switch {
	case errors.Is(err, service.ErrNoActiveGame):
		return common.NewBotError("Error", "No game to resume!")
	case errors.Is(err, service.ErrGameNotPaused):
		return common.NewBotError("Error", "Game is not paused!")
	case err != nil:
		return err
	}
	inv.Reply("▶️ Game resumed!")
	f.RoundStarted(round)
	return nil
}

func (f *Feature) handleStop(inv *common.Invocation) error {
	err := f.trivia.Stop(inv.GuildID())
	if errors.Is(err, service.ErrNoActiveGame) {
		return common.NewBotError("Error", "No active game to stop!")
	}
	if err != nil {
		return err
	}
	inv.ReplyEmbed(common.NewEmbed("🛑 Game Stopped", "The country guessing game has been stopped.", common.ColorError))
	return nil
}

func (f *Feature) handleLeaderboard(inv *common.Invocation) error {
	scores := f.trivia.Scores(leaderboardSize)
	if len(scores) == 0 {
		inv.Reply(fmt.Sprintf("📊 No country game scores yet! Start a game with `%sstartcountrygame`", inv.Prefix))
		return nil
	}

	embed := common.NewEmbed("🏆 Country Game Leaderboard", "Top players in flag/capital guessing", common.ColorGold)
	for _, entry := range scores {
		name := f.names.DisplayName(inv.GuildID(), entry.UserID)
		common.AddField(embed,
			strings.TrimSpace(fmt.Sprintf("%s %d. %s", common.Medal(entry.Rank, ""), entry.Rank, name)),
			fmt.Sprintf("**%d points**", entry.Score),
			false)
	}
	inv.ReplyEmbed(embed)
	return nil
}

// HandleGuess scores a chat message against the running round and reports whether it was a correct answer
func (f *Feature) HandleGuess(ctx context.Context, m *discordgo.Message) bool {
	if m.GuildID == "" {
		return false
	}
	result, ok := f.trivia.Guess(ctx, m.GuildID, m.ChannelID, m.Author.ID, m.Content)
	if !ok {
		return false
	}
	f.send(m.ChannelID, GuessEmbed(m.Author.Mention(), result))
	return true
}

// GuessEmbed renders a correct answer
func GuessEmbed(mention string, result *service.GuessResult) *discordgo.MessageEmbed {
	country := result.Round.Country
	title := fmt.Sprintf("%s Correct!", common.Medal(result.Place, "🎯"))
	answer := fmt.Sprintf("**Capital of %s:** %s", country.Country, country.Capital)
	if result.Round.Mode == models.TriviaModeFlag {
		title += " " + country.Flag
		answer = fmt.Sprintf("**Country:** %s\n**Capital:** %s", country.Country, country.Capital)
	}

	color := common.ColorInfo
	if result.Place <= 3 {
		color = common.ColorSuccess
	}
	return common.NewEmbed(title,
		fmt.Sprintf("**%s guessed %s!**\n%s\n**Points:** +%d", mention, common.Ordinal(result.Place), answer, result.Points),
		color)
}

// RoundEmbed renders the question of a round
func RoundEmbed(round service.TriviaRound) *discordgo.MessageEmbed {
	if round.Mode == models.TriviaModeFlag {
		return common.NewEmbed("🇺🇳 Round Started!",
			fmt.Sprintf("**Guess the country or capital!**\n**Flag:** %s", round.Country.Flag),
			common.ColorInfo)
	}
	return common.NewEmbed("🏛️ Capital Guessing!",
		fmt.Sprintf("**What is the capital of:** %s?", round.Country.Country),
		common.ColorInfo)
}

// RoundStarted posts a new question
func (f *Feature) RoundStarted(round service.TriviaRound) {
	f.send(round.ChannelID, RoundEmbed(round))
}

// RoundTimedOut reveals the answer of an unanswered round
func (f *Feature) RoundTimedOut(round service.TriviaRound) {
	f.send(round.ChannelID, common.NewEmbed("⏰ Time's Up!",
		fmt.Sprintf("**Correct answer:** %s - %s", round.Country.Country, round.Country.Capital),
		common.ColorWarning))
}

func (f *Feature) send(channelID string, embed *discordgo.MessageEmbed) {
	if _, err := f.messenger.ChannelMessageSendEmbed(channelID, embed); err != nil {
		log.WithError(err).WithField("channel_id", channelID).Warn("Failed to send trivia message")
	}
}
