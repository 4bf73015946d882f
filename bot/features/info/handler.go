package info

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"guildkeeper/bot/common"

	log "github.com/sirupsen/logrus"
)

func (f *Feature) handlePing(inv *common.Invocation) error {
	inv.ReplyEmbed(common.NewEmbed(
		"🏓 Pong!",
		fmt.Sprintf("**Latency:** %dms\n**Status:** Online ✅", f.latency().Milliseconds()),
		common.ColorSuccess,
	))
	return nil
}

// FormatUptime renders a duration as hours, minutes and seconds
func FormatUptime(d time.Duration) string {
	d = d.Truncate(time.Second)
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
}

func (f *Feature) handleUptime(inv *common.Invocation) error {
	embed := common.NewEmbed("🕐 Bot Uptime Stats", "", common.ColorSuccess)
	common.AddField(embed, "⏰ Online For", fmt.Sprintf("**%s**", FormatUptime(f.now().Sub(f.started))), true)
	common.AddField(embed, "🔄 Since", f.started.Format("2006-01-02 15:04:05"), true)

	stats, err := f.system()
	if err != nil {
		log.WithError(err).Debug("Failed to read system stats")
	} else {
		common.AddField(embed, "💻 Host", fmt.Sprintf("%s, up %s", stats.Platform, FormatUptime(time.Duration(stats.HostUptime)*time.Second)), false)
		common.AddField(embed, "🔥 CPU", fmt.Sprintf("%.1f%% of %d cores", stats.CPUPercent, stats.CPUs), true)
		common.AddField(embed, "🧠 Memory", fmt.Sprintf("%.1f%% (%d MB / %d MB)", stats.MemPercent, stats.MemUsed/1024/1024, stats.MemTotal/1024/1024), true)
		common.AddField(embed, "🐹 Runtime", fmt.Sprintf("%s, %d goroutines", stats.GoVersion, stats.Goroutines), true)
	}

	common.SetFooter(embed, "Requested by "+inv.Author().Username)
	inv.ReplyEmbed(embed)
	return nil
}

func (f *Feature) handleHelp(inv *common.Invocation) error {
	commands := f.catalog.Commands()

	if name := inv.OptionalArg(0, ""); name != "" {
		name = strings.TrimPrefix(strings.ToLower(name), inv.Prefix)
		for _, cmd := range commands {
			if cmd.Name != name && !slices.Contains(cmd.Aliases, name) {
				continue
			}
			desc := fmt.Sprintf("%s\n**Usage:** `%s%s %s`", cmd.Description, inv.Prefix, cmd.Name, cmd.Usage)
			if len(cmd.Aliases) > 0 {
				desc += fmt.Sprintf("\n**Aliases:** %s", strings.Join(cmd.Aliases, ", "))
			}
			inv.ReplyEmbed(common.NewEmbed("📖 "+inv.Prefix+cmd.Name, strings.TrimSpace(desc), common.ColorInfo))
			return nil
		}
		return common.UnknownCommand(inv.Prefix)
	}

	embed := common.NewEmbed("📖 Commands",
		fmt.Sprintf("Use `%shelp <command>` for details.", inv.Prefix),
		common.ColorInfo)
	var category string
	var names []string
	flush := func() {
		if len(names) > 0 {
			common.AddField(embed, category, strings.Join(names, " "), false)
		}
	}
	for _, cmd := range commands {
		if cmd.Category != category {
			flush()
			category, names = cmd.Category, nil
		}
		names = append(names, fmt.Sprintf("`%s%s`", inv.Prefix, cmd.Name))
	}
	flush()
	inv.ReplyEmbed(embed)
	return nil
}
