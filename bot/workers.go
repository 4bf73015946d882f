package bot

import (
	"context"
	"fmt"
	"time"

	"guildkeeper/bot/common"
	"guildkeeper/models"
	"guildkeeper/scheduler"
	"guildkeeper/service"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Scheduled task names
const (
	TaskSalaries        = "salaries"
	TaskBusinessProfits = "business_profits"
	TaskMuteExpiry      = "mute_expiry"
)

const memberPageSize = 1000

// Workers holds the periodic jobs of the bot
type Workers struct {
	scheduler  *scheduler.Scheduler
	salary     *service.SalaryService
	business   *service.BusinessService
	moderation *service.ModerationService
	// members lists the members of every guild the bot is in
	members func(ctx context.Context) ([]service.Member, error)
	// unmute lifts an expired mute in its guild
	unmute func(mute *models.Mute) error
}

// NewWorkers registers the periodic jobs on sched. The session may be nil in tests,
// in which case members and unmute must be replaced before the tasks run.
func NewWorkers(sched *scheduler.Scheduler, session *discordgo.Session, salary *service.SalaryService, business *service.BusinessService, moderation *service.ModerationService) *Workers {
	w := &Workers{
		scheduler:  sched,
		salary:     salary,
		business:   business,
		moderation: moderation,
		members:    sessionMembers(session),
		unmute:     sessionUnmute(session),
	}

	sched.Register(scheduler.Task{
		Name:      TaskSalaries,
		Period:    24 * time.Hour,
		PollEvery: time.Hour,
		Run:       w.paySalaries,
	})
	sched.Register(scheduler.Task{
		Name:      TaskBusinessProfits,
		Period:    24 * time.Hour,
		PollEvery: 12 * time.Hour,
		Run:       w.accrueProfits,
	})
	sched.Register(scheduler.Task{
		Name:      TaskMuteExpiry,
		Period:    time.Minute,
		PollEvery: time.Minute,
		Ephemeral: true,
		Run:       w.expireMutes,
	})
	return w
}

// PayNow runs the salary task immediately and returns its breakdown
func (w *Workers) PayNow(ctx context.Context) (*service.PayoutSummary, error) {
	result, err := w.scheduler.RunNow(ctx, TaskSalaries)
	if err != nil {
		return nil, err
	}
	summary := &service.PayoutSummary{Paid: result.Affected, Total: result.TotalAmount}
	if byRole, ok := result.Summary["by_role"].([]service.RolePayout); ok {
		summary.ByRole = byRole
	}
	return summary, nil
}

func (w *Workers) paySalaries(ctx context.Context, slot time.Time) (scheduler.Result, error) {
	members, err := w.members(ctx)
	if err != nil {
		return scheduler.Result{}, err
	}
	summary, err := w.salary.Pay(ctx, members)
	if err != nil {
		return scheduler.Result{}, err
	}
	return scheduler.Result{
		Affected:    summary.Paid,
		TotalAmount: summary.Total,
		Summary:     map[string]interface{}{"by_role": summary.ByRole},
	}, nil
}

func (w *Workers) accrueProfits(ctx context.Context, slot time.Time) (scheduler.Result, error) {
	summary, err := w.business.AccrueProfits(ctx)
	if err != nil {
		return scheduler.Result{}, err
	}
	return scheduler.Result{Affected: summary.Businesses, TotalAmount: summary.Total}, nil
}

func (w *Workers) expireMutes(ctx context.Context, slot time.Time) (scheduler.Result, error) {
	expired, err := w.moderation.ExpireMutes(ctx)
	if err != nil {
		return scheduler.Result{}, err
	}
	for _, mute := range expired {
		if err := w.unmute(mute); err != nil {
			log.WithError(err).WithFields(log.Fields{
				"guild_id": mute.GuildID,
				"user_id":  mute.UserID,
			}).Warn("Failed to lift expired mute")
			continue
		}
		log.WithFields(log.Fields{"guild_id": mute.GuildID, "user_id": mute.UserID}).Info("Mute expired")
	}
	return scheduler.Result{Affected: len(expired)}, nil
}

// sessionMembers pages through the members of every guild in the session state
func sessionMembers(s *discordgo.Session) func(ctx context.Context) ([]service.Member, error) {
	return func(ctx context.Context) ([]service.Member, error) {
		if s == nil || s.State == nil {
			return nil, fmt.Errorf("no gateway session")
		}
		var out []service.Member
		for _, guild := range s.State.Guilds {
			roles, err := common.GuildRoles(s, guild.ID)
			if err != nil {
				return nil, err
			}
			after := ""
			for {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
				page, err := s.GuildMembers(guild.ID, after, memberPageSize)
				if err != nil {
					return nil, fmt.Errorf("failed to list members of guild %s: %w", guild.ID, err)
				}
				for _, member := range page {
					if member.User == nil {
						continue
					}
					out = append(out, service.Member{
						UserID:    member.User.ID,
						Bot:       member.User.Bot,
						RoleNames: common.MemberRoleNames(roles, member),
					})
				}
				if len(page) < memberPageSize {
					break
				}
				after = page[len(page)-1].User.ID
			}
		}
		return out, nil
	}
}

// sessionUnmute removes the Muted role from the member of an expired mute
func sessionUnmute(s *discordgo.Session) func(mute *models.Mute) error {
	return func(mute *models.Mute) error {
		if s == nil {
			return fmt.Errorf("no gateway session")
		}
		roles, err := common.GuildRoles(s, mute.GuildID)
		if err != nil {
			return err
		}
		role := common.FindRoleByName(roles, common.MutedRoleName)
		if role == nil {
			return nil
		}
		return s.GuildMemberRoleRemove(mute.GuildID, mute.UserID, role.ID, discordgo.WithAuditLogReason("Mute expired"))
	}
}
