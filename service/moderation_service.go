package service

import (
	"context"
	"sort"
	"time"

	"guildkeeper/events"
	"guildkeeper/models"

	log "github.com/sirupsen/logrus"
)

// DefaultMuteDuration applies when a mute command gives no duration
const DefaultMuteDuration = 10 * time.Minute

// ModerationService implements mutes, warnings and AFK status
type ModerationService struct {
	state *State
}

// NewModerationService creates a new moderation service
func NewModerationService(state *State) *ModerationService {
	return &ModerationService{state: state}
}

// Mute records a timed mute; the caller applies the Muted role
func (s *ModerationService) Mute(ctx context.Context, guildID, userID string, duration time.Duration, reason string) (*models.Mute, error) {
	if duration <= 0 {
		return nil, ErrInvalidDuration
	}

	var mute *models.Mute
	err := s.state.update(ctx, func(tx EventPublisher) error {
		mute = &models.Mute{
			UserID:   userID,
			GuildID:  guildID,
			UnmuteAt: s.state.Now().Add(duration),
			Reason:   reason,
		}
		s.state.mutes[userID] = mute
		s.state.logStoreError(s.state.store.Mutes().Upsert(ctx, mute), "mute", log.Fields{"user_id": userID})
		return nil
	})
	if err != nil {
		return nil, err
	}
	copied := *mute
	return &copied, nil
}

// Unmute removes a user's mute record; it reports whether one existed
func (s *ModerationService) Unmute(ctx context.Context, userID string) bool {
	var existed bool
	_ = s.state.update(ctx, func(tx EventPublisher) error {
		_, existed = s.state.mutes[userID]
		if existed {
			delete(s.state.mutes, userID)
			s.state.logStoreError(s.state.store.Mutes().Delete(ctx, userID), "mute removal", log.Fields{"user_id": userID})
		}
		return nil
	})
	return existed
}

// GetMute returns a copy of a user's active mute
func (s *ModerationService) GetMute(userID string) (*models.Mute, bool) {
	var mute *models.Mute
	s.state.view(func() {
		if m, ok := s.state.mutes[userID]; ok {
			copied := *m
			mute = &copied
		}
	})
	return mute, mute != nil
}

// ExpireMutes removes every mute whose unmute time has passed and returns them.
// Records without a guild are dropped as invalid.
func (s *ModerationService) ExpireMutes(ctx context.Context) ([]*models.Mute, error) {
	var expired []*models.Mute

	err := s.state.update(ctx, func(tx EventPublisher) error {
		now := s.state.Now()
		for userID, mute := range s.state.mutes {
			invalid := mute.GuildID == "" || mute.UnmuteAt.IsZero()
			if !invalid && !mute.Expired(now) {
				continue
			}
			delete(s.state.mutes, userID)
			s.state.logStoreError(s.state.store.Mutes().Delete(ctx, userID), "mute removal", log.Fields{"user_id": userID})
			if invalid {
				log.WithField("user_id", userID).Warn("Dropped invalid mute record")
				continue
			}
			copied := *mute
			expired = append(expired, &copied)
			tx.Publish(events.MuteExpiredEvent{UserID: userID, GuildID: mute.GuildID})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(expired, func(i, j int) bool { return expired[i].UnmuteAt.Before(expired[j].UnmuteAt) })
	return expired, nil
}

// Warn increments a user's warning count and returns the new count
func (s *ModerationService) Warn(ctx context.Context, userID string) int {
	var count int
	_ = s.state.update(ctx, func(tx EventPublisher) error {
		s.state.warnings[userID]++
		count = s.state.warnings[userID]
		s.state.logStoreError(s.state.store.Warnings().Upsert(ctx, userID, count), "warning", log.Fields{"user_id": userID})
		return nil
	})
	return count
}

// Warnings returns a user's warning count
func (s *ModerationService) Warnings(userID string) int {
	var count int
	s.state.view(func() { count = s.state.warnings[userID] })
	return count
}

// SetAFK marks a user as away
func (s *ModerationService) SetAFK(ctx context.Context, userID, reason string) *models.AFK {
	afk := &models.AFK{UserID: userID, Reason: reason}
	_ = s.state.update(ctx, func(tx EventPublisher) error {
		afk.Since = s.state.Now()
		s.state.afk[userID] = afk
		s.state.logStoreError(s.state.store.AFK().Upsert(ctx, afk), "afk", log.Fields{"user_id": userID})
		return nil
	})
	copied := *afk
	return &copied
}

// ClearAFK removes a user's AFK status and reports how long they were away
func (s *ModerationService) ClearAFK(ctx context.Context, userID string) (time.Duration, bool) {
	var away time.Duration
	var cleared bool
	_ = s.state.update(ctx, func(tx EventPublisher) error {
		afk, ok := s.state.afk[userID]
		if !ok {
			return nil
		}
		cleared = true
		away = s.state.Now().Sub(afk.Since)
		delete(s.state.afk, userID)
		s.state.logStoreError(s.state.store.AFK().Delete(ctx, userID), "afk removal", log.Fields{"user_id": userID})
		return nil
	})
	return away, cleared
}

// GetAFK returns a copy of a user's AFK status
func (s *ModerationService) GetAFK(userID string) (*models.AFK, bool) {
	var afk *models.AFK
	s.state.view(func() {
		if a, ok := s.state.afk[userID]; ok {
			copied := *a
			afk = &copied
		}
	})
	return afk, afk != nil
}
