package service

import (
	"context"
	"sort"

	"guildkeeper/events"
	"guildkeeper/models"

	log "github.com/sirupsen/logrus"
)

// QuarantineService tracks users confined to a quarantine channel
type QuarantineService struct {
	state *State
}

// NewQuarantineService creates a new quarantine service
func NewQuarantineService(state *State) *QuarantineService {
	return &QuarantineService{state: state}
}

// Get returns a copy of the quarantine of a user in a guild
func (s *QuarantineService) Get(guildID, userID string) (*models.Quarantine, bool) {
	var q *models.Quarantine
	s.state.view(func() {
		if existing, ok := s.state.quarantines[guildID][userID]; ok {
			copied := *existing
			q = &copied
		}
	})
	return q, q != nil
}

// Quarantine records a quarantine. It fails if the user is already quarantined in the guild.
func (s *QuarantineService) Quarantine(ctx context.Context, q *models.Quarantine) error {
	record := *q
	if record.QuarantinedAt.IsZero() {
		record.QuarantinedAt = s.state.Now()
	}

	err := s.state.update(ctx, func(tx EventPublisher) error {
		if _, exists := s.state.quarantines[record.GuildID][record.UserID]; exists {
			return ErrAlreadyQuarantined
		}
		s.state.putQuarantineLocked(&record)
		s.state.logStoreError(s.state.store.Quarantines().Upsert(ctx, &record), "quarantine", log.Fields{
			"guild_id": record.GuildID,
			"user_id":  record.UserID,
		})
		tx.Publish(events.QuarantineChangeEvent{
			GuildID:     record.GuildID,
			UserID:      record.UserID,
			ChannelID:   record.ChannelID,
			Quarantined: true,
		})
		return nil
	})
	if err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"guild_id":   record.GuildID,
		"user_id":    record.UserID,
		"channel_id": record.ChannelID,
		"by":         record.QuarantinedBy,
	}).Info("User quarantined")
	return nil
}

// Release removes a quarantine and returns the removed record
func (s *QuarantineService) Release(ctx context.Context, guildID, userID string) (*models.Quarantine, error) {
	var released *models.Quarantine

	err := s.state.update(ctx, func(tx EventPublisher) error {
		existing, ok := s.state.quarantines[guildID][userID]
		if !ok {
			return ErrNotQuarantined
		}
		delete(s.state.quarantines[guildID], userID)
		if len(s.state.quarantines[guildID]) == 0 {
			delete(s.state.quarantines, guildID)
		}
		s.state.logStoreError(s.state.store.Quarantines().Delete(ctx, guildID, userID), "quarantine removal", log.Fields{
			"guild_id": guildID,
			"user_id":  userID,
		})
		tx.Publish(events.QuarantineChangeEvent{
			GuildID:   guildID,
			UserID:    userID,
			ChannelID: existing.ChannelID,
		})
		copied := *existing
		released = &copied
		return nil
	})
	if err != nil {
		return nil, err
	}
	return released, nil
}

// List returns a guild's quarantines, oldest first
func (s *QuarantineService) List(guildID string) []models.Quarantine {
	var list []models.Quarantine
	s.state.view(func() {
		for _, q := range s.state.quarantines[guildID] {
			list = append(list, *q)
		}
	})
	sort.Slice(list, func(i, j int) bool { return list[i].QuarantinedAt.Before(list[j].QuarantinedAt) })
	return list
}

// ChannelOwner returns the quarantined user a channel belongs to
func (s *QuarantineService) ChannelOwner(guildID, channelID string) (string, bool) {
	var owner string
	s.state.view(func() {
		for userID, q := range s.state.quarantines[guildID] {
			if q.ChannelID == channelID {
				owner = userID
				return
			}
		}
	})
	return owner, owner != ""
}

// Confined reports whether a message from userID in channelID must be removed:
// the user is quarantined in the guild and the channel is not their quarantine channel.
func (s *QuarantineService) Confined(guildID, userID, channelID string) bool {
	q, ok := s.Get(guildID, userID)
	return ok && q.ChannelID != channelID
}
