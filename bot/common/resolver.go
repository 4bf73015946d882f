package common

import (
	"time"

	"github.com/bwmarrin/discordgo"
	lru "github.com/hashicorp/golang-lru"
	log "github.com/sirupsen/logrus"
)

// NameFetcher looks up the display name of a guild member
type NameFetcher func(guildID, userID string) (string, error)

// UserResolver caches member display names for leaderboards and scoreboards
type UserResolver struct {
	cache *lru.Cache
	fetch NameFetcher
	ttl   time.Duration
	now   func() time.Time
}

type cachedName struct {
	name      string
	fetchedAt time.Time
}

// NewUserResolver creates a resolver holding up to size names for ttl
func NewUserResolver(size int, ttl time.Duration, fetch NameFetcher) *UserResolver {
	cache, err := lru.New(size)
	if err != nil {
		log.WithError(err).Warn("Invalid name cache size, using 256")
		cache, _ = lru.New(256)
	}
	return &UserResolver{
		cache: cache,
		fetch: fetch,
		ttl:   ttl,
		now:   time.Now,
	}
}

// DisplayName returns the member's display name, or a fallback naming the id
func (r *UserResolver) DisplayName(guildID, userID string) string {
	key := guildID + ":" + userID
	if v, ok := r.cache.Get(key); ok {
		entry := v.(cachedName)
		if r.now().Sub(entry.fetchedAt) < r.ttl {
			return entry.name
		}
	}

	name, err := r.fetch(guildID, userID)
	if err != nil || name == "" {
		log.WithFields(log.Fields{
			"guild_id": guildID,
			"user_id":  userID,
		}).WithError(err).Debug("Failed to resolve display name")
		return "User " + userID
	}

	r.cache.Add(key, cachedName{name: name, fetchedAt: r.now()})
	return name
}

// Forget drops a cached name, e.g. after a member update
func (r *UserResolver) Forget(guildID, userID string) {
	r.cache.Remove(guildID + ":" + userID)
}

// SessionNameFetcher resolves names from the session state, falling back to the REST API
func SessionNameFetcher(s *discordgo.Session) NameFetcher {
	return func(guildID, userID string) (string, error) {
		if guildID != "" {
			if member, err := s.State.Member(guildID, userID); err == nil {
				return member.DisplayName(), nil
			}
			if member, err := s.GuildMember(guildID, userID); err == nil {
				return member.DisplayName(), nil
			}
		}
		user, err := s.User(userID)
		if err != nil {
			return "", err
		}
		return user.DisplayName(), nil
	}
}
