package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"guildkeeper/events"
	"guildkeeper/models"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	// TriviaRoundTimeout is how long a round waits for its first correct answer
	TriviaRoundTimeout = 60 * time.Second
	// TriviaNextRoundDelay separates the end of a round from the next question
	TriviaNextRoundDelay = 3 * time.Second
)

// TriviaPoints awarded to the first, second and third correct answers
var TriviaPoints = []int64{3, 2, 1}

// TriviaRound is a snapshot of the question being asked
type TriviaRound struct {
	GuildID   string
	ChannelID string
	SessionID string
	Mode      models.TriviaMode
	Continent string
	Number    int
	Country   models.Country
}

// TriviaAnnouncer is notified of rounds driven by timers
type TriviaAnnouncer interface {
	RoundStarted(round TriviaRound)
	RoundTimedOut(round TriviaRound)
}

// GuessResult describes a correct answer
type GuessResult struct {
	Round  TriviaRound
	Place  int
	Points int64
	Total  int64
}

// ScoreEntry is one row of the trivia leaderboard
type ScoreEntry struct {
	Rank   int
	UserID string
	Score  int64
}

type triviaGame struct {
	sessionID string
	guildID   string
	channelID string
	mode      models.TriviaMode
	continent string
	paused    bool
	round     int
	current   *models.Country
	winners   []string
	timer     Timer
}

func (g *triviaGame) snapshot() TriviaRound {
	r := TriviaRound{
		GuildID:   g.guildID,
		ChannelID: g.channelID,
		SessionID: g.sessionID,
		Mode:      g.mode,
		Continent: g.continent,
		Number:    g.round,
	}
	if g.current != nil {
		r.Country = *g.current
	}
	return r
}

func (g *triviaGame) stopTimer() {
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
}

// TriviaService runs one country trivia game per guild
type TriviaService struct {
	state     *State
	countries Countries

	mu        sync.Mutex
	games     map[string]*triviaGame
	announcer TriviaAnnouncer
}

// NewTriviaService creates a new trivia service over a country dataset
func NewTriviaService(state *State, countries Countries) *TriviaService {
	return &TriviaService{
		state:     state,
		countries: countries,
		games:     make(map[string]*triviaGame),
	}
}

// SetAnnouncer registers the receiver of timer-driven round messages
func (s *TriviaService) SetAnnouncer(announcer TriviaAnnouncer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.announcer = announcer
}

// Continents returns the playable continents
func (s *TriviaService) Continents() []string {
	return s.countries.Continents()
}

// ParseTriviaMode validates a game type
func ParseTriviaMode(mode string) (models.TriviaMode, error) {
	switch models.TriviaMode(strings.ToLower(strings.TrimSpace(mode))) {
	case models.TriviaModeFlag:
		return models.TriviaModeFlag, nil
	case models.TriviaModeCapital:
		return models.TriviaModeCapital, nil
	}
	return "", ErrInvalidTriviaMode
}

// Start begins a game in a channel and returns its first round.
// Later rounds are delivered through the announcer.
func (s *TriviaService) Start(guildID, channelID, mode, continent string) (TriviaRound, error) {
	triviaMode, err := ParseTriviaMode(mode)
	if err != nil {
		return TriviaRound{}, err
	}
	key, ok := s.countries.Lookup(continent)
	if !ok {
		return TriviaRound{}, ErrUnknownContinent
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.games[guildID]; exists {
		return TriviaRound{}, ErrGameActive
	}
	game := &triviaGame{
		sessionID: uuid.New().String(),
		guildID:   guildID,
		channelID: channelID,
		mode:      triviaMode,
		continent: key,
	}
	s.games[guildID] = game

	log.WithFields(log.Fields{
		"guild_id":  guildID,
		"session":   game.sessionID,
		"mode":      triviaMode,
		"continent": key,
	}).Info("Trivia game started")
	return s.startRoundLocked(game), nil
}

// startRoundLocked asks a new random question and arms the round timeout
func (s *TriviaService) startRoundLocked(game *triviaGame) TriviaRound {
	pool := s.countries[game.continent]
	country := pool[s.state.rng.Intn(len(pool))]

	game.stopTimer()
	game.round++
	game.current = &country
	game.winners = nil

	session, round := game.sessionID, game.round
	game.timer = s.state.clock.AfterFunc(TriviaRoundTimeout, func() {
		s.timeout(game.guildID, session, round)
	})
	return game.snapshot()
}

// liveGameLocked returns the game if it is still the given session and round and not paused
func (s *TriviaService) liveGameLocked(guildID, session string, round int) *triviaGame {
	game, ok := s.games[guildID]
	if !ok || game.sessionID != session || game.round != round || game.paused {
		return nil
	}
	return game
}

func (s *TriviaService) timeout(guildID, session string, round int) {
	s.mu.Lock()
	game := s.liveGameLocked(guildID, session, round)
	if game == nil || len(game.winners) > 0 || game.current == nil {
		s.mu.Unlock()
		return
	}
	revealed := game.snapshot()
	game.current = nil
	game.timer = s.state.clock.AfterFunc(TriviaNextRoundDelay, func() {
		s.advance(guildID, session, round)
	})
	announcer := s.announcer
	s.mu.Unlock()

	if announcer != nil {
		announcer.RoundTimedOut(revealed)
	}
}

func (s *TriviaService) advance(guildID, session string, round int) {
	s.mu.Lock()
	game := s.liveGameLocked(guildID, session, round)
	if game == nil {
		s.mu.Unlock()
		return
	}
	next := s.startRoundLocked(game)
	announcer := s.announcer
	s.mu.Unlock()

	if announcer != nil {
		announcer.RoundStarted(next)
	}
}

// IsCorrect reports whether an answer matches the country for the mode
func IsCorrect(mode models.TriviaMode, country models.Country, answer string) bool {
	answer = strings.ToLower(strings.TrimSpace(answer))
	if answer == "" {
		return false
	}
	if answer == strings.ToLower(country.Capital) {
		return true
	}
	return mode == models.TriviaModeFlag && answer == strings.ToLower(country.Country)
}

// Guess checks a chat message against the current round. It returns false when the
// message is not a scoring answer: wrong, off-channel, paused, or already placed.
func (s *TriviaService) Guess(ctx context.Context, guildID, channelID, userID, text string) (*GuessResult, bool) {
	s.mu.Lock()
	game, ok := s.games[guildID]
	if !ok || game.paused || game.current == nil || game.channelID != channelID {
		s.mu.Unlock()
		return nil, false
	}
	if !IsCorrect(game.mode, *game.current, text) {
		s.mu.Unlock()
		return nil, false
	}
	for _, winner := range game.winners {
		if winner == userID {
			s.mu.Unlock()
			return nil, false
		}
	}

	game.winners = append(game.winners, userID)
	place := len(game.winners)
	var points int64
	if place <= len(TriviaPoints) {
		points = TriviaPoints[place-1]
	}
	if place == 1 {
		game.stopTimer()
		session, round := game.sessionID, game.round
		game.timer = s.state.clock.AfterFunc(TriviaNextRoundDelay, func() {
			s.advance(guildID, session, round)
		})
	}
	result := &GuessResult{Round: game.snapshot(), Place: place, Points: points}
	s.mu.Unlock()

	_ = s.state.update(ctx, func(tx EventPublisher) error {
		if points > 0 {
			s.state.triviaScores[userID] += points
			s.state.logStoreError(s.state.store.TriviaScores().Upsert(ctx, userID, s.state.triviaScores[userID]),
				"trivia score", log.Fields{"user_id": userID})
		}
		result.Total = s.state.triviaScores[userID]
		tx.Publish(events.TriviaAnswerEvent{GuildID: guildID, UserID: userID, Place: place, Points: points})
		return nil
	})
	return result, true
}

// Pause stops the current round; guesses are ignored until Resume
func (s *TriviaService) Pause(guildID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	game, ok := s.games[guildID]
	if !ok {
		return ErrNoActiveGame
	}
	if game.paused {
		return ErrGamePaused
	}
	game.paused = true
	game.current = nil
	game.stopTimer()
	return nil
}

// Resume unpauses a game and returns the new round
func (s *TriviaService) Resume(guildID string) (TriviaRound, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	game, ok := s.games[guildID]
	if !ok {
		return TriviaRound{}, ErrNoActiveGame
	}
	if !game.paused {
		return TriviaRound{}, ErrGameNotPaused
	}
	game.paused = false
	return s.startRoundLocked(game), nil
}

// Stop ends the game of a guild
func (s *TriviaService) Stop(guildID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	game, ok := s.games[guildID]
	if !ok {
		return ErrNoActiveGame
	}
	game.stopTimer()
	delete(s.games, guildID)

	log.WithFields(log.Fields{"guild_id": guildID, "rounds": game.round}).Info("Trivia game stopped")
	return nil
}

// Active reports whether a guild has a running game
func (s *TriviaService) Active(guildID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.games[guildID]
	return ok
}

// StopAll ends every running game, used on shutdown
func (s *TriviaService) StopAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for guildID, game := range s.games {
		game.stopTimer()
		delete(s.games, guildID)
	}
}

// Scores returns the trivia leaderboard
func (s *TriviaService) Scores(limit int) []ScoreEntry {
	var entries []ScoreEntry
	s.state.view(func() {
		for userID, score := range s.state.triviaScores {
			if score > 0 {
				entries = append(entries, ScoreEntry{UserID: userID, Score: score})
			}
		}
	})
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].UserID < entries[j].UserID
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}
