package models

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
)

// VoteValues is the canonical set of legal vote values. It is returned in
// every SessionView so clients never hardcode it. "?" means "don't know"
// and "coffee" requests a break.
var VoteValues = []string{"0", "1", "2", "3", "5", "8", "13", "21", "?", "coffee"}

// IsValidVoteValue reports whether v is a member of VoteValues.
func IsValidVoteValue(v string) bool {
	for _, allowed := range VoteValues {
		if v == allowed {
			return true
		}
	}
	return false
}

var ErrInvalidBetAmount = errors.New("bet amount must be a finite number")

// ParseBetAmount validates a bet amount and returns its normalized string
// form. Bets travel as strings on the wire but must parse as finite numbers.
func ParseBetAmount(s string) (string, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return "", ErrInvalidBetAmount
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return "", ErrInvalidBetAmount
	}
	return trimmed, nil
}

// Request types

type CreateSessionRequest struct {
	SessionName string `json:"session_name"`
	HostName    string `json:"host_name"`
}

type JoinSessionRequest struct {
	UserName string `json:"user_name"`
}

type AddStoryRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
}

type CastVoteRequest struct {
	ParticipantID string `json:"participant_id"`
	VoteValue     string `json:"vote_value"`
}

type CreateBetRequest struct {
	ParticipantID string `json:"participant_id"`
	Amount        string `json:"amount"`
}

type ClearVotesRequest struct {
	NextStoryID *string `json:"next_story_id,omitempty"`
}

// Response types

type CreateSessionResponse struct {
	SessionID string `json:"session_id"`
	HostID    string `json:"host_id"`
	HostName  string `json:"host_name"`
}

type JoinSessionResponse struct {
	SessionID       string `json:"session_id"`
	ParticipantID   string `json:"participant_id"`
	ParticipantName string `json:"participant_name"`
	IsHost          bool   `json:"is_host"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

// Domain types

type Session struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	CurrentStoryID *string   `json:"current_story_id,omitempty"`
	VotesRevealed  bool      `json:"votes_revealed"`
	CreatedAt      time.Time `json:"created_at"`
}

type Participant struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	IsHost    bool      `json:"is_host"`
	CreatedAt time.Time `json:"created_at"`
}

type Story struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"session_id"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

type Vote struct {
	ID            string    `json:"id"`
	StoryID       string    `json:"story_id"`
	ParticipantID string    `json:"participant_id"`
	VoteValue     string    `json:"vote_value"`
	CreatedAt     time.Time `json:"created_at"`
}

type Bet struct {
	ID            string    `json:"id"`
	StoryID       string    `json:"story_id"`
	ParticipantID string    `json:"participant_id"`
	BetValue      string    `json:"bet_value"`
	CreatedAt     time.Time `json:"created_at"`
}

// Read-path types

// VoteView is a vote joined with its submitter, as surfaced to polling
// clients. VoteValue is null until the session's votes are revealed; the
// row itself still appears so clients can render "has voted".
type VoteView struct {
	ParticipantID   string    `json:"participant_id"`
	ParticipantName string    `json:"participant_name"`
	VoteValue       *string   `json:"vote_value"`
	CreatedAt       time.Time `json:"created_at"`
}

// BetView mirrors VoteView for the bet side channel.
type BetView struct {
	ParticipantID   string    `json:"participant_id"`
	ParticipantName string    `json:"participant_name"`
	BetValue        *string   `json:"bet_value"`
	CreatedAt       time.Time `json:"created_at"`
}

// SessionView is the full snapshot clients poll to converge on session
// state. Votes and bets are scoped to the active story; both are empty
// when no story is active.
type SessionView struct {
	Session       Session       `json:"session"`
	Participants  []Participant `json:"participants"`
	Stories       []Story       `json:"stories"`
	ActiveStory   *Story        `json:"active_story,omitempty"`
	Votes         []VoteView    `json:"votes"`
	Bets          []BetView     `json:"bets"`
	AllowedValues []string      `json:"allowed_values"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
