package models

// Country is one trivia question
type Country struct {
	Country string `json:"country"`
	Capital string `json:"capital"`
	Flag    string `json:"flag"`
}

// TriviaMode selects what a round asks for
type TriviaMode string

const (
	TriviaModeFlag    TriviaMode = "flag"
	TriviaModeCapital TriviaMode = "capital"
)
