package models

// Guess records one finished or abandoned round of a player.
// Guesser references users.id.
type Guess struct {
	ID         int64 `db:"id" json:"id"`
	Guesser    int64 `db:"guesser" json:"guesser"`
	NumGuesses int   `db:"num_guesses" json:"num_guesses"`
	Finished   bool  `db:"finished" json:"finished"`
}
