package model

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID              string `json:"id"`
	Username        string `json:"username"`
	HashedPassword  string `json:"-"`
	DisplayName     string `json:"display_name"`
	NameChangesLeft int    `json:"name_changes_left"`
	Role            string `json:"role"`

	// Aggregate judging stats, derived from the submission history. The judge
	// recomputes them whenever one of the user's submissions is accepted.
	TotalScore     int `json:"total_score"`
	ProblemsSolved int `json:"problems_solved"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
