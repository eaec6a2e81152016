package model

type LeaderboardEntry struct {
	Rank           int    `json:"rank"`
	UserID         string `json:"user_id"`
	DisplayName    string `json:"display_name"`
	TotalScore     int    `json:"total_score"`
	ProblemsSolved int    `json:"problems_solved"`
}
