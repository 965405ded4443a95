package models

// RecommendationItem は音楽レコメンドの1件。DBには保存しない
type RecommendationItem struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Mood   string `json:"mood"`
	Reason string `json:"reason"`
}
