package dto

// ApproveResponse carries the post-increment counter value.
type ApproveResponse struct {
	PostID    string `json:"post_id"`
	GoodCount int64  `json:"good_count"`
}

// CategoriesResponse lists the filter tags in button order, with the
// "all" pseudo-tag first.
type CategoriesResponse struct {
	All        string   `json:"all"`
	Categories []string `json:"categories"`
}
