package domain

// Domain contains core models and interfaces.

// Post is a JSONPlaceholder post as held in memory.
type Post struct {
	ID              string `json:"id"`
	UserID          string `json:"userId"`
	Title           string `json:"title"`
	Body            string `json:"body"`
	CreatedManually bool   `json:"isCreatedManually"`
}

// Draft carries the user-editable fields of a post.
type Draft struct {
	UserID string
	Title  string
	Body   string
}
