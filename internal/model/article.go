package model

// Article is a single headline as returned by the news API.
// Every field is a plain string; absent upstream values are stored as "".
type Article struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	ImageURL    string `json:"image_url"`
	PublishedAt string `json:"published_at"`
	Source      string `json:"source"`
}
