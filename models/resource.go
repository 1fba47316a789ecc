package models

// Resource kinds.
const (
	KindBook  = "books"
	KindMovie = "movies"
	KindSong  = "songs"
)

// Resource is one recommended book, movie or song.
type Resource struct {
	Title       string   `yaml:"title" json:"title"`
	Creator     string   `yaml:"creator" json:"creator"` // author, year or artist
	Description string   `yaml:"description" json:"description"`
	Image       string   `yaml:"image,omitempty" json:"image,omitempty"`
	Symptoms    []string `yaml:"symptoms" json:"symptoms"`
}

// Playlist is a curated song collection.
type Playlist struct {
	Title    string `yaml:"title" json:"title"`
	Tracks   int    `yaml:"tracks" json:"tracks"`
	Duration string `yaml:"duration" json:"duration"`
}

// Category groups resources on a listing page.
type Category struct {
	ID   string `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}

// Shelf is the content of one listing page.
type Shelf struct {
	Title       string     `yaml:"title" json:"title"`
	Description string     `yaml:"description" json:"description"`
	Items       []Resource `yaml:"items" json:"items"`
	Categories  []Category `yaml:"categories" json:"categories"`
	Playlists   []Playlist `yaml:"playlists,omitempty" json:"playlists,omitempty"`
}
