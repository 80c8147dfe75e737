package model

// Proverb is one entry of the Bangla idiom list.
type Proverb struct {
	Phrase  string `json:"phrase"`
	Meaning string `json:"meaning"`
}

// Profile is the subset of a Bluesky actor profile the renderers need.
type Profile struct {
	Handle      string `json:"handle"`
	DisplayName string `json:"displayName"`
	Avatar      string `json:"avatar"`
}

// Wallpaper describes one Bing wallpaper-of-the-day item.
type Wallpaper struct {
	URL           string
	Copyright     string
	CopyrightLink string
	StartDate     string
	EndDate       string
	Region        string
}

// SpotlightImage describes one Windows Spotlight item.
type SpotlightImage struct {
	URL       string
	Title     string
	Copyright string
	Country   string
	Locale    string
}

// Movie is one row of the movie-of-the-day dataset CSV.
type Movie struct {
	Title       string
	ReleaseDate string
	Tagline     string
	Genres      string
	PosterPath  string
	Popularity  float64
}

// Year returns the release year of the movie, or "" when unknown.
func (m Movie) Year() string {
	if len(m.ReleaseDate) >= 4 {
		return m.ReleaseDate[:4]
	}
	return ""
}
