package cards

// Card is one trading card as returned by the card API.
// Selection filters on the embedded attributes; the API itself is queried
// per set only.
type Card struct {
	ID      string     `json:"id"`
	Name    string     `json:"name"`
	Number  string     `json:"number"`
	SetCode string     `json:"setCode"`
	SetName string     `json:"setName"`
	Rarity  string     `json:"rarity"`
	Rank    int        `json:"rank"` // popularity rank, lower is more popular
	Frame   string     `json:"frame"`
	Images  CardImages `json:"images"`
}

// CardImages holds the image URL variants for a card
type CardImages struct {
	Small string `json:"small"`
	Large string `json:"large"`
}

// ImageURL returns the best available image variant
func (c *Card) ImageURL() string {
	if c.Images.Large != "" {
		return c.Images.Large
	}
	return c.Images.Small
}

// Filter is the attribute predicate applied to the fetched card list
type Filter struct {
	SetCode string // required: which set to query
	Frame   string // optional: visual frame tag ("full_art", "classic", ...)
	MaxRank int    // optional: only cards at or below this popularity rank
}

// Matches reports whether the card passes the filter
func (f Filter) Matches(c *Card) bool {
	if f.Frame != "" && c.Frame != f.Frame {
		return false
	}
	if f.MaxRank > 0 && (c.Rank == 0 || c.Rank > f.MaxRank) {
		return false
	}
	return true
}
