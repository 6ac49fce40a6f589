package model

// Title is a catalogued work.  Rating is never stored: repositories fill
// it with the average review score at read time and leave it nil when
// the title has no reviews.
type Title struct {
	ID          uint64    // titles.id
	Name        string    // titles.name
	Year        *int      // titles.year (nullable)
	Description *string   // titles.description (nullable)
	Category    *Category // titles.category_id joined (nullable)
	Genres      []Genre   // title_genres joined
	Rating      *float64  // AVG(reviews.score), nil without reviews
}

// TitleFilter narrows title listings.  Zero values are ignored; set
// fields are combined with AND.
type TitleFilter struct {
	Name     string // substring of titles.name
	Year     *int   // exact titles.year
	Category string // category slug
	Genre    string // genre slug
}
