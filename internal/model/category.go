package model

// Category groups titles by kind (film, book, music).  A title
// references at most one category; removing a category leaves its
// titles uncategorised.
type Category struct {
	ID   uint64 // categories.id
	Name string // categories.name
	Slug string // categories.slug
}

// Genre is a free-form label attached to any number of titles.
type Genre struct {
	ID   uint64 // genres.id
	Name string // genres.name
	Slug string // genres.slug
}
