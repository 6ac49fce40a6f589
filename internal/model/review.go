package model

import "time"

// Review is a scored opinion about a title.  Each author may review a
// given title once.
type Review struct {
	ID             uint64    // reviews.id
	TitleID        uint64    // reviews.title_id
	AuthorID       uint64    // reviews.author_id
	AuthorUsername string    // users.username of the author
	Text           string    // reviews.text
	Score          int       // reviews.score, 1..10
	PubDate        time.Time // reviews.pub_date
}

// Comment is a reply attached to a review.
type Comment struct {
	ID             uint64    // comments.id
	ReviewID       uint64    // comments.review_id
	AuthorID       uint64    // comments.author_id
	AuthorUsername string    // users.username of the author
	Text           string    // comments.text
	PubDate        time.Time // comments.pub_date
}

// Page is a limit/offset window over a listing.
type Page struct {
	Limit  int
	Offset int
}
