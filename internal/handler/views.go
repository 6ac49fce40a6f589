package handler

import (
	"time"

	"github.com/iliyamo/yamdb/internal/model"
)

// ----- response bodies -----

type slugResp struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type titleResp struct {
	ID          uint64     `json:"id"`
	Name        string     `json:"name"`
	Year        *int       `json:"year"`
	Description *string    `json:"description"`
	Rating      *float64   `json:"rating"`
	Category    *slugResp  `json:"category"`
	Genre       []slugResp `json:"genre"`
}

type reviewResp struct {
	ID      uint64    `json:"id"`
	Text    string    `json:"text"`
	Author  string    `json:"author"`
	Score   int       `json:"score"`
	PubDate time.Time `json:"pub_date"`
}

type commentResp struct {
	ID      uint64    `json:"id"`
	Text    string    `json:"text"`
	Author  string    `json:"author"`
	PubDate time.Time `json:"pub_date"`
}

type userResp struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Bio       string `json:"bio"`
	Role      string `json:"role"`
}

func categoryView(c model.Category) slugResp { return slugResp{Name: c.Name, Slug: c.Slug} }

func genreView(g model.Genre) slugResp { return slugResp{Name: g.Name, Slug: g.Slug} }

func titleView(t *model.Title) titleResp {
	out := titleResp{
		ID:          t.ID,
		Name:        t.Name,
		Year:        t.Year,
		Description: t.Description,
		Rating:      t.Rating,
		Genre:       make([]slugResp, 0, len(t.Genres)),
	}
	if t.Category != nil {
		c := categoryView(*t.Category)
		out.Category = &c
	}
	for _, g := range t.Genres {
		out.Genre = append(out.Genre, genreView(g))
	}
	return out
}

func reviewView(r *model.Review) reviewResp {
	return reviewResp{ID: r.ID, Text: r.Text, Author: r.AuthorUsername, Score: r.Score, PubDate: r.PubDate}
}

func commentView(c *model.Comment) commentResp {
	return commentResp{ID: c.ID, Text: c.Text, Author: c.AuthorUsername, PubDate: c.PubDate}
}

func userView(u *model.User) userResp {
	return userResp{
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Bio:       u.Bio,
		Role:      u.Role,
	}
}

func mapViews[M any, V any](in []M, view func(M) V) []V {
	out := make([]V, len(in))
	for i, m := range in {
		out[i] = view(m)
	}
	return out
}
