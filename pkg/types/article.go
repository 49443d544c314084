package types

// Article is a link to a piece of writing submitted by a member.
type Article struct {
	ID          int64         `json:"id" db:"id"`
	Title       string        `json:"title" db:"title"`
	URL         string        `json:"url" db:"url"`
	Explanation string        `json:"explanation" db:"explanation"`
	Email       string        `json:"email" db:"email"`
	DateAdded   LocalDateTime `json:"dateAdded" db:"date_added"`
}

func (a *Article) RecordKey() int64      { return a.ID }
func (a *Article) SetRecordKey(id int64) { a.ID = id }

// ArticleSchema describes how backends store articles.
var ArticleSchema = Schema[int64, *Article]{
	Table:    TableArticles,
	New:      func() *Article { return &Article{} },
	Sequence: Int64Sequence,
}
