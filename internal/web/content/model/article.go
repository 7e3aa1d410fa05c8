package model

import "time"

// Attachment is an uploaded image or file referenced by an article.
type Attachment struct {
	URL     string `json:"url"`
	Name    string `json:"name"`
	Size    int64  `json:"size"`
	ImageID string `json:"imageId,omitempty"`
	FileID  string `json:"fileId,omitempty"`
}

// Article is a news or disclosure post.
type Article struct {
	Meta
	Title       string       `json:"title"`
	TitleEn     string       `json:"titleEn"`
	Content     string       `json:"content"`
	ContentEn   string       `json:"contentEn"`
	Images      []Attachment `json:"images"`
	Files       []Attachment `json:"files"`
	PublishDate string       `json:"publishDate"`
	// IsImportant pins a disclosure on top of every page.
	IsImportant bool `json:"isImportant"`
}

// DisplayDate is `publishDate` when parseable, otherwise `createdAt`.
func (a Article) DisplayDate() time.Time {
	if t := ParseDate(a.PublishDate); !t.IsZero() {
		return t
	}

	return a.CreatedTime()
}

// Attachments returns images and files together.
func (a Article) Attachments() []Attachment {
	out := make([]Attachment, 0, len(a.Images)+len(a.Files))
	out = append(out, a.Images...)
	return append(out, a.Files...)
}
