package handler

import (
	"time"

	"github.com/quillhub/quill/internal/models"
)

type userView struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type groupView struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

type postView struct {
	ID      int64      `json:"id"`
	Text    string     `json:"text"`
	PubDate time.Time  `json:"pub_date"`
	Author  userView   `json:"author"`
	Group   *groupView `json:"group,omitempty"`
	Image   string     `json:"image,omitempty"`
}

type commentView struct {
	ID      int64     `json:"id"`
	Text    string    `json:"text"`
	Created time.Time `json:"created"`
	Author  userView  `json:"author"`
}

func newUserView(user *models.User) userView {
	if user == nil {
		return userView{}
	}
	return userView{ID: user.ID, Username: user.Username}
}

func newGroupView(group *models.Group) groupView {
	return groupView{
		ID:          group.ID,
		Title:       group.Title,
		Slug:        group.Slug,
		Description: group.Description,
	}
}

func newPostView(post *models.Post) postView {
	view := postView{
		ID:      post.ID,
		Text:    post.Text,
		PubDate: post.PubDate,
		Author:  newUserView(post.Author),
		Image:   post.Image,
	}
	if post.Group != nil {
		group := newGroupView(post.Group)
		view.Group = &group
	}
	return view
}

func newCommentView(comment *models.Comment) commentView {
	return commentView{
		ID:      comment.ID,
		Text:    comment.Text,
		Created: comment.Created,
		Author:  newUserView(comment.Author),
	}
}

// Form descriptors stand in for the rendered HTML forms: the client gets
// the field list, labels, and help texts it needs to draw the form.

type formField struct {
	Label    string `json:"label"`
	HelpText string `json:"help_text,omitempty"`
	Required bool   `json:"required"`
}

func postFormDescriptor() map[string]formField {
	return map[string]formField{
		"text":  {Label: "Text", HelpText: "What would you like to share?", Required: true},
		"group": {Label: "Group", HelpText: "File the post under a group, if you like"},
		"image": {Label: "Image", HelpText: "An optional picture for the post"},
	}
}

func commentFormDescriptor() map[string]formField {
	return map[string]formField{
		"text": {Label: "Text", Required: true},
	}
}
