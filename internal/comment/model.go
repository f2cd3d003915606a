// Package comment provides the visibility-scoped, threaded comment engine.
package comment

import (
	"slices"
	"time"
)

// Comment is a note on a project, or a general note when ProjectID is nil.
// An empty VisibleTo means every authenticated user may see it.
type Comment struct {
	ID         string    `json:"id"`
	AuthorID   string    `json:"authorId"`
	AuthorName string    `json:"authorName"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"createdAt"`
	ParentID   *string   `json:"parentId"`
	ProjectID  *string   `json:"projectId"`
	VisibleTo  []string  `json:"visibleTo"`
	ReadBy     []string  `json:"readBy"`
}

// NewComment is the input for posting a comment or reply.
type NewComment struct {
	Text      string   `json:"text" validate:"required"`
	ParentID  *string  `json:"parentId,omitempty"`
	ProjectID *string  `json:"projectId,omitempty"`
	VisibleTo []string `json:"visibleTo,omitempty"`
}

// Visible reports whether userID may see c.
func Visible(c *Comment, userID string) bool {
	return len(c.VisibleTo) == 0 || c.AuthorID == userID || slices.Contains(c.VisibleTo, userID)
}

// Addressed reports whether c is addressed to userID, either publicly or by
// name. Unlike Visible, authoring a restricted comment does not count.
func Addressed(c *Comment, userID string) bool {
	return len(c.VisibleTo) == 0 || slices.Contains(c.VisibleTo, userID)
}

// IsReadBy reports whether userID has read c.
func (c *Comment) IsReadBy(userID string) bool {
	return slices.Contains(c.ReadBy, userID)
}

func (c *Comment) inProject(projectID string) bool {
	return c.ProjectID != nil && *c.ProjectID == projectID
}
