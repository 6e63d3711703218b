package dto

import (
	"time"

	"github.com/matteo/veloclub/internal/app/models"
)

// CreatePostRequest represents the payload for creating a board post
type CreatePostRequest struct {
	Title  string `json:"title" binding:"required,min=3,max=200"`
	Body   string `json:"body" binding:"required,max=10000"`
	Pinned bool   `json:"pinned"`
}

// UpdatePostRequest represents the payload for editing a board post
type UpdatePostRequest struct {
	Title  *string `json:"title,omitempty" binding:"omitempty,min=3,max=200"`
	Body   *string `json:"body,omitempty" binding:"omitempty,max=10000"`
	Pinned *bool   `json:"pinned,omitempty"`
}

// PostResponse represents a board post in API responses
type PostResponse struct {
	ID        int64              `json:"id"`
	Title     string             `json:"title"`
	Body      string             `json:"body"`
	Pinned    bool               `json:"pinned"`
	Author    *UserBasicResponse `json:"author,omitempty"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// FromPost converts a models.Post to a PostResponse
func FromPost(post *models.Post) PostResponse {
	if post == nil {
		return PostResponse{}
	}
	resp := PostResponse{
		ID:        post.ID,
		Title:     post.Title,
		Body:      post.Body,
		Pinned:    post.Pinned,
		CreatedAt: post.CreatedAt,
		UpdatedAt: post.UpdatedAt,
	}
	if post.Author != nil {
		resp.Author = &UserBasicResponse{
			ID:        post.Author.ID,
			FirstName: post.Author.FirstName,
			LastName:  post.Author.LastName,
			Email:     post.Author.Email,
		}
	}
	return resp
}

// PostListResponse represents a paginated list of posts
type PostListResponse struct {
	Posts []PostResponse `json:"posts"`
	PaginationInfo
}
