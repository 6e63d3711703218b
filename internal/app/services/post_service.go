package services

import (
	"context"
	"strings"

	"github.com/matteo/veloclub/internal/app/models"
	"github.com/matteo/veloclub/internal/app/models/dto"
	"github.com/matteo/veloclub/internal/app/repositories"
	"github.com/matteo/veloclub/internal/pkg/helpers"
	"github.com/rs/zerolog"
)

// PostService defines the interface for board post operations
type PostService interface {
	GetAllPosts(ctx context.Context, page, pageSize int) (*dto.PostListResponse, error)
	GetPostByID(ctx context.Context, id int64) (*dto.PostResponse, error)
	CreatePost(ctx context.Context, req *dto.CreatePostRequest, authorID int64) (*dto.PostResponse, error)
	UpdatePost(ctx context.Context, id int64, req *dto.UpdatePostRequest) (*dto.PostResponse, error)
	DeletePost(ctx context.Context, id int64) error
}

// postServiceImpl implements PostService
type postServiceImpl struct {
	postRepo *repositories.PostRepository
	userRepo *repositories.UserRepository
	logger   zerolog.Logger
}

// NewPostService creates a new PostService
func NewPostService(postRepo *repositories.PostRepository, userRepo *repositories.UserRepository, logger zerolog.Logger) PostService {
	return &postServiceImpl{
		postRepo: postRepo,
		userRepo: userRepo,
		logger:   logger,
	}
}

func (s *postServiceImpl) withAuthor(ctx context.Context, post *models.Post) {
	author, err := s.userRepo.FindByID(ctx, post.AuthorID)
	if err != nil {
		s.logger.Warn().Err(err).Int64("authorId", post.AuthorID).Msg("Failed to resolve post author")
		return
	}
	post.Author = author
}

// GetAllPosts retrieves posts with pagination, pinned first
func (s *postServiceImpl) GetAllPosts(ctx context.Context, page, pageSize int) (*dto.PostListResponse, error) {
	offset, limit := helpers.CalculateOffsetLimit(page, pageSize)

	posts, total, err := s.postRepo.GetAll(ctx, offset, limit)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.PostResponse, 0, len(posts))
	for _, post := range posts {
		s.withAuthor(ctx, post)
		responses = append(responses, dto.FromPost(post))
	}

	return &dto.PostListResponse{
		Posts:          responses,
		PaginationInfo: helpers.NewPaginationInfo(total, page, pageSize),
	}, nil
}

// GetPostByID retrieves a single post
func (s *postServiceImpl) GetPostByID(ctx context.Context, id int64) (*dto.PostResponse, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.withAuthor(ctx, post)
	resp := dto.FromPost(post)
	return &resp, nil
}

// CreatePost creates a new board post
func (s *postServiceImpl) CreatePost(ctx context.Context, req *dto.CreatePostRequest, authorID int64) (*dto.PostResponse, error) {
	post := &models.Post{
		Title:    strings.TrimSpace(req.Title),
		Body:     req.Body,
		AuthorID: authorID,
		Pinned:   req.Pinned,
	}

	id, err := s.postRepo.Create(ctx, post)
	if err != nil {
		return nil, err
	}

	created, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.withAuthor(ctx, created)

	resp := dto.FromPost(created)
	return &resp, nil
}

// UpdatePost edits a board post
func (s *postServiceImpl) UpdatePost(ctx context.Context, id int64, req *dto.UpdatePostRequest) (*dto.PostResponse, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		post.Title = strings.TrimSpace(*req.Title)
	}
	if req.Body != nil {
		post.Body = *req.Body
	}
	if req.Pinned != nil {
		post.Pinned = *req.Pinned
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	s.withAuthor(ctx, post)

	resp := dto.FromPost(post)
	return &resp, nil
}

// DeletePost removes a board post
func (s *postServiceImpl) DeletePost(ctx context.Context, id int64) error {
	return s.postRepo.Delete(ctx, id)
}
