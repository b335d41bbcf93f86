package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ligadelmazo/backend/models"
	"github.com/ligadelmazo/backend/repositories"
)

type NewsInput struct {
	Title    string  `json:"titulo"`
	Content  string  `json:"contenido"`
	ImageURL *string `json:"imagen_url"`
}

type NewsList struct {
	Items      []models.News
	Pagination models.Pagination
}

type NewsService interface {
	List(ctx context.Context, page, limit int) (*NewsList, error)
	ListRecent(ctx context.Context, limit int) ([]models.News, error)
	GetByID(ctx context.Context, id int) (*models.News, error)
	Create(ctx context.Context, authorID int, input NewsInput) (*models.News, error)
	Update(ctx context.Context, id int, input NewsInput) (*models.News, error)
	Delete(ctx context.Context, id int) error
}

type newsService struct {
	newsRepo repositories.NewsRepository
}

func NewNewsService(newsRepo repositories.NewsRepository) NewsService {
	return &newsService{newsRepo: newsRepo}
}

func (s *newsService) List(ctx context.Context, page, limit int) (*NewsList, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 10
	}

	total, err := s.newsRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count news posts: %w", err)
	}
	items, err := s.newsRepo.List(ctx, limit, (page-1)*limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list news posts: %w", err)
	}

	return &NewsList{
		Items:      items,
		Pagination: models.NewPagination(page, limit, total),
	}, nil
}

func (s *newsService) ListRecent(ctx context.Context, limit int) ([]models.News, error) {
	if limit < 1 || limit > 20 {
		limit = 3
	}
	items, err := s.newsRepo.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent news posts: %w", err)
	}
	return items, nil
}

func (s *newsService) GetByID(ctx context.Context, id int) (*models.News, error) {
	news, err := s.newsRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNewsNotFound) {
			return nil, ErrNewsNotFound
		}
		return nil, err
	}
	return news, nil
}

func (s *newsService) Create(ctx context.Context, authorID int, input NewsInput) (*models.News, error) {
	if err := validateNewsInput(input); err != nil {
		return nil, err
	}

	news := &models.News{
		Title:    strings.TrimSpace(input.Title),
		Content:  input.Content,
		ImageURL: input.ImageURL,
		AuthorID: authorID,
	}
	if err := s.newsRepo.Create(ctx, news); err != nil {
		return nil, fmt.Errorf("failed to create news post: %w", err)
	}

	created, err := s.newsRepo.GetByID(ctx, news.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload news post %d: %w", news.ID, err)
	}
	return created, nil
}

func (s *newsService) Update(ctx context.Context, id int, input NewsInput) (*models.News, error) {
	if err := validateNewsInput(input); err != nil {
		return nil, err
	}

	news := &models.News{
		ID:       id,
		Title:    strings.TrimSpace(input.Title),
		Content:  input.Content,
		ImageURL: input.ImageURL,
	}
	if err := s.newsRepo.Update(ctx, news); err != nil {
		if errors.Is(err, repositories.ErrNewsNotFound) {
			return nil, ErrNewsNotFound
		}
		return nil, fmt.Errorf("failed to update news post: %w", err)
	}

	updated, err := s.newsRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload news post %d: %w", id, err)
	}
	return updated, nil
}

func (s *newsService) Delete(ctx context.Context, id int) error {
	if err := s.newsRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNewsNotFound) {
			return ErrNewsNotFound
		}
		return fmt.Errorf("failed to delete news post: %w", err)
	}
	return nil
}

func validateNewsInput(input NewsInput) error {
	v := newValidationError()
	title := strings.TrimSpace(input.Title)
	if title == "" {
		v.add("titulo", "El título es requerido")
	} else if len(title) > 255 {
		v.add("titulo", "El título no puede superar los 255 caracteres")
	}
	if strings.TrimSpace(input.Content) == "" {
		v.add("contenido", "El contenido es requerido")
	}
	if input.ImageURL != nil && len(*input.ImageURL) > 500 {
		v.add("imagen_url", "La URL de imagen no puede superar los 500 caracteres")
	}
	return v.orNil()
}
