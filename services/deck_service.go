package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"golang.org/x/sync/errgroup"

	"github.com/ligadelmazo/backend/models"
	"github.com/ligadelmazo/backend/repositories"
	"github.com/ligadelmazo/backend/storage"
)

type DeckInput struct {
	Name        string  `json:"nombre"`
	Series      string  `json:"serie"`
	Description *string `json:"descripcion"`
}

type DeckService interface {
	List(ctx context.Context) ([]models.Deck, error)

	// GetWithCards returns the deck with its card list attached, strongest
	// cards first.
	GetWithCards(ctx context.Context, id int) (*models.Deck, error)

	ListSeries(ctx context.Context) ([]string, error)

	// ListGroupedBySeries returns every deck keyed by its series name.
	ListGroupedBySeries(ctx context.Context) (map[string][]models.Deck, error)

	Create(ctx context.Context, input DeckInput) (*models.Deck, error)
	Update(ctx context.Context, id int, input DeckInput) (*models.Deck, error)

	// UploadImage stores the image in the object store and records its
	// public URL on the deck. Returns the URL.
	UploadImage(ctx context.Context, id int, filename, contentType string, file io.Reader) (string, error)

	Delete(ctx context.Context, id int) error
}

type deckService struct {
	deckRepo repositories.DeckRepository
	uploader storage.FileUploader
}

func NewDeckService(deckRepo repositories.DeckRepository, uploader storage.FileUploader) DeckService {
	return &deckService{deckRepo: deckRepo, uploader: uploader}
}

func (s *deckService) List(ctx context.Context) ([]models.Deck, error) {
	decks, err := s.deckRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list decks: %w", err)
	}
	return decks, nil
}

func (s *deckService) GetWithCards(ctx context.Context, id int) (*models.Deck, error) {
	deck, err := s.deckRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrDeckNotFound) {
			return nil, ErrDeckNotFound
		}
		return nil, err
	}

	cards, err := s.deckRepo.ListCards(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards for deck %d: %w", id, err)
	}
	deck.Cards = cards
	return deck, nil
}

func (s *deckService) ListSeries(ctx context.Context) ([]string, error) {
	series, err := s.deckRepo.ListSeries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list series: %w", err)
	}
	return series, nil
}

func (s *deckService) ListGroupedBySeries(ctx context.Context) (map[string][]models.Deck, error) {
	series, err := s.deckRepo.ListSeries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list series: %w", err)
	}

	grouped := make(map[string][]models.Deck, len(series))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	results := make([][]models.Deck, len(series))
	for i, name := range series {
		g.Go(func() error {
			decks, err := s.deckRepo.ListBySeries(gctx, name)
			if err != nil {
				return fmt.Errorf("failed to list decks of series %q: %w", name, err)
			}
			results[i] = decks
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, name := range series {
		grouped[name] = results[i]
	}
	return grouped, nil
}

func (s *deckService) Create(ctx context.Context, input DeckInput) (*models.Deck, error) {
	if err := validateDeckInput(input); err != nil {
		return nil, err
	}

	deck := &models.Deck{
		Name:        strings.TrimSpace(input.Name),
		Series:      strings.TrimSpace(input.Series),
		Description: input.Description,
	}
	if err := s.deckRepo.Create(ctx, deck); err != nil {
		return nil, fmt.Errorf("failed to create deck: %w", err)
	}
	return deck, nil
}

func (s *deckService) Update(ctx context.Context, id int, input DeckInput) (*models.Deck, error) {
	if err := validateDeckInput(input); err != nil {
		return nil, err
	}

	deck := &models.Deck{
		ID:          id,
		Name:        strings.TrimSpace(input.Name),
		Series:      strings.TrimSpace(input.Series),
		Description: input.Description,
	}
	if err := s.deckRepo.Update(ctx, deck); err != nil {
		if errors.Is(err, repositories.ErrDeckNotFound) {
			return nil, ErrDeckNotFound
		}
		return nil, fmt.Errorf("failed to update deck: %w", err)
	}

	updated, err := s.deckRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload deck %d: %w", id, err)
	}
	return updated, nil
}

func (s *deckService) UploadImage(ctx context.Context, id int, filename, contentType string, file io.Reader) (string, error) {
	if s.uploader == nil {
		return "", ErrImageStorageDisabled
	}

	deck, err := s.deckRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrDeckNotFound) {
			return "", ErrDeckNotFound
		}
		return "", err
	}

	key := deckImageKey(deck.ID, filename)
	result, err := s.uploader.Upload(ctx, key, contentType, file)
	if err != nil {
		return "", fmt.Errorf("failed to upload deck image: %w", err)
	}

	if err := s.deckRepo.SetImage(ctx, id, result.Location); err != nil {
		return "", fmt.Errorf("failed to record deck image: %w", err)
	}
	return result.Location, nil
}

func (s *deckService) Delete(ctx context.Context, id int) error {
	count, err := s.deckRepo.CountMatchesUsing(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count matches using deck %d: %w", id, err)
	}
	if count > 0 {
		return &DeckInUseError{Count: count}
	}

	if err := s.deckRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrDeckNotFound) {
			return ErrDeckNotFound
		}
		return fmt.Errorf("failed to delete deck: %w", err)
	}
	return nil
}

func validateDeckInput(input DeckInput) error {
	v := newValidationError()
	if strings.TrimSpace(input.Name) == "" {
		v.add("nombre", "El nombre es requerido")
	}
	if strings.TrimSpace(input.Series) == "" {
		v.add("serie", "La serie es requerida")
	}
	return v.orNil()
}

// deckImageKey builds an object key that is unique per upload so that stale
// CDN caches never serve an old image under a reused key.
func deckImageKey(deckID int, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	base := slug.Make(strings.TrimSuffix(path.Base(filename), ext))
	if base == "" {
		base = "imagen"
	}
	return fmt.Sprintf("mazos/%d/%s-%s%s", deckID, uuid.NewString(), base, ext)
}
