// AngelaMos | 2026
// service.go

package note

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/carterperez-dev/taskboard/internal/core"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, userID string, req CreateNoteRequest) (*Note, error) {
	n := &Note{
		ID:      uuid.New().String(),
		UserID:  userID,
		Title:   strings.TrimSpace(req.Title),
		Content: req.Content,
		Color:   req.Color,
		Pinned:  req.Pinned,
	}

	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}

	return n, nil
}

func (s *Service) Get(ctx context.Context, userID, id string) (*Note, error) {
	return s.repo.GetByID(ctx, userID, id)
}

// List returns pinned notes first, then the most recently updated.
func (s *Service) List(
	ctx context.Context,
	userID, search string,
	page core.PageParams,
) ([]Note, int, error) {
	return s.repo.List(ctx, userID, ListParams{
		Search: strings.TrimSpace(search),
		Offset: page.Offset(),
		Limit:  page.Limit(),
	})
}

func (s *Service) Update(
	ctx context.Context,
	userID, id string,
	req UpdateNoteRequest,
) (*Note, error) {
	n, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		n.Title = strings.TrimSpace(*req.Title)
	}
	if req.Content != nil {
		n.Content = *req.Content
	}
	if req.Color != nil {
		n.Color = *req.Color
	}
	if req.Pinned != nil {
		n.Pinned = *req.Pinned
	}

	if err := s.repo.Update(ctx, n); err != nil {
		return nil, err
	}

	return n, nil
}

func (s *Service) TogglePin(ctx context.Context, userID, id string) (*Note, error) {
	n, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	n.Pinned = !n.Pinned
	if err := s.repo.Update(ctx, n); err != nil {
		return nil, err
	}

	return n, nil
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	return s.repo.Delete(ctx, userID, id)
}

func (s *Service) Count(ctx context.Context, userID string) (int, error) {
	return s.repo.Count(ctx, userID)
}
