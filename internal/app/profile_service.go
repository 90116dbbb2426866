package app

import (
	"context"
	"log/slog"
	"strings"

	"profilehub/internal/model"
	"profilehub/internal/repository"
)

type ProfileService struct {
	userRepo repository.UserRepository
	events   eventEmitter
	logger   *slog.Logger
}

type SearchInput struct {
	Name      string
	TechStack string
	Bio       string
}

func NewProfileService(userRepo repository.UserRepository, publisher EventPublisher, logger *slog.Logger) *ProfileService {
	return &ProfileService{
		userRepo: userRepo,
		events:   eventEmitter{publisher: publisher, logger: logger},
		logger:   logger,
	}
}

func (s *ProfileService) List(ctx context.Context) ([]model.User, error) {
	return s.Search(ctx, SearchInput{})
}

// Search ANDs a case-insensitive substring match for every non-empty input field.
func (s *ProfileService) Search(ctx context.Context, input SearchInput) ([]model.User, error) {
	users, err := s.userRepo.Search(ctx, repository.SearchFilter{
		Name:      input.Name,
		TechStack: input.TechStack,
		Bio:       input.Bio,
	})
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []model.User{}
	}
	for i := range users {
		users[i].PasswordHash = ""
		users[i].NormalizeLists()
	}
	return users, nil
}

// EditOwn applies the supplied fields to the requester's own profile.
func (s *ProfileService) EditOwn(ctx context.Context, requester *model.User, targetID string, patch model.ProfilePatch) (*model.User, error) {
	if err := requireOwner(requester, targetID); err != nil {
		return nil, err
	}
	return s.update(ctx, targetID, trimPatch(patch))
}

// Update validates the supplied fields against the profile schema and applies
// them to the requester's profile.
func (s *ProfileService) Update(ctx context.Context, requester *model.User, patch model.ProfilePatch) (*model.User, error) {
	if requester == nil {
		return nil, ErrUnauthorized
	}
	patch = trimPatch(patch)
	if err := validatePatch(patch); err != nil {
		return nil, err
	}
	return s.update(ctx, requester.ID, patch)
}

func (s *ProfileService) update(ctx context.Context, id string, patch model.ProfilePatch) (*model.User, error) {
	user, err := s.userRepo.UpdateProfile(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	user.PasswordHash = ""
	user.NormalizeLists()

	s.events.emit(ctx, model.EventUserProfileUpdated, user)
	return user, nil
}

func (s *ProfileService) DeleteOwn(ctx context.Context, requester *model.User, targetID string) error {
	if err := requireOwner(requester, targetID); err != nil {
		return err
	}
	deleted, err := s.userRepo.Delete(ctx, targetID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrUserNotFound
	}

	s.events.emit(ctx, model.EventUserDeleted, requester)
	s.logger.InfoContext(ctx, "user deleted", "user_id", targetID)
	return nil
}

func requireOwner(requester *model.User, targetID string) error {
	if requester == nil {
		return ErrUnauthorized
	}
	if requester.ID != targetID {
		return ErrForbidden
	}
	return nil
}

func trimPatch(p model.ProfilePatch) model.ProfilePatch {
	trim := func(v *string) *string {
		if v == nil {
			return nil
		}
		t := strings.TrimSpace(*v)
		return &t
	}
	p.Name = trim(p.Name)
	p.Location = trim(p.Location)
	p.GithubURL = trim(p.GithubURL)
	p.TwitterURL = trim(p.TwitterURL)
	p.WebsiteURL = trim(p.WebsiteURL)
	p.LinkedinURL = trim(p.LinkedinURL)
	return p
}
