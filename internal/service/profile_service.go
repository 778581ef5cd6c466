package service

import (
	"alcyxob/fitness-coach/internal/authz"
	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/repository"
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProfileService interface {
	GetProfile(ctx context.Context, actor domain.Actor, userID primitive.ObjectID) (*domain.User, error)
	UpdateProfile(ctx context.Context, actor domain.Actor, patch domain.ProfilePatch) (*domain.User, error)
	MyTrainers(ctx context.Context, actor domain.Actor) ([]domain.User, error)
}

// profileService implements the ProfileService interface.
type profileService struct {
	guard    *authz.Guard
	userRepo repository.UserRepository
	linkRepo repository.LinkRepository
}

// NewProfileService creates a new instance of profileService.
func NewProfileService(guard *authz.Guard, userRepo repository.UserRepository, linkRepo repository.LinkRepository) ProfileService {
	return &profileService{guard: guard, userRepo: userRepo, linkRepo: linkRepo}
}

func (s *profileService) GetProfile(ctx context.Context, actor domain.Actor, userID primitive.ObjectID) (*domain.User, error) {
	req := authz.Request{Actor: actor, Action: authz.Read, Resource: authz.Identity, OwnerID: userID}
	if err := authorize(ctx, s.guard, req); err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, repoError("get user", "user", err)
	}
	user.PasswordHash = ""
	return user, nil
}

// UpdateProfile changes the actor's own profile. Only trainers carry a license ID.
func (s *profileService) UpdateProfile(ctx context.Context, actor domain.Actor, patch domain.ProfilePatch) (*domain.User, error) {
	req := authz.Request{Actor: actor, Action: authz.Update, Resource: authz.Identity, OwnerID: actor.ID}
	if err := authorize(ctx, s.guard, req); err != nil {
		return nil, err
	}
	for _, f := range []*string{patch.Name, patch.Phone, patch.Address, patch.TrainingLocation, patch.LicenseID} {
		if f != nil {
			*f = strings.TrimSpace(*f)
		}
	}
	if err := validate.Struct(patch); err != nil {
		return nil, err
	}
	if patch.LicenseID != nil && actor.Role != domain.RoleTrainer {
		return nil, domain.NewValidationError("licenseId", "is only available to trainers")
	}

	user, err := s.userRepo.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, repoError("get user", "user", err)
	}
	patch.Apply(user)
	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		return nil, repoError("update profile", "user", err)
	}
	user.PasswordHash = ""
	return user, nil
}

// MyTrainers lists the trainers linked to the acting student.
func (s *profileService) MyTrainers(ctx context.Context, actor domain.Actor) ([]domain.User, error) {
	req := authz.Request{Actor: actor, Action: authz.Read, Resource: authz.TrainerStudentLink, OwnerID: actor.ID}
	if err := authorize(ctx, s.guard, req); err != nil {
		return nil, err
	}
	ids, err := s.linkRepo.TrainerIDs(ctx, actor.ID)
	if err != nil {
		return nil, storeError("list linked trainers", err)
	}
	trainers, err := s.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, storeError("get trainers", err)
	}
	for i := range trainers {
		trainers[i].PasswordHash = ""
	}
	return trainers, nil
}
