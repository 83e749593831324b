package service

import (
	"context"
	"strings"

	"echoboard/internal/cache"
	"echoboard/internal/models"
	"echoboard/internal/policy"
	"echoboard/internal/repository"
)

// UserService handles profile edits and the admin-only role directory.
type UserService struct {
	userRepo repository.UserRepository
}

type UpdateProfileInput struct {
	Name  string
	Image string
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// ListUsers is staff-only: the directory backs the task assignee picker.
func (s *UserService) ListUsers(ctx context.Context, actor policy.Actor, limit, offset int) ([]*models.User, error) {
	if !policy.CanManageTasks(actor) {
		return nil, models.NewForbiddenError("Only staff can list users")
	}
	users, err := s.userRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (s *UserService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, orNotFound(err, "User", id)
	}
	return user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, actor policy.Actor, in UpdateProfileInput) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, orNotFound(err, "User", actor.UserID)
	}

	const maxNameLen = 50

	if name := strings.TrimSpace(in.Name); name != "" {
		if len(name) > maxNameLen {
			return nil, models.NewValidationError("Name too long (max 50 characters)")
		}
		user.Name = name
	}
	if in.Image != "" {
		user.Image = in.Image
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, models.NewInternalError(err)
	}

	cache.InvalidateUser(ctx, user.ID)
	return user, nil
}

// UpdateRole reassigns a user's role. Admins only, and an admin cannot
// demote themselves, which keeps at least one admin reachable.
func (s *UserService) UpdateRole(ctx context.Context, actor policy.Actor, targetID uint, role models.Role) (*models.User, error) {
	if !policy.CanManageUsers(actor) {
		return nil, models.NewForbiddenError("Only admins can change roles")
	}
	if !role.Valid() {
		return nil, models.NewValidationError("Invalid role")
	}
	if targetID == actor.UserID && role != models.RoleAdmin {
		return nil, models.NewConflictError("Admins cannot demote themselves")
	}

	user, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return nil, orNotFound(err, "User", targetID)
	}

	if err := s.userRepo.UpdateRole(ctx, targetID, role); err != nil {
		return nil, models.NewInternalError(err)
	}
	user.Role = role

	cache.InvalidateUser(ctx, user.ID)
	return user, nil
}
