package service

import (
	"context"
	"strings"
	"testing"

	"stackit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	createFn               func(context.Context, *models.User) error
	getByIDFn              func(context.Context, uint) (*models.User, error)
	getByEmailFn           func(context.Context, string) (*models.User, error)
	getByUsernameFn        func(context.Context, string) (*models.User, error)
	updateFn               func(context.Context, *models.User) error
	deleteFn               func(context.Context, uint) error
	listFn                 func(context.Context, int, int) ([]models.User, error)
	listReputationEventsFn func(context.Context, uint, int, int) ([]models.ReputationEvent, error)
}

func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *userRepoStub) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.listFn(ctx, limit, offset)
}
func (s *userRepoStub) ListReputationEvents(ctx context.Context, userID uint, limit, offset int) ([]models.ReputationEvent, error) {
	return s.listReputationEventsFn(ctx, userID, limit, offset)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		createFn: func(_ context.Context, _ *models.User) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, Username: "someone"}, nil
		},
		getByEmailFn: func(_ context.Context, _ string) (*models.User, error) {
			return &models.User{ID: 1}, nil
		},
		getByUsernameFn: func(_ context.Context, username string) (*models.User, error) {
			return &models.User{ID: 1, Username: username}, nil
		},
		updateFn: func(_ context.Context, _ *models.User) error { return nil },
		deleteFn: func(_ context.Context, _ uint) error { return nil },
		listFn:   func(_ context.Context, _, _ int) ([]models.User, error) { return nil, nil },
		listReputationEventsFn: func(_ context.Context, _ uint, _, _ int) ([]models.ReputationEvent, error) {
			return nil, nil
		},
	}
}

func TestUserService_UpdateProfile_Validation(t *testing.T) {
	t.Parallel()

	svc := NewUserService(noopUserRepo(), nil)
	ctx := context.Background()

	t.Run("bad username", func(t *testing.T) {
		t.Parallel()
		_, err := svc.UpdateProfile(ctx, UpdateProfileInput{UserID: 1, Username: "x"})
		assertValidationError(t, err)
	})

	t.Run("bio too long", func(t *testing.T) {
		t.Parallel()
		_, err := svc.UpdateProfile(ctx, UpdateProfileInput{UserID: 1, Bio: strings.Repeat("b", 501)})
		assertValidationError(t, err)
	})
}

func TestUserService_UpdateProfile_AppliesFields(t *testing.T) {
	t.Parallel()

	var saved *models.User
	userRepo := noopUserRepo()
	userRepo.updateFn = func(_ context.Context, u *models.User) error {
		saved = u
		return nil
	}

	svc := NewUserService(userRepo, nil)
	user, err := svc.UpdateProfile(context.Background(), UpdateProfileInput{
		UserID:   1,
		Username: "new_name",
		Bio:      "hello",
	})
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, "new_name", user.Username)
	assert.Equal(t, "hello", user.Bio)
}

func TestUserService_DeleteUser_Authorization(t *testing.T) {
	t.Parallel()

	deleted := []uint{}
	userRepo := noopUserRepo()
	userRepo.deleteFn = func(_ context.Context, id uint) error {
		deleted = append(deleted, id)
		return nil
	}

	ctx := context.Background()

	t.Run("self delete allowed", func(t *testing.T) {
		svc := NewUserService(userRepo, nil)
		require.NoError(t, svc.DeleteUser(ctx, 1, 1))
	})

	t.Run("stranger forbidden", func(t *testing.T) {
		svc := NewUserService(userRepo, nil)
		err := svc.DeleteUser(ctx, 2, 1)
		assertForbiddenError(t, err)
	})

	t.Run("non-admin forbidden", func(t *testing.T) {
		svc := NewUserService(userRepo, func(_ context.Context, _ uint) (bool, error) { return false, nil })
		err := svc.DeleteUser(ctx, 2, 1)
		assertForbiddenError(t, err)
	})

	t.Run("admin allowed", func(t *testing.T) {
		svc := NewUserService(userRepo, func(_ context.Context, _ uint) (bool, error) { return true, nil })
		require.NoError(t, svc.DeleteUser(ctx, 2, 1))
	})
}

func TestUserService_ListReputationEvents_TargetMustExist(t *testing.T) {
	t.Parallel()

	userRepo := noopUserRepo()
	userRepo.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
		return nil, models.NewNotFoundError("User", id)
	}

	svc := NewUserService(userRepo, nil)
	_, err := svc.ListReputationEvents(context.Background(), 99, 20, 0)
	assertNotFoundError(t, err)
}
