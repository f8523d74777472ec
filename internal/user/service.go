// File: internal/user/service.go
package user

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"mailru_broker/internal/common"
	"mailru_broker/internal/shared"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service provisions local users from federated identities.
type Service interface {
	FindOrCreateFromIdentity(ctx context.Context, identity *shared.BrokeredIdentity) (usr *FederatedUser, wasCreated bool, err error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*FederatedUser, error)
	PruneInactive(ctx context.Context, retention time.Duration) (int64, error)
}

// ServiceImplementation implements Service on top of a Repository.
type ServiceImplementation struct {
	repo   Repository
	logger *zap.Logger
	now    func() time.Time
}

var _ Service = (*ServiceImplementation)(nil)

// NewService creates a new user service.
func NewService(repo Repository, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{
		repo:   repo,
		logger: logger.Named("UserService"),
		now:    time.Now,
	}
}

// FindOrCreateFromIdentity links identity to a local account, creating it on
// first login. Names and the stored raw profile are refreshed on every login.
func (s *ServiceImplementation) FindOrCreateFromIdentity(ctx context.Context, identity *shared.BrokeredIdentity) (*FederatedUser, bool, error) {
	if identity == nil || identity.IdpConfig == nil {
		return nil, false, errors.New("identity has no provider configuration")
	}
	alias := identity.IdpConfig.Alias()

	rawProfile := ""
	if profile, ok := identity.UserProfile(alias); ok {
		b, err := json.Marshal(profile)
		if err != nil {
			return nil, false, fmt.Errorf("encode raw profile: %w", err)
		}
		rawProfile = string(b)
	}
	now := s.now()

	existing, err := s.repo.FindByAliasAndEmail(ctx, alias, identity.Email)
	switch {
	case err == nil:
		return s.refreshLogin(ctx, existing, identity, rawProfile, now)
	case !errors.Is(err, common.ErrNotFound):
		s.logger.Error("Failed to look up federated user", zap.Error(err), zap.String("alias", alias))
		return nil, false, fmt.Errorf("look up federated user: %w", err)
	}

	created := &FederatedUser{
		IdpAlias:    alias,
		Email:       identity.Email,
		Username:    identity.Username,
		FirstName:   identity.FirstName,
		LastName:    identity.LastName,
		RawProfile:  rawProfile,
		LastLoginAt: &now,
	}
	if err := s.repo.Create(ctx, created); err != nil {
		if !errors.Is(err, common.ErrConflict) {
			s.logger.Error("Failed to create federated user", zap.Error(err), zap.String("alias", alias))
			return nil, false, err
		}
		// A concurrent first login created the account.
		winner, findErr := s.repo.FindByAliasAndEmail(ctx, alias, identity.Email)
		if findErr != nil {
			s.logger.Error("Failed to re-read federated user after conflict", zap.Error(findErr), zap.String("alias", alias))
			return nil, false, err
		}
		return s.refreshLogin(ctx, winner, identity, rawProfile, now)
	}
	s.logger.Info("Federated user provisioned", zap.String("userID", created.ID.String()), zap.String("alias", alias))
	return created, true, nil
}

func (s *ServiceImplementation) refreshLogin(ctx context.Context, existing *FederatedUser, identity *shared.BrokeredIdentity, rawProfile string, now time.Time) (*FederatedUser, bool, error) {
	existing.Email = identity.Email
	existing.Username = identity.Username
	existing.FirstName = identity.FirstName
	existing.LastName = identity.LastName
	existing.RawProfile = rawProfile
	existing.LastLoginAt = &now
	if err := s.repo.Update(ctx, existing); err != nil {
		s.logger.Error("Failed to update federated user", zap.Error(err), zap.String("userID", existing.ID.String()))
		return nil, false, err
	}
	s.logger.Info("Federated user logged in", zap.String("userID", existing.ID.String()), zap.String("alias", existing.IdpAlias))
	return existing, false, nil
}

// GetUserByID returns the user with id.
func (s *ServiceImplementation) GetUserByID(ctx context.Context, id uuid.UUID) (*FederatedUser, error) {
	return s.repo.FindByID(ctx, id)
}

// PruneInactive deletes users that have not logged in within retention.
// A zero retention disables pruning.
func (s *ServiceImplementation) PruneInactive(ctx context.Context, retention time.Duration) (int64, error) {
	if retention <= 0 {
		return 0, nil
	}
	return s.repo.DeleteNotSeenSince(ctx, s.now().Add(-retention))
}
