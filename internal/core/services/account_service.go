package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/apperrors"
	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/core/domain"
	portsrepo "github.com/d5b5m54hpz-beep/motolibre-sub004/internal/core/ports/repositories"
	portssvc "github.com/d5b5m54hpz-beep/motolibre-sub004/internal/core/ports/services"
	"github.com/d5b5m54hpz-beep/motolibre-sub004/internal/dto"
	"github.com/google/uuid"
)

const accountEntityType = "account"

// accountService implements the AccountSvcFacade interface
type accountService struct {
	BaseService
	accountRepo portsrepo.AccountRepositoryFacade
	auditRepo   portsrepo.AuditLogRepository
	txManager   portsrepo.TransactionManager
}

// NewAccountService creates a new account service.
func NewAccountService(
	accountRepo portsrepo.AccountRepositoryFacade,
	auditRepo portsrepo.AuditLogRepository,
	txManager portsrepo.TransactionManager,
) portssvc.AccountSvcFacade {
	return &accountService{
		accountRepo: accountRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
	}
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

func (s *accountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, userID string) (*domain.Account, error) {
	code := strings.TrimSpace(req.Code)
	if !domain.ValidCode(code) {
		return nil, fmt.Errorf("%w: account code %q must be dot-separated digit groups", apperrors.ErrValidation, req.Code)
	}
	if !req.AccountType.Valid() {
		return nil, fmt.Errorf("%w: unknown account type %q", apperrors.ErrValidation, req.AccountType)
	}

	var created domain.Account
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		parentID, err := s.resolveParent(ctx, req.ParentAccountID, code, req.AccountType)
		if err != nil {
			return err
		}

		acceptsPostings := true
		if req.AcceptsPostings != nil {
			acceptsPostings = *req.AcceptsPostings
		}
		now := time.Now().UTC()
		created = domain.Account{
			AccountID:       uuid.NewString(),
			Code:            code,
			Name:            strings.TrimSpace(req.Name),
			AccountType:     req.AccountType,
			Level:           domain.CodeLevel(code),
			AcceptsPostings: acceptsPostings,
			IsActive:        true,
			ParentAccountID: parentID,
			Description:     req.Description,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     userID,
				LastUpdatedAt: now,
				LastUpdatedBy: userID,
			},
		}
		if err := s.accountRepo.SaveAccount(ctx, created); err != nil {
			return err
		}
		return s.auditRepo.SaveAuditEntry(ctx, domain.AuditLogEntry{
			AuditID:    uuid.NewString(),
			EntityType: accountEntityType,
			EntityID:   created.AccountID,
			Action:     "CREATE",
			UserID:     userID,
			CreatedAt:  now,
		})
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to create account", slog.String("code", code))
		return nil, err
	}

	s.LogInfo(ctx, "Account created successfully",
		slog.String("account_id", created.AccountID),
		slog.String("code", created.Code))
	return &created, nil
}

// resolveParent validates an explicit parent, or links the account whose code
// is the code's prefix when one exists.
func (s *accountService) resolveParent(ctx context.Context, parentID *string, code string, accountType domain.AccountType) (string, error) {
	if parentID == nil || *parentID == "" {
		parentCode := domain.ParentCode(code)
		if parentCode == "" {
			return "", nil
		}
		parent, err := s.accountRepo.FindAccountByCode(ctx, parentCode)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return "", nil
			}
			return "", err
		}
		if parent.AccountType != accountType {
			return "", fmt.Errorf("%w: parent %s is %s, account is %s", apperrors.ErrValidation, parent.Code, parent.AccountType, accountType)
		}
		return parent.AccountID, nil
	}

	parent, err := s.accountRepo.FindAccountByID(ctx, *parentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", fmt.Errorf("%w: parent %s", ErrAccountNotFound, *parentID)
		}
		return "", err
	}
	if parent.AccountType != accountType {
		return "", fmt.Errorf("%w: parent %s is %s, account is %s", apperrors.ErrValidation, parent.Code, parent.AccountType, accountType)
	}
	if !domain.IsChildCode(parent.Code, code) {
		return "", fmt.Errorf("%w: code %s is not below parent code %s", apperrors.ErrValidation, code, parent.Code)
	}
	return parent.AccountID, nil
}

func (s *accountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, accountID)
		}
		s.LogError(ctx, err, "Failed to find account by ID", slog.String("account_id", accountID))
		return nil, err
	}
	return account, nil
}

func (s *accountService) FindAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByCode(ctx, code)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: code %s", ErrAccountNotFound, code)
		}
		s.LogError(ctx, err, "Failed to find account by code", slog.String("code", code))
		return nil, err
	}
	return account, nil
}

func (s *accountService) GetAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	account, err := s.FindAccountByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if !account.AcceptsPostings {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotPostable, code)
	}
	return account, nil
}

func (s *accountService) ListAccounts(ctx context.Context, params dto.ListAccountsParams) ([]domain.Account, error) {
	accounts, err := s.accountRepo.ListAccounts(ctx, portsrepo.AccountFilter{
		AccountType: domain.AccountType(params.AccountType),
		ActiveOnly:  params.ActiveOnly,
		PostingOnly: params.PostingOnly,
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts")
		return nil, err
	}
	return accounts, nil
}

func (s *accountService) AccountTree(ctx context.Context) ([]*domain.AccountNode, error) {
	accounts, err := s.ListAccounts(ctx, dto.ListAccountsParams{})
	if err != nil {
		return nil, err
	}
	return domain.BuildAccountTree(accounts), nil
}

func (s *accountService) GetAccountHistory(ctx context.Context, accountID string) ([]domain.AuditLogEntry, error) {
	if _, err := s.GetAccountByID(ctx, accountID); err != nil {
		return nil, err
	}
	return s.auditRepo.ListAuditEntries(ctx, accountEntityType, accountID)
}

func (s *accountService) UpdateAccount(ctx context.Context, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error) {
	var result *domain.Account
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		current, err := s.GetAccountByID(ctx, accountID)
		if err != nil {
			return err
		}
		updated := *current
		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				return fmt.Errorf("%w: account name cannot be empty", apperrors.ErrValidation)
			}
			updated.Name = name
		}
		if req.Description != nil {
			updated.Description = *req.Description
		}
		if req.AcceptsPostings != nil {
			updated.AcceptsPostings = *req.AcceptsPostings
		}
		if req.IsActive != nil {
			updated.IsActive = *req.IsActive
		}
		result, err = s.applyUpdate(ctx, *current, updated, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *accountService) DeactivateAccount(ctx context.Context, accountID string, userID string) error {
	return s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		current, err := s.GetAccountByID(ctx, accountID)
		if err != nil {
			return err
		}
		updated := *current
		updated.IsActive = false
		_, err = s.applyUpdate(ctx, *current, updated, userID)
		return err
	})
}

// applyUpdate persists updated and records the field diff against current.
// Nothing is written when no tracked field changed.
func (s *accountService) applyUpdate(ctx context.Context, current, updated domain.Account, userID string) (*domain.Account, error) {
	changes := current.Diff(updated)
	if len(changes) == 0 {
		return &current, nil
	}
	now := time.Now().UTC()
	updated.LastUpdatedAt = now
	updated.LastUpdatedBy = userID
	if err := s.accountRepo.UpdateAccount(ctx, updated); err != nil {
		s.LogError(ctx, err, "Failed to update account", slog.String("account_id", updated.AccountID))
		return nil, err
	}
	if err := s.auditRepo.SaveAuditEntry(ctx, domain.AuditLogEntry{
		AuditID:    uuid.NewString(),
		EntityType: accountEntityType,
		EntityID:   updated.AccountID,
		Action:     "UPDATE",
		Changes:    changes,
		UserID:     userID,
		CreatedAt:  now,
	}); err != nil {
		return nil, err
	}
	s.LogInfo(ctx, "Account updated",
		slog.String("account_id", updated.AccountID),
		slog.Int("changed_fields", len(changes)))
	return &updated, nil
}

func (s *accountService) SeedDefaultChart(ctx context.Context, userID string) (int, error) {
	created := 0
	err := s.txManager.WithinTx(ctx, func(ctx context.Context) error {
		existing, err := s.accountRepo.ListAccounts(ctx, portsrepo.AccountFilter{})
		if err != nil {
			return err
		}
		byCode := make(map[string]string, len(existing))
		for _, acc := range existing {
			byCode[acc.Code] = acc.AccountID
		}

		now := time.Now().UTC()
		for _, tpl := range domain.DefaultChart() {
			if _, ok := byCode[tpl.Code]; ok {
				continue
			}
			acc := domain.Account{
				AccountID:       uuid.NewString(),
				Code:            tpl.Code,
				Name:            tpl.Name,
				AccountType:     tpl.AccountType,
				Level:           domain.CodeLevel(tpl.Code),
				AcceptsPostings: tpl.AcceptsPostings,
				IsActive:        true,
				ParentAccountID: byCode[domain.ParentCode(tpl.Code)],
				Description:     tpl.Description,
				AuditFields: domain.AuditFields{
					CreatedAt:     now,
					CreatedBy:     userID,
					LastUpdatedAt: now,
					LastUpdatedBy: userID,
				},
			}
			if err := s.accountRepo.SaveAccount(ctx, acc); err != nil {
				return err
			}
			byCode[acc.Code] = acc.AccountID
			created++
		}
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to seed default chart")
		return 0, err
	}
	s.LogInfo(ctx, "Default chart seeded", slog.Int("created", created))
	return created, nil
}
