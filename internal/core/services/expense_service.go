package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/splitnest/splitnest_backend/internal/apperrors"
	"github.com/splitnest/splitnest_backend/internal/core/domain"
	portsrepo "github.com/splitnest/splitnest_backend/internal/core/ports/repositories"
	portssvc "github.com/splitnest/splitnest_backend/internal/core/ports/services"
	"github.com/splitnest/splitnest_backend/internal/dto"
	"github.com/splitnest/splitnest_backend/internal/utils/settlement"
)

// expenseService implements the ExpenseSvcFacade interface
type expenseService struct {
	BaseService
	expenseRepo portsrepo.ExpenseRepositoryWithTx
	groupRepo   portsrepo.GroupRepositoryFacade
}

// NewExpenseService creates a new expense service with the provided dependencies
func NewExpenseService(
	expenseRepo portsrepo.ExpenseRepositoryWithTx,
	groupRepo portsrepo.GroupRepositoryFacade,
	groupAuthorizer portssvc.GroupAuthorizerSvc,
) portssvc.ExpenseSvcFacade {
	return &expenseService{
		BaseService: BaseService{GroupAuthorizer: groupAuthorizer},
		expenseRepo: expenseRepo,
		groupRepo:   groupRepo,
	}
}

// Ensure expenseService implements the ExpenseSvcFacade interface
var _ portssvc.ExpenseSvcFacade = (*expenseService)(nil)

// GetExpenseByID retrieves a specific expense with its participants
func (s *expenseService) GetExpenseByID(ctx context.Context, groupID string, expenseID string, requestingUserID string) (*domain.Expense, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, groupID, domain.RoleMember); err != nil {
		return nil, err
	}

	expense, err := s.expenseRepo.FindExpenseByID(ctx, expenseID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find expense",
				slog.String("expense_id", expenseID))
		}
		return nil, err
	}
	if expense.GroupID != groupID {
		return nil, apperrors.ErrNotFound
	}

	return expense, nil
}

// ListGroupExpenses retrieves a paginated list of expenses in a group
func (s *expenseService) ListGroupExpenses(ctx context.Context, groupID string, userID string, params dto.ListExpensesParams) (*dto.ListExpensesResponse, error) {
	if err := s.AuthorizeUser(ctx, userID, groupID, domain.RoleMember); err != nil {
		return nil, err
	}

	expenses, nextToken, err := s.expenseRepo.ListExpensesByGroup(ctx, groupID, params.Limit, params.NextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list expenses",
			slog.String("group_id", groupID))
		return nil, fmt.Errorf("failed to retrieve expenses: %w", err)
	}

	resp := &dto.ListExpensesResponse{
		Expenses:  make([]dto.ExpenseResponse, len(expenses)),
		NextToken: nextToken,
	}
	for i, e := range expenses {
		resp.Expenses[i] = dto.ToExpenseResponse(&e)
	}
	return resp, nil
}

// CreateExpense validates and persists a new expense with its participant
// shares. The expense, its participants and the group total are written
// atomically.
func (s *expenseService) CreateExpense(ctx context.Context, groupID string, req dto.CreateExpenseRequest, creatorUserID string) (*domain.Expense, error) {
	if err := s.AuthorizeUser(ctx, creatorUserID, groupID, domain.RoleMember); err != nil {
		return nil, err
	}

	group, err := s.groupRepo.FindGroupByID(ctx, groupID)
	if err != nil {
		return nil, err
	}

	if !req.Amount.IsPositive() {
		return nil, apperrors.NewValidationFailedError("expense amount must be positive")
	}
	if req.Amount.Exponent() < -2 {
		return nil, apperrors.NewValidationFailedError("expense amount cannot have more than two decimal places")
	}
	if req.CurrencyCode != group.CurrencyCode {
		return nil, apperrors.NewValidationFailedError(fmt.Sprintf("expense currency %s does not match group currency %s", req.CurrencyCode, group.CurrencyCode))
	}

	validMembers, err := s.currentMemberSet(ctx, groupID)
	if err != nil {
		return nil, err
	}

	payer := req.PaidBy.ToMemberRef()
	if !validMembers[payer] {
		return nil, apperrors.NewValidationFailedError("payer is not a current member of the group")
	}

	seen := make(map[domain.MemberRef]bool, len(req.Participants))
	refs := make([]domain.MemberRef, len(req.Participants))
	for i, p := range req.Participants {
		ref := p.Member.ToMemberRef()
		if !validMembers[ref] {
			return nil, apperrors.NewValidationFailedError(fmt.Sprintf("participant %s is not a current member of the group", ref.ID))
		}
		if seen[ref] {
			return nil, apperrors.NewValidationFailedError(fmt.Sprintf("participant %s appears more than once", ref.ID))
		}
		seen[ref] = true
		refs[i] = ref
	}

	shares, err := s.resolveShares(req)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	expense := domain.Expense{
		ExpenseID:    uuid.NewString(),
		GroupID:      groupID,
		Description:  req.Description,
		Amount:       req.Amount,
		CurrencyCode: req.CurrencyCode,
		Category:     req.Category,
		ExpenseDate:  req.ExpenseDate,
		SplitType:    req.SplitType,
		PaidBy:       payer,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	expense.Participants = make([]domain.ExpenseParticipant, len(refs))
	for i, ref := range refs {
		expense.Participants[i] = domain.ExpenseParticipant{
			ParticipantID: uuid.NewString(),
			ExpenseID:     expense.ExpenseID,
			Member:        ref,
			AmountOwed:    shares[i],
			IsPaid:        ref == payer, // The payer's own share is settled from the start
			CreatedAt:     now,
		}
	}

	if err := s.expenseRepo.SaveExpense(ctx, expense); err != nil {
		s.LogError(ctx, err, "Failed to save expense",
			slog.String("group_id", groupID),
			slog.String("expense_id", expense.ExpenseID))
		return nil, err
	}

	s.LogInfo(ctx, "Expense created successfully",
		slog.String("expense_id", expense.ExpenseID),
		slog.String("group_id", groupID),
		slog.String("amount", expense.Amount.String()))
	return &expense, nil
}

// UpdateExpense updates expense details. Shares are fixed at creation and are
// not recomputed when the amount changes. Only the creator may edit.
func (s *expenseService) UpdateExpense(ctx context.Context, groupID string, expenseID string, req dto.UpdateExpenseRequest, requestingUserID string) (*domain.Expense, error) {
	expense, err := s.GetExpenseByID(ctx, groupID, expenseID, requestingUserID)
	if err != nil {
		return nil, err
	}
	if expense.CreatedBy != requestingUserID {
		return nil, apperrors.NewForbiddenError("only the expense creator can edit it")
	}

	amountDelta := decimal.Zero
	if req.Amount != nil {
		if !req.Amount.IsPositive() {
			return nil, apperrors.NewValidationFailedError("expense amount must be positive")
		}
		if req.Amount.Exponent() < -2 {
			return nil, apperrors.NewValidationFailedError("expense amount cannot have more than two decimal places")
		}
		amountDelta = req.Amount.Sub(expense.Amount)
		expense.Amount = *req.Amount
	}
	if req.Description != nil {
		expense.Description = *req.Description
	}
	if req.Category != nil {
		expense.Category = *req.Category
	}
	if req.ExpenseDate != nil {
		expense.ExpenseDate = *req.ExpenseDate
	}
	expense.LastUpdatedAt = time.Now()
	expense.LastUpdatedBy = requestingUserID

	if err := s.expenseRepo.UpdateExpense(ctx, *expense, amountDelta); err != nil {
		s.LogError(ctx, err, "Failed to update expense",
			slog.String("expense_id", expenseID))
		return nil, err
	}

	s.LogInfo(ctx, "Expense updated successfully",
		slog.String("expense_id", expenseID),
		slog.String("group_id", groupID))
	return expense, nil
}

// SettleExpense marks an expense settled, removing it from balance
// computation. Any group member may settle; settling twice is a no-op.
func (s *expenseService) SettleExpense(ctx context.Context, groupID string, expenseID string, requestingUserID string) (*domain.Expense, error) {
	expense, err := s.GetExpenseByID(ctx, groupID, expenseID, requestingUserID)
	if err != nil {
		return nil, err
	}
	if expense.IsSettled {
		return expense, nil
	}

	if err := s.expenseRepo.MarkExpenseSettled(ctx, expenseID, true, requestingUserID); err != nil {
		s.LogError(ctx, err, "Failed to settle expense",
			slog.String("expense_id", expenseID))
		return nil, err
	}

	expense.IsSettled = true
	expense.LastUpdatedAt = time.Now()
	expense.LastUpdatedBy = requestingUserID

	s.LogInfo(ctx, "Expense settled",
		slog.String("expense_id", expenseID),
		slog.String("group_id", groupID),
		slog.String("settled_by", requestingUserID))
	return expense, nil
}

// DeleteExpense removes an expense. Only the creator may delete.
func (s *expenseService) DeleteExpense(ctx context.Context, groupID string, expenseID string, requestingUserID string) error {
	expense, err := s.GetExpenseByID(ctx, groupID, expenseID, requestingUserID)
	if err != nil {
		return err
	}
	if expense.CreatedBy != requestingUserID {
		return apperrors.NewForbiddenError("only the expense creator can delete it")
	}

	if err := s.expenseRepo.DeleteExpense(ctx, expenseID); err != nil {
		s.LogError(ctx, err, "Failed to delete expense",
			slog.String("expense_id", expenseID))
		return err
	}

	s.LogInfo(ctx, "Expense deleted",
		slog.String("expense_id", expenseID),
		slog.String("group_id", groupID))
	return nil
}

// currentMemberSet builds the set of valid participant references for a group:
// registered members and unreconciled pending members.
func (s *expenseService) currentMemberSet(ctx context.Context, groupID string) (map[domain.MemberRef]bool, error) {
	members, err := s.groupRepo.ListGroupMembers(ctx, groupID)
	if err != nil {
		return nil, err
	}
	pendingStatus := domain.PendingStatusPending
	pending, err := s.groupRepo.ListPendingMembers(ctx, groupID, &pendingStatus)
	if err != nil {
		return nil, err
	}

	set := make(map[domain.MemberRef]bool, len(members)+len(pending))
	for _, m := range members {
		set[domain.MemberRef{ID: m.UserID, Kind: domain.MemberRegistered}] = true
	}
	for _, p := range pending {
		set[domain.MemberRef{ID: p.PendingID, Kind: domain.MemberPending}] = true
	}
	return set, nil
}

// resolveShares computes the per-participant amounts for the requested split.
func (s *expenseService) resolveShares(req dto.CreateExpenseRequest) ([]decimal.Decimal, error) {
	if len(req.Participants) == 0 {
		return nil, apperrors.NewValidationFailedError("an expense must have at least one participant")
	}
	switch req.SplitType {
	case domain.SplitEqual:
		return settlement.EqualShares(req.Amount, len(req.Participants)), nil
	case domain.SplitCustom:
		shares := make([]decimal.Decimal, len(req.Participants))
		for i, p := range req.Participants {
			if p.AmountOwed == nil {
				return nil, apperrors.NewValidationFailedError("custom splits require an amountOwed for every participant")
			}
			shares[i] = *p.AmountOwed
		}
		if err := settlement.ValidateShares(req.Amount, shares); err != nil {
			return nil, err
		}
		return shares, nil
	default:
		return nil, apperrors.NewValidationFailedError(fmt.Sprintf("unknown split type %q", req.SplitType))
	}
}
