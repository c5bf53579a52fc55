package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/splitnest/splitnest_backend/internal/apperrors"
	"github.com/splitnest/splitnest_backend/internal/core/domain"
	portssvc "github.com/splitnest/splitnest_backend/internal/core/ports/services"
	"github.com/splitnest/splitnest_backend/internal/core/services"
)

type SettlementServiceTestSuite struct {
	suite.Suite
	mockExpenseRepo *MockExpenseRepository
	mockGroupRepo   *MockGroupRepository
	mockAuthorizer  *MockGroupAuthorizer
	service         portssvc.SettlementSvcFacade

	groupID string
	userA   domain.MemberRef
	userB   domain.MemberRef
	userC   domain.MemberRef
}

func (suite *SettlementServiceTestSuite) SetupTest() {
	suite.mockExpenseRepo = new(MockExpenseRepository)
	suite.mockGroupRepo = new(MockGroupRepository)
	suite.mockAuthorizer = new(MockGroupAuthorizer)
	suite.service = services.NewSettlementService(suite.mockExpenseRepo, suite.mockGroupRepo, suite.mockAuthorizer)

	suite.groupID = uuid.NewString()
	suite.userA = domain.MemberRef{ID: uuid.NewString(), Kind: domain.MemberRegistered}
	suite.userB = domain.MemberRef{ID: uuid.NewString(), Kind: domain.MemberRegistered}
	suite.userC = domain.MemberRef{ID: uuid.NewString(), Kind: domain.MemberRegistered}
}

func (suite *SettlementServiceTestSuite) expectRoster(members []domain.GroupMember, pending []domain.PendingMember) {
	suite.mockGroupRepo.On("ListGroupMembers", mock.Anything, suite.groupID).Return(members, nil).Once()
	suite.mockGroupRepo.On("ListPendingMembers", mock.Anything, suite.groupID, mock.Anything).Return(pending, nil).Once()
}

func (suite *SettlementServiceTestSuite) threeWayExpense(amount string) domain.Expense {
	total := decimal.RequireFromString(amount)
	share := total.Div(decimal.NewFromInt(3)).Round(2)
	first := total.Sub(share.Mul(decimal.NewFromInt(2)))
	return domain.Expense{
		ExpenseID:   uuid.NewString(),
		GroupID:     suite.groupID,
		Amount:      total,
		ExpenseDate: time.Now(),
		SplitType:   domain.SplitEqual,
		PaidBy:      suite.userA,
		Participants: []domain.ExpenseParticipant{
			{Member: suite.userA, AmountOwed: first},
			{Member: suite.userB, AmountOwed: share},
			{Member: suite.userC, AmountOwed: share},
		},
	}
}

func (suite *SettlementServiceTestSuite) TestGetGroupBalances() {
	ctx := context.Background()
	members := []domain.GroupMember{
		{GroupID: suite.groupID, UserID: suite.userA.ID, FullName: "Alice", Role: domain.RoleAdmin},
		{GroupID: suite.groupID, UserID: suite.userB.ID, FullName: "Bob", Role: domain.RoleMember},
		{GroupID: suite.groupID, UserID: suite.userC.ID, FullName: "Cara", Role: domain.RoleMember},
	}

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.userA.ID, suite.groupID, domain.RoleMember).Return(nil).Once()
	suite.expectRoster(members, []domain.PendingMember{})
	suite.mockExpenseRepo.On("ListUnsettledExpensesByGroup", ctx, suite.groupID).
		Return([]domain.Expense{suite.threeWayExpense("90.00")}, nil).Once()

	balances, err := suite.service.GetGroupBalances(ctx, suite.groupID, suite.userA.ID)

	suite.Require().NoError(err)
	suite.Require().Len(balances, 3)

	byRef := make(map[domain.MemberRef]domain.Balance, len(balances))
	for _, b := range balances {
		byRef[b.Member] = b
	}
	// Alice paid 90 and owes 30, so she is owed 60; Bob and Cara owe 30 each.
	suite.True(byRef[suite.userA].Amount.Equal(decimal.RequireFromString("60.00")))
	suite.True(byRef[suite.userB].Amount.Equal(decimal.RequireFromString("-30.00")))
	suite.True(byRef[suite.userC].Amount.Equal(decimal.RequireFromString("-30.00")))
	suite.Equal("Alice", byRef[suite.userA].Name)
}

func (suite *SettlementServiceTestSuite) TestGetGroupBalances_PendingMemberIncluded() {
	ctx := context.Background()
	pendingID := uuid.NewString()
	pendingRef := domain.MemberRef{ID: pendingID, Kind: domain.MemberPending}
	members := []domain.GroupMember{
		{GroupID: suite.groupID, UserID: suite.userA.ID, FullName: "Alice", Role: domain.RoleAdmin},
	}
	pendings := []domain.PendingMember{
		{PendingID: pendingID, GroupID: suite.groupID, DisplayName: "Invitee", Status: domain.PendingStatusPending},
	}
	expense := domain.Expense{
		ExpenseID: uuid.NewString(),
		GroupID:   suite.groupID,
		Amount:    decimal.RequireFromString("40.00"),
		SplitType: domain.SplitEqual,
		PaidBy:    suite.userA,
		Participants: []domain.ExpenseParticipant{
			{Member: suite.userA, AmountOwed: decimal.RequireFromString("20.00")},
			{Member: pendingRef, AmountOwed: decimal.RequireFromString("20.00")},
		},
	}

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.userA.ID, suite.groupID, domain.RoleMember).Return(nil).Once()
	suite.expectRoster(members, pendings)
	suite.mockExpenseRepo.On("ListUnsettledExpensesByGroup", ctx, suite.groupID).
		Return([]domain.Expense{expense}, nil).Once()

	balances, err := suite.service.GetGroupBalances(ctx, suite.groupID, suite.userA.ID)

	suite.Require().NoError(err)
	suite.Require().Len(balances, 2)

	byRef := make(map[domain.MemberRef]domain.Balance, len(balances))
	for _, b := range balances {
		byRef[b.Member] = b
	}
	suite.True(byRef[suite.userA].Amount.Equal(decimal.RequireFromString("20.00")))
	suite.True(byRef[pendingRef].Amount.Equal(decimal.RequireFromString("-20.00")))
	suite.Equal("Invitee", byRef[pendingRef].Name)
}

func (suite *SettlementServiceTestSuite) TestGetGroupSettlement() {
	ctx := context.Background()
	members := []domain.GroupMember{
		{GroupID: suite.groupID, UserID: suite.userA.ID, FullName: "Alice", Role: domain.RoleAdmin},
		{GroupID: suite.groupID, UserID: suite.userB.ID, FullName: "Bob", Role: domain.RoleMember},
		{GroupID: suite.groupID, UserID: suite.userC.ID, FullName: "Cara", Role: domain.RoleMember},
	}

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.userB.ID, suite.groupID, domain.RoleMember).Return(nil).Once()
	suite.expectRoster(members, []domain.PendingMember{})
	suite.mockExpenseRepo.On("ListUnsettledExpensesByGroup", ctx, suite.groupID).
		Return([]domain.Expense{suite.threeWayExpense("90.00")}, nil).Once()

	transfers, err := suite.service.GetGroupSettlement(ctx, suite.groupID, suite.userB.ID)

	suite.Require().NoError(err)
	suite.Require().Len(transfers, 2)
	for _, t := range transfers {
		suite.Equal(suite.userA, t.To)
		suite.True(t.Amount.Equal(decimal.RequireFromString("30.00")))
	}
}

func (suite *SettlementServiceTestSuite) TestGetGroupSettlement_NoDebtsNoTransfers() {
	ctx := context.Background()
	members := []domain.GroupMember{
		{GroupID: suite.groupID, UserID: suite.userA.ID, FullName: "Alice", Role: domain.RoleAdmin},
		{GroupID: suite.groupID, UserID: suite.userB.ID, FullName: "Bob", Role: domain.RoleMember},
	}

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.userA.ID, suite.groupID, domain.RoleMember).Return(nil).Once()
	suite.expectRoster(members, []domain.PendingMember{})
	suite.mockExpenseRepo.On("ListUnsettledExpensesByGroup", ctx, suite.groupID).
		Return([]domain.Expense{}, nil).Once()

	transfers, err := suite.service.GetGroupSettlement(ctx, suite.groupID, suite.userA.ID)

	suite.Require().NoError(err)
	suite.Empty(transfers)
}

func (suite *SettlementServiceTestSuite) TestGetGroupSettlement_ConservationFailure() {
	ctx := context.Background()
	members := []domain.GroupMember{
		{GroupID: suite.groupID, UserID: suite.userA.ID, FullName: "Alice", Role: domain.RoleAdmin},
		{GroupID: suite.groupID, UserID: suite.userB.ID, FullName: "Bob", Role: domain.RoleMember},
	}
	// Corrupt shares: the payer is not a roster member, so owed amounts have
	// no matching paid amount and the balance vector cannot sum to zero.
	corrupt := domain.Expense{
		ExpenseID: uuid.NewString(),
		GroupID:   suite.groupID,
		Amount:    decimal.RequireFromString("50.00"),
		SplitType: domain.SplitEqual,
		PaidBy:    domain.MemberRef{ID: uuid.NewString(), Kind: domain.MemberRegistered},
		Participants: []domain.ExpenseParticipant{
			{Member: suite.userA, AmountOwed: decimal.RequireFromString("25.00")},
			{Member: suite.userB, AmountOwed: decimal.RequireFromString("25.00")},
		},
	}

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.userA.ID, suite.groupID, domain.RoleMember).Return(nil).Once()
	suite.expectRoster(members, []domain.PendingMember{})
	suite.mockExpenseRepo.On("ListUnsettledExpensesByGroup", ctx, suite.groupID).
		Return([]domain.Expense{corrupt}, nil).Once()

	_, err := suite.service.GetGroupSettlement(ctx, suite.groupID, suite.userA.ID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInvariantViolation)
}

func (suite *SettlementServiceTestSuite) TestGetGroupBalances_AuthorizationFail() {
	ctx := context.Background()
	outsider := uuid.NewString()

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, outsider, suite.groupID, domain.RoleMember).Return(apperrors.ErrForbidden).Once()

	_, err := suite.service.GetGroupBalances(ctx, suite.groupID, outsider)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockExpenseRepo.AssertNotCalled(suite.T(), "ListUnsettledExpensesByGroup", mock.Anything, mock.Anything)
}

func TestSettlementServiceTestSuite(t *testing.T) {
	suite.Run(t, new(SettlementServiceTestSuite))
}
