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
	"github.com/splitnest/splitnest_backend/internal/dto"
)

type ExpenseServiceTestSuite struct {
	suite.Suite
	mockExpenseRepo *MockExpenseRepository
	mockGroupRepo   *MockGroupRepository
	mockAuthorizer  *MockGroupAuthorizer
	service         portssvc.ExpenseSvcFacade

	groupID string
	userA   string
	userB   string
	userC   string
	group   *domain.Group
	members []domain.GroupMember
}

func (suite *ExpenseServiceTestSuite) SetupTest() {
	suite.mockExpenseRepo = new(MockExpenseRepository)
	suite.mockGroupRepo = new(MockGroupRepository)
	suite.mockAuthorizer = new(MockGroupAuthorizer)
	suite.service = services.NewExpenseService(suite.mockExpenseRepo, suite.mockGroupRepo, suite.mockAuthorizer)

	suite.groupID = uuid.NewString()
	suite.userA = uuid.NewString()
	suite.userB = uuid.NewString()
	suite.userC = uuid.NewString()

	suite.group = &domain.Group{
		GroupID:      suite.groupID,
		Name:         "Flat 12",
		CurrencyCode: "USD",
	}
	suite.members = []domain.GroupMember{
		{GroupID: suite.groupID, UserID: suite.userA, FullName: "Alice", Role: domain.RoleAdmin},
		{GroupID: suite.groupID, UserID: suite.userB, FullName: "Bob", Role: domain.RoleMember},
		{GroupID: suite.groupID, UserID: suite.userC, FullName: "Cara", Role: domain.RoleMember},
	}
}

func (suite *ExpenseServiceTestSuite) registered(id string) dto.MemberRefDTO {
	return dto.MemberRefDTO{ID: id, Kind: domain.MemberRegistered}
}

func (suite *ExpenseServiceTestSuite) expectMemberLookups() {
	suite.mockGroupRepo.On("FindGroupByID", mock.Anything, suite.groupID).Return(suite.group, nil).Once()
	suite.mockGroupRepo.On("ListGroupMembers", mock.Anything, suite.groupID).Return(suite.members, nil).Once()
	suite.mockGroupRepo.On("ListPendingMembers", mock.Anything, suite.groupID, mock.Anything).Return([]domain.PendingMember{}, nil).Once()
}

func (suite *ExpenseServiceTestSuite) TestCreateExpense_EqualSplit() {
	ctx := context.Background()
	req := dto.CreateExpenseRequest{
		Description:  "Groceries",
		Amount:       decimal.RequireFromString("100.00"),
		CurrencyCode: "USD",
		Category:     "Food",
		ExpenseDate:  time.Now(),
		SplitType:    domain.SplitEqual,
		PaidBy:       suite.registered(suite.userA),
		Participants: []dto.ParticipantShareRequest{
			{Member: suite.registered(suite.userA)},
			{Member: suite.registered(suite.userB)},
			{Member: suite.registered(suite.userC)},
		},
	}

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.userA, suite.groupID, domain.RoleMember).Return(nil).Once()
	suite.expectMemberLookups()
	suite.mockExpenseRepo.On("SaveExpense", ctx, mock.AnythingOfType("domain.Expense")).Return(nil).Once()

	expense, err := suite.service.CreateExpense(ctx, suite.groupID, req, suite.userA)

	suite.Require().NoError(err)
	suite.Require().NotNil(expense)
	suite.NotEmpty(expense.ExpenseID)
	suite.Equal(suite.groupID, expense.GroupID)
	suite.False(expense.IsSettled)
	suite.Require().Len(expense.Participants, 3)

	// 100.00 over three participants: first share absorbs the remainder
	suite.True(expense.Participants[0].AmountOwed.Equal(decimal.RequireFromString("33.34")))
	suite.True(expense.Participants[1].AmountOwed.Equal(decimal.RequireFromString("33.33")))
	suite.True(expense.Participants[2].AmountOwed.Equal(decimal.RequireFromString("33.33")))

	// The payer's own share starts paid, the rest do not
	suite.True(expense.Participants[0].IsPaid)
	suite.False(expense.Participants[1].IsPaid)
	suite.False(expense.Participants[2].IsPaid)

	total := decimal.Zero
	for _, p := range expense.Participants {
		total = total.Add(p.AmountOwed)
	}
	suite.True(total.Equal(req.Amount))

	suite.mockExpenseRepo.AssertExpectations(suite.T())
	suite.mockGroupRepo.AssertExpectations(suite.T())
}

func (suite *ExpenseServiceTestSuite) TestCreateExpense_CustomSplit() {
	ctx := context.Background()
	share := func(s string) *decimal.Decimal {
		d := decimal.RequireFromString(s)
		return &d
	}
	req := dto.CreateExpenseRequest{
		Description:  "Concert tickets",
		Amount:       decimal.RequireFromString("70.00"),
		CurrencyCode: "USD",
		ExpenseDate:  time.Now(),
		SplitType:    domain.SplitCustom,
		PaidBy:       suite.registered(suite.userB),
		Participants: []dto.ParticipantShareRequest{
			{Member: suite.registered(suite.userA), AmountOwed: share("40.00")},
			{Member: suite.registered(suite.userC), AmountOwed: share("30.00")},
		},
	}

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.userB, suite.groupID, domain.RoleMember).Return(nil).Once()
	suite.expectMemberLookups()
	suite.mockExpenseRepo.On("SaveExpense", ctx, mock.AnythingOfType("domain.Expense")).Return(nil).Once()

	expense, err := suite.service.CreateExpense(ctx, suite.groupID, req, suite.userB)

	suite.Require().NoError(err)
	suite.Require().Len(expense.Participants, 2)
	suite.True(expense.Participants[0].AmountOwed.Equal(decimal.RequireFromString("40.00")))
	// The payer is not a participant here, so no share starts paid
	suite.False(expense.Participants[0].IsPaid)
	suite.False(expense.Participants[1].IsPaid)
}

func (suite *ExpenseServiceTestSuite) TestCreateExpense_CustomSharesMismatch() {
	ctx := context.Background()
	share := func(s string) *decimal.Decimal {
		d := decimal.RequireFromString(s)
		return &d
	}
	req := dto.CreateExpenseRequest{
		Description:  "Dinner",
		Amount:       decimal.RequireFromString("100.00"),
		CurrencyCode: "USD",
		ExpenseDate:  time.Now(),
		SplitType:    domain.SplitCustom,
		PaidBy:       suite.registered(suite.userA),
		Participants: []dto.ParticipantShareRequest{
			{Member: suite.registered(suite.userA), AmountOwed: share("50.00")},
			{Member: suite.registered(suite.userB), AmountOwed: share("45.00")},
		},
	}

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.userA, suite.groupID, domain.RoleMember).Return(nil).Once()
	suite.expectMemberLookups()

	_, err := suite.service.CreateExpense(ctx, suite.groupID, req, suite.userA)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockExpenseRepo.AssertNotCalled(suite.T(), "SaveExpense", mock.Anything, mock.Anything)
}

func (suite *ExpenseServiceTestSuite) TestCreateExpense_NoParticipants() {
	ctx := context.Background()
	req := dto.CreateExpenseRequest{
		Description:  "Groceries",
		Amount:       decimal.RequireFromString("50.00"),
		CurrencyCode: "USD",
		ExpenseDate:  time.Now(),
		SplitType:    domain.SplitEqual,
		PaidBy:       suite.registered(suite.userA),
		Participants: []dto.ParticipantShareRequest{},
	}

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.userA, suite.groupID, domain.RoleMember).Return(nil).Once()
	suite.expectMemberLookups()

	_, err := suite.service.CreateExpense(ctx, suite.groupID, req, suite.userA)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockExpenseRepo.AssertNotCalled(suite.T(), "SaveExpense")
}

func (suite *ExpenseServiceTestSuite) TestCreateExpense_CurrencyMismatch() {
	ctx := context.Background()
	req := dto.CreateExpenseRequest{
		Description:  "Taxi",
		Amount:       decimal.RequireFromString("20.00"),
		CurrencyCode: "EUR",
		ExpenseDate:  time.Now(),
		SplitType:    domain.SplitEqual,
		PaidBy:       suite.registered(suite.userA),
		Participants: []dto.ParticipantShareRequest{
			{Member: suite.registered(suite.userA)},
		},
	}

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.userA, suite.groupID, domain.RoleMember).Return(nil).Once()
	suite.mockGroupRepo.On("FindGroupByID", mock.Anything, suite.groupID).Return(suite.group, nil).Once()

	_, err := suite.service.CreateExpense(ctx, suite.groupID, req, suite.userA)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *ExpenseServiceTestSuite) TestCreateExpense_PayerNotMember() {
	ctx := context.Background()
	outsider := uuid.NewString()
	req := dto.CreateExpenseRequest{
		Description:  "Rent",
		Amount:       decimal.RequireFromString("900.00"),
		CurrencyCode: "USD",
		ExpenseDate:  time.Now(),
		SplitType:    domain.SplitEqual,
		PaidBy:       suite.registered(outsider),
		Participants: []dto.ParticipantShareRequest{
			{Member: suite.registered(suite.userA)},
		},
	}

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.userA, suite.groupID, domain.RoleMember).Return(nil).Once()
	suite.expectMemberLookups()

	_, err := suite.service.CreateExpense(ctx, suite.groupID, req, suite.userA)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *ExpenseServiceTestSuite) TestCreateExpense_DuplicateParticipant() {
	ctx := context.Background()
	req := dto.CreateExpenseRequest{
		Description:  "Drinks",
		Amount:       decimal.RequireFromString("30.00"),
		CurrencyCode: "USD",
		ExpenseDate:  time.Now(),
		SplitType:    domain.SplitEqual,
		PaidBy:       suite.registered(suite.userA),
		Participants: []dto.ParticipantShareRequest{
			{Member: suite.registered(suite.userB)},
			{Member: suite.registered(suite.userB)},
		},
	}

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.userA, suite.groupID, domain.RoleMember).Return(nil).Once()
	suite.expectMemberLookups()

	_, err := suite.service.CreateExpense(ctx, suite.groupID, req, suite.userA)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *ExpenseServiceTestSuite) TestCreateExpense_AuthorizationFail() {
	ctx := context.Background()
	req := dto.CreateExpenseRequest{}

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.userA, suite.groupID, domain.RoleMember).Return(apperrors.ErrForbidden).Once()

	_, err := suite.service.CreateExpense(ctx, suite.groupID, req, suite.userA)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockGroupRepo.AssertNotCalled(suite.T(), "FindGroupByID", mock.Anything, mock.Anything)
}

func (suite *ExpenseServiceTestSuite) TestSettleExpense() {
	ctx := context.Background()
	expenseID := uuid.NewString()
	expense := &domain.Expense{
		ExpenseID: expenseID,
		GroupID:   suite.groupID,
		Amount:    decimal.RequireFromString("45.00"),
		AuditFields: domain.AuditFields{
			CreatedBy: suite.userA,
		},
	}

	// Any member may settle, not just the creator
	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.userB, suite.groupID, domain.RoleMember).Return(nil).Once()
	suite.mockExpenseRepo.On("FindExpenseByID", ctx, expenseID).Return(expense, nil).Once()
	suite.mockExpenseRepo.On("MarkExpenseSettled", ctx, expenseID, true, suite.userB).Return(nil).Once()

	settled, err := suite.service.SettleExpense(ctx, suite.groupID, expenseID, suite.userB)

	suite.Require().NoError(err)
	suite.True(settled.IsSettled)
	suite.mockExpenseRepo.AssertExpectations(suite.T())
}

func (suite *ExpenseServiceTestSuite) TestSettleExpense_AlreadySettledIsNoOp() {
	ctx := context.Background()
	expenseID := uuid.NewString()
	expense := &domain.Expense{
		ExpenseID: expenseID,
		GroupID:   suite.groupID,
		IsSettled: true,
	}

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.userB, suite.groupID, domain.RoleMember).Return(nil).Once()
	suite.mockExpenseRepo.On("FindExpenseByID", ctx, expenseID).Return(expense, nil).Once()

	settled, err := suite.service.SettleExpense(ctx, suite.groupID, expenseID, suite.userB)

	suite.Require().NoError(err)
	suite.True(settled.IsSettled)
	suite.mockExpenseRepo.AssertNotCalled(suite.T(), "MarkExpenseSettled", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ExpenseServiceTestSuite) TestUpdateExpense_NotCreator() {
	ctx := context.Background()
	expenseID := uuid.NewString()
	expense := &domain.Expense{
		ExpenseID: expenseID,
		GroupID:   suite.groupID,
		AuditFields: domain.AuditFields{
			CreatedBy: suite.userA,
		},
	}
	newDesc := "Edited"

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.userB, suite.groupID, domain.RoleMember).Return(nil).Once()
	suite.mockExpenseRepo.On("FindExpenseByID", ctx, expenseID).Return(expense, nil).Once()

	_, err := suite.service.UpdateExpense(ctx, suite.groupID, expenseID, dto.UpdateExpenseRequest{Description: &newDesc}, suite.userB)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockExpenseRepo.AssertNotCalled(suite.T(), "UpdateExpense", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *ExpenseServiceTestSuite) TestUpdateExpense_AmountChangePreservesShares() {
	ctx := context.Background()
	expenseID := uuid.NewString()
	expense := &domain.Expense{
		ExpenseID: expenseID,
		GroupID:   suite.groupID,
		Amount:    decimal.RequireFromString("60.00"),
		AuditFields: domain.AuditFields{
			CreatedBy: suite.userA,
		},
	}
	newAmount := decimal.RequireFromString("75.00")

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.userA, suite.groupID, domain.RoleMember).Return(nil).Once()
	suite.mockExpenseRepo.On("FindExpenseByID", ctx, expenseID).Return(expense, nil).Once()
	suite.mockExpenseRepo.On("UpdateExpense", ctx, mock.AnythingOfType("domain.Expense"), mock.MatchedBy(func(d decimal.Decimal) bool {
		return d.Equal(decimal.RequireFromString("15.00"))
	})).Return(nil).Once()

	updated, err := suite.service.UpdateExpense(ctx, suite.groupID, expenseID, dto.UpdateExpenseRequest{Amount: &newAmount}, suite.userA)

	suite.Require().NoError(err)
	suite.True(updated.Amount.Equal(newAmount))
	suite.mockExpenseRepo.AssertExpectations(suite.T())
}

func (suite *ExpenseServiceTestSuite) TestDeleteExpense_CreatorOnly() {
	ctx := context.Background()
	expenseID := uuid.NewString()
	expense := &domain.Expense{
		ExpenseID: expenseID,
		GroupID:   suite.groupID,
		AuditFields: domain.AuditFields{
			CreatedBy: suite.userA,
		},
	}

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.userA, suite.groupID, domain.RoleMember).Return(nil).Once()
	suite.mockExpenseRepo.On("FindExpenseByID", ctx, expenseID).Return(expense, nil).Once()
	suite.mockExpenseRepo.On("DeleteExpense", ctx, expenseID).Return(nil).Once()

	err := suite.service.DeleteExpense(ctx, suite.groupID, expenseID, suite.userA)

	suite.Require().NoError(err)
	suite.mockExpenseRepo.AssertExpectations(suite.T())
}

func (suite *ExpenseServiceTestSuite) TestGetExpenseByID_WrongGroup() {
	ctx := context.Background()
	expenseID := uuid.NewString()
	expense := &domain.Expense{
		ExpenseID: expenseID,
		GroupID:   uuid.NewString(), // Belongs to a different group
	}

	suite.mockAuthorizer.On("AuthorizeUserAction", ctx, suite.userA, suite.groupID, domain.RoleMember).Return(nil).Once()
	suite.mockExpenseRepo.On("FindExpenseByID", ctx, expenseID).Return(expense, nil).Once()

	_, err := suite.service.GetExpenseByID(ctx, suite.groupID, expenseID, suite.userA)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func TestExpenseServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ExpenseServiceTestSuite))
}
