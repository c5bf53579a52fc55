package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/splitnest/splitnest_backend/internal/apperrors"
	"github.com/splitnest/splitnest_backend/internal/core/domain"
	portssvc "github.com/splitnest/splitnest_backend/internal/core/ports/services"
	"github.com/splitnest/splitnest_backend/internal/dto"
	"github.com/splitnest/splitnest_backend/internal/middleware"
)

// --- Mock ExpenseService ---
type MockExpenseService struct {
	mock.Mock
}

func (m *MockExpenseService) GetExpenseByID(ctx context.Context, groupID string, expenseID string, requestingUserID string) (*domain.Expense, error) {
	args := m.Called(ctx, groupID, expenseID, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Expense), args.Error(1)
}
func (m *MockExpenseService) ListGroupExpenses(ctx context.Context, groupID string, userID string, params dto.ListExpensesParams) (*dto.ListExpensesResponse, error) {
	args := m.Called(ctx, groupID, userID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ListExpensesResponse), args.Error(1)
}
func (m *MockExpenseService) CreateExpense(ctx context.Context, groupID string, req dto.CreateExpenseRequest, creatorUserID string) (*domain.Expense, error) {
	args := m.Called(ctx, groupID, req, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Expense), args.Error(1)
}
func (m *MockExpenseService) UpdateExpense(ctx context.Context, groupID string, expenseID string, req dto.UpdateExpenseRequest, requestingUserID string) (*domain.Expense, error) {
	args := m.Called(ctx, groupID, expenseID, req, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Expense), args.Error(1)
}
func (m *MockExpenseService) SettleExpense(ctx context.Context, groupID string, expenseID string, requestingUserID string) (*domain.Expense, error) {
	args := m.Called(ctx, groupID, expenseID, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Expense), args.Error(1)
}
func (m *MockExpenseService) DeleteExpense(ctx context.Context, groupID string, expenseID string, requestingUserID string) error {
	args := m.Called(ctx, groupID, expenseID, requestingUserID)
	return args.Error(0)
}

var _ portssvc.ExpenseSvcFacade = (*MockExpenseService)(nil)

// --- Mock SettlementService ---
type MockSettlementService struct {
	mock.Mock
}

func (m *MockSettlementService) GetGroupBalances(ctx context.Context, groupID string, requestingUserID string) ([]domain.Balance, error) {
	args := m.Called(ctx, groupID, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Balance), args.Error(1)
}
func (m *MockSettlementService) GetGroupSettlement(ctx context.Context, groupID string, requestingUserID string) ([]domain.Transfer, error) {
	args := m.Called(ctx, groupID, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transfer), args.Error(1)
}

var _ portssvc.SettlementSvcFacade = (*MockSettlementService)(nil)

// --- Test Suite ---
type ExpenseHandlerTestSuite struct {
	suite.Suite
	router                *gin.Engine
	mockExpenseService    *MockExpenseService
	mockSettlementService *MockSettlementService
	jwtSecret             string
}

func (suite *ExpenseHandlerTestSuite) generateTestToken(userID string) string {
	claims := jwt.RegisteredClaims{
		Issuer:    "splitnest-test",
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(suite.jwtSecret))
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return signed
}

func (suite *ExpenseHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.jwtSecret = "test-secret-key-that-is-long-enough"

	suite.mockExpenseService = new(MockExpenseService)
	suite.mockSettlementService = new(MockSettlementService)

	// Mirror the production nesting: expenses and balances hang off a group.
	v1 := suite.router.Group("/api/v1", middleware.AuthMiddleware(suite.jwtSecret))
	groupRG := v1.Group("/groups/:group_id")
	registerExpenseRoutes(groupRG, suite.mockExpenseService, suite.mockSettlementService)
}

func (suite *ExpenseHandlerTestSuite) doRequest(method, url, userID string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, url, nil)
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(userID))
	req.Header.Set("Accept", "application/json")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

// --- Test Cases ---

func (suite *ExpenseHandlerTestSuite) TestGetGroupBalances_Success() {
	groupID := uuid.NewString()
	userID := uuid.NewString()

	alice := domain.MemberRef{ID: userID, Kind: domain.MemberRegistered}
	bob := domain.MemberRef{ID: uuid.NewString(), Kind: domain.MemberPending}
	balances := []domain.Balance{
		{Member: alice, Name: "Alice", Amount: decimal.NewFromInt(60)},
		{Member: bob, Name: "Bob", Amount: decimal.NewFromInt(-60)},
	}

	suite.mockSettlementService.On("GetGroupBalances",
		mock.Anything, groupID, userID,
	).Return(balances, nil).Once()

	w := suite.doRequest(http.MethodGet, fmt.Sprintf("/api/v1/groups/%s/balances", groupID), userID)

	suite.Equal(http.StatusOK, w.Code)

	var body dto.GroupBalancesResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.Equal(groupID, body.GroupID)
	suite.Len(body.Balances, 2)
	suite.Equal(userID, body.Balances[0].Member.ID)
	suite.True(body.Balances[0].Amount.Equal(decimal.NewFromInt(60)))
	suite.Equal(domain.MemberPending, body.Balances[1].Member.Kind)

	suite.mockSettlementService.AssertExpectations(suite.T())
}

func (suite *ExpenseHandlerTestSuite) TestGetGroupBalances_InconsistentData() {
	groupID := uuid.NewString()
	userID := uuid.NewString()

	suite.mockSettlementService.On("GetGroupBalances",
		mock.Anything, groupID, userID,
	).Return(nil, apperrors.ErrInvariantViolation).Once()

	w := suite.doRequest(http.MethodGet, fmt.Sprintf("/api/v1/groups/%s/balances", groupID), userID)

	suite.Equal(http.StatusInternalServerError, w.Code)

	var body ErrorResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.Equal("Balance data is inconsistent", body.Error)

	suite.mockSettlementService.AssertExpectations(suite.T())
}

func (suite *ExpenseHandlerTestSuite) TestGetGroupSettlement_Success() {
	groupID := uuid.NewString()
	userID := uuid.NewString()

	debtor := domain.MemberRef{ID: uuid.NewString(), Kind: domain.MemberRegistered}
	creditor := domain.MemberRef{ID: userID, Kind: domain.MemberRegistered}
	transfers := []domain.Transfer{
		{From: debtor, To: creditor, Amount: decimal.RequireFromString("42.50")},
	}

	suite.mockSettlementService.On("GetGroupSettlement",
		mock.Anything, groupID, userID,
	).Return(transfers, nil).Once()

	w := suite.doRequest(http.MethodGet, fmt.Sprintf("/api/v1/groups/%s/settlements", groupID), userID)

	suite.Equal(http.StatusOK, w.Code)

	var body dto.GroupSettlementResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.Len(body.Transfers, 1)
	suite.Equal(debtor.ID, body.Transfers[0].From.ID)
	suite.Equal(userID, body.Transfers[0].To.ID)
	suite.True(body.Transfers[0].Amount.Equal(decimal.RequireFromString("42.50")))

	suite.mockSettlementService.AssertExpectations(suite.T())
}

func (suite *ExpenseHandlerTestSuite) TestGetGroupSettlement_NotAMember() {
	groupID := uuid.NewString()
	userID := uuid.NewString()

	suite.mockSettlementService.On("GetGroupSettlement",
		mock.Anything, groupID, userID,
	).Return(nil, apperrors.ErrForbidden).Once()

	w := suite.doRequest(http.MethodGet, fmt.Sprintf("/api/v1/groups/%s/settlements", groupID), userID)

	suite.Equal(http.StatusForbidden, w.Code)
	suite.mockSettlementService.AssertExpectations(suite.T())
}

func (suite *ExpenseHandlerTestSuite) TestSettleExpense_Success() {
	groupID := uuid.NewString()
	expenseID := uuid.NewString()
	userID := uuid.NewString()

	settled := &domain.Expense{
		ExpenseID:    expenseID,
		GroupID:      groupID,
		Description:  "Dinner",
		Amount:       decimal.NewFromInt(90),
		CurrencyCode: "USD",
		ExpenseDate:  time.Now(),
		SplitType:    domain.SplitEqual,
		PaidBy:       domain.MemberRef{ID: userID, Kind: domain.MemberRegistered},
		IsSettled:    true,
	}

	suite.mockExpenseService.On("SettleExpense",
		mock.Anything, groupID, expenseID, userID,
	).Return(settled, nil).Once()

	url := fmt.Sprintf("/api/v1/groups/%s/expenses/%s/settle", groupID, expenseID)
	w := suite.doRequest(http.MethodPost, url, userID)

	suite.Equal(http.StatusOK, w.Code)

	var body dto.ExpenseResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.Equal(expenseID, body.ExpenseID)
	suite.True(body.IsSettled)

	suite.mockExpenseService.AssertExpectations(suite.T())
	suite.mockSettlementService.AssertNotCalled(suite.T(), "GetGroupBalances")
}

func (suite *ExpenseHandlerTestSuite) TestSettleExpense_NotFound() {
	groupID := uuid.NewString()
	expenseID := uuid.NewString()
	userID := uuid.NewString()

	suite.mockExpenseService.On("SettleExpense",
		mock.Anything, groupID, expenseID, userID,
	).Return(nil, apperrors.ErrNotFound).Once()

	url := fmt.Sprintf("/api/v1/groups/%s/expenses/%s/settle", groupID, expenseID)
	w := suite.doRequest(http.MethodPost, url, userID)

	suite.Equal(http.StatusNotFound, w.Code)
	suite.mockExpenseService.AssertExpectations(suite.T())
}

func (suite *ExpenseHandlerTestSuite) TestBalances_MissingToken() {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/groups/abc/balances", nil)
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockSettlementService.AssertNotCalled(suite.T(), "GetGroupBalances")
}

// --- Run Test Suite ---
func TestExpenseHandler(t *testing.T) {
	suite.Run(t, new(ExpenseHandlerTestSuite))
}
