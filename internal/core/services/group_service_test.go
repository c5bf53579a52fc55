package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/splitnest/splitnest_backend/internal/apperrors"
	"github.com/splitnest/splitnest_backend/internal/core/domain"
	portssvc "github.com/splitnest/splitnest_backend/internal/core/ports/services"
	"github.com/splitnest/splitnest_backend/internal/core/services"
	"github.com/splitnest/splitnest_backend/internal/dto"
)

type GroupServiceTestSuite struct {
	suite.Suite
	mockGroupRepo *MockGroupRepository
	mockUserRepo  *MockUserRepository
	service       portssvc.GroupSvcFacade

	groupID string
	adminID string
	userID  string
}

func (suite *GroupServiceTestSuite) SetupTest() {
	suite.mockGroupRepo = new(MockGroupRepository)
	suite.mockUserRepo = new(MockUserRepository)
	suite.service = services.NewGroupService(suite.mockGroupRepo, suite.mockUserRepo)

	suite.groupID = uuid.NewString()
	suite.adminID = uuid.NewString()
	suite.userID = uuid.NewString()
}

func (suite *GroupServiceTestSuite) expectRole(userID string, role domain.GroupRole) {
	suite.mockGroupRepo.On("FindUserGroupRole", mock.Anything, userID, suite.groupID).
		Return(&domain.GroupMember{GroupID: suite.groupID, UserID: userID, Role: role}, nil).Once()
}

func (suite *GroupServiceTestSuite) TestCreateGroup() {
	ctx := context.Background()
	req := dto.CreateGroupRequest{
		Name:         "Ski Trip",
		Description:  "Chalet weekend",
		CurrencyCode: "EUR",
	}

	suite.mockGroupRepo.On("SaveGroup", ctx, mock.AnythingOfType("domain.Group")).Return(nil).Once()
	suite.mockGroupRepo.On("AddUserToGroup", ctx, mock.MatchedBy(func(m domain.GroupMember) bool {
		return m.UserID == suite.adminID && m.Role == domain.RoleAdmin
	})).Return(nil).Once()

	group, err := suite.service.CreateGroup(ctx, req, suite.adminID)

	suite.Require().NoError(err)
	suite.NotEmpty(group.GroupID)
	suite.Equal("Ski Trip", group.Name)
	suite.Equal("EUR", group.CurrencyCode)
	suite.Equal(suite.adminID, group.CreatedBy)
	suite.mockGroupRepo.AssertExpectations(suite.T())
}

func (suite *GroupServiceTestSuite) TestGetGroupByID_NonMemberForbidden() {
	ctx := context.Background()

	suite.mockGroupRepo.On("FindUserGroupRole", mock.Anything, suite.userID, suite.groupID).
		Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.GetGroupByID(ctx, suite.groupID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockGroupRepo.AssertNotCalled(suite.T(), "FindGroupByID", mock.Anything, mock.Anything)
}

func (suite *GroupServiceTestSuite) TestUpdateGroup_MemberCannotUpdate() {
	ctx := context.Background()
	suite.expectRole(suite.userID, domain.RoleMember)

	newName := "Renamed"
	_, err := suite.service.UpdateGroup(ctx, suite.groupID, dto.UpdateGroupRequest{Name: &newName}, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockGroupRepo.AssertNotCalled(suite.T(), "UpdateGroup", mock.Anything, mock.Anything)
}

func (suite *GroupServiceTestSuite) TestRemoveUserFromGroup_CreatorProtected() {
	ctx := context.Background()
	suite.expectRole(suite.adminID, domain.RoleAdmin)
	suite.mockGroupRepo.On("FindGroupByID", ctx, suite.groupID).Return(&domain.Group{
		GroupID:     suite.groupID,
		AuditFields: domain.AuditFields{CreatedBy: suite.userID},
	}, nil).Once()

	err := suite.service.RemoveUserFromGroup(ctx, suite.adminID, suite.userID, suite.groupID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockGroupRepo.AssertNotCalled(suite.T(), "RemoveUserFromGroup", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *GroupServiceTestSuite) TestRemoveUserFromGroup_LastAdminConflict() {
	ctx := context.Background()
	// The admin removes themselves while being the only admin left
	suite.mockGroupRepo.On("FindGroupByID", ctx, suite.groupID).Return(&domain.Group{
		GroupID:     suite.groupID,
		AuditFields: domain.AuditFields{CreatedBy: uuid.NewString()},
	}, nil).Once()
	suite.expectRole(suite.adminID, domain.RoleAdmin)
	suite.mockGroupRepo.On("CountGroupAdmins", ctx, suite.groupID).Return(1, nil).Once()

	err := suite.service.RemoveUserFromGroup(ctx, suite.adminID, suite.adminID, suite.groupID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockGroupRepo.AssertNotCalled(suite.T(), "RemoveUserFromGroup", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *GroupServiceTestSuite) TestRemoveUserFromGroup_MemberRemovesSelf() {
	ctx := context.Background()
	suite.mockGroupRepo.On("FindGroupByID", ctx, suite.groupID).Return(&domain.Group{
		GroupID:     suite.groupID,
		AuditFields: domain.AuditFields{CreatedBy: suite.adminID},
	}, nil).Once()
	suite.expectRole(suite.userID, domain.RoleMember)
	suite.mockGroupRepo.On("RemoveUserFromGroup", ctx, suite.groupID, suite.userID).Return(nil).Once()

	err := suite.service.RemoveUserFromGroup(ctx, suite.userID, suite.userID, suite.groupID)

	suite.Require().NoError(err)
	suite.mockGroupRepo.AssertExpectations(suite.T())
}

func (suite *GroupServiceTestSuite) TestUpdateUserGroupRole_LastAdminDemotion() {
	ctx := context.Background()
	suite.expectRole(suite.adminID, domain.RoleAdmin) // authorization
	suite.expectRole(suite.adminID, domain.RoleAdmin) // target lookup
	suite.mockGroupRepo.On("CountGroupAdmins", ctx, suite.groupID).Return(1, nil).Once()

	err := suite.service.UpdateUserGroupRole(ctx, suite.adminID, suite.adminID, suite.groupID, domain.RoleMember)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockGroupRepo.AssertNotCalled(suite.T(), "UpdateUserGroupRole", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *GroupServiceTestSuite) TestUpdateUserGroupRole_SameRoleIsNoOp() {
	ctx := context.Background()
	suite.expectRole(suite.adminID, domain.RoleAdmin)
	suite.expectRole(suite.userID, domain.RoleMember)

	err := suite.service.UpdateUserGroupRole(ctx, suite.adminID, suite.userID, suite.groupID, domain.RoleMember)

	suite.Require().NoError(err)
	suite.mockGroupRepo.AssertNotCalled(suite.T(), "UpdateUserGroupRole", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *GroupServiceTestSuite) TestAddPendingMember_RegisteredEmailConflict() {
	ctx := context.Background()
	email := "known@example.com"
	suite.expectRole(suite.adminID, domain.RoleAdmin)
	suite.mockUserRepo.On("FindUserByEmail", ctx, email).Return(&domain.User{UserID: suite.userID, Email: email}, nil).Once()

	_, err := suite.service.AddPendingMember(ctx, suite.groupID, dto.AddPendingMemberRequest{
		Email:       email,
		DisplayName: "Known User",
	}, suite.adminID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockGroupRepo.AssertNotCalled(suite.T(), "SavePendingMember", mock.Anything, mock.Anything)
}

func (suite *GroupServiceTestSuite) TestAddPendingMember() {
	ctx := context.Background()
	email := "new@example.com"
	suite.expectRole(suite.adminID, domain.RoleAdmin)
	suite.mockUserRepo.On("FindUserByEmail", ctx, email).Return(nil, apperrors.ErrNotFound).Once()
	suite.mockGroupRepo.On("SavePendingMember", ctx, mock.MatchedBy(func(p domain.PendingMember) bool {
		return p.GroupID == suite.groupID && p.Email == email && p.Status == domain.PendingStatusPending
	})).Return(nil).Once()

	pending, err := suite.service.AddPendingMember(ctx, suite.groupID, dto.AddPendingMemberRequest{
		Email:       email,
		DisplayName: "Newcomer",
	}, suite.adminID)

	suite.Require().NoError(err)
	suite.NotEmpty(pending.PendingID)
	suite.Equal(suite.adminID, pending.InvitedBy)
	suite.mockGroupRepo.AssertExpectations(suite.T())
}

func (suite *GroupServiceTestSuite) TestReconcilePendingMembers_SkipsAlreadyRegistered() {
	ctx := context.Background()
	email := "joiner@example.com"
	open := domain.PendingMember{PendingID: uuid.NewString(), GroupID: suite.groupID, Email: email, Status: domain.PendingStatusPending}
	done := domain.PendingMember{PendingID: uuid.NewString(), GroupID: uuid.NewString(), Email: email, Status: domain.PendingStatusRegistered}

	suite.mockGroupRepo.On("FindPendingMembersByEmail", ctx, email).Return([]domain.PendingMember{open, done}, nil).Once()
	suite.mockGroupRepo.On("ReconcilePendingMember", ctx, open.PendingID, suite.userID).Return(nil).Once()

	err := suite.service.ReconcilePendingMembers(ctx, suite.userID, email)

	suite.Require().NoError(err)
	suite.mockGroupRepo.AssertExpectations(suite.T())
	suite.mockGroupRepo.AssertNumberOfCalls(suite.T(), "ReconcilePendingMember", 1)
}

func (suite *GroupServiceTestSuite) TestListGroupMembers() {
	ctx := context.Background()
	suite.expectRole(suite.userID, domain.RoleMember)
	members := []domain.GroupMember{
		{GroupID: suite.groupID, UserID: suite.adminID, Role: domain.RoleAdmin},
		{GroupID: suite.groupID, UserID: suite.userID, Role: domain.RoleMember},
	}
	pendings := []domain.PendingMember{
		{PendingID: uuid.NewString(), GroupID: suite.groupID, Status: domain.PendingStatusPending},
	}

	suite.mockGroupRepo.On("ListGroupMembers", ctx, suite.groupID).Return(members, nil).Once()
	pendingStatus := domain.PendingStatusPending
	suite.mockGroupRepo.On("ListPendingMembers", ctx, suite.groupID, &pendingStatus).Return(pendings, nil).Once()

	gotMembers, gotPending, err := suite.service.ListGroupMembers(ctx, suite.groupID, suite.userID)

	suite.Require().NoError(err)
	suite.Len(gotMembers, 2)
	suite.Len(gotPending, 1)
}

func (suite *GroupServiceTestSuite) TestAuthorizeUserAction_RoleHierarchy() {
	ctx := context.Background()

	suite.expectRole(suite.adminID, domain.RoleAdmin)
	suite.NoError(suite.service.AuthorizeUserAction(ctx, suite.adminID, suite.groupID, domain.RoleMember))

	suite.expectRole(suite.userID, domain.RoleMember)
	err := suite.service.AuthorizeUserAction(ctx, suite.userID, suite.groupID, domain.RoleAdmin)
	suite.ErrorIs(err, apperrors.ErrForbidden)
}

func TestGroupServiceTestSuite(t *testing.T) {
	suite.Run(t, new(GroupServiceTestSuite))
}
