package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/promptbox/promptbox/internal/constants"
	"github.com/promptbox/promptbox/internal/database"
	"github.com/promptbox/promptbox/internal/models"
	"github.com/promptbox/promptbox/internal/repository"
	"github.com/promptbox/promptbox/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// UserHandlerTestSuite defines the test suite for UserHandler
type UserHandlerTestSuite struct {
	suite.Suite
	db      *gorm.DB
	handler *UserHandler
	orgSvc  *services.OrganizationService
	userSvc *services.UserService
}

// SetupTest runs before each test
func (suite *UserHandlerTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(
		&models.User{},
		&models.Organization{},
		&models.OrganizationMember{},
		&models.Team{},
		&models.TeamMember{},
	)
	suite.Require().NoError(err)

	database.SetDB(suite.db)

	userRepo := repository.NewUserRepository(suite.db)
	orgRepo := repository.NewOrganizationRepository(suite.db)
	teamRepo := repository.NewTeamRepository(suite.db)

	suite.orgSvc = services.NewOrganizationService(orgRepo, userRepo)
	suite.userSvc = services.NewUserService(userRepo, orgRepo, teamRepo)
	suite.handler = NewUserHandler(suite.userSvc)

	gin.SetMode(gin.TestMode)
}

// TearDownTest runs after each test
func (suite *UserHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *UserHandlerTestSuite) createTestUser(email string) *models.User {
	user := &models.User{
		Email:        email,
		Name:         email,
		PasswordHash: "hashedpassword",
		IsActive:     true,
	}
	suite.db.Create(user)
	return user
}

// createTestOrganization creates an organization with its default team and the
// given user as admin.
func (suite *UserHandlerTestSuite) createTestOrganization(name string, admin *models.User) (*models.Organization, *models.Team) {
	org, err := suite.orgSvc.CreateOrganization(services.CreateOrganizationInput{
		Name:      name,
		CreatorID: admin.ID,
	})
	suite.Require().NoError(err)

	var team models.Team
	suite.Require().NoError(suite.db.
		Where("organization_id = ? AND name = ?", org.ID, name).
		First(&team).Error)
	return org, &team
}

// Helper function to create authenticated context
func (suite *UserHandlerTestSuite) createAuthContext(method, url string, body []byte, userID uuid.UUID) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, url, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Set(constants.ContextKeyUserID, userID)

	return c, w
}

func (suite *UserHandlerTestSuite) TestRemoveTeam_LastTeamRejected() {
	alice := suite.createTestUser("alice@example.com")
	_, team := suite.createTestOrganization("Acme", alice)

	body, err := json.Marshal(map[string]string{"team_id": team.ID.String()})
	suite.Require().NoError(err)

	c, w := suite.createAuthContext("POST", "/api/users/"+alice.ID.String()+"/remove_team", body, alice.ID)
	c.Params = gin.Params{{Key: "id", Value: alice.ID.String()}}

	suite.handler.RemoveTeam(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)

	var response map[string]interface{}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(suite.T(), "BUSINESS_RULE_VIOLATION", response["code"])
	assert.Equal(suite.T(), "User must be assigned to at least one team", response["message"])
}

func (suite *UserHandlerTestSuite) TestRemoveTeam_Success() {
	alice := suite.createTestUser("alice@example.com")
	org, defaultTeam := suite.createTestOrganization("Acme", alice)

	extra := &models.Team{
		OrganizationID: org.ID,
		Name:           "Engineering",
		IsActive:       true,
	}
	suite.Require().NoError(suite.db.Create(extra).Error)
	suite.Require().NoError(suite.userSvc.AssignTeam(alice.ID, alice.ID, extra.ID))

	body, err := json.Marshal(map[string]string{"team_id": defaultTeam.ID.String()})
	suite.Require().NoError(err)

	c, w := suite.createAuthContext("POST", "/api/users/"+alice.ID.String()+"/remove_team", body, alice.ID)
	c.Params = gin.Params{{Key: "id", Value: alice.ID.String()}}

	suite.handler.RemoveTeam(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)
}

func (suite *UserHandlerTestSuite) TestAssignTeam_NonAdminForbidden() {
	alice := suite.createTestUser("alice@example.com")
	bob := suite.createTestUser("bob@example.com")
	org, team := suite.createTestOrganization("Acme", alice)

	_, err := suite.orgSvc.AddMember(services.AddMemberInput{
		OrganizationID: org.ID,
		Email:          "bob@example.com",
	})
	suite.Require().NoError(err)

	body, err := json.Marshal(map[string]string{"team_id": team.ID.String()})
	suite.Require().NoError(err)

	c, w := suite.createAuthContext("POST", "/api/users/"+alice.ID.String()+"/assign_team", body, bob.ID)
	c.Params = gin.Params{{Key: "id", Value: alice.ID.String()}}

	suite.handler.AssignTeam(c)

	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
}

func (suite *UserHandlerTestSuite) TestDeleteUser_SoftDeletes() {
	alice := suite.createTestUser("alice@example.com")
	bob := suite.createTestUser("bob@example.com")
	org, _ := suite.createTestOrganization("Acme", alice)

	_, err := suite.orgSvc.AddMember(services.AddMemberInput{
		OrganizationID: org.ID,
		Email:          "bob@example.com",
	})
	suite.Require().NoError(err)

	c, w := suite.createAuthContext("DELETE", "/api/users/"+bob.ID.String(), nil, alice.ID)
	c.Params = gin.Params{{Key: "id", Value: bob.ID.String()}}

	suite.handler.DeleteUser(c)
	c.Writer.WriteHeaderNow()

	assert.Equal(suite.T(), http.StatusNoContent, w.Code)

	var user models.User
	suite.Require().NoError(suite.db.First(&user, "id = ?", bob.ID).Error)
	assert.False(suite.T(), user.IsActive)
}

func (suite *UserHandlerTestSuite) TestGetUser_NoSharedOrganization() {
	alice := suite.createTestUser("alice@example.com")
	carol := suite.createTestUser("carol@example.com")
	suite.createTestOrganization("Acme", alice)

	c, w := suite.createAuthContext("GET", "/api/users/"+carol.ID.String(), nil, alice.ID)
	c.Params = gin.Params{{Key: "id", Value: carol.ID.String()}}

	suite.handler.GetUser(c)

	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

func (suite *UserHandlerTestSuite) TestGetUser_Unauthorized() {
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/users/someone", nil)
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	suite.handler.GetUser(c)

	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}

func TestUserHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(UserHandlerTestSuite))
}
