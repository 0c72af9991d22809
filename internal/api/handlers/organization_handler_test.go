package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/Adham-ELshahed/Memar/internal/api/handlers"
	"github.com/Adham-ELshahed/Memar/internal/models"
	"github.com/Adham-ELshahed/Memar/internal/services"
)

func TestOrganizationHandler_ListOrganizations_DefaultsToActive(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockOrgSvc := new(MockOrganizationService)
	handler := handlers.NewOrganizationHandler(testConfig(), mockOrgSvc)

	r := gin.New()
	r.GET("/api/organizations", handler.ListOrganizations)

	page := &services.Page[models.Organization]{
		Items:  []models.Organization{{ID: "org-1", LegalName: "Doha Marble WLL", Status: models.OrgStatusActive}},
		Total:  1,
		Limit:  20,
		Offset: 0,
	}
	mockOrgSvc.On("List", mock.Anything, mock.MatchedBy(func(f services.OrganizationFilters) bool {
		return f.Status == string(models.OrgStatusActive) && f.Limit == 20 && f.Offset == 0
	})).Return(page, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/organizations", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var respBody struct {
		Items  []models.Organization `json:"items"`
		Total  int64                 `json:"total"`
		Limit  int                   `json:"limit"`
		Offset int                   `json:"offset"`
	}
	err := json.Unmarshal(w.Body.Bytes(), &respBody)
	assert.NoError(t, err)
	assert.Len(t, respBody.Items, 1)
	assert.Equal(t, int64(1), respBody.Total)
	assert.Equal(t, 20, respBody.Limit)
	mockOrgSvc.AssertExpectations(t)
}

func TestOrganizationHandler_ListOrganizations_CapsLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockOrgSvc := new(MockOrganizationService)
	handler := handlers.NewOrganizationHandler(testConfig(), mockOrgSvc)

	r := gin.New()
	r.GET("/api/organizations", handler.ListOrganizations)

	mockOrgSvc.On("List", mock.Anything, mock.MatchedBy(func(f services.OrganizationFilters) bool {
		return f.Limit == 100 && f.Offset == 40
	})).Return(&services.Page[models.Organization]{Items: []models.Organization{}, Limit: 100, Offset: 40}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/organizations?limit=5000&offset=40", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockOrgSvc.AssertExpectations(t)
}

func TestOrganizationHandler_GetOrganization_NotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockOrgSvc := new(MockOrganizationService)
	handler := handlers.NewOrganizationHandler(testConfig(), mockOrgSvc)

	r := gin.New()
	r.GET("/api/organizations/:id", handler.GetOrganization)

	mockOrgSvc.On("FindByID", mock.Anything, "missing").Return(nil, services.ErrNotFound)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/organizations/missing", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	var respBody map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &respBody))
	assert.Equal(t, "Organization not found", respBody["message"])
	mockOrgSvc.AssertExpectations(t)
}

func TestOrganizationHandler_CreateOrganization_Success(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockOrgSvc := new(MockOrganizationService)
	handler := handlers.NewOrganizationHandler(testConfig(), mockOrgSvc)

	r := gin.New()
	r.POST("/api/organizations", asUser("user-1", models.RoleBuyer), handler.CreateOrganization)

	mockOrgSvc.On("FindByUserID", mock.Anything, "user-1").Return(nil, services.ErrNotFound)
	created := &models.Organization{ID: "org-1", UserID: "user-1", LegalName: "Qatar Gypsum Co", Status: models.OrgStatusPending}
	mockOrgSvc.On("Create", mock.Anything, "user-1", mock.MatchedBy(func(in *services.OrganizationInput) bool {
		return in.LegalName == "Qatar Gypsum Co"
	})).Return(created, nil)

	body, _ := json.Marshal(gin.H{"legalName": "Qatar Gypsum Co", "city": "Doha"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/organizations", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var respBody models.Organization
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &respBody))
	assert.Equal(t, models.OrgStatusPending, respBody.Status)
	mockOrgSvc.AssertExpectations(t)
}

func TestOrganizationHandler_CreateOrganization_AlreadyExists(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockOrgSvc := new(MockOrganizationService)
	handler := handlers.NewOrganizationHandler(testConfig(), mockOrgSvc)

	r := gin.New()
	r.POST("/api/organizations", asUser("user-1", models.RoleVendor), handler.CreateOrganization)

	existing := &models.Organization{ID: "org-1", UserID: "user-1", LegalName: "Existing"}
	mockOrgSvc.On("FindByUserID", mock.Anything, "user-1").Return(existing, nil)

	body, _ := json.Marshal(gin.H{"legalName": "Another One"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/organizations", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	mockOrgSvc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrganizationHandler_CreateOrganization_MissingLegalName(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockOrgSvc := new(MockOrganizationService)
	handler := handlers.NewOrganizationHandler(testConfig(), mockOrgSvc)

	r := gin.New()
	r.POST("/api/organizations", asUser("user-1", models.RoleBuyer), handler.CreateOrganization)

	body, _ := json.Marshal(gin.H{"city": "Doha"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/organizations", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var respBody map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &respBody))
	assert.Contains(t, respBody, "message")
	mockOrgSvc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrganizationHandler_UpdateOrganization_Forbidden(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockOrgSvc := new(MockOrganizationService)
	handler := handlers.NewOrganizationHandler(testConfig(), mockOrgSvc)

	r := gin.New()
	r.PUT("/api/organizations/:id", asUser("intruder", models.RoleVendor), handler.UpdateOrganization)

	mockOrgSvc.On("Update", mock.Anything, "org-1", "intruder", mock.Anything).Return(nil, services.ErrForbidden)

	body, _ := json.Marshal(gin.H{"legalName": "Hijacked"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PUT", "/api/organizations/org-1", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	mockOrgSvc.AssertExpectations(t)
}

func TestOrganizationHandler_UpdateOrganization_PartialBodyOnlyTouchesSentFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockOrgSvc := new(MockOrganizationService)
	handler := handlers.NewOrganizationHandler(testConfig(), mockOrgSvc)

	r := gin.New()
	r.PUT("/api/organizations/:id", asUser("owner-1", models.RoleVendor), handler.UpdateOrganization)

	updated := &models.Organization{ID: "org-1", UserID: "owner-1", LegalName: "Doha Marble WLL", TradeName: "Doha Marble"}
	mockOrgSvc.On("Update", mock.Anything, "org-1", "owner-1", mock.MatchedBy(func(updates map[string]interface{}) bool {
		_, hasTradeName := updates["trade_name"]
		return len(updates) == 1 && hasTradeName
	})).Return(updated, nil)

	body, _ := json.Marshal(gin.H{"tradeName": "Doha Marble"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PUT", "/api/organizations/org-1", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockOrgSvc.AssertExpectations(t)
}

func TestOrganizationHandler_UpdateOrganization_DropsStatusField(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockOrgSvc := new(MockOrganizationService)
	handler := handlers.NewOrganizationHandler(testConfig(), mockOrgSvc)

	r := gin.New()
	r.PUT("/api/organizations/:id", asUser("owner-1", models.RoleVendor), handler.UpdateOrganization)

	updated := &models.Organization{ID: "org-1", UserID: "owner-1", LegalName: "Doha Marble WLL"}
	mockOrgSvc.On("Update", mock.Anything, "org-1", "owner-1", mock.MatchedBy(func(updates map[string]interface{}) bool {
		_, hasStatus := updates["status"]
		_, hasLegalName := updates["legal_name"]
		return !hasStatus && hasLegalName && len(updates) == 1
	})).Return(updated, nil)

	body, _ := json.Marshal(gin.H{"legalName": "Doha Marble WLL", "status": "active"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PUT", "/api/organizations/org-1", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockOrgSvc.AssertExpectations(t)
}

func TestOrganizationHandler_UpdateOrganization_NoKnownFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockOrgSvc := new(MockOrganizationService)
	handler := handlers.NewOrganizationHandler(testConfig(), mockOrgSvc)

	r := gin.New()
	r.PUT("/api/organizations/:id", asUser("owner-1", models.RoleVendor), handler.UpdateOrganization)

	body, _ := json.Marshal(gin.H{"status": "active"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PUT", "/api/organizations/org-1", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockOrgSvc.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
