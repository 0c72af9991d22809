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

func TestProductHandler_ListProducts_DefaultsToActiveOnly(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockProdSvc := new(MockProductService)
	mockOrgSvc := new(MockOrganizationService)
	handler := handlers.NewProductHandler(testConfig(), mockProdSvc, mockOrgSvc)

	r := gin.New()
	r.GET("/api/products", handler.ListProducts)

	mockProdSvc.On("List", mock.Anything, mock.MatchedBy(func(f services.ProductFilters) bool {
		return f.IsActive != nil && *f.IsActive
	})).Return(&services.Page[models.Product]{Items: []models.Product{}, Limit: 20}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/products", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockProdSvc.AssertExpectations(t)
}

func TestProductHandler_ListProducts_ExplicitInactive(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockProdSvc := new(MockProductService)
	mockOrgSvc := new(MockOrganizationService)
	handler := handlers.NewProductHandler(testConfig(), mockProdSvc, mockOrgSvc)

	r := gin.New()
	r.GET("/api/products", handler.ListProducts)

	mockProdSvc.On("List", mock.Anything, mock.MatchedBy(func(f services.ProductFilters) bool {
		return f.IsActive != nil && !*f.IsActive && f.OrganizationID == "org-1"
	})).Return(&services.Page[models.Product]{Items: []models.Product{}, Limit: 20}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/products?isActive=false&organizationId=org-1", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockProdSvc.AssertExpectations(t)
}

func TestProductHandler_ListProducts_BadIsActive(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockProdSvc := new(MockProductService)
	mockOrgSvc := new(MockOrganizationService)
	handler := handlers.NewProductHandler(testConfig(), mockProdSvc, mockOrgSvc)

	r := gin.New()
	r.GET("/api/products", handler.ListProducts)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/api/products?isActive=maybe", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockProdSvc.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestProductHandler_CreateProduct_RequiresActiveOrganization(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockProdSvc := new(MockProductService)
	mockOrgSvc := new(MockOrganizationService)
	handler := handlers.NewProductHandler(testConfig(), mockProdSvc, mockOrgSvc)

	r := gin.New()
	r.POST("/api/products", asUser("user-1", models.RoleVendor), handler.CreateProduct)

	pendingOrg := &models.Organization{ID: "org-1", UserID: "user-1", Status: models.OrgStatusPending}
	mockOrgSvc.On("FindByUserID", mock.Anything, "user-1").Return(pendingOrg, nil)

	body, _ := json.Marshal(gin.H{"categoryId": "cat-1", "name": "Cement 50kg"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/products", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	mockProdSvc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestProductHandler_CreateProduct_Success(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockProdSvc := new(MockProductService)
	mockOrgSvc := new(MockOrganizationService)
	handler := handlers.NewProductHandler(testConfig(), mockProdSvc, mockOrgSvc)

	r := gin.New()
	r.POST("/api/products", asUser("user-1", models.RoleVendor), handler.CreateProduct)

	activeOrg := &models.Organization{ID: "org-1", UserID: "user-1", Status: models.OrgStatusActive}
	mockOrgSvc.On("FindByUserID", mock.Anything, "user-1").Return(activeOrg, nil)
	created := &models.Product{ID: "prod-1", OrganizationID: "org-1", Name: "Cement 50kg", IsActive: true}
	mockProdSvc.On("Create", mock.Anything, "org-1", mock.MatchedBy(func(in *services.ProductInput) bool {
		return in.Name == "Cement 50kg" && in.CategoryID == "cat-1"
	})).Return(created, nil)

	body, _ := json.Marshal(gin.H{"categoryId": "cat-1", "name": "Cement 50kg", "unit": "bag"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/products", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var respBody models.Product
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &respBody))
	assert.Equal(t, "org-1", respBody.OrganizationID)
	mockProdSvc.AssertExpectations(t)
	mockOrgSvc.AssertExpectations(t)
}
