package handler_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/coral-stay/api/internal/enum"
	"github.com/coral-stay/api/internal/handler"
	"github.com/coral-stay/api/internal/middleware"
	"github.com/coral-stay/api/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// --- Mock MenuStore ---

type mockMenuStore struct {
	listFn   func(ctx context.Context) ([]store.MenuItem, error)
	getFn    func(ctx context.Context, id uuid.UUID) (store.MenuItem, error)
	createFn func(ctx context.Context, arg store.CreateMenuItemParams) (store.MenuItem, error)
	updateFn func(ctx context.Context, arg store.UpdateMenuItemParams) (store.MenuItem, error)
	deleteFn func(ctx context.Context, id uuid.UUID) error
}

func (m *mockMenuStore) ListMenuItems(ctx context.Context) ([]store.MenuItem, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return []store.MenuItem{}, nil
}

func (m *mockMenuStore) GetMenuItem(ctx context.Context, id uuid.UUID) (store.MenuItem, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return store.MenuItem{}, pgx.ErrNoRows
}

func (m *mockMenuStore) CreateMenuItem(ctx context.Context, arg store.CreateMenuItemParams) (store.MenuItem, error) {
	if m.createFn != nil {
		return m.createFn(ctx, arg)
	}
	return store.MenuItem{}, pgx.ErrNoRows
}

func (m *mockMenuStore) UpdateMenuItem(ctx context.Context, arg store.UpdateMenuItemParams) (store.MenuItem, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, arg)
	}
	return store.MenuItem{}, pgx.ErrNoRows
}

func (m *mockMenuStore) DeleteMenuItem(ctx context.Context, id uuid.UUID) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return pgx.ErrNoRows
}

// --- Test helpers ---

func setupMenuRouter(st *mockMenuStore) *chi.Mux {
	h := handler.NewMenuHandler(st)
	r := chi.NewRouter()
	r.Use(middleware.Authenticate(testJWTSecret))
	r.Route("/menu", func(r chi.Router) {
		h.RegisterReadRoutes(r)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(enum.RoleAdmin))
			h.RegisterAdminRoutes(r)
		})
	})
	return r
}

func testMenuItem() store.MenuItem {
	return store.MenuItem{
		ID:          uuid.New(),
		Name:        "Grilled Snapper",
		Description: "Whole snapper with lime butter",
		Price:       decimal.RequireFromString("18.50"),
		Category:    enum.CategoryMainCourse,
		Tags:        []string{"seafood", "grilled"},
		Available:   true,
		CreatedAt:   time.Now(),
	}
}

// --- Read routes ---

func TestMenuList_HappyPath(t *testing.T) {
	st := &mockMenuStore{
		listFn: func(ctx context.Context) ([]store.MenuItem, error) {
			return []store.MenuItem{testMenuItem(), testMenuItem()}, nil
		},
	}

	router := setupMenuRouter(st)
	rr := doAuthRequest(t, router, "GET", "/menu", nil, customerClaims())

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	if got := decodeListResponse(t, rr); len(got) != 2 {
		t.Fatalf("items count: got %d, want 2", len(got))
	}
}

func TestMenuGet_HappyPath(t *testing.T) {
	item := testMenuItem()
	st := &mockMenuStore{
		getFn: func(ctx context.Context, id uuid.UUID) (store.MenuItem, error) {
			if id != item.ID {
				t.Errorf("id: got %v, want %v", id, item.ID)
			}
			return item, nil
		},
	}

	router := setupMenuRouter(st)
	rr := doAuthRequest(t, router, "GET", "/menu/"+item.ID.String(), nil, customerClaims())

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}

	resp := decodeResponse(t, rr)
	if resp["name"] != "Grilled Snapper" {
		t.Errorf("name: got %v, want Grilled Snapper", resp["name"])
	}
	// decimal renders without trailing zeros.
	if resp["price"] != "18.5" {
		t.Errorf("price: got %v, want 18.5", resp["price"])
	}
}

func TestMenuGet_NotFound(t *testing.T) {
	router := setupMenuRouter(&mockMenuStore{})
	rr := doAuthRequest(t, router, "GET", "/menu/"+uuid.New().String(), nil, customerClaims())

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusNotFound, rr.Body.String())
	}
}

func TestMenuGet_InvalidID(t *testing.T) {
	router := setupMenuRouter(&mockMenuStore{})
	rr := doAuthRequest(t, router, "GET", "/menu/not-a-uuid", nil, customerClaims())

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusBadRequest, rr.Body.String())
	}
}

// --- Admin routes ---

func TestMenuCreate_HappyPath(t *testing.T) {
	st := &mockMenuStore{
		createFn: func(ctx context.Context, arg store.CreateMenuItemParams) (store.MenuItem, error) {
			if !arg.Price.Equal(decimal.RequireFromString("18.50")) {
				t.Errorf("price: got %v, want 18.50", arg.Price)
			}
			if arg.Category != enum.CategoryMainCourse {
				t.Errorf("category: got %v, want %v", arg.Category, enum.CategoryMainCourse)
			}
			return store.MenuItem{
				ID: uuid.New(), Name: arg.Name, Description: arg.Description,
				Price: arg.Price, Category: arg.Category, Tags: arg.Tags,
				Available: true, CreatedAt: time.Now(),
			}, nil
		},
	}

	router := setupMenuRouter(st)
	rr := doAuthRequest(t, router, "POST", "/menu", map[string]interface{}{
		"name":        "Grilled Snapper",
		"description": "Whole snapper with lime butter",
		"price":       "18.50",
		"category":    enum.CategoryMainCourse,
		"tags":        []string{"seafood"},
	}, adminClaims())

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}
}

func TestMenuCreate_StaffForbidden(t *testing.T) {
	router := setupMenuRouter(&mockMenuStore{})
	rr := doAuthRequest(t, router, "POST", "/menu", map[string]interface{}{
		"name":     "Grilled Snapper",
		"price":    "18.50",
		"category": enum.CategoryMainCourse,
	}, staffClaims())

	if rr.Code != http.StatusForbidden {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusForbidden, rr.Body.String())
	}
}

func TestMenuCreate_NegativePrice(t *testing.T) {
	router := setupMenuRouter(&mockMenuStore{})
	rr := doAuthRequest(t, router, "POST", "/menu", map[string]interface{}{
		"name":        "Grilled Snapper",
		"description": "Whole snapper with lime butter",
		"price":       "-1.00",
		"category":    enum.CategoryMainCourse,
	}, adminClaims())

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusBadRequest, rr.Body.String())
	}
	resp := decodeResponse(t, rr)
	if resp["error"] != "price must be >= 0" {
		t.Errorf("error: got %v, want 'price must be >= 0'", resp["error"])
	}
}

func TestMenuCreate_InvalidCategory(t *testing.T) {
	router := setupMenuRouter(&mockMenuStore{})
	rr := doAuthRequest(t, router, "POST", "/menu", map[string]interface{}{
		"name":        "Grilled Snapper",
		"description": "Whole snapper with lime butter",
		"price":       "18.50",
		"category":    "Fusion",
	}, adminClaims())

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusBadRequest, rr.Body.String())
	}
	resp := decodeResponse(t, rr)
	if resp["error"] != "invalid category" {
		t.Errorf("error: got %v, want 'invalid category'", resp["error"])
	}
}

func TestMenuCreate_ShortDescription(t *testing.T) {
	router := setupMenuRouter(&mockMenuStore{})
	rr := doAuthRequest(t, router, "POST", "/menu", map[string]interface{}{
		"name":        "Grilled Snapper",
		"description": "fish",
		"price":       "18.50",
		"category":    enum.CategoryMainCourse,
	}, adminClaims())

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusBadRequest, rr.Body.String())
	}
	resp := decodeResponse(t, rr)
	if resp["error"] != "description must be at least 10 characters" {
		t.Errorf("error: got %v", resp["error"])
	}
}

func TestMenuCreate_ShortName(t *testing.T) {
	router := setupMenuRouter(&mockMenuStore{})
	rr := doAuthRequest(t, router, "POST", "/menu", map[string]interface{}{
		"name":        "X",
		"description": "Whole snapper with lime butter",
		"price":       "18.50",
		"category":    enum.CategoryMainCourse,
	}, adminClaims())

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusBadRequest, rr.Body.String())
	}
}

func TestMenuGet_PlaceholderImage(t *testing.T) {
	item := testMenuItem()
	item.ImageURL = ""
	st := &mockMenuStore{
		getFn: func(ctx context.Context, id uuid.UUID) (store.MenuItem, error) {
			return item, nil
		},
	}

	router := setupMenuRouter(st)
	rr := doAuthRequest(t, router, "GET", "/menu/"+item.ID.String(), nil, customerClaims())

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	resp := decodeResponse(t, rr)
	if resp["image_url"] != "https://placehold.co/600x400" {
		t.Errorf("image_url: got %v, want placeholder", resp["image_url"])
	}
}

func TestMenuUpdate_HappyPath(t *testing.T) {
	item := testMenuItem()

	st := &mockMenuStore{
		updateFn: func(ctx context.Context, arg store.UpdateMenuItemParams) (store.MenuItem, error) {
			if arg.ID != item.ID {
				t.Errorf("id: got %v, want %v", arg.ID, item.ID)
			}
			if arg.Available {
				t.Error("available: got true, want false")
			}
			item.Available = arg.Available
			return item, nil
		},
	}

	router := setupMenuRouter(st)
	rr := doAuthRequest(t, router, "PUT", "/menu/"+item.ID.String(), map[string]interface{}{
		"name":        item.Name,
		"description": item.Description,
		"price":       "18.50",
		"category":    item.Category,
		"available":   false,
	}, adminClaims())

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
}

func TestMenuUpdate_NotFound(t *testing.T) {
	router := setupMenuRouter(&mockMenuStore{})
	rr := doAuthRequest(t, router, "PUT", "/menu/"+uuid.New().String(), map[string]interface{}{
		"name":        "Gone Dish",
		"description": "Tart lime custard on a graham crust",
		"price":       "10.00",
		"category":    enum.CategoryDessert,
	}, adminClaims())

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusNotFound, rr.Body.String())
	}
}

func TestMenuDelete_HappyPath(t *testing.T) {
	item := testMenuItem()
	st := &mockMenuStore{
		deleteFn: func(ctx context.Context, id uuid.UUID) error {
			if id != item.ID {
				t.Errorf("id: got %v, want %v", id, item.ID)
			}
			return nil
		},
	}

	router := setupMenuRouter(st)
	rr := doAuthRequest(t, router, "DELETE", "/menu/"+item.ID.String(), nil, adminClaims())

	if rr.Code != http.StatusNoContent {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusNoContent, rr.Body.String())
	}
}

func TestMenuDelete_NotFound(t *testing.T) {
	router := setupMenuRouter(&mockMenuStore{})
	rr := doAuthRequest(t, router, "DELETE", "/menu/"+uuid.New().String(), nil, adminClaims())

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusNotFound, rr.Body.String())
	}
}
