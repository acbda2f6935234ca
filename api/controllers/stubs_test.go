package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/internal/auth"
	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/internal/checkout"
	"github.com/angelmondragon/storefront-backend/internal/promos"
	"github.com/angelmondragon/storefront-backend/internal/users"
)

type errorEnvelope struct {
	Error struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
}

func newJSONRequest(method, target, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	req.Header.Set("Content-Type", "application/json")
	return req
}

func asUser(req *http.Request, userID int64) *http.Request {
	return req.WithContext(middleware.WithUserID(req.Context(), userID))
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.RouteContext(req.Context())
	if rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dest any) {
	t.Helper()
	envelope := struct {
		Data json.RawMessage `json:"data"`
	}{}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if err := json.Unmarshal(envelope.Data, dest); err != nil {
		t.Fatalf("decode data: %v", err)
	}
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorEnvelope {
	t.Helper()
	var envelope errorEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	return envelope
}

type stubAuthService struct {
	login     *auth.LoginResponse
	loginErr  error
	me        *users.UserDTO
	gotLogin  auth.LoginRequest
	revokedID string
	meUserID  int64
}

func (s *stubAuthService) Login(_ context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	s.gotLogin = req
	return s.login, s.loginErr
}

func (s *stubAuthService) Logout(_ context.Context, accessID string) error {
	s.revokedID = accessID
	return nil
}

func (s *stubAuthService) Me(_ context.Context, userID int64) (*users.UserDTO, error) {
	s.meUserID = userID
	if userID <= 0 {
		return nil, nil
	}
	return s.me, nil
}

type stubCartService struct {
	view     *cart.CartDTO
	err      error
	added    []int64
	setQty   *int64
	removed  int64
	lastUser int64
}

func (s *stubCartService) Get(_ context.Context, userID int64) (*cart.CartDTO, error) {
	s.lastUser = userID
	if s.view == nil {
		return &cart.CartDTO{Lines: []cart.LineDTO{}}, nil
	}
	return s.view, nil
}

func (s *stubCartService) Lines(context.Context, int64) ([]cart.Line, error) {
	return nil, nil
}

func (s *stubCartService) Add(_ context.Context, userID, productID, qty int64) error {
	s.lastUser = userID
	s.added = []int64{productID, qty}
	return s.err
}

func (s *stubCartService) SetQuantity(_ context.Context, userID, productID, qty int64) error {
	s.lastUser = userID
	s.setQty = &qty
	return s.err
}

func (s *stubCartService) Remove(_ context.Context, userID, productID int64) error {
	s.lastUser = userID
	s.removed = productID
	return s.err
}

type stubCheckoutService struct {
	result   *checkout.Result
	quote    *checkout.QuoteDTO
	preview  *checkout.PromoPreview
	err      error
	gotInput checkout.Input
	gotUser  int64
	gotCode  string
	gotPromo *string
}

func (s *stubCheckoutService) Checkout(_ context.Context, userID int64, input checkout.Input) (*checkout.Result, error) {
	s.gotUser = userID
	s.gotInput = input
	return s.result, s.err
}

func (s *stubCheckoutService) Quote(_ context.Context, userID int64, promoCode *string) (*checkout.QuoteDTO, error) {
	s.gotUser = userID
	s.gotPromo = promoCode
	return s.quote, s.err
}

func (s *stubCheckoutService) PreviewPromo(_ context.Context, userID int64, code string) (*checkout.PromoPreview, error) {
	s.gotUser = userID
	s.gotCode = code
	return s.preview, s.err
}

type stubPromoService struct {
	list     []promos.PromoDTO
	created  *promos.PromoDTO
	err      error
	gotInput promos.Input
	gotID    int64
}

func (s *stubPromoService) List(context.Context) ([]promos.PromoDTO, error) {
	return s.list, s.err
}

func (s *stubPromoService) Create(_ context.Context, input promos.Input) (*promos.PromoDTO, error) {
	s.gotInput = input
	return s.created, s.err
}

func (s *stubPromoService) Update(_ context.Context, id int64, input promos.Input) (*promos.PromoDTO, error) {
	s.gotID = id
	s.gotInput = input
	return s.created, s.err
}

func (s *stubPromoService) Delete(_ context.Context, id int64) error {
	s.gotID = id
	return s.err
}

type stubCatalogService struct {
	shops       []catalog.ShopDTO
	products    []catalog.ProductDTO
	product     *catalog.ProductDTO
	err         error
	gotShopID   int64
	gotID       int64
	gotProduct  catalog.ProductInput
	deletedShop int64
}

func (s *stubCatalogService) ListShops(context.Context) ([]catalog.ShopDTO, error) {
	return s.shops, s.err
}

func (s *stubCatalogService) GetShop(_ context.Context, id int64) (*catalog.ShopDTO, error) {
	s.gotShopID = id
	if len(s.shops) == 0 {
		return nil, s.err
	}
	return &s.shops[0], s.err
}

func (s *stubCatalogService) CreateShop(_ context.Context, input catalog.ShopInput) (*catalog.ShopDTO, error) {
	return &catalog.ShopDTO{ID: 1, Name: input.Name}, s.err
}

func (s *stubCatalogService) UpdateShop(_ context.Context, id int64, input catalog.ShopInput) (*catalog.ShopDTO, error) {
	s.gotShopID = id
	return &catalog.ShopDTO{ID: id, Name: input.Name}, s.err
}

func (s *stubCatalogService) DeleteShop(_ context.Context, id int64) error {
	s.deletedShop = id
	return s.err
}

func (s *stubCatalogService) ListShopProducts(_ context.Context, shopID int64) ([]catalog.ProductDTO, error) {
	s.gotShopID = shopID
	return s.products, s.err
}

func (s *stubCatalogService) ListProducts(context.Context) ([]catalog.ProductDTO, error) {
	return s.products, s.err
}

func (s *stubCatalogService) GetProduct(_ context.Context, id int64) (*catalog.ProductDTO, error) {
	s.gotID = id
	return s.product, s.err
}

func (s *stubCatalogService) CreateProduct(_ context.Context, input catalog.ProductInput) (*catalog.ProductDTO, error) {
	s.gotProduct = input
	return s.product, s.err
}

func (s *stubCatalogService) UpdateProduct(_ context.Context, id int64, input catalog.ProductInput) (*catalog.ProductDTO, error) {
	s.gotID = id
	s.gotProduct = input
	return s.product, s.err
}

func (s *stubCatalogService) DeleteProduct(_ context.Context, id int64) error {
	s.gotID = id
	return s.err
}
