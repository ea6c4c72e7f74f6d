package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/appsec-lab/gateway/internal/api/middleware"
	"github.com/appsec-lab/gateway/internal/core/domain"
	"github.com/appsec-lab/gateway/internal/core/ports"
)

type stubAuthService struct {
	loginFn func(ctx context.Context, username, password string) (*ports.LoginResult, error)
}

func (s *stubAuthService) Login(ctx context.Context, username, password string) (*ports.LoginResult, error) {
	return s.loginFn(ctx, username, password)
}

type stubOrderService struct {
	getFn       func(ctx context.Context, identity *domain.User, id int) (*domain.Order, error)
	listFn      func(ctx context.Context, identity *domain.User) ([]domain.Order, error)
	listUsersFn func(ctx context.Context) ([]domain.User, error)
}

func (s *stubOrderService) GetOrder(ctx context.Context, identity *domain.User, id int) (*domain.Order, error) {
	return s.getFn(ctx, identity, id)
}

func (s *stubOrderService) ListOrders(ctx context.Context, identity *domain.User) ([]domain.Order, error) {
	return s.listFn(ctx, identity)
}

func (s *stubOrderService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.listUsersFn(ctx)
}

type stubBankService struct {
	profileFn      func(ctx context.Context, userID int) (*domain.Account, error)
	transactionsFn func(ctx context.Context, userID int, query string) ([]domain.Transaction, error)
	submitFn       func(ctx context.Context, userID int, comment string) error
	feedbackFn     func(ctx context.Context) ([]domain.Feedback, error)
	changeEmailFn  func(ctx context.Context, userID int, email string) (string, error)
}

func (s *stubBankService) Profile(ctx context.Context, userID int) (*domain.Account, error) {
	return s.profileFn(ctx, userID)
}

func (s *stubBankService) Transactions(ctx context.Context, userID int, query string) ([]domain.Transaction, error) {
	return s.transactionsFn(ctx, userID, query)
}

func (s *stubBankService) SubmitFeedback(ctx context.Context, userID int, comment string) error {
	return s.submitFn(ctx, userID, comment)
}

func (s *stubBankService) Feedback(ctx context.Context) ([]domain.Feedback, error) {
	return s.feedbackFn(ctx)
}

func (s *stubBankService) ChangeEmail(ctx context.Context, userID int, email string) (string, error) {
	return s.changeEmailFn(ctx, userID, email)
}

type stubDocumentService struct {
	readFn        func(ctx context.Context, filename string) (*domain.Document, error)
	allowListedFn func(ctx context.Context, name string) (*domain.Document, error)
}

func (s *stubDocumentService) Read(ctx context.Context, filename string) (*domain.Document, error) {
	return s.readFn(ctx, filename)
}

func (s *stubDocumentService) ReadAllowListed(ctx context.Context, name string) (*domain.Document, error) {
	return s.allowListedFn(ctx, name)
}

var (
	alice   = &domain.User{ID: 1, Name: "Alice", Role: domain.RoleCustomer, Department: "north"}
	charlie = &domain.User{ID: 3, Name: "Charlie", Role: domain.RoleSupport, Department: "north"}
)

// newContext builds an echo context with the package validator. A non-nil
// user is stored as the resolved identity.
func newContext(t *testing.T, method, target string, body io.Reader, user *domain.User) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()

	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if user != nil {
		middleware.SetIdentity(c, user)
	}
	return c, rec
}
