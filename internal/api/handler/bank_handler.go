package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/appsec-lab/gateway/internal/core/domain"
	"github.com/appsec-lab/gateway/internal/core/ports"
)

// BankHandler serves the session-authenticated account routes.
type BankHandler struct {
	bankService ports.BankService
}

func NewBankHandler(bankService ports.BankService) *BankHandler {
	return &BankHandler{bankService: bankService}
}

type profileResponse struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

type feedbackRequest struct {
	Comment string `json:"comment" validate:"required,max=2000"`
}

type changeEmailRequest struct {
	Email string `json:"email" validate:"required,email,max=254"`
}

type successResponse struct {
	Success bool `json:"success"`
}

type changeEmailResponse struct {
	Success bool   `json:"success"`
	Email   string `json:"email"`
}

// Me returns the caller's profile.
//
// @Summary      Current account
// @Tags         bank
// @Produce      json
// @Success      200  {object}  profileResponse
// @Failure      401  {object}  ErrorResponse
// @Security     SessionCookie
// @Router       /me [get]
func (h *BankHandler) Me(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	acc, err := h.bankService.Profile(c.Request().Context(), user.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profileResponse{Username: acc.Username, Email: acc.Email})
}

// Transactions lists the caller's transactions whose description contains q.
//
// @Summary      List transactions
// @Tags         bank
// @Produce      json
// @Param        q    query     string  false  "Literal substring of the description"
// @Success      200  {array}   domain.Transaction
// @Failure      401  {object}  ErrorResponse
// @Security     SessionCookie
// @Router       /transactions [get]
func (h *BankHandler) Transactions(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	txs, err := h.bankService.Transactions(c.Request().Context(), user.ID, c.QueryParam("q"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, txs)
}

// SubmitFeedback stores a comment under the caller's username.
//
// @Summary      Submit feedback
// @Tags         bank
// @Accept       json
// @Produce      json
// @Param        body  body      feedbackRequest  true  "Comment"
// @Success      200   {object}  successResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Security     SessionCookie
// @Router       /feedback [post]
func (h *BankHandler) SubmitFeedback(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req feedbackRequest
	if err := c.Bind(&req); err != nil {
		return domain.ErrInvalidInput
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.bankService.SubmitFeedback(c.Request().Context(), user.ID, req.Comment); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, successResponse{Success: true})
}

// ListFeedback returns every comment as stored, newest first.
//
// @Summary      List feedback
// @Tags         bank
// @Produce      json
// @Success      200  {array}   domain.Feedback
// @Failure      401  {object}  ErrorResponse
// @Security     SessionCookie
// @Router       /feedback [get]
func (h *BankHandler) ListFeedback(c echo.Context) error {
	items, err := h.bankService.Feedback(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, items)
}

// ChangeEmail updates the caller's email address.
//
// @Summary      Change email
// @Tags         bank
// @Accept       json
// @Produce      json
// @Param        body  body      changeEmailRequest  true  "New email"
// @Success      200   {object}  changeEmailResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Security     SessionCookie
// @Router       /change-email [post]
func (h *BankHandler) ChangeEmail(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req changeEmailRequest
	if err := c.Bind(&req); err != nil {
		return domain.ErrInvalidEmail
	}
	if err := c.Validate(&req); err != nil {
		return domain.ErrInvalidEmail
	}

	email, err := h.bankService.ChangeEmail(c.Request().Context(), user.ID, req.Email)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, changeEmailResponse{Success: true, Email: email})
}
