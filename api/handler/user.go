package handler

import (
	"encoding/json"
	"net/http"
	"net/mail"
	"strconv"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/user-service/api/transport"
	"github.com/fastygo/user-service/domain"
	"github.com/fastygo/user-service/internal/middleware"
	"github.com/fastygo/user-service/pkg/httpcontext"
	userUC "github.com/fastygo/user-service/usecase/user"
)

const dateLayout = "2006-01-02"

type UserHandler struct {
	baseHandler
	uc *userUC.UseCase
}

func NewUserHandler(uc *userUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Get user by id
// @Tags users
// @Router /api/v1/users/{id} [get]
func (h *UserHandler) GetByID(ctx *fasthttp.RequestCtx) {
	id, ok := pathID(ctx, "id")
	if !ok {
		h.respondInvalid(ctx, "invalid user id")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	user, err := h.uc.Get(stdCtx, middleware.IdentityFrom(ctx), id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, user)
}

// @Summary Search users
// @Tags users
// @Router /api/v1/users [get]
func (h *UserHandler) Search(ctx *fasthttp.RequestCtx) {
	filter := domain.UserFilter{
		Name:    string(ctx.QueryArgs().Peek("name")),
		Surname: string(ctx.QueryArgs().Peek("surname")),
		Page:    parseInt(string(ctx.QueryArgs().Peek("page")), 0),
		Size:    parseInt(string(ctx.QueryArgs().Peek("size")), 20),
		Sort:    string(ctx.QueryArgs().Peek("sort")),
	}
	if raw := string(ctx.QueryArgs().Peek("active")); raw != "" {
		if active, err := strconv.ParseBool(raw); err == nil {
			filter.Active = &active
		}
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	page, err := h.uc.Search(stdCtx, middleware.IdentityFrom(ctx), filter)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, page)
}

// @Summary Create user
// @Tags users
// @Router /api/v1/users [post]
func (h *UserHandler) Create(ctx *fasthttp.RequestCtx) {
	input, ok := h.parseUser(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.Create(stdCtx, middleware.IdentityFrom(ctx), input)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// @Summary Update user
// @Tags users
// @Router /api/v1/users/{id} [put]
func (h *UserHandler) Update(ctx *fasthttp.RequestCtx) {
	id, ok := pathID(ctx, "id")
	if !ok {
		h.respondInvalid(ctx, "invalid user id")
		return
	}
	input, ok := h.parseUser(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, err := h.uc.Update(stdCtx, middleware.IdentityFrom(ctx), id, input)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, updated)
}

// @Summary Delete user
// @Tags users
// @Router /api/v1/users/{id} [delete]
func (h *UserHandler) Delete(ctx *fasthttp.RequestCtx) {
	id, ok := pathID(ctx, "id")
	if !ok {
		h.respondInvalid(ctx, "invalid user id")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Delete(stdCtx, middleware.IdentityFrom(ctx), id); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}

// @Summary Change user activity
// @Tags users
// @Router /api/v1/users/{id}/activity [patch]
func (h *UserHandler) SetActivity(ctx *fasthttp.RequestCtx) {
	id, ok := pathID(ctx, "id")
	if !ok {
		h.respondInvalid(ctx, "invalid user id")
		return
	}
	active, ok := parseActivity(ctx)
	if !ok {
		h.respondInvalid(ctx, "missing active flag")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.SetActivity(stdCtx, middleware.IdentityFrom(ctx), id, active); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, nil)
}

// @Summary Get user by email
// @Tags users
// @Router /internal/users/by-email [get]
func (h *UserHandler) GetByEmail(ctx *fasthttp.RequestCtx) {
	email := string(ctx.QueryArgs().Peek("email"))
	if email == "" {
		h.respondInvalid(ctx, "missing email")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	user, err := h.uc.GetByEmail(stdCtx, middleware.IdentityFrom(ctx), email)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, user)
}

func (h *UserHandler) parseUser(ctx *fasthttp.RequestCtx) (domain.UserInput, bool) {
	var req transport.UserRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondInvalid(ctx, "invalid payload")
		return domain.UserInput{}, false
	}
	if req.Name == "" || req.Surname == "" {
		h.respondInvalid(ctx, "name and surname are required")
		return domain.UserInput{}, false
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		h.respondInvalid(ctx, "invalid email")
		return domain.UserInput{}, false
	}
	birthDate, err := time.Parse(dateLayout, req.BirthDate)
	if err != nil {
		h.respondInvalid(ctx, "birth_date must be YYYY-MM-DD")
		return domain.UserInput{}, false
	}
	if !birthDate.Before(time.Now()) {
		h.respondInvalid(ctx, "birth_date must be in the past")
		return domain.UserInput{}, false
	}

	return domain.UserInput{
		Name:      req.Name,
		Surname:   req.Surname,
		BirthDate: birthDate,
		Email:     req.Email,
		Active:    req.Active,
	}, true
}

func parseActivity(ctx *fasthttp.RequestCtx) (bool, bool) {
	if raw := string(ctx.QueryArgs().Peek("active")); raw != "" {
		if active, err := strconv.ParseBool(raw); err == nil {
			return active, true
		}
		return false, false
	}
	var req transport.ActivityRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.Active == nil {
		return false, false
	}
	return *req.Active, true
}

func parseInt(value string, fallback int) int {
	if v, err := strconv.Atoi(value); err == nil {
		return v
	}
	return fallback
}
