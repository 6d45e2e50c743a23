package handler

import (
	"encoding/json"
	"net/http"
	"regexp"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/user-service/api/transport"
	"github.com/fastygo/user-service/domain"
	"github.com/fastygo/user-service/internal/middleware"
	"github.com/fastygo/user-service/pkg/httpcontext"
	cardUC "github.com/fastygo/user-service/usecase/card"
)

var cardNumberPattern = regexp.MustCompile(`^\d{4}-\d{4}-\d{4}-\d{4}$`)

type CardHandler struct {
	baseHandler
	uc *cardUC.UseCase
}

func NewCardHandler(uc *cardUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *CardHandler {
	return &CardHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List user cards
// @Tags cards
// @Router /api/v1/users/{id}/cards [get]
func (h *CardHandler) List(ctx *fasthttp.RequestCtx) {
	ownerID, ok := pathID(ctx, "id")
	if !ok {
		h.respondInvalid(ctx, "invalid user id")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	cards, err := h.uc.List(stdCtx, middleware.IdentityFrom(ctx), ownerID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, cards)
}

// @Summary Add card to user
// @Tags cards
// @Router /api/v1/users/{id}/cards [post]
func (h *CardHandler) Add(ctx *fasthttp.RequestCtx) {
	ownerID, ok := pathID(ctx, "id")
	if !ok {
		h.respondInvalid(ctx, "invalid user id")
		return
	}
	input, ok := h.parseCard(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.Add(stdCtx, middleware.IdentityFrom(ctx), ownerID, input)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// @Summary Update card
// @Tags cards
// @Router /api/v1/cards/{id} [put]
func (h *CardHandler) Update(ctx *fasthttp.RequestCtx) {
	cardID, ok := pathID(ctx, "id")
	if !ok {
		h.respondInvalid(ctx, "invalid card id")
		return
	}
	input, ok := h.parseCard(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, err := h.uc.Update(stdCtx, middleware.IdentityFrom(ctx), cardID, input)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, updated)
}

// @Summary Delete card
// @Tags cards
// @Router /api/v1/cards/{id} [delete]
func (h *CardHandler) Delete(ctx *fasthttp.RequestCtx) {
	cardID, ok := pathID(ctx, "id")
	if !ok {
		h.respondInvalid(ctx, "invalid card id")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Delete(stdCtx, middleware.IdentityFrom(ctx), cardID); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}

// @Summary Change card activity
// @Tags cards
// @Router /api/v1/cards/{id}/activity [patch]
func (h *CardHandler) SetActivity(ctx *fasthttp.RequestCtx) {
	cardID, ok := pathID(ctx, "id")
	if !ok {
		h.respondInvalid(ctx, "invalid card id")
		return
	}
	active, ok := parseActivity(ctx)
	if !ok {
		h.respondInvalid(ctx, "missing active flag")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.SetActivity(stdCtx, middleware.IdentityFrom(ctx), cardID, active); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, nil)
}

func (h *CardHandler) parseCard(ctx *fasthttp.RequestCtx) (domain.CardInput, bool) {
	var req transport.CardRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondInvalid(ctx, "invalid payload")
		return domain.CardInput{}, false
	}
	if !cardNumberPattern.MatchString(req.Number) {
		h.respondInvalid(ctx, "number must match XXXX-XXXX-XXXX-XXXX")
		return domain.CardInput{}, false
	}
	if req.Holder == "" {
		h.respondInvalid(ctx, "holder is required")
		return domain.CardInput{}, false
	}
	expiration, err := time.Parse(dateLayout, req.ExpirationDate)
	if err != nil {
		h.respondInvalid(ctx, "expiration_date must be YYYY-MM-DD")
		return domain.CardInput{}, false
	}
	if !expiration.After(time.Now()) {
		h.respondInvalid(ctx, "expiration_date must be in the future")
		return domain.CardInput{}, false
	}

	return domain.CardInput{
		Number:         req.Number,
		Holder:         req.Holder,
		ExpirationDate: expiration,
		Active:         req.Active,
	}, true
}
