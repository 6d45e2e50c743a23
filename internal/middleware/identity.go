package middleware

import (
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/user-service/domain"
)

// IdentityKey is the fasthttp user-value slot holding the resolved identity.
const IdentityKey = "identity"

// IdentityConfig carries the credentials the resolver trusts.
type IdentityConfig struct {
	// JWTSecret verifies bearer tokens issued by the auth service.
	JWTSecret string
	// ServiceKey is the shared secret presented by inter-service callers.
	ServiceKey string
}

// ResolveIdentity resolves the caller identity from inbound credentials and
// stores it on the request. Resolution never rejects: unparseable or missing
// credentials yield Anonymous and the request continues, to be denied later
// by the authorization policy if the operation requires identity.
//
// Resolution order: trusted gateway headers, bearer token, service key.
func ResolveIdentity(cfg IdentityConfig, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			ctx.SetUserValue(IdentityKey, resolve(ctx, cfg, logger))
			next(ctx)
		}
	}
}

// IdentityFrom reads the resolved identity off the request.
func IdentityFrom(ctx *fasthttp.RequestCtx) domain.Identity {
	if ident, ok := ctx.UserValue(IdentityKey).(domain.Identity); ok {
		return ident
	}
	return domain.Anonymous
}

func resolve(ctx *fasthttp.RequestCtx, cfg IdentityConfig, logger *zap.Logger) domain.Identity {
	if ident, ok := fromHeaders(ctx); ok {
		return ident
	}
	if ident, ok := fromBearer(ctx, cfg.JWTSecret, logger); ok {
		return ident
	}
	if key := string(ctx.Request.Header.Peek("X-Service-Key")); key != "" {
		if cfg.ServiceKey != "" && key == cfg.ServiceKey {
			return domain.NewService()
		}
		logger.Warn("service key rejected")
	}
	return domain.Anonymous
}

func fromHeaders(ctx *fasthttp.RequestCtx) (domain.Identity, bool) {
	rawID := strings.TrimSpace(string(ctx.Request.Header.Peek("X-User-Id")))
	rawRole := strings.TrimSpace(string(ctx.Request.Header.Peek("X-User-Role")))
	if rawID == "" || rawRole == "" {
		return domain.Anonymous, false
	}
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return domain.Anonymous, false
	}
	role, ok := parseRole(rawRole)
	if !ok {
		return domain.Anonymous, false
	}
	return domain.NewSubject(id, role), true
}

func fromBearer(ctx *fasthttp.RequestCtx, secret string, logger *zap.Logger) (domain.Identity, bool) {
	header := string(ctx.Request.Header.Peek("Authorization"))
	if !strings.HasPrefix(header, "Bearer ") || secret == "" {
		return domain.Anonymous, false
	}
	tokenString := strings.TrimPrefix(header, "Bearer ")

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		logger.Warn("invalid bearer token", zap.Error(err))
		return domain.Anonymous, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return domain.Anonymous, false
	}
	id, ok := subjectID(claims["user_id"])
	if !ok {
		return domain.Anonymous, false
	}
	rawRole, _ := claims["role"].(string)
	role, ok := parseRole(rawRole)
	if !ok {
		return domain.Anonymous, false
	}
	return domain.NewSubject(id, role), true
}

func subjectID(claim interface{}) (int64, bool) {
	switch v := claim.(type) {
	case string:
		id, err := strconv.ParseInt(v, 10, 64)
		return id, err == nil
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}

func parseRole(raw string) (domain.Role, bool) {
	switch domain.Role(strings.ToUpper(raw)) {
	case domain.RoleUser:
		return domain.RoleUser, true
	case domain.RoleAdmin:
		return domain.RoleAdmin, true
	default:
		return "", false
	}
}
