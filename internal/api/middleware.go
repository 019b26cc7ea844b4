package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"forgefit/gym-api/internal/domain"
	"forgefit/gym-api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Context keys set by the middleware chain.
const (
	ContextUserIDKey   = "userID"
	ContextUserRoleKey = "userRole"
	ContextGymIDKey    = "gymID"
	ContextGymRoleKey  = "gymRole"
)

// jwtClaims mirrors the payload authService.generateJWT signs.
type jwtClaims struct {
	UserID string      `json:"uid"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// AuthMiddleware creates a Gin middleware for JWT authentication.
func AuthMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithError(c, http.StatusUnauthorized, "Authorization header is missing")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			abortWithError(c, http.StatusUnauthorized, "Authorization header format must be Bearer {token}")
			return
		}
		tokenString := parts[1]

		claims := &jwtClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(jwtSecret), nil
		})
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				abortWithError(c, http.StatusUnauthorized, "Token has expired")
			} else {
				abortWithError(c, http.StatusUnauthorized, fmt.Sprintf("Invalid token: %v", err))
			}
			return
		}
		if !token.Valid || claims.UserID == "" || claims.Role == "" {
			abortWithError(c, http.StatusUnauthorized, "Invalid token or missing claims")
			return
		}

		c.Set(ContextUserIDKey, claims.UserID)
		c.Set(ContextUserRoleKey, claims.Role)
		c.Next()
	}
}

// SystemRoleMiddleware restricts a route to system-level roles. Must run
// after AuthMiddleware.
func SystemRoleMiddleware(allowedRoles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, err := getUserRoleFromContext(c)
		if err != nil {
			abortWithError(c, http.StatusInternalServerError, "User role not found in context")
			return
		}
		for _, allowed := range allowedRoles {
			if role == allowed {
				c.Next()
				return
			}
		}
		abortWithError(c, http.StatusForbidden, fmt.Sprintf("Access denied: role '%s' does not have permission", role))
	}
}

// GymContextMiddleware resolves the :gymId path parameter and the caller's
// membership in that gym, storing both in the context. System admins bypass
// the membership requirement and act with owner rights in any gym.
func GymContextMiddleware(gymService service.GymService) gin.HandlerFunc {
	return func(c *gin.Context) {
		gymID, err := primitive.ObjectIDFromHex(c.Param("gymId"))
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid gym ID format")
			return
		}

		if _, err := gymService.GetGym(c.Request.Context(), gymID); err != nil {
			if errors.Is(err, service.ErrGymNotFound) {
				abortWithError(c, http.StatusNotFound, err.Error())
			} else {
				abortWithError(c, http.StatusInternalServerError, "Failed to resolve gym")
			}
			return
		}

		c.Set(ContextGymIDKey, gymID)

		role, err := getUserRoleFromContext(c)
		if err == nil && role == domain.RoleAdmin {
			c.Set(ContextGymRoleKey, domain.GymRoleOwner)
			c.Next()
			return
		}

		userID, err := getUserObjectIDFromContext(c)
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, "Invalid user identity")
			return
		}
		membership, err := gymService.GetMembership(c.Request.Context(), userID, gymID)
		if err != nil {
			if errors.Is(err, service.ErrMembershipNotFound) {
				abortWithError(c, http.StatusForbidden, "You are not a member of this gym")
			} else {
				abortWithError(c, http.StatusInternalServerError, "Failed to resolve gym membership")
			}
			return
		}
		if membership.Status != domain.MembershipActive {
			abortWithError(c, http.StatusForbidden, "Your membership in this gym is not active")
			return
		}

		c.Set(ContextGymRoleKey, membership.Role)
		c.Next()
	}
}

// RequireGymRole restricts a route to the given gym-level roles. Must run
// after GymContextMiddleware.
func RequireGymRole(allowedRoles ...domain.GymRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleRaw, exists := c.Get(ContextGymRoleKey)
		if !exists {
			abortWithError(c, http.StatusInternalServerError, "Gym role not found in context")
			return
		}
		gymRole, ok := roleRaw.(domain.GymRole)
		if !ok {
			abortWithError(c, http.StatusInternalServerError, "Invalid gym role type in context")
			return
		}
		for _, allowed := range allowedRoles {
			if gymRole == allowed {
				c.Next()
				return
			}
		}
		abortWithError(c, http.StatusForbidden, fmt.Sprintf("Access denied: gym role '%s' does not have permission", gymRole))
	}
}

// --- Context helpers used by handlers ---

func getUserIDFromContext(c *gin.Context) (string, error) {
	idRaw, exists := c.Get(ContextUserIDKey)
	if !exists {
		return "", errors.New("user ID not found in context")
	}
	idStr, ok := idRaw.(string)
	if !ok {
		return "", errors.New("invalid user ID type in context")
	}
	return idStr, nil
}

func getUserObjectIDFromContext(c *gin.Context) (primitive.ObjectID, error) {
	idStr, err := getUserIDFromContext(c)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return primitive.ObjectIDFromHex(idStr)
}

func getUserRoleFromContext(c *gin.Context) (domain.Role, error) {
	roleRaw, exists := c.Get(ContextUserRoleKey)
	if !exists {
		return "", errors.New("user role not found in context")
	}
	role, ok := roleRaw.(domain.Role)
	if !ok {
		return "", errors.New("invalid user role type in context")
	}
	return role, nil
}

func getGymIDFromContext(c *gin.Context) (primitive.ObjectID, error) {
	idRaw, exists := c.Get(ContextGymIDKey)
	if !exists {
		return primitive.NilObjectID, errors.New("gym ID not found in context")
	}
	id, ok := idRaw.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("invalid gym ID type in context")
	}
	return id, nil
}

// parseObjectIDParam converts a path parameter into an ObjectID, writing a
// 400 response itself on failure.
func parseObjectIDParam(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Invalid %s format", name))
		return primitive.NilObjectID, false
	}
	return id, true
}
