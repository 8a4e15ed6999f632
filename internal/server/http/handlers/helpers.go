package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/fueldelivery/internal/domain/errors"
	"github.com/polkiloo/fueldelivery/internal/domain/model"
	pkgAuth "github.com/polkiloo/fueldelivery/internal/pkg/auth"
	"github.com/polkiloo/fueldelivery/internal/server/http/dto"
	"github.com/polkiloo/fueldelivery/internal/server/http/middleware"
)

const internalErrorMessage = "internal server error"

// CurrentActor extracts authenticated actor from context.
func CurrentActor(c *gin.Context) model.Actor {
	actor, _ := middleware.CurrentActor(c)
	return actor
}

// respond writes a success envelope merged with payload.
func respond(c *gin.Context, status int, message string, payload gin.H) {
	body := gin.H{"success": true}
	if message != "" {
		body["message"] = message
	}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(status, body)
}

// fail writes an error envelope. Unclassified errors are attached to the
// context for the request logger and hidden behind a generic message.
func fail(c *gin.Context, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		message = internalErrorMessage
	}
	c.JSON(status, gin.H{"success": false, "error": message})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": message})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domainErrors.ErrValidation),
		errors.Is(err, domainErrors.ErrInvalidTransition),
		errors.Is(err, domainErrors.ErrInvalidState),
		errors.Is(err, domainErrors.ErrDriverUnavailable):
		return http.StatusBadRequest
	case errors.Is(err, domainErrors.ErrInvalidCredentials),
		errors.Is(err, pkgAuth.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, domainErrors.ErrForbidden),
		errors.Is(err, domainErrors.ErrInactiveAccount):
		return http.StatusForbidden
	case errors.Is(err, domainErrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domainErrors.ErrConflict),
		errors.Is(err, domainErrors.ErrAlreadyExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// bindJSON decodes the request body and writes a 400 envelope on failure,
// or 413 when the body exceeds the inflate limit.
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"success": false, "error": "request body too large"})
			return false
		}
		badRequest(c, "invalid request body")
		return false
	}
	return true
}

// pathID parses a positive identifier path parameter.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}

// queryPage reads page and limit query parameters.
func queryPage(c *gin.Context) model.Page {
	number, _ := strconv.Atoi(c.Query("page"))
	size, _ := strconv.Atoi(c.Query("limit"))
	return model.NewPage(number, size)
}

// queryInt64 reads an optional positive identifier from the query string.
func queryInt64(c *gin.Context, name string) (*int64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		badRequest(c, "invalid "+name)
		return nil, false
	}
	return &v, true
}

// queryBool reads an optional boolean from the query string.
func queryBool(c *gin.Context, name string) (*bool, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		badRequest(c, "invalid "+name)
		return nil, false
	}
	return &v, true
}

func paginated(page model.Page, total int64) gin.H {
	return gin.H{"pagination": dto.NewPagination(page, total)}
}
