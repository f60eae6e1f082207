package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/accountd/accountd/internal/common"
	"github.com/accountd/accountd/internal/i18n"
)

type fieldErrorBody struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type errorBody struct {
	Error  string           `json:"error"`
	Fields []fieldErrorBody `json:"fields,omitempty"`
}

// writeError maps service errors onto HTTP statuses: validation 400,
// authentication 401, authorization 403, not found 404, everything else 500.
// Messages are resolved against the request locale.
func writeError(c *gin.Context, err error) {
	locale := localeFrom(c)

	var validation *common.ValidationError
	if errors.As(err, &validation) {
		fields := make([]fieldErrorBody, 0, len(validation.Fields))
		for _, f := range validation.Fields {
			fields = append(fields, fieldErrorBody{
				Field:   f.Field,
				Message: i18n.Translate(locale, f.Key),
			})
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, errorBody{
			Error:  i18n.Translate(locale, "errors.validation"),
			Fields: fields,
		})
		return
	}

	var authnErr *common.AuthenticationError
	if errors.As(err, &authnErr) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody{
			Error: i18n.Translate(locale, authnErr.Key),
		})
		return
	}

	var authzErr *common.AuthorizationError
	if errors.As(err, &authzErr) {
		c.AbortWithStatusJSON(http.StatusForbidden, errorBody{
			Error: i18n.Translate(locale, authzErr.Key),
		})
		return
	}

	if errors.Is(err, common.ErrNotFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, errorBody{
			Error: i18n.Translate(locale, "errors.not_found"),
		})
		return
	}

	c.AbortWithStatusJSON(http.StatusInternalServerError, errorBody{
		Error: i18n.Translate(locale, "errors.internal"),
	})
}

// writeBindError reports malformed request bodies without echoing binding
// internals to the client.
func writeBindError(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorBody{
		Error: i18n.Translate(localeFrom(c), "errors.validation"),
	})
}
