package middlewares

import (
	"mime"
	"net/http"

	"github.com/geocoder89/userhub/internal/apperr"
	"github.com/gin-gonic/gin"
)

func MaxBodyBytes(max int64) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, max)

		ctx.Next()
	}
}

var acceptedBodyTypes = map[string]struct{}{
	gin.MIMEJSON:              {},
	gin.MIMEPOSTForm:          {},
	gin.MIMEMultipartPOSTForm: {},
}

// AcceptedBody rejects write requests whose body is not JSON, urlencoded or multipart.
// Requests without a body are let through; handlers decide if they need one.
func AcceptedBody() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			ct := c.GetHeader("Content-Type")
			if ct == "" {
				break
			}

			mediaType, _, err := mime.ParseMediaType(ct)
			if _, ok := acceptedBodyTypes[mediaType]; err != nil || !ok {
				_ = c.Error(&apperr.Error{
					Kind:    apperr.KindUnsupportedMedia,
					Message: "Content-Type must be application/json, application/x-www-form-urlencoded or multipart/form-data",
				})
				c.Abort()
				return
			}
		}
		c.Next()
	}
}
