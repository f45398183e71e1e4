package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"client-manager-api/internal/application/apperr"
	"client-manager-api/internal/interface/api/rest/dto/client"
)

const msgRouteNotFound = "El recurso solicitado no existe"

// writeError answers with the envelope of err's kind. The cause of an
// internal error only goes to the log.
func writeError(c *gin.Context, logger *zap.Logger, op string, err error) {
	ae := apperr.Classify(err)
	if ae.Kind == apperr.KindInternal {
		logger.Error(op+" error", zap.Error(ae.Err))
	}

	c.JSON(ae.Kind.HTTPStatus(), client.ErrorEnvelope(ae))
}

// NoRouteHandler answers unknown routes with a NOT_FOUND envelope.
func NoRouteHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, client.ErrorEnvelope(apperr.NotFound(msgRouteNotFound)))
}

// RecoveryHandler turns a panic into an INTERNAL_ERROR envelope.
func RecoveryHandler(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error("panic recovered",
			zap.Any("panic", recovered),
			zap.String("url", c.Request.URL.Path),
		)
		c.AbortWithStatusJSON(
			http.StatusInternalServerError,
			client.ErrorEnvelope(apperr.Internal(nil)),
		)
	})
}
