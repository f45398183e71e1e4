package rest

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"client-manager-api/config"
	"client-manager-api/internal/application/apperr"
	"client-manager-api/internal/application/ports"
	domain "client-manager-api/internal/domain/client"
	"client-manager-api/internal/interface/api/rest/dto/client"
	"client-manager-api/internal/interface/api/rest/validator"
)

// maxItemBytes bounds the body size of one client record.
const maxItemBytes = 4 << 10

const (
	msgTooLarge = "El cuerpo de la solicitud es demasiado grande"
	msgCreated = "Cliente creado exitosamente"
	msgListed  = "Listado de clientes obtenido"
	msgFound   = "Cliente obtenido exitosamente"
	msgUpdated = "Cliente actualizado exitosamente"
	msgDeleted = "Cliente eliminado exitosamente"
)

type ClientController struct {
	clientService ports.ClientService
	logger        *zap.Logger
	limits        config.Clients
}

func NewClientController(
	r *gin.Engine,
	clientService ports.ClientService,
	logger *zap.Logger,
	limits config.Clients,
) *ClientController {
	cc := &ClientController{
		clientService: clientService,
		logger:        logger,
		limits:        limits,
	}

	r.GET(RouteClients, cc.GetClientsHandler)
	r.GET(RouteClient, cc.GetClientHandler)
	r.POST(RouteClients, cc.CreateClientsHandler)
	r.PUT(RouteClient, cc.UpdateClientHandler)
	r.DELETE(RouteClient, cc.DeleteClientHandler)

	return cc
}

// readBody reads at most items*maxItemBytes of the request body.
func (cc *ClientController) readBody(c *gin.Context, items int) ([]byte, error) {
	if items < 1 {
		items = 1
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, int64(items)*maxItemBytes)

	body, err := c.GetRawData()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, apperr.BadRequest(msgTooLarge)
		}
		return nil, apperr.BadRequest(validator.MsgInvalidJSON)
	}
	return body, nil
}

// clientID reads the :id path parameter. Ids that can never exist answer
// NOT_FOUND.
func (cc *ClientController) clientID(c *gin.Context) (domain.ID, bool) {
	raw := c.Param("id")
	id, ok := validator.ParseID(raw)
	if !ok {
		writeError(c, cc.logger, "ParseID()",
			apperr.NotFound(fmt.Sprintf("No se encontró cliente con ID %s", raw)))
		return 0, false
	}
	return id, true
}

func (cc *ClientController) GetClientsHandler(c *gin.Context) {
	page, err := validator.ValidatePage(c.Query("page"))
	if err != nil {
		writeError(c, cc.logger, "ValidatePage()", apperr.BadRequest(err.Error()))
		return
	}
	perPage, err := validator.ValidatePerPage(c.Query("per_page"), cc.limits.DefaultPerPage, cc.limits.MaxPerPage)
	if err != nil {
		writeError(c, cc.logger, "ValidatePerPage()", apperr.BadRequest(err.Error()))
		return
	}
	status, err := validator.ValidateStatus(c.Query("estado"))
	if err != nil {
		writeError(c, cc.logger, "ValidateStatus()", apperr.BadRequest(err.Error()))
		return
	}

	f := domain.ListFilter{Status: status, Page: page, PerPage: perPage}
	cls, total, err := cc.clientService.FindClients(c.Request.Context(), f)
	if err != nil {
		writeError(c, cc.logger, "FindClients()", err)
		return
	}

	c.JSON(http.StatusOK, client.Envelope{
		Success: true,
		Message: msgListed,
		Data:    client.ToResponseClients(cls),
		Pagination: &client.Pagination{
			Page:    f.Page,
			PerPage: f.PerPage,
			Total:   total,
			Pages:   f.Pages(total),
		},
	})
}

func (cc *ClientController) GetClientHandler(c *gin.Context) {
	id, ok := cc.clientID(c)
	if !ok {
		return
	}

	cl, err := cc.clientService.FindClientByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, cc.logger, "FindClientByID()", err)
		return
	}

	c.JSON(http.StatusOK, client.Envelope{
		Success: true,
		Message: msgFound,
		Data:    client.ToResponseClient(*cl),
	})
}

// CreateClientsHandler accepts either one client object or a list of them.
// A list is created best-effort and always answers 201 with one result per
// element.
func (cc *ClientController) CreateClientsHandler(c *gin.Context) {
	body, err := cc.readBody(c, cc.limits.MaxBatchSize)
	if err != nil {
		writeError(c, cc.logger, "GetRawData()", err)
		return
	}
	payload, err := validator.ParsePayload(body, cc.limits.MaxBatchSize)
	if err != nil {
		writeError(c, cc.logger, "ParsePayload()", err)
		return
	}

	if payload.Kind == validator.PayloadBatch {
		results := cc.clientService.CreateClients(c.Request.Context(), payload.Batch)
		items, created := client.ToResponseBatch(results)
		for _, r := range results {
			if ae := apperr.Classify(r.Err); ae != nil && ae.Kind == apperr.KindInternal {
				cc.logger.Error("CreateClients() error", zap.Int("index", r.Index), zap.Error(ae.Err))
			}
		}

		c.JSON(http.StatusCreated, client.Envelope{
			Success: true,
			Message: fmt.Sprintf("Se crearon %d de %d clientes", created, len(items)),
			Data:    items,
		})
		return
	}

	cl, err := cc.clientService.CreateClient(c.Request.Context(), payload.Single)
	if err != nil {
		writeError(c, cc.logger, "CreateClient()", err)
		return
	}

	c.JSON(http.StatusCreated, client.Envelope{
		Success: true,
		Message: msgCreated,
		Data:    client.ToResponseClient(*cl),
	})
}

func (cc *ClientController) UpdateClientHandler(c *gin.Context) {
	id, ok := cc.clientID(c)
	if !ok {
		return
	}

	var raw map[string]any
	body, err := cc.readBody(c, 1)
	if err == nil {
		var payload validator.Payload
		payload, err = validator.ParsePayload(body, 0)
		if err == nil && payload.Kind != validator.PayloadSingle {
			err = apperr.BadRequest(validator.MsgWrongShape)
		}
		raw = payload.Single
	}
	if err != nil {
		// a missing client answers 404 whatever the body
		if _, ferr := cc.clientService.FindClientByID(c.Request.Context(), id); ferr != nil {
			writeError(c, cc.logger, "FindClientByID()", ferr)
			return
		}
		writeError(c, cc.logger, "ParsePayload()", err)
		return
	}

	cl, err := cc.clientService.UpdateClient(c.Request.Context(), id, raw)
	if err != nil {
		writeError(c, cc.logger, "UpdateClient()", err)
		return
	}

	c.JSON(http.StatusOK, client.Envelope{
		Success: true,
		Message: msgUpdated,
		Data:    client.ToResponseClient(*cl),
	})
}

func (cc *ClientController) DeleteClientHandler(c *gin.Context) {
	id, ok := cc.clientID(c)
	if !ok {
		return
	}

	if err := cc.clientService.DeleteClient(c.Request.Context(), id); err != nil {
		writeError(c, cc.logger, "DeleteClient()", err)
		return
	}

	c.JSON(http.StatusOK, client.Envelope{
		Success: true,
		Message: msgDeleted,
	})
}
