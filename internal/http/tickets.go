package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"pos/internal/receipt"
)

// @Summary List tickets
// @Tags tickets
// @Produce json
// @Success 200 {array} domain.Ticket
// @Router /tickets [get]
func (s *Server) listTickets(c *gin.Context) {
	list, err := s.svc.Tickets.List(c)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary Get ticket by id
// @Tags tickets
// @Produce json
// @Param id path int true "Ticket ID"
// @Success 200 {object} domain.Ticket
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /tickets/{id} [get]
func (s *Server) getTicket(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	t, err := s.svc.Tickets.GetByID(c, id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// @Summary Download receipt
// @Tags tickets
// @Produce html
// @Param id path int true "Ticket ID"
// @Success 200 {string} string "HTML receipt"
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /tickets/{id}/receipt [get]
func (s *Server) downloadReceipt(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	body, err := s.svc.Tickets.Receipt(c, id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+receipt.Filename)
	c.Data(http.StatusOK, receipt.ContentType, body)
}

// @Summary List sales
// @Tags sales
// @Produce json
// @Param ticket_id query int false "Only sales of this ticket"
// @Success 200 {array} domain.Sale
// @Failure 400 {object} errorResponse
// @Router /sales [get]
func (s *Server) listSales(c *gin.Context) {
	var ticketID int64
	if raw := c.Query("ticket_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			writeError(c, http.StatusBadRequest, codeInvalidID, "invalid ticket_id")
			return
		}
		ticketID = id
	}
	list, err := s.svc.Tickets.ListSales(c, ticketID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}
