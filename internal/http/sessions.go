package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"pos/internal/domain"
	"pos/internal/service"
)

type sessionResp struct {
	ID       string               `json:"id"`
	Checkout service.CheckoutView `json:"checkout"`
}

// @Summary Open checkout session
// @Tags sessions
// @Produce json
// @Success 201 {object} sessionResp
// @Router /sessions [post]
func (s *Server) openSession(c *gin.Context) {
	id, co := s.svc.Sessions.Open()
	c.JSON(http.StatusCreated, sessionResp{ID: id, Checkout: co.View()})
}

// session resolves the :id path parameter and answers 404 when unknown.
func (s *Server) session(c *gin.Context) (*service.Checkout, bool) {
	co, err := s.svc.Sessions.Get(c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return nil, false
	}
	return co, true
}

// @Summary Get checkout state
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} sessionResp
// @Failure 404 {object} errorResponse
// @Router /sessions/{id} [get]
func (s *Server) getSession(c *gin.Context) {
	co, ok := s.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, sessionResp{ID: c.Param("id"), Checkout: co.View()})
}

// @Summary Cancel and close checkout session
// @Tags sessions
// @Param id path string true "Session ID"
// @Success 204
// @Failure 404 {object} errorResponse
// @Router /sessions/{id} [delete]
func (s *Server) closeSession(c *gin.Context) {
	if err := s.svc.Sessions.Close(c.Param("id")); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type addItemReq struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

// @Summary Add product to cart
// @Description Re-adding a product replaces its quantity.
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param input body addItemReq true "Item"
// @Success 200 {object} sessionResp
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /sessions/{id}/items [post]
func (s *Server) addItem(c *gin.Context) {
	co, ok := s.session(c)
	if !ok {
		return
	}
	var req addItemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, codeInvalidRequestBody, "invalid json")
		return
	}
	if err := co.AddItem(c, req.ProductID, req.Quantity); err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionResp{ID: c.Param("id"), Checkout: co.View()})
}

// @Summary Remove product from cart
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Param product_id path int true "Product ID"
// @Success 200 {object} sessionResp
// @Failure 404 {object} errorResponse
// @Router /sessions/{id}/items/{product_id} [delete]
func (s *Server) removeItem(c *gin.Context) {
	co, ok := s.session(c)
	if !ok {
		return
	}
	pid, ok := paramID(c, "product_id")
	if !ok {
		return
	}
	if err := co.RemoveItem(pid); err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionResp{ID: c.Param("id"), Checkout: co.View()})
}

type customerReq struct {
	Name string `json:"name"`
}

type customerResp struct {
	Customer domain.Customer      `json:"customer"`
	Created  bool                 `json:"created"`
	Checkout service.CheckoutView `json:"checkout"`
}

// @Summary Select customer by name
// @Description Finds the customer by exact name or creates a new one.
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param input body customerReq true "Customer"
// @Success 200 {object} customerResp
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /sessions/{id}/customer [put]
func (s *Server) selectCustomer(c *gin.Context) {
	co, ok := s.session(c)
	if !ok {
		return
	}
	var req customerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, codeInvalidRequestBody, "invalid json")
		return
	}
	cu, created, err := co.SelectCustomer(c, req.Name)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, customerResp{Customer: cu, Created: created, Checkout: co.View()})
}

type salespersonSelectReq struct {
	SalespersonID int64 `json:"salesperson_id"`
}

// @Summary Select salesperson
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param input body salespersonSelectReq true "Salesperson"
// @Success 200 {object} sessionResp
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /sessions/{id}/salesperson [put]
func (s *Server) selectSalesperson(c *gin.Context) {
	co, ok := s.session(c)
	if !ok {
		return
	}
	var req salespersonSelectReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, codeInvalidRequestBody, "invalid json")
		return
	}
	if _, err := co.SelectSalesperson(c, req.SalespersonID); err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionResp{ID: c.Param("id"), Checkout: co.View()})
}

// @Summary Complete transaction
// @Description Checks stock for every line, then decrements it and stores the ticket.
// @Description The receipt is served by /tickets/{id}/receipt.
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 201 {object} domain.Ticket
// @Header 201 {string} Location "Receipt download URL"
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Failure 409 {object} errorResponse
// @Router /sessions/{id}/complete [post]
func (s *Server) completeSession(c *gin.Context) {
	co, ok := s.session(c)
	if !ok {
		return
	}
	res, err := co.Complete(c)
	if err != nil && res == nil {
		writeServiceError(c, err)
		return
	}
	if err != nil {
		log.Error().Err(err).Int64("ticket_id", res.Ticket.ID).Msg("receipt rendering failed")
	}
	c.Header("Location", receiptPath(res.Ticket.ID))
	c.JSON(http.StatusCreated, res.Ticket)
}

func receiptPath(ticketID int64) string {
	return "/api/v1/tickets/" + strconv.FormatInt(ticketID, 10) + "/receipt"
}
