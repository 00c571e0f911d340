package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// @Summary List customers
// @Tags customers
// @Produce json
// @Success 200 {array} domain.Customer
// @Router /customers [get]
func (s *Server) listCustomers(c *gin.Context) {
	list, err := s.svc.Customers.List(c)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary Get customer by id
// @Tags customers
// @Produce json
// @Param id path string true "Customer ID"
// @Success 200 {object} domain.Customer
// @Failure 404 {object} errorResponse
// @Router /customers/{id} [get]
func (s *Server) getCustomer(c *gin.Context) {
	cu, err := s.svc.Customers.GetByID(c, c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, cu)
}

// @Summary Delete customer
// @Tags customers
// @Param id path string true "Customer ID"
// @Success 204
// @Failure 404 {object} errorResponse
// @Router /customers/{id} [delete]
func (s *Server) deleteCustomer(c *gin.Context) {
	if err := s.svc.Customers.Delete(c, c.Param("id")); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type salespersonReq struct {
	Name string `json:"name"`
}

// @Summary Create salesperson
// @Tags salespersons
// @Accept json
// @Produce json
// @Param input body salespersonReq true "Salesperson"
// @Success 201 {object} domain.Salesperson
// @Failure 400 {object} errorResponse
// @Router /salespersons [post]
func (s *Server) createSalesperson(c *gin.Context) {
	var req salespersonReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, codeInvalidRequestBody, "invalid json")
		return
	}
	sp, err := s.svc.Salespersons.Create(c, req.Name)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sp)
}

// @Summary List salespersons
// @Tags salespersons
// @Produce json
// @Success 200 {array} domain.Salesperson
// @Router /salespersons [get]
func (s *Server) listSalespersons(c *gin.Context) {
	list, err := s.svc.Salespersons.List(c)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary Get salesperson by id
// @Tags salespersons
// @Produce json
// @Param id path int true "Salesperson ID"
// @Success 200 {object} domain.Salesperson
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /salespersons/{id} [get]
func (s *Server) getSalesperson(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	sp, err := s.svc.Salespersons.GetByID(c, id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, sp)
}

// @Summary Delete salesperson
// @Tags salespersons
// @Param id path int true "Salesperson ID"
// @Success 204
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /salespersons/{id} [delete]
func (s *Server) deleteSalesperson(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := s.svc.Salespersons.Delete(c, id); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
