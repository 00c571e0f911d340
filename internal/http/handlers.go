package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"pos/internal/domain"
	"pos/internal/repository"
	"pos/internal/service"
)

// Services зависимости HTTP слоя
type Services struct {
	Products     *service.ProductService
	Customers    *service.CustomerService
	Salespersons *service.SalespersonService
	Tickets      *service.TicketService
	Sessions     *service.SessionRegistry
}

type Server struct {
	engine *gin.Engine
	svc    Services
}

func NewServer(svc Services) *Server {
	r := gin.New()
	r.Use(requestLogger(), recovery())
	s := &Server{engine: r, svc: svc}
	s.registerRoutes()
	return s
}

func (s *Server) Engine() *gin.Engine { return s.engine }

func (s *Server) registerRoutes() {
	// Swagger UI
	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	s.engine.GET("/healthz", s.health)

	v1 := s.engine.Group("/api/v1")
	{
		products := v1.Group("/products")
		products.POST("", s.createProduct)
		products.GET(":id", s.getProduct)
		products.PUT(":id", s.updateProduct)
		products.DELETE(":id", s.deleteProduct)
		products.GET("", s.listProducts)

		customers := v1.Group("/customers")
		customers.GET("", s.listCustomers)
		customers.GET(":id", s.getCustomer)
		customers.DELETE(":id", s.deleteCustomer)

		salespersons := v1.Group("/salespersons")
		salespersons.POST("", s.createSalesperson)
		salespersons.GET("", s.listSalespersons)
		salespersons.GET(":id", s.getSalesperson)
		salespersons.DELETE(":id", s.deleteSalesperson)

		sessions := v1.Group("/sessions")
		sessions.POST("", s.openSession)
		sessions.GET(":id", s.getSession)
		sessions.DELETE(":id", s.closeSession)
		sessions.POST(":id/items", s.addItem)
		sessions.DELETE(":id/items/:product_id", s.removeItem)
		sessions.PUT(":id/customer", s.selectCustomer)
		sessions.PUT(":id/salesperson", s.selectSalesperson)
		sessions.POST(":id/complete", s.completeSession)

		tickets := v1.Group("/tickets")
		tickets.GET("", s.listTickets)
		tickets.GET(":id", s.getTicket)
		tickets.GET(":id/receipt", s.downloadReceipt)

		v1.GET("/sales", s.listSales)
	}
}

// health reports basic liveness for the service.
func (s *Server) health(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// Product handlers
type productReq struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price" swaggertype:"string" example:"9.99"`
	Stock int64           `json:"stock"`
}

// @Summary Create product
// @Tags products
// @Accept json
// @Produce json
// @Param input body productReq true "Product"
// @Success 201 {object} domain.Product
// @Failure 400 {object} errorResponse
// @Router /products [post]
func (s *Server) createProduct(c *gin.Context) {
	var req productReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, codeInvalidRequestBody, "invalid json")
		return
	}
	p, err := s.svc.Products.Create(c, domain.Product{Name: req.Name, Price: req.Price, Stock: req.Stock})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// @Summary Get product by id
// @Tags products
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} domain.Product
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /products/{id} [get]
func (s *Server) getProduct(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	p, err := s.svc.Products.GetByID(c, id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// @Summary Update product
// @Tags products
// @Accept json
// @Produce json
// @Param id path int true "Product ID"
// @Param input body productReq true "Update"
// @Success 200 {object} domain.Product
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /products/{id} [put]
func (s *Server) updateProduct(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req productReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, codeInvalidRequestBody, "invalid json")
		return
	}
	p, err := s.svc.Products.Update(c, domain.Product{ID: id, Name: req.Name, Price: req.Price, Stock: req.Stock})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// @Summary Delete product
// @Tags products
// @Param id path int true "Product ID"
// @Success 204
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /products/{id} [delete]
func (s *Server) deleteProduct(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := s.svc.Products.Delete(c, id); err != nil {
		writeServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary List products
// @Tags products
// @Produce json
// @Param q query string false "Name substring"
// @Param min_price query string false "Min price"
// @Param max_price query string false "Max price"
// @Success 200 {array} domain.Product
// @Failure 400 {object} errorResponse
// @Router /products [get]
func (s *Server) listProducts(c *gin.Context) {
	f := repository.ProductFilter{NameSubstring: strings.TrimSpace(c.Query("q"))}
	for _, q := range []struct {
		key string
		dst **decimal.Decimal
	}{{"min_price", &f.MinPrice}, {"max_price", &f.MaxPrice}} {
		raw := c.Query(q.key)
		if raw == "" {
			continue
		}
		v, err := decimal.NewFromString(raw)
		if err != nil {
			writeError(c, http.StatusBadRequest, codeInvalidPrice, "invalid "+q.key)
			return
		}
		*q.dst = &v
	}
	list, err := s.svc.Products.List(c, f)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// paramID parses a positive integer path parameter and answers 400 otherwise.
func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		writeError(c, http.StatusBadRequest, codeInvalidID, "invalid "+name)
		return 0, false
	}
	return id, true
}
