package server

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/matthieukhl/orderdesk/internal/models"
	"github.com/matthieukhl/orderdesk/internal/store"
	"github.com/matthieukhl/orderdesk/internal/transfer"
)

func idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "id must be a positive integer")
		return 0, false
	}
	return id, true
}

func bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		badRequest(c, "malformed request body: "+err.Error())
		return false
	}
	return true
}

// Customers

func (s *Server) listCustomers(c *gin.Context) {
	customers, err := s.app.Customers(c.Request.Context(), store.CustomerFilter{Query: c.Query("q")})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, customers)
}

func (s *Server) createCustomer(c *gin.Context) {
	var in models.Customer
	if !bindJSON(c, &in) {
		return
	}
	created, err := s.app.AddCustomer(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *Server) getCustomer(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	customer, err := s.app.Customer(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}

func (s *Server) updateCustomer(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var patch models.CustomerPatch
	if !bindJSON(c, &patch) {
		return
	}
	updated, err := s.app.EditCustomer(c.Request.Context(), id, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) deleteCustomer(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := s.app.RemoveCustomer(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Products

func (s *Server) listProducts(c *gin.Context) {
	filter := store.ProductFilter{Query: c.Query("q")}
	if v := c.Query("in_stock"); v != "" {
		inStock, err := strconv.ParseBool(v)
		if err != nil {
			badRequest(c, "in_stock must be true or false")
			return
		}
		filter.InStockOnly = inStock
	}
	products, err := s.app.Products(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (s *Server) createProduct(c *gin.Context) {
	var in models.Product
	if !bindJSON(c, &in) {
		return
	}
	created, err := s.app.AddProduct(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *Server) getProduct(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	product, err := s.app.Product(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (s *Server) updateProduct(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var patch models.ProductPatch
	if !bindJSON(c, &patch) {
		return
	}
	updated, err := s.app.EditProduct(c.Request.Context(), id, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) deleteProduct(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := s.app.RemoveProduct(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Orders

// orderFilter reads ?customer_id=&status=&from=&to=&sort=&desc= into a filter.
func orderFilter(c *gin.Context) (store.OrderFilter, error) {
	var (
		f   store.OrderFilter
		err error
	)
	if v := c.Query("customer_id"); v != "" {
		if f.CustomerID, err = strconv.ParseInt(v, 10, 64); err != nil || f.CustomerID <= 0 {
			return f, models.NewValidationError(models.EntityOrder, "customer_id", "must be a positive integer")
		}
	}
	if v := c.Query("status"); v != "" {
		if f.Status, err = models.ParseOrderStatus(v); err != nil {
			return f, err
		}
	}
	if f.From, f.To, err = store.DayRange(c.Query("from"), c.Query("to")); err != nil {
		return f, err
	}
	if f.SortBy, err = store.ParseOrderSort(c.Query("sort")); err != nil {
		return f, err
	}
	if v := c.Query("desc"); v != "" {
		if f.Desc, err = strconv.ParseBool(v); err != nil {
			return f, models.NewValidationError(models.EntityOrder, "desc", "must be true or false")
		}
	}
	return f, nil
}

func (s *Server) listOrders(c *gin.Context) {
	filter, err := orderFilter(c)
	if err != nil {
		respondError(c, err)
		return
	}
	orders, err := s.app.Orders(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (s *Server) createOrder(c *gin.Context) {
	var in models.Order
	if !bindJSON(c, &in) {
		return
	}
	created, err := s.app.PlaceOrder(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *Server) getOrder(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	order, err := s.app.Order(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (s *Server) updateOrder(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var patch models.OrderPatch
	if !bindJSON(c, &patch) {
		return
	}
	updated, err := s.app.EditOrder(c.Request.Context(), id, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) cancelOrder(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	cancelled, err := s.app.CancelOrder(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cancelled)
}

func (s *Server) deleteOrder(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := s.app.RemoveOrder(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Analytics

func topParam(c *gin.Context) (int, bool) {
	v := c.Query("top")
	if v == "" {
		return 0, true
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		badRequest(c, "top must be a positive integer")
		return 0, false
	}
	return n, true
}

func (s *Server) analytics(c *gin.Context) {
	top, ok := topParam(c)
	if !ok {
		return
	}
	report, err := s.app.Analyze(c.Request.Context(), top)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) analyticsSection(c *gin.Context) {
	top, ok := topParam(c)
	if !ok {
		return
	}
	report, err := s.app.Analyze(c.Request.Context(), top)
	if err != nil {
		respondError(c, err)
		return
	}
	section, err := report.Section(c.Param("kind"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, section)
}

// Transfer

var contentTypes = map[transfer.Format]string{
	transfer.FormatCSV:  "text/csv; charset=utf-8",
	transfer.FormatJSON: "application/json; charset=utf-8",
	transfer.FormatYAML: "application/yaml; charset=utf-8",
}

func (s *Server) exportEntity(c *gin.Context) {
	entity, err := transfer.ParseEntity(c.Param("entity"))
	if err != nil {
		respondError(c, err)
		return
	}
	format, err := transfer.ResolveFormat("", c.DefaultQuery("format", "json"))
	if err != nil {
		respondError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := s.app.Export(c.Request.Context(), &buf, format, entity); err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, contentTypes[format], buf.Bytes())
}

func (s *Server) importEntity(c *gin.Context) {
	entity, err := transfer.ParseEntity(c.Param("entity"))
	if err != nil {
		respondError(c, err)
		return
	}
	format, err := transfer.ResolveFormat("", c.DefaultQuery("format", "json"))
	if err != nil {
		respondError(c, err)
		return
	}

	body := http.MaxBytesReader(c.Writer, c.Request.Body, s.maxImportBytes)
	res, err := s.app.Import(c.Request.Context(), body, format, entity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
