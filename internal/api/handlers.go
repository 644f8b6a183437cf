package api

import (
	"errors"
	"net/http"
	"strconv"
	"sync"

	"github.com/labstack/echo/v4"

	"salesdash/internal/dashboard"
	"salesdash/internal/engine"
	"salesdash/internal/models"
)

// Form field names of the three selectors.
const (
	fieldCity         = "city"
	fieldCustomerType = "customer_type"
	fieldGender       = "gender"
	fieldTheme        = "theme"
)

// PageOptions configures the HTML page.
type PageOptions struct {
	Title string
	Theme string
}

type Handler struct {
	mu      sync.RWMutex
	session *dashboard.Session
	page    PageOptions
}

// NewHandler creates a handler. session may be nil while the dataset is still
// loading; data routes answer 503 until SetSession is called.
func NewHandler(session *dashboard.Session, page PageOptions) *Handler {
	if page.Theme == "" {
		page.Theme = "light"
	}
	return &Handler{session: session, page: page}
}

// SetSession publishes the loaded session to the live API.
func (h *Handler) SetSession(s *dashboard.Session) {
	h.mu.Lock()
	h.session = s
	h.mu.Unlock()
}

func (h *Handler) getSession() *dashboard.Session {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.session
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)

	e.GET("/", h.GetPage, h.requireSession)
	e.POST("/filter", h.PostFilterForm, h.requireSession)

	api := e.Group("/api", h.requireSession)
	api.GET("/options", h.GetOptions)
	api.GET("/dashboard", h.GetDashboard)
	api.POST("/filter", h.PostFilter)
	api.GET("/rows", h.GetRows)
}

// requireSession answers 503 while the dataset is loading.
func (h *Handler) requireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if h.getSession() == nil {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "dataset is loading")
		}
		return next(c)
	}
}

// --- HANDLERS ---
func getPaginationParams(c echo.Context, defaultLimit int) (int, int) {
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit <= 0 {
		limit = defaultLimit
	}
	offset, err := strconv.Atoi(c.QueryParam("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}

func (h *Handler) Health(c echo.Context) error {
	if h.getSession() == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "loading"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) GetOptions(c echo.Context) error {
	return c.JSON(http.StatusOK, h.getSession().Options())
}

func (h *Handler) GetDashboard(c echo.Context) error {
	return c.JSON(http.StatusOK, h.getSession().Current().Data())
}

// PostFilter applies a JSON selection. An empty dimension answers 422 with the
// notification and the dashboard that stays displayed.
func (h *Handler) PostFilter(c echo.Context) error {
	var sel engine.Selection
	if err := c.Bind(&sel); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid selection: "+err.Error())
	}

	snap, err := h.getSession().Apply(sel)
	if errors.Is(err, engine.ErrEmptySelection) {
		return c.JSON(http.StatusUnprocessableEntity, snap.Data())
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, snap.Data())
}

// GetRows pages through the rows of the current filtered view.
func (h *Handler) GetRows(c echo.Context) error {
	view := h.getSession().Current().View
	total := view.Len()
	limit, offset := getPaginationParams(c, total)

	if offset >= total {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"data":   []models.Row{},
			"total":  total,
			"limit":  limit,
			"offset": offset,
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"data":   view.Rows(offset, limit),
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

func (h *Handler) GetPage(c echo.Context) error {
	s := h.getSession()
	return c.Render(http.StatusOK, pageTemplate, h.newPage(c, s.Options(), s.Current().Data()))
}

// PostFilterForm applies the selectors of the HTML form and re-renders the
// page. An empty selector keeps the previous charts and shows the notification.
func (h *Handler) PostFilterForm(c echo.Context) error {
	form, err := c.FormParams()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	sel := engine.Selection{
		Cities:        form[fieldCity],
		CustomerTypes: form[fieldCustomerType],
		Genders:       form[fieldGender],
	}

	s := h.getSession()
	snap, err := s.Apply(sel)
	data := snap.Data()
	if errors.Is(err, engine.ErrEmptySelection) {
		// Keep the user's choice in the selectors, not the last valid one.
		data.Selection = sel.Options()
	} else if err != nil {
		return err
	}
	return c.Render(http.StatusOK, pageTemplate, h.newPage(c, s.Options(), data))
}
