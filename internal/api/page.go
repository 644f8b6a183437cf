package api

import (
	"embed"
	"html/template"
	"io"
	"strconv"

	"github.com/labstack/echo/v4"

	"salesdash/internal/dashboard"
	"salesdash/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

const pageTemplate = "index.html"

// Renderer implements echo.Renderer over the embedded templates.
type Renderer struct {
	templates *template.Template
}

func NewRenderer() (*Renderer, error) {
	t, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Renderer{templates: t}, nil
}

func (r *Renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	return r.templates.ExecuteTemplate(w, name, data)
}

type bar struct {
	Label   string
	Value   string
	Percent float64
}

type selector struct {
	Name     string
	Label    string
	Options  []string
	Selected map[string]bool
}

type page struct {
	Title        string
	Theme        string
	OtherTheme   string
	Cards        models.Cards
	Notification *models.Notification
	Selectors    []selector
	HourBars     []bar
	LineBars     []bar
}

func (h *Handler) newPage(c echo.Context, opts models.FilterOptions, data models.DashboardData) page {
	theme := h.page.Theme
	if t := c.QueryParam(fieldTheme); t == "light" || t == "dark" {
		theme = t
	} else if t := c.FormValue(fieldTheme); t == "light" || t == "dark" {
		theme = t
	}
	other := "dark"
	if theme == "dark" {
		other = "light"
	}

	hourBars := make([]bar, 0, len(data.Result.ByHour))
	var hourMax float64
	for _, ht := range data.Result.ByHour {
		hourMax = max(hourMax, ht.Total)
	}
	for _, ht := range data.Result.ByHour {
		hourBars = append(hourBars, bar{
			Label:   strconv.Itoa(ht.Hour),
			Value:   dashboard.FormatCurrency(ht.Total),
			Percent: percent(ht.Total, hourMax),
		})
	}

	lineBars := make([]bar, 0, len(data.Result.ByProductLine))
	var lineMax float64
	for _, l := range data.Result.ByProductLine {
		lineMax = max(lineMax, l.Total)
	}
	for _, l := range data.Result.ByProductLine {
		lineBars = append(lineBars, bar{
			Label:   l.ProductLine,
			Value:   dashboard.FormatCurrency(l.Total),
			Percent: percent(l.Total, lineMax),
		})
	}

	return page{
		Title:        h.page.Title,
		Theme:        theme,
		OtherTheme:   other,
		Cards:        data.Cards,
		Notification: data.Notification,
		Selectors: []selector{
			{Name: fieldCity, Label: "Select cities", Options: opts.Cities, Selected: set(data.Selection.Cities)},
			{Name: fieldCustomerType, Label: "Select customer types", Options: opts.CustomerTypes, Selected: set(data.Selection.CustomerTypes)},
			{Name: fieldGender, Label: "Select genders", Options: opts.Genders, Selected: set(data.Selection.Genders)},
		},
		HourBars: hourBars,
		LineBars: lineBars,
	}
}

func percent(v, maxV float64) float64 {
	if maxV <= 0 {
		return 0
	}
	return v / maxV * 100
}

func set(values []string) map[string]bool {
	m := make(map[string]bool, len(values))
	for _, v := range values {
		m[v] = true
	}
	return m
}
