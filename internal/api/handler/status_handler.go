package handler

import (
	"encoding/xml"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/microcosm-cc/bluemonday"

	"github.com/appsec-lab/gateway/internal/core/domain"
)

const (
	robotsTxt      = "User-agent: *\nDisallow:"
	sitemapXMLNS   = "http://www.sitemaps.org/schemas/sitemap/0.9"
	defaultSiteURL = "http://localhost:4000"
)

type StatusHandler struct {
	policy  *bluemonday.Policy
	siteURL string
}

// NewStatusHandler lists siteURL in the sitemap. The request Host is never
// used for it.
func NewStatusHandler(siteURL string) *StatusHandler {
	siteURL = strings.TrimRight(siteURL, "/")
	if siteURL == "" {
		siteURL = defaultSiteURL
	}
	return &StatusHandler{policy: bluemonday.StrictPolicy(), siteURL: siteURL}
}

type statusResponse struct {
	Message     string       `json:"message"`
	CurrentUser *domain.User `json:"current_user"`
}

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc string `xml:"loc"`
}

type searchResponse struct {
	Message string `json:"message"`
	Query   string `json:"query"`
}

// Status reports the API name and the resolved identity.
//
// @Summary      API status
// @Tags         status
// @Produce      json
// @Success      200  {object}  statusResponse
// @Failure      401  {object}  ErrorResponse
// @Router       / [get]
func (h *StatusHandler) Status(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, statusResponse{
		Message:     "Access Control Tutorial API",
		CurrentUser: user,
	})
}

// Search echoes the query with every HTML tag stripped.
//
// @Summary      Search
// @Tags         status
// @Produce      json
// @Param        q    query     string  false  "Search term"
// @Success      200  {object}  searchResponse
// @Router       /search [get]
func (h *StatusHandler) Search(c echo.Context) error {
	return c.JSON(http.StatusOK, searchResponse{
		Message: "Results found",
		Query:   h.policy.Sanitize(c.QueryParam("q")),
	})
}

// Robots serves an allow-all robots.txt.
func (h *StatusHandler) Robots(c echo.Context) error {
	return c.String(http.StatusOK, robotsTxt)
}

// Sitemap lists the public entry point.
func (h *StatusHandler) Sitemap(c echo.Context) error {
	return c.XML(http.StatusOK, sitemapURLSet{
		XMLNS: sitemapXMLNS,
		URLs:  []sitemapURL{{Loc: h.siteURL + "/"}},
	})
}
