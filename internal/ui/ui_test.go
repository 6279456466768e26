package ui

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gramoorja/landedcost/internal/report"
)

func TestRender_FormAndResult(t *testing.T) {
	p := NewPage()
	p.ConnectionTypes = []string{"LT", "HT"}
	p.ConnectionType = "HT"
	p.SubCategories = []string{"Industrial"}
	p.SubCategory = "Industrial"
	p.Rows = []report.Row{{Label: "Landed Cost (Rs./Unit)", Value: "6.09"}}
	p.LandedCost = "6.09"

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, p))
	html := buf.String()

	assert.Contains(t, html, report.Title)
	assert.Contains(t, html, `<option value="HT" selected>HT</option>`)
	assert.Contains(t, html, `min="0" step="0.01"`)
	assert.Contains(t, html, "Rs. 6.09 per Unit")
	assert.NotContains(t, html, `src="/ui/logo"`)
}

func TestRender_BlockedShowsBannerOnly(t *testing.T) {
	p := NewPage()
	p.Blocked = true
	p.Banner = &Banner{Level: LevelError, Message: "database.xlsx <missing>"}

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, p))
	html := buf.String()

	assert.Contains(t, html, "banner-error")
	assert.Contains(t, html, "database.xlsx &lt;missing&gt;")
	assert.NotContains(t, html, "<form")
}

func TestHandler_ServesStatic(t *testing.T) {
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/app.js", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/api/sub-categories")
}

func TestRender_DateAndFooter(t *testing.T) {
	p := NewPage()
	p.Date = "14-03-2025"

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, p))
	html := buf.String()

	assert.Contains(t, html, "Date: 14-03-2025")
	assert.Contains(t, html, "<footer>")
	assert.Contains(t, html, "Gram Oorja Solutions Private Limited")
	assert.Contains(t, html, "Project Manager &amp; Solar Implementation Specialist")
}
