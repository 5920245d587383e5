// README: Income report handler.
package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"kargo/internal/modules/income"
)

type IncomeHandler struct {
	income *income.Service
}

func NewIncomeHandler(incomeSvc *income.Service) *IncomeHandler {
	return &IncomeHandler{income: incomeSvc}
}

// Report serves GET /api/income?date=YYYY-MM-DD&year=YYYY. The date is read in the
// reporting time zone; both parameters are optional.
func (h *IncomeHandler) Report(c *gin.Context) {
	var date *time.Time
	if v := c.Query("date"); v != "" {
		d, err := time.ParseInLocation(time.DateOnly, v, h.income.Location())
		if err != nil {
			writeError(c, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		date = &d
	}
	year := 0
	if v := c.Query("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 1970 || y > 9999 {
			writeError(c, http.StatusBadRequest, "invalid year")
			return
		}
		year = y
	}
	report, err := h.income.Report(c.Request.Context(), callerID(c), date, year)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, report)
}
