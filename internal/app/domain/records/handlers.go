package records

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ppk-his/ppk-portal/internal/app/models"
)

type RecordsHandlers struct {
	his    HISService
	logger *zap.Logger
}

func NewRecordsHandlers(his HISService, logger *zap.Logger) *RecordsHandlers {
	return &RecordsHandlers{his: his, logger: logger}
}

// GetDoctors handles GET /api/his/doctors.
func (h *RecordsHandlers) GetDoctors(c *gin.Context) {
	rows, err := h.his.FindDoctors(c.Request.Context())
	if err != nil {
		h.upstreamError(c, "fetching doctors", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "data": rows})
}

// GetLocations handles GET /api/his/locations.
func (h *RecordsHandlers) GetLocations(c *gin.Context) {
	rows, err := h.his.FindLocations(c.Request.Context())
	if err != nil {
		h.upstreamError(c, "fetching locations", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "data": rows})
}

// Search handles POST /api/records/search.
func (h *RecordsHandlers) Search(c *gin.Context) {
	q, ok := h.bindQuery(c)
	if !ok {
		return
	}

	rows, err := h.his.FindPatientContacts(c.Request.Context(), q)
	if err != nil {
		h.upstreamError(c, "searching patient contacts", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "count": len(rows), "data": rows})
}

// Export handles POST /api/records/export: runs the same search and
// streams the result as an xlsx workbook.
func (h *RecordsHandlers) Export(c *gin.Context) {
	q, ok := h.bindQuery(c)
	if !ok {
		return
	}

	rows, err := h.his.FindPatientContacts(c.Request.Context(), q)
	if err != nil {
		h.upstreamError(c, "searching patient contacts for export", err)
		return
	}
	if len(rows) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "message": "no records to export"})
		return
	}

	buf, err := BuildWorkbook(rows)
	if err != nil {
		h.logger.Error("Failed to build export workbook", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": "internal server error"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="Export_Contacts.xlsx"`)
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		buf.Bytes())
}

func (h *RecordsHandlers) bindQuery(c *gin.Context) (SearchQuery, bool) {
	var q SearchQuery
	if err := c.ShouldBindJSON(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "invalid search payload"})
		return q, false
	}
	if q.DateStart == "" || q.DateEnd == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "dateStart and dateEnd are required"})
		return q, false
	}
	return q, true
}

func (h *RecordsHandlers) upstreamError(c *gin.Context, action string, err error) {
	h.logger.Error("HIS upstream error", zap.String("action", action), zap.Error(err))
	if errors.Is(err, models.ErrInternal) {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": "hospital data service unavailable"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": "internal server error"})
}
