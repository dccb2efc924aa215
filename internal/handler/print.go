package handler

import (
	"bytes"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/firdaushadi442/buku-log-digital-sukan/internal/composer"
	"github.com/firdaushadi442/buku-log-digital-sukan/internal/config"
	"github.com/firdaushadi442/buku-log-digital-sukan/internal/gateway"
	"github.com/firdaushadi442/buku-log-digital-sukan/internal/logger"
	"github.com/firdaushadi442/buku-log-digital-sukan/internal/middleware"
	"github.com/firdaushadi442/buku-log-digital-sukan/internal/service"
)

const xlsxType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type PrintHandler struct {
	records   *service.RecordService
	teachers  *service.TeacherService
	cfg       config.PrintConfig
	publicURL string
}

func NewPrintHandler(records *service.RecordService, teachers *service.TeacherService, cfg config.PrintConfig, publicURL string) *PrintHandler {
	return &PrintHandler{records: records, teachers: teachers, cfg: cfg, publicURL: strings.TrimRight(publicURL, "/")}
}

// Print serves GET /print/:email as print HTML, or as a PDF when the
// parameter ends in ".pdf".
func (h *PrintHandler) Print(c *gin.Context) {
	email, pdf := strings.CutSuffix(c.Param("email"), ".pdf")
	if err := ownOrStaff(c, email); err != nil {
		c.JSON(http.StatusForbidden, gateway.Failure(err.Error()))
		return
	}
	if pdf {
		h.pdf(c, email)
		return
	}

	ctx := c.Request.Context()
	rec, err := h.records.Record(ctx, email)
	if err != nil {
		status := http.StatusInternalServerError
		if service.Public(err) {
			status = http.StatusNotFound
		}
		c.JSON(status, failure("print", err))
		return
	}
	teachers, err := h.teachers.List(ctx)
	if err != nil {
		logger.Warn("print.teachers_failed", "err", err)
	}
	var buf bytes.Buffer
	if err := composer.RenderRecord(&buf, rec, teachers); err != nil {
		c.JSON(http.StatusInternalServerError, failure("print", err))
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func (h *PrintHandler) pdf(c *gin.Context, email string) {
	if !h.cfg.PDF {
		c.JSON(http.StatusNotFound, gateway.Failure("Cetakan PDF tidak diaktifkan"))
		return
	}
	target := h.publicURL + "/print/" + url.PathEscape(email) + "?token=" + url.QueryEscape(middleware.Token(c))
	start := time.Now()
	out, err := composer.PDF(c.Request.Context(), target, h.cfg.ChromeTimeout)
	if err != nil {
		c.JSON(http.StatusBadGateway, failure("print.pdf", err))
		return
	}
	logger.Info("print.pdf", "email", email, "bytes", len(out), "elapsed", time.Since(start).String())
	c.Header("Content-Disposition", `inline; filename="buku-log.pdf"`)
	c.Data(http.StatusOK, "application/pdf", out)
}

// Export serves the admin workbook.
func (h *PrintHandler) Export(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.teachers.ExportXLSX(c.Request.Context(), &buf); err != nil {
		c.JSON(http.StatusInternalServerError, failure("export", err))
		return
	}
	name := "buku-log-" + time.Now().Format("20060102") + ".xlsx"
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, xlsxType, buf.Bytes())
}
