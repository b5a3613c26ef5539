package export

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/Tiliavir/resource-board/internal/model"
	"github.com/Tiliavir/resource-board/internal/timecalc"
)

// pixelsPerDay is the board width of one calendar day.
const pixelsPerDay = 24 * 60 / timecalc.MinutesPerPixel

const (
	pdfMargin      = 10.0
	pdfLabelWidth  = 22.0
	pdfHeaderH     = 10.0
	pdfTitleH      = 10.0
	pdfMaxRowH     = 9.0
	pdfMinEventTxt = 12.0
)

// PDF draws the period as a landscape grid: one band per resource, one
// column per day, events as filled bars.
func PDF(w io.Writer, periodKey string, rec model.PeriodRecord, opts Options) error {
	ref, err := timecalc.ParsePeriodKey(periodKey, opts.Location)
	if err != nil {
		return err
	}
	days, err := timecalc.MonthDays(ref)
	if err != nil {
		return err
	}
	rows := rec.ResourceCount
	if rows <= 0 {
		rows = model.DefaultResourceCount
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, pdfMargin)
	pdf.SetTitle("Resource board "+periodKey, true)
	pdf.SetCreationDate(opts.now())
	pdf.AddPage()

	pageW, pageH := pdf.GetPageSize()
	gridX := pdfMargin + pdfLabelWidth
	gridY := pdfMargin + pdfTitleH + pdfHeaderH
	gridW := pageW - gridX - pdfMargin
	rowH := math.Min(pdfMaxRowH, (pageH-gridY-pdfMargin)/float64(rows))
	dayW := gridW / float64(len(days))
	scale := dayW / pixelsPerDay

	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(pdfMargin, pdfMargin)
	pdf.CellFormat(0, pdfTitleH, "Resource board "+periodKey, "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 6)
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.1)
	for i, d := range days {
		x := gridX + float64(i)*dayW
		pdf.SetXY(x, gridY-pdfHeaderH)
		pdf.CellFormat(dayW, pdfHeaderH/2, strconv.Itoa(d.Number), "", 0, "C", false, 0, "")
		pdf.SetXY(x, gridY-pdfHeaderH/2)
		pdf.CellFormat(dayW, pdfHeaderH/2, d.Weekday[:2], "", 0, "C", false, 0, "")
		pdf.Line(x, gridY, x, gridY+float64(rows)*rowH)
	}
	pdf.Line(gridX+gridW, gridY, gridX+gridW, gridY+float64(rows)*rowH)

	pdf.SetFont("Helvetica", "", 7)
	for r := 0; r <= rows; r++ {
		y := gridY + float64(r)*rowH
		pdf.Line(pdfMargin, y, gridX+gridW, y)
		if r < rows {
			pdf.SetXY(pdfMargin, y)
			pdf.CellFormat(pdfLabelWidth, rowH, fmt.Sprintf("Resource %d", r+1), "", 0, "L", false, 0, "")
		}
	}

	pdf.SetFont("Helvetica", "", 5)
	for _, ev := range rec.Events {
		if ev.ResourceIndex >= rows {
			continue
		}
		left := math.Max(0, ev.LeftOffset)
		right := math.Min(float64(len(days))*pixelsPerDay, ev.Right())
		if right <= left {
			continue
		}
		x := gridX + left*scale
		bw := (right - left) * scale
		y := gridY + float64(ev.ResourceIndex)*rowH + rowH*0.15

		cr, cg, cb := parseHexColor(ev.Color)
		pdf.SetFillColor(cr, cg, cb)
		pdf.Rect(x, y, bw, rowH*0.7, "F")
		if bw >= pdfMinEventTxt {
			if luminance(cr, cg, cb) > 140 {
				pdf.SetTextColor(0, 0, 0)
			} else {
				pdf.SetTextColor(255, 255, 255)
			}
			pdf.SetXY(x, y)
			pdf.CellFormat(bw, rowH*0.7, timecalc.RangeLabel(ev.LeftOffset, ev.Width), "", 0, "C", false, 0, "")
		}
	}
	pdf.SetTextColor(0, 0, 0)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("writing pdf export: %w", err)
	}
	return nil
}

// parseHexColor parses "#rrggbb". Anything else renders grey.
func parseHexColor(s string) (int, int, int) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return 128, 128, 128
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 128, 128, 128
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff)
}

func luminance(r, g, b int) float64 {
	return 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
}
