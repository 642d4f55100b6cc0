// Package pdf renders a trip itinerary into a printable PDF document.
package pdf

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"github.com/tripcraft/tripcraft/internal/server/models"
)

// TripDocument is everything that goes into one export.
type TripDocument struct {
	Trip        *models.Trip
	Days        []*models.Day
	Activities  map[string][]*models.Activity // keyed by day id
	BudgetItems []*models.BudgetItem
	Notes       []*models.Note
}

// Render produces the PDF bytes for one trip.
func Render(doc *TripDocument) ([]byte, error) {
	p := fpdf.New("P", "mm", "Letter", "")
	p.SetAutoPageBreak(true, 20)
	p.AddPage()

	p.SetFont("Helvetica", "B", 24)
	p.SetTextColor(25, 118, 210)
	p.CellFormat(0, 14, doc.Trip.Destination, "", 1, "C", false, 0, "")
	p.Ln(4)

	p.SetTextColor(66, 66, 66)
	writeDetail(p, "Title", doc.Trip.Title)
	writeDetail(p, "Dates", fmt.Sprintf("%s - %s", doc.Trip.StartDate, doc.Trip.EndDate))
	if doc.Trip.Budget != nil {
		writeDetail(p, "Budget", fmt.Sprintf("$%.2f", *doc.Trip.Budget))
	}
	if doc.Trip.BudgetTier != nil {
		writeDetail(p, "Budget tier", *doc.Trip.BudgetTier)
	}
	if doc.Trip.TravelStyle != nil {
		writeDetail(p, "Travel style", *doc.Trip.TravelStyle)
	}
	p.Ln(6)

	if len(doc.Days) > 0 {
		writeHeading(p, "Itinerary")
		for _, day := range doc.Days {
			title := day.Title
			if title == "" {
				title = fmt.Sprintf("Day %d", day.DayNumber)
			}
			p.SetFont("Helvetica", "B", 13)
			p.SetTextColor(97, 97, 97)
			p.CellFormat(0, 8, fmt.Sprintf("Day %d - %s (%s)", day.DayNumber, title, day.Date), "", 1, "L", false, 0, "")

			for _, act := range doc.Activities[day.ID] {
				line := act.Title
				if act.Time != nil && *act.Time != "" {
					line = fmt.Sprintf("%s  %s", *act.Time, act.Title)
				}
				if act.Location != nil && *act.Location != "" {
					line += " @ " + *act.Location
				}
				if act.EstimatedCost > 0 {
					line += fmt.Sprintf(" ($%.2f)", act.EstimatedCost)
				}
				p.SetFont("Helvetica", "", 11)
				p.SetTextColor(33, 33, 33)
				p.CellFormat(0, 6, line, "", 1, "L", false, 0, "")
				if act.Description != nil && *act.Description != "" {
					p.SetFont("Helvetica", "I", 10)
					p.SetTextColor(117, 117, 117)
					p.MultiCell(0, 5, *act.Description, "", "L", false)
				}
			}
			p.Ln(3)
		}
	}

	if len(doc.BudgetItems) > 0 {
		writeHeading(p, "Budget")
		var total float64
		for _, item := range doc.BudgetItems {
			total += item.Amount
			p.SetFont("Helvetica", "", 11)
			p.SetTextColor(33, 33, 33)
			p.CellFormat(120, 6, item.Category, "", 0, "L", false, 0, "")
			p.CellFormat(0, 6, fmt.Sprintf("$%.2f", item.Amount), "", 1, "R", false, 0, "")
		}
		p.SetFont("Helvetica", "B", 11)
		p.CellFormat(120, 7, "Total", "T", 0, "L", false, 0, "")
		p.CellFormat(0, 7, fmt.Sprintf("$%.2f", total), "T", 1, "R", false, 0, "")
		p.Ln(4)
	}

	if len(doc.Notes) > 0 {
		writeHeading(p, "Notes")
		p.SetFont("Helvetica", "", 11)
		p.SetTextColor(33, 33, 33)
		for _, note := range doc.Notes {
			p.MultiCell(0, 6, "- "+note.Content, "", "L", false)
		}
	}

	var buf bytes.Buffer
	if err := p.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func writeHeading(p *fpdf.Fpdf, text string) {
	p.SetFont("Helvetica", "B", 16)
	p.SetTextColor(66, 66, 66)
	p.CellFormat(0, 10, text, "", 1, "L", false, 0, "")
	p.Ln(1)
}

func writeDetail(p *fpdf.Fpdf, label, value string) {
	p.SetFont("Helvetica", "B", 11)
	p.CellFormat(35, 6, label+":", "", 0, "L", false, 0, "")
	p.SetFont("Helvetica", "", 11)
	p.CellFormat(0, 6, value, "", 1, "L", false, 0, "")
}
