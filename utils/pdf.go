package utils

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"eventra/model"

	"github.com/go-pdf/fpdf"
)

// A4 in points.
const (
	pageWidth  = 595.28
	pageHeight = 841.89

	ticketsPerPage = 4
	ticketGap      = 3
	bulkQRSize     = 75
	receiptQRSize  = 200
)

// TicketImage pairs a ticket with its rendered QR PNG.
type TicketImage struct {
	Ticket model.Ticket
	QR     []byte
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func formatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}

// ReceiptBackground is the full-page artwork for a zone's sale receipt.
func ReceiptBackground(assetsDir string, zone model.Zone) string {
	return filepath.Join(assetsDir, "zone-"+strings.ToLower(string(zone))+".jpg")
}

// BulkBackgrounds maps each zone to its ticket strip artwork.
func BulkBackgrounds(assetsDir string) map[model.Zone]string {
	out := make(map[model.Zone]string, len(model.Zones))
	for _, z := range model.Zones {
		out[z] = filepath.Join(assetsDir, "ticket_"+strings.ToLower(string(z))+".jpg")
	}
	return out
}

// drawArtwork places the image at path in the box. A missing or unreadable
// image leaves the box empty and reports false.
func drawArtwork(pdf *fpdf.Fpdf, path string, x, y, w, h float64) bool {
	if !fileExists(path) || !pdf.Ok() {
		return false
	}
	if info := pdf.RegisterImageOptions(path, fpdf.ImageOptions{}); info == nil || !pdf.Ok() {
		pdf.ClearError()
		return false
	}
	pdf.ImageOptions(path, x, y, w, h, false, fpdf.ImageOptions{}, 0, "")
	return true
}

func newA4() *fpdf.Fpdf {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	return pdf
}

func registerQR(pdf *fpdf.Fpdf, name string, png []byte) {
	pdf.RegisterImageOptionsReader(name, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(png))
}

// RenderReceiptPDF writes a single-page A4 sale receipt. background is drawn
// full page when it exists and decodes; otherwise the page stays plain.
func RenderReceiptPDF(w io.Writer, item TicketImage, background string) error {
	pdf := newA4()
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	drawArtwork(pdf, background, 0, 0, pageWidth, pageHeight)

	t := item.Ticket
	pdf.SetY(60)
	pdf.SetFont("Helvetica", "B", 24)
	pdf.CellFormat(0, 30, "CONCERT TICKET", "", 1, "C", false, 0, "")
	pdf.Ln(16)

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 22, fmt.Sprintf("Zone: %s - %s Rupees", t.Zone, formatPrice(t.Price)), "", 1, "C", false, 0, "")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 14)
	pdf.CellFormat(0, 20, tr("Ticket ID: "+t.TicketId), "", 1, "C", false, 0, "")
	pdf.Ln(12)
	pdf.CellFormat(0, 20, tr("Customer: "+t.CustomerName), "", 1, "C", false, 0, "")

	name := "qr-" + t.TicketId
	registerQR(pdf, name, item.QR)
	pdf.ImageOptions(name, 200, 300, receiptQRSize, receiptQRSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	return pdf.Output(w)
}

// RenderBulkPDF lays tickets out four to a page. backgrounds maps a zone to
// its ticket artwork; zones without usable artwork get a plain dark panel.
func RenderBulkPDF(w io.Writer, items []TicketImage, backgrounds map[model.Zone]string) error {
	pdf := newA4()
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	slotHeight := pageHeight/ticketsPerPage - ticketGap

	if len(items) == 0 {
		pdf.AddPage()
	}

	for i, item := range items {
		slot := i % ticketsPerPage
		if slot == 0 {
			pdf.AddPage()
		}
		y := float64(slot) * (slotHeight + ticketGap)
		t := item.Ticket

		if !drawArtwork(pdf, backgrounds[t.Zone], 0, y, pageWidth, slotHeight) {
			pdf.SetFillColor(31, 29, 58)
			pdf.Rect(0, y, pageWidth, slotHeight, "F")
			pdf.SetTextColor(255, 255, 255)
			pdf.SetFont("Helvetica", "B", 18)
			pdf.SetXY(24, y+24)
			pdf.CellFormat(300, 22, fmt.Sprintf("ZONE %s - %s Rupees", t.Zone, formatPrice(t.Price)), "", 0, "L", false, 0, "")
			pdf.SetFont("Helvetica", "", 12)
			pdf.SetXY(24, y+52)
			pdf.CellFormat(300, 16, tr(t.CustomerName), "", 0, "L", false, 0, "")
		}

		qrX := pageWidth - 80
		qrY := y + slotHeight - 95
		name := "qr-" + t.TicketId
		registerQR(pdf, name, item.QR)
		pdf.ImageOptions(name, qrX, qrY, bulkQRSize, bulkQRSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

		pdf.SetTextColor(255, 255, 255)
		pdf.SetFont("Helvetica", "", 7)
		pdf.SetXY(qrX-10, qrY-23)
		pdf.CellFormat(90, 9, tr("ID: "+t.TicketId), "", 0, "C", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	}

	return pdf.Output(w)
}
