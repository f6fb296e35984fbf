package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"eventra/broker"
	"eventra/clock"
	"eventra/constants"
	"eventra/handler"
	"eventra/metrics"
	"eventra/model"
	"eventra/router"
	"eventra/service"
	"eventra/store"
	"eventra/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"
)

type APISuite struct {
	suite.Suite
	ctx     context.Context
	app     *fiber.App
	tickets *store.MemoryTicketStore
	sales   *service.TicketService
	reports *service.ReportService
	assets  string
	token   string
}

func TestAPISuite(t *testing.T) {
	suite.Run(t, new(APISuite))
}

func (s *APISuite) SetupTest() {
	s.ctx = context.Background()
	clk := clock.NewSystem()
	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	s.assets = s.T().TempDir()
	s.tickets = store.NewMemoryTicketStore()
	users := store.NewMemoryUserStore()
	bus := broker.NewLocalBroker()
	s.reports = service.NewReportService(s.tickets, filepath.Join(s.T().TempDir(), "tickets.xlsx"),
		service.WithBroker(bus), service.WithReportMetrics(m))
	s.sales = service.NewTicketService(s.tickets, broker.NewLocalLocker(), clk,
		service.WithRefresher(s.reports), service.WithTicketMetrics(m), service.WithAssetsDir(s.assets))
	auth := service.NewAuthService(users, &utils.LogMailer{}, clk, []byte("secret"), "http://localhost:5173", nil)

	_, _, err := auth.Register(s.ctx, "staff@example.com", "staff-pass")
	s.Require().NoError(err)

	h := handler.New(s.sales, s.reports, auth, bus, handler.Options{
		AssetsDir:          s.assets,
		BulkTicketsPerZone: 1,
	}, nil)
	s.app = router.New(h, auth, router.Config{
		ClientURL:  "http://localhost:5173",
		Gatherer:   registry,
		DisableLog: true,
	})

	s.token = s.login("staff@example.com", "staff-pass")
}

func (s *APISuite) TearDownTest() {
	s.reports.Wait()
}

func (s *APISuite) request(method, path string, body any, token string) *http.Response {
	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = strings.NewReader(b)
		default:
			raw, err := json.Marshal(b)
			s.Require().NoError(err)
			reader = bytes.NewReader(raw)
		}
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	s.Require().NoError(err)
	return resp
}

func (s *APISuite) decode(resp *http.Response) map[string]any {
	defer resp.Body.Close()
	var out map[string]any
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func (s *APISuite) login(email, password string) string {
	resp := s.request(http.MethodPost, "/api/auth/login", fiber.Map{"email": email, "password": password}, "")
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == constants.TOKEN_COOKIE {
			cookie = c
		}
	}
	s.Require().NotNil(cookie, "login must set the session cookie")
	s.True(cookie.HttpOnly)
	s.Equal(http.SameSiteLaxMode, cookie.SameSite)

	body := s.decode(resp)
	s.Equal(true, body["success"])
	s.Equal(cookie.Value, body["token"])
	return body["token"].(string)
}

func (s *APISuite) sell(zone, name string) model.Ticket {
	_, err := s.sales.Provision(s.ctx, zone, 1)
	s.Require().NoError(err)
	receipt, err := s.sales.Sell(s.ctx, zone, name)
	s.Require().NoError(err)
	return receipt.Ticket
}

func (s *APISuite) TestLoginFailures() {
	resp := s.request(http.MethodPost, "/api/auth/login", fiber.Map{"email": "staff@example.com", "password": "nope"}, "")
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
	s.Equal(constants.INVALID_CREDENTIALS, s.decode(resp)["message"])

	resp = s.request(http.MethodPost, "/api/auth/login", fiber.Map{"email": "staff@example.com"}, "")
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	s.Equal(constants.MISSING_LOGIN_INPUT, s.decode(resp)["message"])
}

func (s *APISuite) TestRegister() {
	resp := s.request(http.MethodPost, "/api/auth/register", fiber.Map{"email": "new@example.com", "password": "new-pass"}, "")
	s.Equal(http.StatusCreated, resp.StatusCode)
	body := s.decode(resp)
	s.Equal(constants.REGISTER_SUCCESS, body["message"])
	s.NotEmpty(body["token"])

	resp = s.request(http.MethodPost, "/api/auth/register", fiber.Map{"email": "NEW@example.com", "password": "other-pass"}, "")
	s.Equal(http.StatusConflict, resp.StatusCode)
	s.Equal(constants.EMAIL_IN_USE, s.decode(resp)["message"])
}

func (s *APISuite) TestSessionRequired() {
	resp := s.request(http.MethodGet, "/api/tickets/total-tickets", nil, "")
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
	s.Equal(constants.NOT_AUTHORIZED, s.decode(resp)["message"])

	resp = s.request(http.MethodGet, "/api/tickets/total-tickets", nil, "forged.token.value")
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
	s.Equal(constants.TOKEN_INVALID, s.decode(resp)["message"])
}

func (s *APISuite) TestCookieSession() {
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: constants.TOKEN_COOKIE, Value: s.token})
	resp, err := s.app.Test(req, -1)
	s.Require().NoError(err)
	s.Equal(http.StatusOK, resp.StatusCode)

	body := s.decode(resp)
	data := body["data"].(map[string]any)
	s.Equal("staff@example.com", data["email"])
	s.NotContains(data, "password")
}

func (s *APISuite) TestLogoutClearsCookie() {
	resp := s.request(http.MethodPost, "/api/auth/logout", nil, s.token)
	s.Equal(http.StatusOK, resp.StatusCode)
	for _, c := range resp.Cookies() {
		if c.Name == constants.TOKEN_COOKIE {
			s.Empty(c.Value)
			s.True(c.Expires.Before(time.Now()))
		}
	}
	s.Equal(constants.LOGOUT_SUCCESS, s.decode(resp)["message"])
}

func (s *APISuite) TestSellReturnsReceiptPDF() {
	created, err := s.sales.Provision(s.ctx, "B", 1)
	s.Require().NoError(err)

	resp := s.request(http.MethodPost, "/api/tickets/sell", fiber.Map{"zone": "B", "customerName": "Ada"}, s.token)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Equal("application/pdf", resp.Header.Get(fiber.HeaderContentType))

	pdf, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	s.True(bytes.HasPrefix(pdf, []byte("%PDF-")))

	sold, err := s.tickets.Count(s.ctx, store.TicketFilter{Zone: model.ZoneB, Status: model.StatusSold})
	s.Require().NoError(err)
	s.Equal(int64(1), sold)

	receipt, err := s.tickets.FindByTicketId(s.ctx, created[0].TicketId)
	s.Require().NoError(err)
	s.Equal(model.StatusSold, receipt.Status)
	s.Equal(`attachment; filename="Ticket-`+created[0].TicketId+`.pdf"`, resp.Header.Get(fiber.HeaderContentDisposition))
}

func (s *APISuite) TestSellWithUnreadableArtwork() {
	s.Require().NoError(os.WriteFile(utils.ReceiptBackground(s.assets, model.ZoneB), []byte("not a jpeg"), 0o644))
	_, err := s.sales.Provision(s.ctx, "B", 2)
	s.Require().NoError(err)

	for i := 0; i < 2; i++ {
		resp := s.request(http.MethodPost, "/api/tickets/sell", fiber.Map{"zone": "B", "customerName": "Ada"}, s.token)
		s.Require().Equal(http.StatusOK, resp.StatusCode)
		pdf, err := io.ReadAll(resp.Body)
		s.Require().NoError(err)
		s.True(bytes.HasPrefix(pdf, []byte("%PDF-")))
	}

	sold, err := s.tickets.Count(s.ctx, store.TicketFilter{Zone: model.ZoneB, Status: model.StatusSold})
	s.Require().NoError(err)
	s.Equal(int64(2), sold)

	resp := s.request(http.MethodPost, "/api/tickets/sell", fiber.Map{"zone": "B", "customerName": "Ada"}, s.token)
	s.Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *APISuite) TestSellErrors() {
	resp := s.request(http.MethodPost, "/api/tickets/sell", fiber.Map{"zone": "A", "customerName": "Ada"}, s.token)
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	s.Equal(constants.INVALID_ZONE, s.decode(resp)["message"])

	resp = s.request(http.MethodPost, "/api/tickets/sell", fiber.Map{"zone": "B"}, s.token)
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	s.Equal(constants.CUSTOMER_NAME_MISSING, s.decode(resp)["message"])

	resp = s.request(http.MethodPost, "/api/tickets/sell", fiber.Map{"zone": "C", "customerName": "Ada"}, s.token)
	s.Equal(http.StatusNotFound, resp.StatusCode)
	s.Equal("No tickets available in Zone C", s.decode(resp)["message"])
}

func (s *APISuite) TestValidateStateMachine() {
	ticket := s.sell("C", "Grace")

	resp := s.request(http.MethodPost, "/api/tickets/validate", fiber.Map{"ticketId": ticket.TicketId}, s.token)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	body := s.decode(resp)
	s.Equal(true, body["valid"])
	s.Equal(constants.TICKET_VALIDATED, body["message"])
	details := body["ticketDetails"].(map[string]any)
	s.Equal("C", details["zone"])
	s.Equal("Grace", details["customerName"])
	firstScan := details["scannedAt"]
	s.NotEmpty(firstScan)

	resp = s.request(http.MethodPost, "/api/tickets/validate", fiber.Map{"ticketId": ticket.TicketId}, s.token)
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	body = s.decode(resp)
	s.Equal(false, body["valid"])
	s.Equal(constants.TICKET_ALREADY_USED, body["message"])
	s.Equal(firstScan, body["scannedAt"])
}

func (s *APISuite) TestValidateFromQRPayload() {
	ticket := s.sell("D", "Linus")
	qrText := `{"ticketId":"` + ticket.TicketId + `","zone":"D","price":100}`

	resp := s.request(http.MethodPost, "/api/tickets/validate", fiber.Map{"ticketId": qrText}, s.token)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal(true, s.decode(resp)["valid"])
}

func (s *APISuite) TestValidateRejections() {
	unsold, err := s.sales.Provision(s.ctx, "B", 1)
	s.Require().NoError(err)

	resp := s.request(http.MethodPost, "/api/tickets/validate", fiber.Map{"ticketId": unsold[0].TicketId}, s.token)
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	s.Equal(constants.TICKET_NEVER_SOLD, s.decode(resp)["message"])

	resp = s.request(http.MethodPost, "/api/tickets/validate", fiber.Map{"ticketId": "TKT-nope"}, s.token)
	s.Equal(http.StatusNotFound, resp.StatusCode)
	body := s.decode(resp)
	s.Equal(false, body["valid"])
	s.Equal(constants.TICKET_ID_INVALID, body["message"])

	resp = s.request(http.MethodPost, "/api/tickets/validate", fiber.Map{"ticketId": fiber.Map{"id": "TKT-1"}}, s.token)
	s.Equal(http.StatusNotFound, resp.StatusCode)
	s.Equal(constants.TICKET_ID_INVALID, s.decode(resp)["message"])

	resp = s.request(http.MethodPost, "/api/tickets/validate", fiber.Map{"ticketId": ""}, s.token)
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	s.Equal(constants.TICKET_ID_MISSING, s.decode(resp)["message"])

	resp = s.request(http.MethodPost, "/api/tickets/validate", fiber.Map{}, s.token)
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	s.Equal(constants.TICKET_ID_MISSING, s.decode(resp)["message"])
}

func (s *APISuite) TestCounts() {
	s.sell("B", "one")
	_, err := s.sales.Provision(s.ctx, "B", 2)
	s.Require().NoError(err)

	resp := s.request(http.MethodGet, "/api/tickets/available/b", nil, s.token)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal(float64(3), s.decode(resp)["availableCount"])

	resp = s.request(http.MethodGet, "/api/tickets/total-tickets", nil, s.token)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal(map[string]any{"B": float64(3), "C": float64(0), "D": float64(0)}, s.decode(resp))

	resp = s.request(http.MethodGet, "/api/tickets/stats/B", nil, s.token)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal(map[string]any{"total": float64(3), "sold": float64(1), "scanned": float64(0)}, s.decode(resp))

	resp = s.request(http.MethodGet, "/api/tickets/available/Q", nil, s.token)
	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *APISuite) TestBulkGenerate() {
	resp := s.request(http.MethodPost, "/api/tickets/bulk-generate-all", nil, s.token)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Equal("application/pdf", resp.Header.Get(fiber.HeaderContentType))
	s.Contains(resp.Header.Get(fiber.HeaderContentDisposition), "AllTickets.pdf")

	totals, err := s.reports.TotalCounts(s.ctx)
	s.Require().NoError(err)
	s.Equal(map[model.Zone]int64{model.ZoneB: 1, model.ZoneC: 1, model.ZoneD: 1}, totals)

	resp = s.request(http.MethodPost, "/api/tickets/bulk-generate-all", fiber.Map{"B": 2}, s.token)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	n, err := s.reports.TotalCount(s.ctx, "B")
	s.Require().NoError(err)
	s.Equal(int64(3), n)

	resp = s.request(http.MethodPost, "/api/tickets/bulk-generate-all", fiber.Map{"B": -1}, s.token)
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	s.Equal(constants.INVALID_QUANTITY, s.decode(resp)["message"])

	resp = s.request(http.MethodPost, "/api/tickets/bulk-generate-all", fiber.Map{"C": model.MaxBulkPerZone + 1}, s.token)
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	s.Equal(constants.INVALID_QUANTITY, s.decode(resp)["message"])
}

func (s *APISuite) TestProvision() {
	resp := s.request(http.MethodPost, "/api/tickets/provision", fiber.Map{"zone": "d", "count": 4}, s.token)
	s.Equal(http.StatusCreated, resp.StatusCode)
	body := s.decode(resp)
	s.Equal(float64(4), body["created"])
	s.Len(body["ticketIds"], 4)

	resp = s.request(http.MethodPost, "/api/tickets/provision", fiber.Map{"zone": "D", "count": 0}, s.token)
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	s.Equal(constants.INVALID_QUANTITY, s.decode(resp)["message"])
}

func (s *APISuite) TestExport() {
	s.sell("B", "Ada")

	resp := s.request(http.MethodGet, "/api/tickets/export", nil, s.token)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	s.Contains(resp.Header.Get(fiber.HeaderContentDisposition), "tickets.xlsx")

	raw, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	s.True(bytes.HasPrefix(raw, []byte("PK")), "xlsx is a zip archive")
}

func (s *APISuite) TestPasswordResetEndpoints() {
	for _, email := range []string{"staff@example.com", "ghost@example.com"} {
		resp := s.request(http.MethodPost, "/api/auth/forgot-password", fiber.Map{"email": email}, "")
		s.Equal(http.StatusOK, resp.StatusCode)
		s.Equal(constants.RESET_LINK_SENT, s.decode(resp)["message"])
	}

	resp := s.request(http.MethodPost, "/api/auth/forgot-password", fiber.Map{}, "")
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	s.Equal(constants.MISSING_EMAIL, s.decode(resp)["message"])

	resp = s.request(http.MethodPost, "/api/auth/reset-password", fiber.Map{"token": "bogus", "password": "whatever-1"}, "")
	s.Equal(http.StatusBadRequest, resp.StatusCode)
	s.Equal(constants.INVALID_RESET_TOKEN, s.decode(resp)["message"])
}

func (s *APISuite) TestLiveRequiresUpgrade() {
	resp := s.request(http.MethodGet, "/api/tickets/live", nil, s.token)
	s.Equal(http.StatusUpgradeRequired, resp.StatusCode)
}

func (s *APISuite) TestOperationalEndpoints() {
	resp := s.request(http.MethodGet, "/health", nil, "")
	s.Equal(http.StatusOK, resp.StatusCode)

	s.sell("B", "Ada")
	resp = s.request(http.MethodGet, "/metrics", nil, "")
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	s.Contains(string(raw), `eventra_tickets_sold_total{zone="B"} 1`)

	resp = s.request(http.MethodGet, "/api/nowhere", nil, "")
	s.Equal(http.StatusNotFound, resp.StatusCode)
	s.Equal(constants.ROUTE_NOT_FOUND, s.decode(resp)["message"])
}
