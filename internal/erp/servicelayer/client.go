// Package servicelayer talks to SAP Business One through its Service Layer
// REST API. Every Connect logs in and gets its own cookie jar, so sessions
// are never shared between orders.
package servicelayer

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/TemirB/erp-order-bridge/internal/config"
	"github.com/TemirB/erp-order-bridge/internal/erp"
)

const dateLayout = "2006-01-02"

var locationRe = regexp.MustCompile(`Orders\((\d+)\)`)

type Connector struct {
	base      string
	companyDB string
	user      string
	password  string
	transport http.RoundTripper
	cfg       config.ERP
	logger    *zap.Logger
}

func New(cfg config.ERP, logger *zap.Logger) *Connector {
	tr := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.InsecureTLS {
		// B1 installations commonly run on self-signed certificates.
		tr.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}
	return &Connector{
		base:      strings.TrimRight(cfg.URL, "/"),
		companyDB: cfg.CompanyDB,
		user:      cfg.User,
		password:  cfg.Password,
		transport: tr,
		cfg:       cfg,
		logger:    logger,
	}
}

type loginRequest struct {
	CompanyDB string `json:"CompanyDB"`
	UserName  string `json:"UserName"`
	Password  string `json:"Password"`
}

func (c *Connector) Connect(ctx context.Context) (erp.Session, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	s := &session{
		base:   c.base,
		client: &http.Client{Transport: c.transport, Jar: jar, Timeout: c.cfg.Timeout},
	}

	body := loginRequest{CompanyDB: c.companyDB, UserName: c.user, Password: c.password}
	resp, err := s.do(ctx, http.MethodPost, "/Login", body, nil)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("login: %w", decodeError(resp))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	c.logger.Debug("service layer session opened", zap.String("company_db", c.companyDB))
	return s, nil
}

type session struct {
	base   string
	client *http.Client
}

type orderLine struct {
	ItemCode        string  `json:"ItemCode"`
	Quantity        float64 `json:"Quantity"`
	UnitPrice       float64 `json:"UnitPrice"`
	DiscountPercent float64 `json:"DiscountPercent"`
	WarehouseCode   string  `json:"WarehouseCode,omitempty"`
}

type orderRequest struct {
	CardCode        string      `json:"CardCode"`
	DocDate         string      `json:"DocDate"`
	DocDueDate      string      `json:"DocDueDate"`
	SalesPersonCode int         `json:"SalesPersonCode"`
	NumAtCard       string      `json:"NumAtCard"`
	Comments        string      `json:"Comments,omitempty"`
	DocumentLines   []orderLine `json:"DocumentLines"`
}

func toRequest(doc erp.Document) orderRequest {
	date := doc.Date.Format(dateLayout)
	req := orderRequest{
		CardCode:        doc.CustomerCode,
		DocDate:         date,
		DocDueDate:      date,
		SalesPersonCode: doc.SellerCode,
		NumAtCard:       doc.Reference,
		Comments:        doc.Comments,
		DocumentLines:   make([]orderLine, 0, len(doc.Lines)),
	}
	for _, l := range doc.Lines {
		req.DocumentLines = append(req.DocumentLines, orderLine{
			ItemCode:        l.ItemCode,
			Quantity:        l.Quantity.InexactFloat64(),
			UnitPrice:       l.UnitPrice.InexactFloat64(),
			DiscountPercent: l.DiscountPercent.InexactFloat64(),
			WarehouseCode:   l.WarehouseCode,
		})
	}
	return req
}

// AddOrder posts the document without asking for the entity back and reads
// the new DocEntry from the Location header.
func (s *session) AddOrder(ctx context.Context, doc erp.Document) (int, error) {
	hdr := http.Header{"Prefer": []string{"return-no-content"}}
	resp, err := s.do(ctx, http.MethodPost, "/Orders", toRequest(doc), hdr)
	if err != nil {
		if sentBeforeFailure(err) {
			return 0, fmt.Errorf("add order: %w: %v", erp.ErrAmbiguous, err)
		}
		return 0, fmt.Errorf("add order: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNoContent || resp.StatusCode == http.StatusCreated:
	case resp.StatusCode >= 500:
		// The server may have committed before failing.
		return 0, fmt.Errorf("add order: %w: %v", erp.ErrAmbiguous, decodeError(resp))
	case refused(resp.StatusCode):
		// Not a Rejection: the document was never looked at.
		return 0, fmt.Errorf("add order: refused with %d: %v", resp.StatusCode, decodeError(resp))
	default:
		return 0, decodeError(resp)
	}

	if m := locationRe.FindStringSubmatch(resp.Header.Get("Location")); m != nil {
		return strconv.Atoi(m[1])
	}
	var created struct {
		DocEntry int `json:"DocEntry"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil || created.DocEntry == 0 {
		return 0, fmt.Errorf("add order: %w: no DocEntry in response", erp.ErrAmbiguous)
	}
	return created.DocEntry, nil
}

func (s *session) DocNumber(ctx context.Context, docID int) (int, error) {
	path := fmt.Sprintf("/Orders(%d)?$select=DocNum", docID)
	resp, err := s.do(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return 0, fmt.Errorf("read doc number: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("read doc number: %w", decodeError(resp))
	}
	var out struct {
		DocNum int `json:"DocNum"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("read doc number: %w", err)
	}
	if out.DocNum == 0 {
		return 0, errors.New("read doc number: empty DocNum")
	}
	return out.DocNum, nil
}

func (s *session) Close(ctx context.Context) error {
	resp, err := s.do(ctx, http.MethodPost, "/Logout", nil, nil)
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= 300 {
		return fmt.Errorf("logout: status %d", resp.StatusCode)
	}
	return nil
}

func (s *session) do(ctx context.Context, method, path string, body any, hdr http.Header) (*http.Response, error) {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, s.base+path, rd)
	if err != nil {
		return nil, err
	}
	for k, v := range hdr {
		req.Header[k] = v
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return s.client.Do(req)
}

// sentBeforeFailure reports whether the request may have been delivered.
// Only dial errors prove it never left.
func sentBeforeFailure(err error) bool {
	var op *net.OpError
	if errors.As(err, &op) && op.Op == "dial" {
		return false
	}
	return true
}

type errorBody struct {
	Error struct {
		Code    json.RawMessage `json:"code"`
		Message struct {
			Value string `json:"value"`
		} `json:"message"`
	} `json:"error"`
}

// refused reports statuses where the gateway turned the request away before
// the business layer ran: an expired session, missing rights, a timeout
// reading the request, or throttling.
func refused(status int) bool {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusRequestTimeout, http.StatusTooManyRequests:
		return true
	}
	return false
}

func decodeError(resp *http.Response) *erp.Rejection {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var eb errorBody
	if err := json.Unmarshal(raw, &eb); err != nil || eb.Error.Message.Value == "" {
		msg := strings.TrimSpace(string(raw))
		if msg == "" {
			msg = resp.Status
		}
		return &erp.Rejection{Code: strconv.Itoa(resp.StatusCode), Message: msg}
	}
	return &erp.Rejection{
		Code:    strings.Trim(string(eb.Error.Code), `"`),
		Message: eb.Error.Message.Value,
	}
}
