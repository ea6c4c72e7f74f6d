// Package probe audits a running gateway for broken object-level access
// control. Every identity requests every order; an unprivileged identity
// that reads an order it does not own is reported, as is any response that
// lacks the hardening headers.
package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/appsec-lab/gateway/internal/core/domain"
)

const (
	SeverityCritical = "CRITICAL"
	SeverityHigh     = "HIGH"
	SeverityMedium   = "MEDIUM"
)

const (
	ModeHeader  = "header"
	ModeSession = "session"
)

const (
	userIDHeader  = "X-User-Id"
	sessionCookie = "sid"
	maxBodyBytes  = 1 << 20
)

// RequiredHeaders must be present on every gateway response.
var RequiredHeaders = []string{
	"Content-Security-Policy",
	"Permissions-Policy",
	"Cache-Control",
	"Pragma",
	"Expires",
	"X-Content-Type-Options",
}

var severityRank = map[string]int{SeverityCritical: 0, SeverityHigh: 1, SeverityMedium: 2}

type Credential struct {
	Username string
	Password string
}

// Config selects the target and the identities to replay.
type Config struct {
	BaseURL string
	Mode    string
	// UserIDs are sent as X-User-Id in header mode.
	UserIDs []int
	// Credentials are used to log in in session mode.
	Credentials []Credential
	OrderIDs    []int
	// RatePerSecond caps outgoing requests; 0 means unlimited.
	RatePerSecond float64
	Workers       int
}

type Finding struct {
	Severity    string    `json:"severity"`
	Method      string    `json:"method"`
	Endpoint    string    `json:"endpoint"`
	Identity    string    `json:"identity"`
	Description string    `json:"description"`
	Evidence    string    `json:"evidence"`
	Timestamp   time.Time `json:"timestamp"`
}

type Report struct {
	Target    string    `json:"target"`
	Mode      string    `json:"mode"`
	Requests  int       `json:"requests"`
	StartedAt time.Time `json:"started_at"`
	Findings  []Finding `json:"findings"`
}

// Count returns the number of findings with the given severity.
func (r *Report) Count(severity string) int {
	n := 0
	for _, f := range r.Findings {
		if f.Severity == severity {
			n++
		}
	}
	return n
}

// Failed reports whether any CRITICAL or HIGH finding was raised.
func (r *Report) Failed() bool {
	return r.Count(SeverityCritical) > 0 || r.Count(SeverityHigh) > 0
}

type identity struct {
	name    string
	userID  int
	role    string
	headers map[string]string
	cookies []*http.Cookie
}

func (id identity) anonymous() bool { return id.name == "anonymous" }

// Prober replays order reads against one gateway. A Prober is not safe for
// concurrent Run calls.
type Prober struct {
	cfg     Config
	base    *url.URL
	client  *http.Client
	limiter *rate.Limiter
	log     zerolog.Logger

	mu         sync.Mutex
	requests   int
	findings   []Finding
	headerSeen map[string]struct{}
}

// New validates cfg. A nil client gets a 10s timeout client.
func New(cfg Config, client *http.Client, log zerolog.Logger) (*Prober, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return nil, fmt.Errorf("probe: invalid base url %q", cfg.BaseURL)
	}

	switch cfg.Mode {
	case ModeHeader:
		if len(cfg.UserIDs) == 0 {
			return nil, errors.New("probe: header mode needs at least one user id")
		}
	case ModeSession:
		if len(cfg.Credentials) == 0 {
			return nil, errors.New("probe: session mode needs at least one credential")
		}
	default:
		return nil, fmt.Errorf("probe: unknown mode %q", cfg.Mode)
	}
	if len(cfg.OrderIDs) == 0 {
		return nil, errors.New("probe: no order ids to probe")
	}

	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}

	return &Prober{
		cfg:     cfg,
		base:    base,
		client:  client,
		limiter: rate.NewLimiter(limit, 1),
		log:     log,
	}, nil
}

// Run resolves the identities, replays every order read under each of them
// and once without credentials, and returns the findings ordered by severity.
func (p *Prober) Run(ctx context.Context) (*Report, error) {
	started := time.Now().UTC()
	p.requests = 0
	p.findings = nil
	p.headerSeen = make(map[string]struct{})

	ids, err := p.identities(ctx)
	if err != nil {
		return nil, err
	}
	ids = append(ids, identity{name: "anonymous"})

	d := newDispatcher(p.cfg.Workers, p.check, p.log)
	d.Start(ctx)
	for _, id := range ids {
		for _, orderID := range p.cfg.OrderIDs {
			if !d.Enqueue(ctx, job{identity: id, orderID: orderID}) {
				break
			}
		}
	}
	d.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("probe: %w", err)
	}

	findings := p.findings
	if findings == nil {
		findings = []Finding{}
	}
	sort.SliceStable(findings, func(i, j int) bool {
		a, b := findings[i], findings[j]
		if severityRank[a.Severity] != severityRank[b.Severity] {
			return severityRank[a.Severity] < severityRank[b.Severity]
		}
		if a.Identity != b.Identity {
			return a.Identity < b.Identity
		}
		return a.Description < b.Description
	})

	return &Report{
		Target:    p.base.String(),
		Mode:      p.cfg.Mode,
		Requests:  p.requests,
		StartedAt: started,
		Findings:  findings,
	}, nil
}

// identities builds the credentialed identities and learns each one's user
// id and role from GET /. Identities the gateway rejects are skipped.
func (p *Prober) identities(ctx context.Context) ([]identity, error) {
	var candidates []identity
	switch p.cfg.Mode {
	case ModeHeader:
		for _, uid := range p.cfg.UserIDs {
			candidates = append(candidates, identity{
				name:    "user-" + strconv.Itoa(uid),
				headers: map[string]string{userIDHeader: strconv.Itoa(uid)},
			})
		}
	case ModeSession:
		for _, cred := range p.cfg.Credentials {
			id, err := p.login(ctx, cred)
			if err != nil {
				if ctx.Err() != nil {
					return nil, fmt.Errorf("probe: %w", ctx.Err())
				}
				p.log.Warn().Err(err).Str("username", cred.Username).Msg("login failed, identity skipped")
				continue
			}
			candidates = append(candidates, id)
		}
	}

	var resolved []identity
	for _, id := range candidates {
		status, body, err := p.send(ctx, http.MethodGet, "/", "/", nil, id)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("probe: %w", ctx.Err())
			}
			return nil, fmt.Errorf("probe: resolve %s: %w", id.name, err)
		}
		if status != http.StatusOK {
			p.log.Warn().Str("identity", id.name).Int("status", status).Msg("identity rejected, skipped")
			continue
		}

		var st struct {
			CurrentUser *domain.User `json:"current_user"`
		}
		if err := json.Unmarshal(body, &st); err != nil || st.CurrentUser == nil {
			return nil, fmt.Errorf("probe: resolve %s: unexpected status body", id.name)
		}
		id.userID = st.CurrentUser.ID
		id.role = st.CurrentUser.Role
		resolved = append(resolved, id)
	}

	if len(resolved) == 0 {
		return nil, errors.New("probe: no identity was accepted by the gateway")
	}
	return resolved, nil
}

func (p *Prober) login(ctx context.Context, cred Credential) (identity, error) {
	payload, err := json.Marshal(map[string]string{"username": cred.Username, "password": cred.Password})
	if err != nil {
		return identity{}, err
	}

	req, err := p.newRequest(ctx, http.MethodPost, "/login", payload)
	if err != nil {
		return identity{}, err
	}
	resp, _, err := p.do(req, "/login")
	if err != nil {
		return identity{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return identity{}, fmt.Errorf("login returned %d", resp.StatusCode)
	}

	for _, c := range resp.Cookies() {
		if c.Name == sessionCookie && c.Value != "" {
			return identity{name: cred.Username, cookies: []*http.Cookie{c}}, nil
		}
	}
	return identity{}, errors.New("login set no session cookie")
}

// check requests one order as j.identity and records what it was able to read.
func (p *Prober) check(ctx context.Context, j job) {
	path := "/orders/" + strconv.Itoa(j.orderID)
	status, body, err := p.send(ctx, http.MethodGet, "/orders/{id}", path, nil, j.identity)
	if err != nil {
		if ctx.Err() == nil {
			p.log.Warn().Err(err).Str("path", path).Str("identity", j.identity.name).Msg("request failed")
		}
		return
	}
	if status != http.StatusOK {
		return
	}

	evidence := fmt.Sprintf("GET %s returned %d with %d bytes", path, status, len(body))

	if j.identity.anonymous() {
		p.add(Finding{
			Severity:    SeverityHigh,
			Method:      http.MethodGet,
			Endpoint:    "/orders/{id}",
			Identity:    j.identity.name,
			Description: fmt.Sprintf("order %d readable without authentication", j.orderID),
			Evidence:    evidence,
		})
		return
	}

	var order domain.Order
	if err := json.Unmarshal(body, &order); err != nil {
		p.log.Warn().Err(err).Str("path", path).Msg("order body not understood")
		return
	}
	if !domain.CanAccess(&domain.User{ID: j.identity.userID, Role: j.identity.role}, &order) {
		p.add(Finding{
			Severity: SeverityCritical,
			Method:   http.MethodGet,
			Endpoint: "/orders/{id}",
			Identity: j.identity.name,
			Description: fmt.Sprintf("%s (user %d, role %s) read order %d owned by user %d",
				j.identity.name, j.identity.userID, j.identity.role, order.ID, order.OwnerID),
			Evidence: evidence,
		})
	}
}

// send performs one request as id. endpoint is the route template used to
// group header findings.
func (p *Prober) send(ctx context.Context, method, endpoint, path string, body []byte, id identity) (int, []byte, error) {
	req, err := p.newRequest(ctx, method, path, body)
	if err != nil {
		return 0, nil, err
	}
	for k, v := range id.headers {
		req.Header.Set(k, v)
	}
	for _, c := range id.cookies {
		req.AddCookie(c)
	}

	resp, data, err := p.do(req, endpoint)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, data, nil
}

func (p *Prober) newRequest(ctx context.Context, method, path string, body []byte) (*http.Request, error) {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, p.base.String()+path, r)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// do waits for the limiter, sends req, reads the body and checks the
// hardening headers of the response.
func (p *Prober) do(req *http.Request, endpoint string) (*http.Response, []byte, error) {
	if err := p.limiter.Wait(req.Context()); err != nil {
		return nil, nil, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, nil, err
	}

	p.mu.Lock()
	p.requests++
	p.mu.Unlock()

	p.checkHeaders(req.Method, endpoint, resp)
	return resp, data, nil
}

// checkHeaders raises one MEDIUM finding per missing header and endpoint.
func (p *Prober) checkHeaders(method, endpoint string, resp *http.Response) {
	for _, h := range RequiredHeaders {
		if resp.Header.Get(h) != "" {
			continue
		}
		key := method + " " + endpoint + " " + h

		p.mu.Lock()
		_, seen := p.headerSeen[key]
		p.headerSeen[key] = struct{}{}
		p.mu.Unlock()
		if seen {
			continue
		}

		p.add(Finding{
			Severity:    SeverityMedium,
			Method:      method,
			Endpoint:    endpoint,
			Description: "response lacks " + h,
			Evidence:    fmt.Sprintf("status %d", resp.StatusCode),
		})
	}
}

func (p *Prober) add(f Finding) {
	f.Timestamp = time.Now().UTC()
	p.mu.Lock()
	p.findings = append(p.findings, f)
	p.mu.Unlock()
}
