package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"

	"shopping-matrix/internal/docstore"
	"shopping-matrix/internal/domain"
	"shopping-matrix/internal/recommend"
	"shopping-matrix/internal/seed"
	"shopping-matrix/internal/service/catalog"
	"shopping-matrix/internal/session"
)

type stubSuggester struct{ names []string }

func (s *stubSuggester) Suggest(_ context.Context, names []string) string {
	s.names = names
	return "Try a belt"
}

type stubAI struct {
	reply recommend.Reply
	err   error
}

func (s *stubAI) Query(context.Context, string) (recommend.Reply, error) { return s.reply, s.err }

type stubQR struct{ err error }

func (s *stubQR) Lookup(context.Context, string) (domain.Order, error) { return domain.Order{}, s.err }

type stubDocs struct {
	created bson.M
	err     error
}

func (s *stubDocs) Create(_ context.Context, _ string, doc bson.M) (string, error) {
	s.created = doc
	return "65f000000000000000000001", s.err
}

func (s *stubDocs) List(context.Context, string, int64) ([]bson.M, error) {
	return []bson.M{{"n": 1}}, s.err
}

func (s *stubDocs) Cursor(_ context.Context, _ string, lastID string, _ int64) (docstore.Page, error) {
	if lastID == "bad" {
		return docstore.Page{}, docstore.ErrInvalidID
	}
	return docstore.Page{Documents: []bson.M{}}, s.err
}

func (s *stubDocs) Update(context.Context, string, string, bson.M) (int64, error) {
	return 1, s.err
}

func (s *stubDocs) Delete(context.Context, string, string) (int64, error) {
	return 0, domain.ErrNotFound
}

type testEnv struct {
	router   *gin.Engine
	sessions *session.Manager
}

func newTestEnv(t *testing.T, deps Deps) *testEnv {
	t.Helper()
	sessions := session.NewManager(session.Options{})
	deps.Sessions = sessions
	if deps.Catalog == nil {
		deps.Catalog = catalog.New(seed.NewCatalog(seed.DefaultProducts()), nil)
	}
	router, err := buildRouter(log.New(io.Discard, "", 0), nil, deps)
	if err != nil {
		t.Fatalf("build router: %v", err)
	}
	return &testEnv{router: router, sessions: sessions}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func productByName(t *testing.T, name string) domain.Product {
	t.Helper()
	for _, p := range seed.DefaultProducts() {
		if p.Name == name {
			return p
		}
	}
	t.Fatalf("no seed product %q", name)
	return domain.Product{}
}

func TestHealthAndReady(t *testing.T) {
	env := newTestEnv(t, Deps{})
	if rec := env.do(t, http.MethodGet, "/healthz", nil); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec := env.do(t, http.MethodGet, "/readyz", nil); rec.Code != http.StatusOK {
		t.Fatalf("expected ready without a database, got %d", rec.Code)
	}
}

func TestBuildRouterRequiresCoreDeps(t *testing.T) {
	if _, err := buildRouter(log.New(io.Discard, "", 0), nil, Deps{}); err == nil {
		t.Fatalf("expected error without sessions and catalog")
	}
}

func TestUnknownSession(t *testing.T) {
	env := newTestEnv(t, Deps{})
	if rec := env.do(t, http.MethodGet, "/sessions/nope/cart", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestFoodCheckoutFlow(t *testing.T) {
	env := newTestEnv(t, Deps{})

	rec := env.do(t, http.MethodPost, "/sessions", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var created struct {
		SessionID string `json:"sessionId"`
	}
	decode(t, rec, &created)
	base := "/sessions/" + created.SessionID

	rec = env.do(t, http.MethodGet, base+"/storefronts/food", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected storefront 200, got %d: %s", rec.Code, rec.Body.String())
	}

	burger := productByName(t, "McAloo Tikki Burger")
	add := addLineRequest{ProductID: burger.ID, Category: "food", ServiceMode: "dine-in"}
	for i := 0; i < 2; i++ {
		if rec = env.do(t, http.MethodPost, base+"/cart/lines", add); rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
	}

	var cart cartResponse
	decode(t, env.do(t, http.MethodGet, base+"/cart", nil), &cart)
	if len(cart.Lines) != 1 || cart.Count != 2 || cart.Subtotal != "138.00" {
		t.Fatalf("unexpected cart %+v", cart)
	}

	rec = env.do(t, http.MethodPost, base+"/checkout", map[string]string{"paymentMethod": "upi"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected checkout 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var o domain.Order
	decode(t, rec, &o)
	if o.Status != domain.OrderStatusPreparing || o.EstimatedMinutes != 24 {
		t.Fatalf("unexpected order %+v", o)
	}

	var stock struct {
		RemainingCount int  `json:"remainingCount"`
		Known          bool `json:"known"`
	}
	decode(t, env.do(t, http.MethodGet, base+"/stock/"+burger.ID, nil), &stock)
	if !stock.Known || stock.RemainingCount != burger.StockCount-2 {
		t.Fatalf("expected stock decremented, got %+v", stock)
	}

	decode(t, env.do(t, http.MethodGet, base+"/cart", nil), &cart)
	if cart.Count != 0 {
		t.Fatalf("expected empty cart after checkout")
	}

	rec = env.do(t, http.MethodPost, base+"/orders/"+o.ID+"/status", statusRequest{Status: "collected"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for skipped stage, got %d", rec.Code)
	}
	rec = env.do(t, http.MethodPost, base+"/orders/"+o.ID+"/status", statusRequest{Status: "ready"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	rec = env.do(t, http.MethodPost, base+"/orders/"+o.ID+"/status", statusRequest{Status: "teleported"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown status, got %d", rec.Code)
	}

	var list struct {
		Orders []domain.Order `json:"orders"`
	}
	decode(t, env.do(t, http.MethodGet, base+"/orders?state=active", nil), &list)
	if len(list.Orders) != 1 {
		t.Fatalf("expected 1 active order, got %d", len(list.Orders))
	}

	rec = env.do(t, http.MethodGet, "/qr/"+o.QRCode, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected qr fallback lookup to succeed, got %d", rec.Code)
	}
}

func TestCartValidation(t *testing.T) {
	env := newTestEnv(t, Deps{})
	sess := env.sessions.Create()
	base := "/sessions/" + sess.ID

	shirt := productByName(t, "Linen Blend Shirt")
	cases := []struct {
		name string
		req  addLineRequest
		want int
	}{
		{"missing product", addLineRequest{Category: "clothing"}, http.StatusBadRequest},
		{"bad category", addLineRequest{ProductID: shirt.ID, Category: "toys"}, http.StatusBadRequest},
		{"unknown product", addLineRequest{ProductID: "nope", Category: "clothing"}, http.StatusNotFound},
		{"bad size", addLineRequest{ProductID: shirt.ID, Category: "clothing", Size: "XXS"}, http.StatusBadRequest},
		{"trial ok", addLineRequest{ProductID: shirt.ID, Category: "clothing", Size: "M", Type: "trial"}, http.StatusCreated},
	}
	for _, tc := range cases {
		if rec := env.do(t, http.MethodPost, base+"/cart/lines", tc.req); rec.Code != tc.want {
			t.Fatalf("%s: expected %d, got %d: %s", tc.name, tc.want, rec.Code, rec.Body.String())
		}
	}

	tank := productByName(t, "Ribbed Tank Top")
	if rec := env.do(t, http.MethodGet, base+"/storefronts/clothing", nil); rec.Code != http.StatusOK {
		t.Fatalf("load storefront: %d", rec.Code)
	}
	rec := env.do(t, http.MethodPost, base+"/cart/lines", addLineRequest{ProductID: tank.ID, Category: "clothing"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected sold out item to be refused, got %d", rec.Code)
	}

	lines := sess.Cart.Lines()
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	rec = env.do(t, http.MethodPut, base+"/cart/lines/"+lines[0].ID, map[string]int{"quantity": 3})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var updated domain.CartLine
	decode(t, rec, &updated)
	if updated.ID != lines[0].ID || updated.Quantity != 3 {
		t.Fatalf("expected updated line with quantity 3, got %+v", updated)
	}
	if rec := env.do(t, http.MethodPut, base+"/cart/lines/"+lines[0].ID, map[string]int{"quantity": 0}); rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 on removal, got %d", rec.Code)
	}
	if rec := env.do(t, http.MethodPut, base+"/cart/lines/"+lines[0].ID, map[string]int{"quantity": 1}); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for removed line, got %d", rec.Code)
	}
	if rec := env.do(t, http.MethodDelete, base+"/cart/lines/"+lines[0].ID, nil); rec.Code != http.StatusNoContent {
		t.Fatalf("expected idempotent delete, got %d", rec.Code)
	}

	rec = env.do(t, http.MethodPost, base+"/checkout", map[string]string{"paymentMethod": "card"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected empty cart checkout to fail with 400, got %d", rec.Code)
	}
}

type failingProvider struct{}

func (failingProvider) FetchCatalog(context.Context, domain.Category) ([]domain.Product, error) {
	return nil, errors.New("connection refused")
}

func TestStorefrontUpstreamFailure(t *testing.T) {
	env := newTestEnv(t, Deps{Catalog: catalog.New(failingProvider{}, nil)})
	sess := env.sessions.Create()
	if rec := env.do(t, http.MethodGet, "/sessions/"+sess.ID+"/storefronts/food", nil); rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
}

func TestRecommendations(t *testing.T) {
	sug := &stubSuggester{}
	env := newTestEnv(t, Deps{Recommender: sug})
	sess := env.sessions.Create()
	sess.Cart.Add(domain.CartLine{ProductID: "p1", Name: "Jeans", Category: domain.CategoryClothing})

	var out struct {
		Suggestion string `json:"suggestion"`
	}
	decode(t, env.do(t, http.MethodGet, "/sessions/"+sess.ID+"/recommendations", nil), &out)
	if out.Suggestion != "Try a belt" || len(sug.names) != 1 || sug.names[0] != "Jeans" {
		t.Fatalf("unexpected suggestion %q for %v", out.Suggestion, sug.names)
	}
}

func TestAIQueryErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{recommend.ErrEmptyPrompt, http.StatusBadRequest},
		{recommend.ErrRateLimited, http.StatusTooManyRequests},
		{recommend.ErrCreditsExhausted, http.StatusPaymentRequired},
		{recommend.ErrUpstream, http.StatusBadGateway},
		{recommend.ErrNotConfigured, http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		env := newTestEnv(t, Deps{AI: &stubAI{reply: recommend.Reply{Response: "hi", Model: "m"}, err: tc.err}})
		if rec := env.do(t, http.MethodPost, "/ai/query", aiQueryRequest{Prompt: "hello"}); rec.Code != tc.want {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.want, rec.Code)
		}
	}

	env := newTestEnv(t, Deps{})
	if rec := env.do(t, http.MethodPost, "/ai/query", aiQueryRequest{Prompt: "hello"}); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without AI client, got %d", rec.Code)
	}
}

func TestQRLookupMiss(t *testing.T) {
	env := newTestEnv(t, Deps{QR: &stubQR{err: domain.ErrNotFound}})
	if rec := env.do(t, http.MethodGet, "/qr/QRNONE00", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestCollections(t *testing.T) {
	env := newTestEnv(t, Deps{})
	if rec := env.do(t, http.MethodGet, "/collections/notes", nil); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without document store, got %d", rec.Code)
	}

	docs := &stubDocs{}
	env = newTestEnv(t, Deps{Documents: docs})

	rec := env.do(t, http.MethodPost, "/collections/notes", map[string]string{"text": "hello"})
	if rec.Code != http.StatusCreated || !strings.Contains(rec.Body.String(), "insertedId") {
		t.Fatalf("expected 201 with insertedId, got %d %s", rec.Code, rec.Body.String())
	}
	if docs.created["text"] != "hello" {
		t.Fatalf("expected body forwarded, got %v", docs.created)
	}
	if rec := env.do(t, http.MethodGet, "/collections/notes?limit=5", nil); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec := env.do(t, http.MethodGet, "/collections/notes/cursor?lastId=bad", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad cursor, got %d", rec.Code)
	}
	if rec := env.do(t, http.MethodPut, "/collections/notes/65f000000000000000000001", map[string]int{"n": 2}); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec := env.do(t, http.MethodDelete, "/collections/notes/65f000000000000000000001", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
