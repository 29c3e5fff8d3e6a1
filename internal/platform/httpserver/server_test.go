package httpserver

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	contacts "atrium/contexts/customer-relations/contact-service"
	contacthttp "atrium/contexts/customer-relations/contact-service/transport/http"
	tenancy "atrium/contexts/identity-access/tenancy-service"
	tenancyhttp "atrium/contexts/identity-access/tenancy-service/transport/http"
)

const testBaseDomain = "example.com"

func newTestServer(t *testing.T, overrideEnabled bool) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tenancyModule := tenancy.NewInMemoryModule(testBaseDomain, []string{"/healthz", "/api/organizations"}, logger)
	contactsModule := contacts.NewInMemoryModule(logger)
	srv := New(tenancyModule, contactsModule, logger, Options{OverrideEnabled: overrideEnabled})
	return srv.Handler()
}

func doJSON(t *testing.T, handler http.Handler, method, host, path string, body any, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, "http://"+host+path, reader)
	req.Host = host
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func registerOrg(t *testing.T, handler http.Handler, routingKey, name string) tenancyhttp.TenantResponse {
	t.Helper()
	rec := doJSON(t, handler, http.MethodPost, testBaseDomain, "/api/organizations",
		tenancyhttp.RegisterTenantRequest{RoutingKey: routingKey, Name: name}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register %q: status = %d, body = %s", routingKey, rec.Code, rec.Body.String())
	}
	var resp tenancyhttp.TenantResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode register response: %v", err)
	}
	return resp
}

func TestHealthzIsReachableWithoutTenant(t *testing.T) {
	handler := newTestServer(t, false)

	rec := doJSON(t, handler, http.MethodGet, testBaseDomain, "/healthz", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestUnresolvedTenantOnScopedRouteIsGenericNotFound(t *testing.T) {
	handler := newTestServer(t, false)

	rec := doJSON(t, handler, http.MethodGet, testBaseDomain, "/api/contacts", nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp tenancyhttp.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if resp.Code != "not_found" || resp.Message != "resource not found" {
		t.Fatalf("payload leaks resolution detail: %+v", resp)
	}
}

func TestUnknownSubdomainIsGenericNotFound(t *testing.T) {
	handler := newTestServer(t, false)

	rec := doJSON(t, handler, http.MethodGet, "ghost.example.com", "/api/contacts", nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestWwwIsNeverATenant(t *testing.T) {
	handler := newTestServer(t, false)

	rec := doJSON(t, handler, http.MethodGet, "www.example.com", "/api/contacts", nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestContactLifecycleUnderTenantHost(t *testing.T) {
	handler := newTestServer(t, false)
	registerOrg(t, handler, "acme", "Acme Corp")

	rec := doJSON(t, handler, http.MethodPost, "acme.example.com", "/api/contacts",
		contacthttp.ContactRequest{Name: "Ada Lovelace", Email: "ada@acme.test"}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var created contacthttp.ContactResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}

	rec = doJSON(t, handler, http.MethodGet, "acme.example.com", "/api/contacts/"+created.ContactID, nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get: status = %d", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodPut, "acme.example.com", "/api/contacts/"+created.ContactID,
		contacthttp.ContactRequest{Name: "Ada King", Email: "ada@acme.test"}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("update: status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, handler, http.MethodDelete, "acme.example.com", "/api/contacts/"+created.ContactID, nil, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: status = %d", rec.Code)
	}
}

func TestContactsAreIsolatedBetweenSubdomains(t *testing.T) {
	handler := newTestServer(t, false)
	registerOrg(t, handler, "acme", "Acme Corp")
	registerOrg(t, handler, "globex", "Globex")

	rec := doJSON(t, handler, http.MethodPost, "acme.example.com", "/api/contacts",
		contacthttp.ContactRequest{Name: "Ada"}, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status = %d", rec.Code)
	}
	var created contacthttp.ContactResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}

	rec = doJSON(t, handler, http.MethodGet, "globex.example.com", "/api/contacts", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: status = %d", rec.Code)
	}
	var listed contacthttp.ListContactsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode list response: %v", err)
	}
	if len(listed.Items) != 0 {
		t.Fatalf("globex sees %d acme contacts", len(listed.Items))
	}

	// Direct id access from the wrong tenant is indistinguishable from
	// a missing resource.
	rec = doJSON(t, handler, http.MethodGet, "globex.example.com", "/api/contacts/"+created.ContactID, nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("cross-tenant get: status = %d", rec.Code)
	}
}

func TestSuspendedTenantStopsRouting(t *testing.T) {
	handler := newTestServer(t, false)
	org := registerOrg(t, handler, "acme", "Acme Corp")

	rec := doJSON(t, handler, http.MethodPost, testBaseDomain, "/api/organizations/"+org.TenantID+"/suspend", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("suspend: status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, handler, http.MethodGet, "acme.example.com", "/api/contacts", nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("suspended tenant: status = %d", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodPost, testBaseDomain, "/api/organizations/"+org.TenantID+"/activate", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("activate: status = %d", rec.Code)
	}

	rec = doJSON(t, handler, http.MethodGet, "acme.example.com", "/api/contacts", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("reactivated tenant: status = %d", rec.Code)
	}
}

func TestOverrideHeaderResolvesTenantWhenEnabled(t *testing.T) {
	handler := newTestServer(t, true)
	registerOrg(t, handler, "acme", "Acme Corp")

	rec := doJSON(t, handler, http.MethodGet, testBaseDomain, "/api/contacts", nil,
		map[string]string{"X-Tenant-Key": "acme"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestOverrideHeaderIsIgnoredWhenDisabled(t *testing.T) {
	handler := newTestServer(t, false)
	registerOrg(t, handler, "acme", "Acme Corp")

	rec := doJSON(t, handler, http.MethodGet, testBaseDomain, "/api/contacts", nil,
		map[string]string{"X-Tenant-Key": "acme"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestDocsAreAlwaysExempt(t *testing.T) {
	handler := newTestServer(t, false)

	rec := doJSON(t, handler, http.MethodGet, testBaseDomain, "/swagger/index.html", nil, nil)
	if rec.Code == http.StatusNotFound || rec.Code == http.StatusServiceUnavailable {
		t.Fatalf("docs blocked by resolution: status = %d", rec.Code)
	}
}

func TestDuplicateRoutingKeyIsConflict(t *testing.T) {
	handler := newTestServer(t, false)
	registerOrg(t, handler, "acme", "Acme Corp")

	rec := doJSON(t, handler, http.MethodPost, testBaseDomain, "/api/organizations",
		tenancyhttp.RegisterTenantRequest{RoutingKey: "acme", Name: "Copycat"}, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}

func TestReservedRoutingKeyIsRejected(t *testing.T) {
	handler := newTestServer(t, false)

	rec := doJSON(t, handler, http.MethodPost, testBaseDomain, "/api/organizations",
		tenancyhttp.RegisterTenantRequest{RoutingKey: "www", Name: "Sneaky"}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
}
