package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"

	"didactax/internal/app"
	"didactax/pkg/domain"
	"didactax/pkg/paging"
	"didactax/pkg/store"
)

const testPassword = "Str0ng#Password!"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	dataStore, err := store.NewGormStore(filepath.Join(t.TempDir(), "didactax.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	appCore, err := app.New(app.Config{
		Store:             dataStore,
		Sessions:          store.NewMemorySessionStore(),
		DashboardPageSize: 5,
	})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	srv, err := New(Config{App: appCore})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url, token string, payload any, out any) int {
	t.Helper()
	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s: %v", method, url, err)
		}
	}
	return resp.StatusCode
}

func registerAndLogin(t *testing.T, ts *httptest.Server, email string) string {
	t.Helper()
	var reg authResponse
	status := doJSON(t, http.MethodPost, ts.URL+"/auth/register", "", authRequest{
		Email:    email,
		Password: testPassword,
		Name:     "Tester",
	}, &reg)
	if status != http.StatusCreated {
		t.Fatalf("register expected 201, got %d", status)
	}
	if reg.Token == "" {
		t.Fatalf("register returned no token")
	}
	return reg.Token
}

func TestAuthFlow(t *testing.T) {
	ts := newTestServer(t)
	token := registerAndLogin(t, ts, "flow@example.com")

	var me domain.User
	if status := doJSON(t, http.MethodGet, ts.URL+"/auth/me", token, nil, &me); status != http.StatusOK {
		t.Fatalf("me expected 200, got %d", status)
	}
	if me.Email != "flow@example.com" {
		t.Fatalf("unexpected identity: %q", me.Email)
	}

	var login authResponse
	if status := doJSON(t, http.MethodPost, ts.URL+"/auth/login", "", authRequest{
		Email:    "flow@example.com",
		Password: testPassword,
	}, &login); status != http.StatusOK {
		t.Fatalf("login expected 200, got %d", status)
	}

	if status := doJSON(t, http.MethodPost, ts.URL+"/auth/logout", token, nil, nil); status != http.StatusOK {
		t.Fatalf("logout expected 200, got %d", status)
	}
	if status := doJSON(t, http.MethodGet, ts.URL+"/auth/me", token, nil, nil); status != http.StatusUnauthorized {
		t.Fatalf("me after logout expected 401, got %d", status)
	}
}

func TestRoutesRequireAuth(t *testing.T) {
	ts := newTestServer(t)
	for _, path := range []string{"/works", "/settings", "/payments"} {
		if status := doJSON(t, http.MethodGet, ts.URL+path, "", nil, nil); status != http.StatusUnauthorized {
			t.Fatalf("%s without token expected 401, got %d", path, status)
		}
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ts := newTestServer(t)
	registerAndLogin(t, ts, "dup@example.com")
	status := doJSON(t, http.MethodPost, ts.URL+"/auth/register", "", authRequest{
		Email:    "dup@example.com",
		Password: testPassword,
	}, nil)
	if status != http.StatusConflict {
		t.Fatalf("duplicate email expected 409, got %d", status)
	}
}

func TestWorkLifecycleOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	token := registerAndLogin(t, ts, "work@example.com")

	var work domain.Work
	status := doJSON(t, http.MethodPost, ts.URL+"/works", token, createWorkRequest{
		Type:  domain.TypeBook,
		Title: "My Book",
	}, &work)
	if status != http.StatusCreated {
		t.Fatalf("create work expected 201, got %d", status)
	}
	if work.PageCount != 10 {
		t.Fatalf("book default page count expected 10, got %d", work.PageCount)
	}

	var page paging.Page[domain.Work]
	if status := doJSON(t, http.MethodGet, ts.URL+"/works?page=1", token, nil, &page); status != http.StatusOK {
		t.Fatalf("list expected 200, got %d", status)
	}
	if len(page.Items) != 1 {
		t.Fatalf("expected 1 dashboard item, got %d", len(page.Items))
	}

	title := "Renamed"
	var updated domain.Work
	if status := doJSON(t, http.MethodPatch, workURL(ts, work.ID), token, updateWorkRequest{Title: &title}, &updated); status != http.StatusOK {
		t.Fatalf("patch expected 200, got %d", status)
	}
	if updated.Title != "Renamed" {
		t.Fatalf("title not updated: %q", updated.Title)
	}

	if status := doJSON(t, http.MethodDelete, workURL(ts, work.ID), token, nil, nil); status != http.StatusOK {
		t.Fatalf("delete expected 200, got %d", status)
	}
	if status := doJSON(t, http.MethodGet, workURL(ts, work.ID), token, nil, nil); status != http.StatusNotFound {
		t.Fatalf("get after delete expected 404, got %d", status)
	}
	// Deleting again stays a success.
	if status := doJSON(t, http.MethodDelete, workURL(ts, work.ID), token, nil, nil); status != http.StatusOK {
		t.Fatalf("repeat delete expected 200, got %d", status)
	}
}

func TestWorkIsolationBetweenUsers(t *testing.T) {
	ts := newTestServer(t)
	owner := registerAndLogin(t, ts, "owner@example.com")
	intruder := registerAndLogin(t, ts, "intruder@example.com")

	var work domain.Work
	if status := doJSON(t, http.MethodPost, ts.URL+"/works", owner, createWorkRequest{
		Type:  domain.TypeSingle,
		Title: "Private",
	}, &work); status != http.StatusCreated {
		t.Fatalf("create expected 201, got %d", status)
	}

	if status := doJSON(t, http.MethodGet, workURL(ts, work.ID), intruder, nil, nil); status != http.StatusForbidden {
		t.Fatalf("foreign read expected 403, got %d", status)
	}
	if status := doJSON(t, http.MethodDelete, workURL(ts, work.ID), intruder, nil, nil); status != http.StatusForbidden {
		t.Fatalf("foreign delete expected 403, got %d", status)
	}
}

func TestFileTreeAndInputsOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	token := registerAndLogin(t, ts, "tree@example.com")

	var work domain.Work
	if status := doJSON(t, http.MethodPost, ts.URL+"/works", token, createWorkRequest{
		Type:  domain.TypeSingle,
		Title: "Lesson",
	}, &work); status != http.StatusCreated {
		t.Fatalf("create work expected 201, got %d", status)
	}

	var folder domain.Folder
	if status := doJSON(t, http.MethodPost, ts.URL+"/folders", token, createFolderRequest{
		WorkID: work.ID,
		Name:   "Unit 1",
	}, &folder); status != http.StatusCreated {
		t.Fatalf("create folder expected 201, got %d", status)
	}

	var file domain.File
	if status := doJSON(t, http.MethodPost, ts.URL+"/files", token, createFileRequest{
		WorkID:   work.ID,
		ParentID: &folder.ID,
		Name:     "lesson-1",
		Type:     domain.TypeSingle,
	}, &file); status != http.StatusCreated {
		t.Fatalf("create file expected 201, got %d", status)
	}
	if file.Name != "lesson-1.docx" {
		t.Fatalf("file name should carry the extension, got %q", file.Name)
	}

	var tree domain.FileTree
	if status := doJSON(t, http.MethodGet, workURL(ts, work.ID)+"/tree", token, nil, &tree); status != http.StatusOK {
		t.Fatalf("tree expected 200, got %d", status)
	}
	if len(tree.Folders) != 1 || len(tree.Files) != 1 {
		t.Fatalf("unexpected tree: %d folders %d files", len(tree.Folders), len(tree.Files))
	}

	var inputs []domain.Input
	if status := doJSON(t, http.MethodGet, fileURL(ts, file.ID)+"/inputs", token, nil, &inputs); status != http.StatusOK {
		t.Fatalf("inputs expected 200, got %d", status)
	}
	if len(inputs) != 10 {
		t.Fatalf("single file should seed 10 inputs, got %d", len(inputs))
	}

	value := "Hello world"
	if status := doJSON(t, http.MethodPatch, inputURL(ts, inputs[0].ID), token, updateInputRequest{Value: &value}, nil); status != http.StatusOK {
		t.Fatalf("input patch expected 200, got %d", status)
	}

	if status := doJSON(t, http.MethodDelete, fileURL(ts, file.ID), token, nil, nil); status != http.StatusOK {
		t.Fatalf("file delete expected 200, got %d", status)
	}
}

func TestQuoteAndPaymentOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	token := registerAndLogin(t, ts, "pay@example.com")

	var work domain.Work
	if status := doJSON(t, http.MethodPost, ts.URL+"/works", token, createWorkRequest{
		Type:  domain.TypeSingle,
		Title: "Paid",
	}, &work); status != http.StatusCreated {
		t.Fatalf("create expected 201, got %d", status)
	}

	var quote quoteResponse
	if status := doJSON(t, http.MethodGet, workURL(ts, work.ID)+"/quote", token, nil, &quote); status != http.StatusOK {
		t.Fatalf("quote expected 200, got %d", status)
	}
	if quote.Pages != 1 || quote.Amount != 500 {
		t.Fatalf("unexpected quote: %+v", quote)
	}

	var paid map[string]bool
	if status := doJSON(t, http.MethodGet, workURL(ts, work.ID)+"/payment-status", token, nil, &paid); status != http.StatusOK {
		t.Fatalf("payment-status expected 200, got %d", status)
	}
	if paid["paid"] {
		t.Fatalf("fresh work must be locked")
	}

	var payment domain.Payment
	if status := doJSON(t, http.MethodPost, ts.URL+"/payments", token, recordPaymentRequest{
		WorkID: work.ID,
		Method: "card",
	}, &payment); status != http.StatusCreated {
		t.Fatalf("payment expected 201, got %d", status)
	}
	if payment.Status != domain.PaymentCompleted || payment.TransactionID == "" {
		t.Fatalf("unexpected payment: %+v", payment)
	}

	if status := doJSON(t, http.MethodGet, workURL(ts, work.ID)+"/payment-status", token, nil, &paid); status != http.StatusOK {
		t.Fatalf("payment-status expected 200, got %d", status)
	}
	if !paid["paid"] {
		t.Fatalf("work should unlock after payment")
	}
}

func TestMethodNotAllowed(t *testing.T) {
	ts := newTestServer(t)
	token := registerAndLogin(t, ts, "method@example.com")
	if status := doJSON(t, http.MethodPut, ts.URL+"/works", token, nil, nil); status != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", status)
	}
}

func workURL(ts *httptest.Server, id uint) string {
	return ts.URL + "/works/" + uintString(id)
}

func fileURL(ts *httptest.Server, id uint) string {
	return ts.URL + "/files/" + uintString(id)
}

func inputURL(ts *httptest.Server, id uint) string {
	return ts.URL + "/inputs/" + uintString(id)
}

func uintString(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
