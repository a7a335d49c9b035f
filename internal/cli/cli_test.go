package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =====================
// fake API
// =====================

type fakeLine struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int64  `json:"quantity"`
}

type fakeAPI struct {
	mu sync.Mutex

	users    map[string]string // email -> password
	carts    map[string][]fakeLine
	products map[string]fakeLine
	records  []map[string]any
	logouts  int
	down     bool
}

func newFakeAPI(t *testing.T) (*fakeAPI, string) {
	t.Helper()
	f := &fakeAPI{
		users: map[string]string{},
		carts: map[string][]fakeLine{},
		products: map[string]fakeLine{
			"p1": {ProductID: "p1", Name: "Apple", Price: 120},
			"p2": {ProductID: "p2", Name: "Banana", Price: 80},
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.down {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("POST /auth/register", func(w http.ResponseWriter, r *http.Request) {
		var in map[string]string
		_ = json.NewDecoder(r.Body).Decode(&in)
		f.mu.Lock()
		defer f.mu.Unlock()
		if _, ok := f.users[in["email"]]; ok {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "email already registered"})
			return
		}
		f.users[in["email"]] = in["password"]
		writeJSON(w, http.StatusCreated, map[string]any{
			"user": map[string]string{"id": "u-" + in["email"], "name": in["name"], "email": in["email"]},
		})
	})
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var in map[string]string
		_ = json.NewDecoder(r.Body).Decode(&in)
		f.mu.Lock()
		defer f.mu.Unlock()
		if pw, ok := f.users[in["email"]]; !ok || pw != in["password"] {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
			return
		}
		id := "u-" + in["email"]
		writeJSON(w, http.StatusOK, map[string]any{
			"user":  map[string]string{"id": id, "name": "Shopper", "email": in["email"]},
			"token": map[string]string{"access_token": "tok-" + id},
		})
	})
	mux.HandleFunc("POST /auth/logout", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.logouts++
		f.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
	})
	mux.HandleFunc("GET /auth/session", f.authed(func(w http.ResponseWriter, r *http.Request, uid string) {
		writeJSON(w, http.StatusOK, map[string]any{
			"session": map[string]any{"session_id": "s1", "user_id": uid, "expires_at": time.Now().Add(time.Hour)},
		})
	}))
	mux.HandleFunc("GET /cart", f.authed(func(w http.ResponseWriter, r *http.Request, uid string) {
		f.writeCart(w, uid)
	}))
	mux.HandleFunc("POST /cart", f.authed(func(w http.ResponseWriter, r *http.Request, uid string) {
		var in struct {
			ProductID string `json:"product_id"`
			Quantity  int64  `json:"quantity"`
		}
		_ = json.NewDecoder(r.Body).Decode(&in)
		f.set(uid, in.ProductID, func(cur int64) int64 { return cur + in.Quantity })
		f.writeCart(w, uid)
	}))
	mux.HandleFunc("PUT /cart/items/{id}", f.authed(func(w http.ResponseWriter, r *http.Request, uid string) {
		var in struct {
			Quantity int64 `json:"quantity"`
		}
		_ = json.NewDecoder(r.Body).Decode(&in)
		f.set(uid, r.PathValue("id"), func(int64) int64 { return in.Quantity })
		f.writeCart(w, uid)
	}))
	mux.HandleFunc("DELETE /cart/items/{id}", f.authed(func(w http.ResponseWriter, r *http.Request, uid string) {
		f.set(uid, r.PathValue("id"), func(int64) int64 { return 0 })
		f.writeCart(w, uid)
	}))
	mux.HandleFunc("DELETE /cart", f.authed(func(w http.ResponseWriter, r *http.Request, uid string) {
		f.mu.Lock()
		delete(f.carts, uid)
		f.mu.Unlock()
		f.writeCart(w, uid)
	}))
	mux.HandleFunc("POST /api/save-user-data", func(w http.ResponseWriter, r *http.Request) {
		var in map[string]any
		_ = json.NewDecoder(r.Body).Decode(&in)
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.down {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		f.records = append(f.records, in)
		writeJSON(w, http.StatusOK, map[string]string{"message": "saved"})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return f, srv.URL
}

func (f *fakeAPI) authed(h func(http.ResponseWriter, *http.Request, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tok, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer tok-")
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		h(w, r, tok)
	}
}

func (f *fakeAPI) set(uid, productID string, next func(int64) int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lines := f.carts[uid]
	for i, l := range lines {
		if l.ProductID == productID {
			if q := next(l.Quantity); q > 0 {
				lines[i].Quantity = q
			} else {
				lines = append(lines[:i], lines[i+1:]...)
			}
			f.carts[uid] = lines
			return
		}
	}
	if q := next(0); q > 0 {
		l := f.products[productID]
		l.Quantity = q
		f.carts[uid] = append(lines, l)
	}
}

func (f *fakeAPI) writeCart(w http.ResponseWriter, uid string) {
	f.mu.Lock()
	lines := append([]fakeLine{}, f.carts[uid]...)
	f.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"items": lines})
}

func (f *fakeAPI) setDown(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.down = v
}

func (f *fakeAPI) recordTypes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []string{}
	for _, r := range f.records {
		out = append(out, r["type"].(string))
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// =====================
// helper
// =====================

type env struct {
	api     *fakeAPI
	baseURL string
	dataDir string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	api, url := newFakeAPI(t)
	return &env{api: api, baseURL: url, dataDir: t.TempDir()}
}

func (e *env) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	full := append([]string{"--api", e.baseURL, "--data-dir", e.dataDir, "--timeout", "2s", "--no-color"}, args...)
	err := Run(context.Background(), full, &stdout, &stderr)
	return stdout.String() + stderr.String(), err
}

func (e *env) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := e.run(t, args...)
	require.NoError(t, err, out)
	return out
}

// =====================
// tests
// =====================

func TestCLI_RegisterLoginCartLogout(t *testing.T) {
	e := newEnv(t)

	out := e.mustRun(t, "register", "--name", "Alice", "--email", "a@example.com", "--password", "secret1")
	assert.Contains(t, out, "registered a@example.com")

	_, err := e.run(t, "register", "--name", "Alice", "--email", "a@example.com", "--password", "secret1")
	assert.ErrorContains(t, err, "already registered")

	out = e.mustRun(t, "login", "--email", "a@example.com", "--password", "secret1")
	assert.Contains(t, out, "logged in as a@example.com")

	e.mustRun(t, "cart", "add", "p1", "--qty", "2")
	out = e.mustRun(t, "cart", "add", "p1")
	assert.Contains(t, out, "total: 360")

	out = e.mustRun(t, "status")
	assert.Contains(t, out, "a@example.com")
	assert.Contains(t, out, "1 lines, total 360")

	out = e.mustRun(t, "cart", "set", "p1", "0")
	assert.Contains(t, out, "cart is empty")

	out = e.mustRun(t, "logout")
	assert.Contains(t, out, "logged out")
	e.api.mu.Lock()
	assert.Equal(t, 1, e.api.logouts)
	e.api.mu.Unlock()

	out = e.mustRun(t, "status")
	assert.Contains(t, out, "anonymous")

	assert.Equal(t, []string{"login", "logout"}, e.api.recordTypes())
}

func TestCLI_LoginRejected(t *testing.T) {
	e := newEnv(t)
	_, err := e.run(t, "login", "--email", "nobody@example.com", "--password", "x")
	assert.ErrorContains(t, err, "invalid email or password")
}

func TestCLI_CartRequiresLogin(t *testing.T) {
	e := newEnv(t)
	_, err := e.run(t, "cart", "add", "p1")
	assert.ErrorContains(t, err, "unauthenticated")
}

func TestCLI_CartClear(t *testing.T) {
	e := newEnv(t)
	e.mustRun(t, "register", "--name", "Bob", "--email", "b@example.com", "--password", "secret1")
	e.mustRun(t, "login", "--email", "b@example.com", "--password", "secret1")
	e.mustRun(t, "cart", "add", "p1")
	e.mustRun(t, "cart", "add", "p2", "--qty", "3")

	out := e.mustRun(t, "cart", "list")
	assert.Contains(t, out, "Banana")
	assert.Contains(t, out, "total: 360")

	e.mustRun(t, "cart", "clear")
	out = e.mustRun(t, "cart", "list")
	assert.Contains(t, out, "cart is empty")
}

func TestCLI_WishlistAndTheme(t *testing.T) {
	e := newEnv(t)
	e.mustRun(t, "register", "--name", "Cy", "--email", "c@example.com", "--password", "secret1")
	e.mustRun(t, "login", "--email", "c@example.com", "--password", "secret1")

	assert.Contains(t, e.mustRun(t, "wishlist", "toggle", "p2"), "added p2")
	assert.Contains(t, e.mustRun(t, "wishlist"), "p2")
	assert.Contains(t, e.mustRun(t, "wishlist", "toggle", "p2"), "removed p2")
	assert.Contains(t, e.mustRun(t, "wishlist"), "wishlist is empty")

	assert.Contains(t, e.mustRun(t, "theme"), "light")
	assert.Contains(t, e.mustRun(t, "theme", "toggle"), "dark")
	assert.Contains(t, e.mustRun(t, "theme"), "dark")
	_, err := e.run(t, "theme", "sepia")
	assert.Error(t, err)
}

func TestCLI_DataQueuedWhileDown(t *testing.T) {
	e := newEnv(t)
	e.api.setDown(true)

	out := e.mustRun(t, "data", "record", "page_view", `{"path":"/"}`)
	assert.Contains(t, out, "1 record(s) waiting")

	out = e.mustRun(t, "data", "export")
	assert.Contains(t, out, `"page_view"`)

	_, err := e.run(t, "data", "flush")
	assert.ErrorContains(t, err, "unreachable")

	e.api.setDown(false)
	out = e.mustRun(t, "data", "flush")
	assert.Contains(t, out, "delivered 1 record(s)")
	assert.Equal(t, []string{"page_view"}, e.api.recordTypes())

	assert.Contains(t, e.mustRun(t, "data", "export"), "[]")
}

func TestCLI_DataWatchDeliversOnceReachable(t *testing.T) {
	e := newEnv(t)
	e.api.setDown(true)
	e.mustRun(t, "data", "record", "search", `{"q":"cable"}`)
	e.api.setDown(false)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	var stdout bytes.Buffer
	err := Run(ctx, []string{"--api", e.baseURL, "--data-dir", e.dataDir, "--no-color",
		"data", "watch", "--interval", "10ms"}, &stdout, &bytes.Buffer{})
	require.NoError(t, err)

	assert.Contains(t, stdout.String(), "stopped; 0 record(s) pending")
	assert.Equal(t, []string{"search"}, e.api.recordTypes())
}

func TestCLI_ConfigFromEnv(t *testing.T) {
	e := newEnv(t)
	t.Setenv("STOREFRONT_API", e.baseURL)
	t.Setenv("STOREFRONT_DATA_DIR", e.dataDir)

	var stdout bytes.Buffer
	err := Run(context.Background(), []string{"--no-color", "theme"}, &stdout, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "light")
}
