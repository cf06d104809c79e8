//go:build integration

package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"

	"github.com/fetchkit-io/fetchkit/pkg/fetchkit"
)

// App is the resource the workflow tests operate on.
type App struct {
	GUID string `json:"guid"`
	Name string `json:"name"`
}

// fakeAPI is an in-process API server with an OAuth2 token endpoint and a
// paginated JSON resource collection.
type fakeAPI struct {
	mu sync.Mutex

	apps       map[string]App
	nextID     int
	tokenSeq   int
	tokenCalls int
	validToken string

	server *httptest.Server
}

func newFakeAPI() *fakeAPI {
	api := &fakeAPI{apps: make(map[string]App)}

	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", api.handleToken)
	mux.HandleFunc("/v3/apps", api.handleCollection)
	mux.HandleFunc("/v3/apps/", api.handleItem)

	api.server = httptest.NewServer(mux)

	return api
}

func (a *fakeAPI) Close() {
	a.server.Close()
}

func (a *fakeAPI) URL() string {
	return a.server.URL
}

func (a *fakeAPI) TokenURL() string {
	return a.server.URL + "/oauth/token"
}

func (a *fakeAPI) TokenCalls() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.tokenCalls
}

// ExpireToken invalidates the currently issued token, forcing the next
// authenticated request into a 401 and a coordinated refresh.
func (a *fakeAPI) ExpireToken() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.validToken = ""
}

func (a *fakeAPI) Seed(names ...string) []App {
	a.mu.Lock()
	defer a.mu.Unlock()

	seeded := make([]App, 0, len(names))

	for _, name := range names {
		a.nextID++
		app := App{GUID: "app-" + strconv.Itoa(a.nextID), Name: name}
		a.apps[app.GUID] = app
		seeded = append(seeded, app)
	}

	return seeded
}

func (a *fakeAPI) handleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)

		return
	}

	grant := r.PostFormValue("grant_type")
	if grant == "password" && r.PostFormValue("password") != "secret" {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "invalid_grant"})

		return
	}

	a.mu.Lock()
	a.tokenCalls++
	a.tokenSeq++
	token := fmt.Sprintf("token-%d", a.tokenSeq)
	a.validToken = token
	a.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"access_token": token,
		"token_type":   "bearer",
		"expires_in":   600,
	})
}

func (a *fakeAPI) authorized(r *http.Request) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.validToken != "" && r.Header.Get("Authorization") == "Bearer "+a.validToken
}

//nolint:funlen // request dispatch covers every collection verb
func (a *fakeAPI) handleCollection(w http.ResponseWriter, r *http.Request) {
	if !a.authorized(r) {
		w.WriteHeader(http.StatusUnauthorized)

		return
	}

	switch r.Method {
	case http.MethodGet:
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if page == 0 {
			page = 1
		}

		perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
		if perPage == 0 {
			perPage = 50
		}

		a.mu.Lock()
		all := make([]App, 0, len(a.apps))
		for i := 1; i <= a.nextID; i++ {
			if app, ok := a.apps["app-"+strconv.Itoa(i)]; ok {
				all = append(all, app)
			}
		}
		a.mu.Unlock()

		totalPages := (len(all) + perPage - 1) / perPage

		start := (page - 1) * perPage
		if start > len(all) {
			start = len(all)
		}

		end := start + perPage
		if end > len(all) {
			end = len(all)
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(fetchkit.ListResponse[App]{
			Pagination: fetchkit.Page{Page: page, TotalPages: totalPages, PerPage: perPage, Total: len(all)},
			Resources:  all[start:end],
		})

	case http.MethodPost:
		var params struct {
			Name string `json:"name"`
		}

		if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
			http.Error(w, "bad body", http.StatusBadRequest)

			return
		}

		a.mu.Lock()
		a.nextID++
		app := App{GUID: "app-" + strconv.Itoa(a.nextID), Name: params.Name}
		a.apps[app.GUID] = app
		a.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(app)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (a *fakeAPI) handleItem(w http.ResponseWriter, r *http.Request) {
	if !a.authorized(r) {
		w.WriteHeader(http.StatusUnauthorized)

		return
	}

	guid := strings.TrimPrefix(r.URL.Path, "/v3/apps/")

	a.mu.Lock()
	app, found := a.apps[guid]
	a.mu.Unlock()

	if !found {
		w.WriteHeader(http.StatusNotFound)

		return
	}

	switch r.Method {
	case http.MethodGet:
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(app)

	case http.MethodPatch:
		var params struct {
			Name string `json:"name"`
		}

		if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
			http.Error(w, "bad body", http.StatusBadRequest)

			return
		}

		a.mu.Lock()
		app.Name = params.Name
		a.apps[guid] = app
		a.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(app)

	case http.MethodDelete:
		a.mu.Lock()
		delete(a.apps, guid)
		a.mu.Unlock()

		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
