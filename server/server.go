package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log"
	"net/http"
	"time"

	. "gridplan/grid_world"
	"gridplan/reinforcement"
	"gridplan/server/cell_views"
	"gridplan/server/fastview"
	"gridplan/server/root_view"

	"github.com/gorilla/mux"
)

const shutdownGracePeriod = 5 * time.Second

// Server serves a page animating a solve of its configured grid, plus a small json api.
// Every websocket connection runs its own solve, so several pages can watch independently.
type Server struct {
	addr   string
	config *reinforcement.SolverConfig
	grid   *Config
	router *mux.Router
}

// NewServer validates the configured grid and sets up the routes.
func NewServer(
	addr string,
	config *reinforcement.SolverConfig,
) (*Server, error) {
	grid, err := config.GridConfig()
	if err != nil {
		return nil, err
	}
	if err = Validate(grid); err != nil {
		return nil, err
	}

	server := &Server{
		addr:   addr,
		config: config,
		grid:   grid,
		router: mux.NewRouter(),
	}
	server.setupRoutes()
	return server, nil
}

func (server *Server) setupRoutes() {
	server.router.HandleFunc("/", server.serveIndex).Methods(http.MethodGet)
	server.router.HandleFunc("/ws", server.serveWebsocket)

	api := server.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/config", server.handleGetConfig).Methods(http.MethodGet)
	api.HandleFunc("/solve", server.handleSolve).Methods(http.MethodPost)
}

func (server *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	server.router.ServeHTTP(w, r)
}

// Serve listens until ctx is cancelled, then shuts down gracefully.
func (server *Server) Serve(ctx context.Context) (err error) {
	srv := &http.Server{
		Addr:    server.addr,
		Handler: server,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
		defer cancel()
		if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Println("shutdown:", shutdownErr)
		}
	}()

	if err = srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// requestConfig applies the optional ?algorithm= override to base.
func requestConfig(base *reinforcement.SolverConfig, r *http.Request) (*reinforcement.SolverConfig, error) {
	config := *base
	if name := r.URL.Query().Get("algorithm"); name != "" {
		algorithm, err := reinforcement.ParseAlgorithm(name)
		if err != nil {
			return nil, err
		}
		config.Algorithm = algorithm
	}
	return &config, nil
}

// serveWebsocket runs a solve and streams its progress to the client as view updates.
func (server *Server) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	config, err := requestConfig(server.config, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	progress := make(chan reinforcement.Progress)
	rootView, err := root_view.NewRootView(ctx, server.grid, progress)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		log.Println("views:", err)
		return
	}

	cli, err := fastview.NewClient(rootView.Updates(), w, r)
	if err != nil {
		log.Println(err)
		return
	}

	go func() {
		defer close(progress)
		_, solveErr := config.Solve(server.grid, func(p reinforcement.Progress) {
			select {
			case progress <- p:
			case <-ctx.Done():
			}
		})
		if solveErr != nil {
			log.Println("solve:", solveErr)
		}
	}()

	if err = cli.Sync(); err != nil {
		log.Println("sync:", err)
	}
}

// serveIndex serves the main page, rendered with the grid's initial cells.
func (server *Server) serveIndex(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// The page's views are only parsed here; their channels are never fed.
	rootView, err := root_view.NewRootView(ctx, server.grid, nil)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html")
	if err := renderTemplate(w, rootView, cell_views.InitialCells(server.grid)); err != nil {
		log.Println("render:", err)
		_, _ = w.Write([]byte(err.Error()))
	}
}

func renderTemplate(
	w io.Writer,
	vc fastview.ViewComponent,
	data interface{},
) (err error) {
	t := template.New("index.html")
	var tname string
	if tname, err = vc.Parse(t); err != nil {
		return
	}
	if _, err = t.Parse(`{{ template "` + tname + `" . }}`); err != nil {
		return
	}

	err = t.Execute(w, data)
	return
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Println("encode:", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func (server *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, server.config)
}

// handleSolve solves the posted config, or the server's own when the body is empty.
func (server *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	base := server.config
	if r.ContentLength != 0 {
		posted := reinforcement.DefaultSolverConfig()
		err := json.NewDecoder(r.Body).Decode(posted)
		if err != nil && !errors.Is(err, io.EOF) {
			respondError(w, http.StatusBadRequest, "invalid config: "+err.Error())
			return
		}
		if err == nil {
			base = posted
		}
	}

	config, err := requestConfig(base, r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	grid, err := config.GridConfig()
	if err == nil {
		err = Validate(grid)
	}
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	sol, err := config.Solve(grid, nil)
	if err != nil && !errors.Is(err, reinforcement.ErrPolicyUnstable) {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, NewSolveResponse(config.Algorithm, grid, sol, err))
}
