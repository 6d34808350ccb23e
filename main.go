// Command game2048 starts the 2048 game server.
//
// Commands:
//  1. "server" (default) runs the HTTP server exposing the REST API, WebSocket
//     updates and an /mcp HTTP endpoint
//  2. "stdio-mcp" runs an MCP stdio server and spins up an internal HTTP API if
//     none is available
//  3. "validate" checks every board configuration file
//  4. "env" lists the environment variables the server reads
//
// Settings come from game2048.yml (optional), the environment and .env, and
// finally from command line flags.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/game2048/api"
	"github.com/wricardo/game2048/game/config"
	"github.com/wricardo/game2048/game/highscore"
	"github.com/wricardo/game2048/game/service"
	"github.com/wricardo/game2048/game/session"
	"github.com/wricardo/game2048/settings"
	"github.com/wricardo/game2048/transport/mcp"
	"github.com/wricardo/game2048/transport/websocket"
	"github.com/wricardo/game2048/validate"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "2048 Game Server"
)

// filesystemSyncInterval is how often in-memory sessions are checked against
// the sessions directory
const filesystemSyncInterval = 5 * time.Second

func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: Error loading .env file: %v\n", err)
	}

	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newCommand builds the command tree. Flags are declared on the root and are
// visible to every subcommand.
func newCommand() *cli.Command {
	return &cli.Command{
		Name:    "game2048",
		Usage:   AppName,
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "settings", Aliases: []string{"c"}, Usage: "settings YAML file (default " + settings.DefaultFile + " when present)", Sources: cli.EnvVars("GAME2048_SETTINGS")},
			&cli.StringFlag{Name: "host", Usage: "HTTP server host"},
			&cli.IntFlag{Name: "port", Usage: "HTTP server port"},
			&cli.StringFlag{Name: "config-dir", Usage: "directory containing board configurations"},
			&cli.StringFlag{Name: "sessions-dir", Usage: "directory for persisted sessions"},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error"},
			&cli.StringFlag{Name: "log-format", Usage: "text or json"},
			&cli.BoolFlag{Name: "debug", Usage: "shortcut for --log-level debug"},
			&cli.StringFlag{Name: "highscore-backend", Usage: "file, badger, redis or memory"},
			&cli.StringFlag{Name: "highscore-path", Usage: "properties file (file) or database directory (badger)"},
			&cli.StringFlag{Name: "redis-addr", Usage: "Redis address for the redis backend"},
			&cli.BoolFlag{Name: "ngrok", Usage: "enable ngrok tunnel"},
			&cli.StringFlag{Name: "ngrok-auth", Usage: "ngrok auth token (or NGROK_AUTHTOKEN)"},
			&cli.StringFlag{Name: "ngrok-domain", Usage: "custom ngrok domain (optional)"},
		},
		Action: runServerCommand,
		Commands: []*cli.Command{
			{
				Name:    "server",
				Aliases: []string{"http"},
				Usage:   "run the HTTP server with API, WebSocket and MCP endpoint",
				Action:  runServerCommand,
			},
			{
				Name:    "stdio-mcp",
				Aliases: []string{"mcp-stdio", "mcp"},
				Usage:   "run an MCP stdio server backed by the HTTP API",
				Action:  runStdioMCPCommand,
			},
			{
				Name:   "validate",
				Usage:  "validate every board configuration in the config directory",
				Action: runValidateCommand,
			},
			{
				Name:   "env",
				Usage:  "list the environment variables read by the server",
				Action: runEnvCommand,
			},
		},
	}
}

// loadSettings reads the settings file and environment, then applies the
// flags that were set explicitly
func loadSettings(cmd *cli.Command) (*settings.Settings, error) {
	s, err := settings.Load(cmd.String("settings"))
	if err != nil {
		return nil, err
	}

	if cmd.IsSet("host") {
		s.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		s.Port = cmd.Int("port")
	}
	if cmd.IsSet("config-dir") {
		s.ConfigDir = cmd.String("config-dir")
	}
	if cmd.IsSet("sessions-dir") {
		s.SessionsDir = cmd.String("sessions-dir")
	}
	if cmd.IsSet("log-level") {
		s.LogLevel = cmd.String("log-level")
	}
	if cmd.Bool("debug") {
		s.LogLevel = "debug"
	}
	if cmd.IsSet("log-format") {
		s.LogFormat = cmd.String("log-format")
	}
	if cmd.IsSet("highscore-backend") {
		s.HighScore.Backend = cmd.String("highscore-backend")
	}
	if cmd.IsSet("highscore-path") {
		s.HighScore.Path = cmd.String("highscore-path")
	}
	if cmd.IsSet("redis-addr") {
		s.HighScore.RedisAddr = cmd.String("redis-addr")
	}
	if cmd.Bool("ngrok") {
		s.Ngrok.Enabled = true
	}
	if cmd.IsSet("ngrok-auth") {
		s.Ngrok.AuthToken = cmd.String("ngrok-auth")
	}
	if cmd.IsSet("ngrok-domain") {
		s.Ngrok.Domain = cmd.String("ngrok-domain")
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// services holds everything the transports need plus what must be closed on exit
type services struct {
	logger      *slog.Logger
	game        service.GameService
	sessions    *session.Manager
	persistence *session.FilePersistence
	tracker     *highscore.Tracker
}

// initializeServices wires config/session managers, the high score store and
// the game service
func initializeServices(ctx context.Context, s *settings.Settings, logger *slog.Logger) (*services, error) {
	// Create config manager first (needed for persistence)
	configManager, err := config.NewManager(s.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	persistence, err := session.NewFilePersistence(s.SessionsDir, configManager)
	if err != nil {
		return nil, fmt.Errorf("failed to create session persistence: %w", err)
	}

	sessionManager := session.NewManagerWithPersistence(persistence, session.WithLogger(logger.With("component", "sessions")))

	// Load persisted sessions on startup
	if err := sessionManager.LoadPersistedSessions(); err != nil {
		logger.Warn("failed to load persisted sessions", "error", err)
	}

	store, err := highscore.Open(ctx, highscore.Options{
		Backend:     s.HighScore.Backend,
		Path:        s.HighScore.Path,
		RedisAddr:   s.HighScore.RedisAddr,
		RedisPrefix: s.HighScore.RedisPrefix,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open high score store: %w", err)
	}
	tracker := highscore.NewTracker(store, logger.With("component", "highscore"))

	gameService := service.NewGameService(sessionManager, configManager,
		service.WithLogger(logger.With("component", "service")),
		service.WithHighScores(tracker),
	)

	return &services{
		logger:      logger,
		game:        gameService,
		sessions:    sessionManager,
		persistence: persistence,
		tracker:     tracker,
	}, nil
}

// startBackground launches the session cleanup and filesystem sync routines.
// Both stop when ctx is done.
func (svc *services) startBackground(ctx context.Context, s *settings.Settings) {
	if s.CleanupInterval > 0 && s.SessionTTL > 0 {
		go sessionCleanupRoutine(ctx, svc.sessions, s.CleanupInterval, s.SessionTTL, svc.logger)
	}
	go filesystemSyncRoutine(ctx, svc.sessions, svc.persistence, filesystemSyncInterval, svc.logger)
}

// Close flushes sessions and closes the high score store
func (svc *services) Close() {
	if err := svc.sessions.SaveAllSessions(); err != nil {
		svc.logger.Warn("failed to save sessions", "error", err)
	}
	if err := svc.tracker.Close(); err != nil {
		svc.logger.Warn("failed to close high score store", "error", err)
	}
}

// setup loads settings, builds the logger and the services
func setup(ctx context.Context, cmd *cli.Command) (*settings.Settings, *services, error) {
	s, err := loadSettings(cmd)
	if err != nil {
		return nil, nil, err
	}

	// stdout belongs to the MCP protocol in stdio mode, so logs go to stderr
	logger := s.NewLogger(os.Stderr)
	slog.SetDefault(logger)

	svc, err := initializeServices(ctx, s, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize services: %w", err)
	}
	return s, svc, nil
}

func runServerCommand(ctx context.Context, cmd *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, svc, err := setup(ctx, cmd)
	if err != nil {
		return err
	}
	defer svc.Close()

	svc.logger.Info("starting", "app", AppName, "version", Version, "mode", "server")
	svc.startBackground(ctx, s)
	return runHTTPServer(ctx, s, svc)
}

func runStdioMCPCommand(ctx context.Context, cmd *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, svc, err := setup(ctx, cmd)
	if err != nil {
		return err
	}
	defer svc.Close()

	svc.logger.Info("starting", "app", AppName, "version", Version, "mode", "stdio-mcp")
	svc.startBackground(ctx, s)
	return runStdioMCPWithInternalServer(ctx, s, svc)
}

func runValidateCommand(ctx context.Context, cmd *cli.Command) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	results, err := validate.Dir(s.ConfigDir)
	if err != nil {
		return err
	}
	if !validate.Report(writerOf(cmd), results) {
		return errors.New("some configurations are invalid")
	}
	return nil
}

func runEnvCommand(ctx context.Context, cmd *cli.Command) error {
	text, err := settings.Description()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(writerOf(cmd), text)
	return err
}

func writerOf(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

// newMCPHandler serves MCP JSON-RPC messages posted to /mcp
func newMCPHandler(mcpClient *mcp.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	}
}

// newRouter mounts the API at the root and the MCP endpoint at /mcp
func newRouter(apiServer http.Handler, mcpClient *mcp.Client) *http.ServeMux {
	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.HandleFunc("/mcp", newMCPHandler(mcpClient))
	return mainRouter
}

// runHTTPServer starts the HTTP server with REST API, WebSocket hub, and an /mcp proxy endpoint.
// If ngrok is enabled it also provisions a public tunnel. It returns when ctx is done.
func runHTTPServer(ctx context.Context, s *settings.Settings, svc *services) error {
	logger := svc.logger

	hub := websocket.NewHub(websocket.WithLogger(logger.With("component", "websocket")))
	go hub.Run(ctx)

	apiServer := api.NewServer(svc.game, hub, api.WithLogger(logger.With("component", "api")))

	addr := s.Addr()
	mcpClient := mcp.NewClient(fmt.Sprintf("http://%s", addr))
	mainRouter := newRouter(apiServer, mcpClient)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup
	serveErr := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		logger.Info("HTTP server listening",
			"addr", addr,
			"api", fmt.Sprintf("http://%s/api", addr),
			"websocket", fmt.Sprintf("ws://%s/ws?session=<session_id>", addr),
			"mcp", fmt.Sprintf("http://%s/mcp", addr),
		)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	if s.Ngrok.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrokTunnel(ctx, s.Ngrok, mainRouter, logger)
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case runErr = <-serveErr:
	}

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP server shutdown error", "error", err)
	}

	wg.Wait()
	logger.Info("server stopped")
	return runErr
}

// runNgrokTunnel serves handler through an ngrok tunnel until ctx is done
func runNgrokTunnel(ctx context.Context, cfg settings.Ngrok, handler http.Handler, logger *slog.Logger) {
	if cfg.AuthToken == "" {
		logger.Warn("ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN or NGROK_AUTH_TOKEN)")
		return
	}

	logger.Info("starting ngrok tunnel")

	var tunnel ngrokConfig.Tunnel
	if cfg.Domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(cfg.Domain))
		logger.Info("using custom ngrok domain", "domain", cfg.Domain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(cfg.AuthToken))
	if err != nil {
		logger.Error("failed to start ngrok tunnel", "error", err)
		return
	}

	ngrokServer := &http.Server{Handler: handler}
	go func() {
		<-ctx.Done()
		ngrokServer.Close()
	}()

	ngrokURL := tun.URL()
	logger.Info("ngrok tunnel established",
		"url", ngrokURL,
		"api", ngrokURL+"/api",
		"websocket", ngrokURL+"/ws?session=<session_id>",
		"mcp", ngrokURL+"/mcp",
	)

	if err := ngrokServer.Serve(tun); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Warn("ngrok server error", "error", err)
	}
	logger.Info("ngrok tunnel closed")
}

// sessionCleanupRoutine periodically removes sessions that have not been
// accessed within ttl
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, interval, ttl time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpiredSessions(ttl); removed > 0 {
				logger.Info("cleaned up expired sessions", "removed", removed)
			}
		}
	}
}

// filesystemSyncRoutine periodically syncs in-memory sessions with filesystem state
func filesystemSyncRoutine(ctx context.Context, manager *session.Manager, persistence session.SessionPersistence, interval time.Duration, logger *slog.Logger) {
	if persistence == nil {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if pruned := syncSessionsWithFilesystem(manager, persistence, logger); pruned > 0 {
				logger.Info("filesystem sync pruned orphaned sessions", "pruned", pruned)
			}
		}
	}
}

// syncSessionsWithFilesystem removes sessions from memory whose files were
// deleted and returns how many were pruned
func syncSessionsWithFilesystem(manager *session.Manager, persistence session.SessionPersistence, logger *slog.Logger) int {
	pruned := 0
	for _, sess := range manager.List() {
		if persistence.Exists(sess.ID) {
			continue
		}
		if err := manager.DeleteFromMemory(sess.ID); err == nil {
			pruned++
			logger.Debug("pruned session from memory (file deleted)", "session", sess.ID)
		}
	}
	return pruned
}

// runStdioMCPWithInternalServer runs an MCP stdio server.
// It reuses an API already listening on the configured address; if there is
// none, it starts an internal HTTP API on a random loopback port.
func runStdioMCPWithInternalServer(ctx context.Context, s *settings.Settings, svc *services) error {
	logger := svc.logger

	externalURL := fmt.Sprintf("http://%s", s.Addr())
	logger.Info("checking for external API server", "url", externalURL)

	baseURL := externalURL
	if !apiAvailable(ctx, externalURL) {
		logger.Info("no external API server found, starting internal HTTP server")

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}

		hub := websocket.NewHub(websocket.WithLogger(logger.With("component", "websocket")))
		go hub.Run(ctx)

		apiServer := api.NewServer(svc.game, hub, api.WithLogger(logger.With("component", "api")))
		httpServer := &http.Server{Handler: apiServer}

		go func() {
			if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("internal HTTP server error", "error", err)
			}
		}()
		defer httpServer.Close()

		baseURL = fmt.Sprintf("http://%s", listener.Addr().String())
		logger.Info("internal HTTP server started", "url", baseURL)
	} else {
		logger.Info("external API server found, using it for MCP", "url", externalURL)
	}

	mcpClient := mcp.NewClient(baseURL)
	logger.Info("MCP stdio server ready", "api", baseURL)

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}

// apiAvailable reports whether a game API answers at baseURL
func apiAvailable(ctx context.Context, baseURL string) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api/health", nil)
	if err != nil {
		return false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
