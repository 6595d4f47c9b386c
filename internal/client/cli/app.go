package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/term"

	"github.com/dmitrijs2005/dediary/internal/client/cidcache"
	"github.com/dmitrijs2005/dediary/internal/client/classifier"
	"github.com/dmitrijs2005/dediary/internal/client/client"
	"github.com/dmitrijs2005/dediary/internal/client/config"
	"github.com/dmitrijs2005/dediary/internal/client/gateway"
	"github.com/dmitrijs2005/dediary/internal/client/minting"
	"github.com/dmitrijs2005/dediary/internal/client/pinning"
	"github.com/dmitrijs2005/dediary/internal/client/reconcile"
	"github.com/dmitrijs2005/dediary/internal/client/services"
	"github.com/dmitrijs2005/dediary/internal/client/wallet"
	"github.com/dmitrijs2005/dediary/internal/common"
	"github.com/dmitrijs2005/dediary/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type App struct {
	config       *config.Config
	authService  services.AuthService
	entryService services.EntryService
	session      services.Session
	logger       logging.Logger
	reader       *bufio.Reader
	out          io.Writer
	db           *sql.DB

	mu   sync.RWMutex
	mode Mode
}

// isTerminal is a test seam for term.IsTerminal.
var isTerminal = term.IsTerminal

// NewApp opens the local database and wires the pinning provider, gateways,
// reconciliation engine and services described by c.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	a := &App{
		config: c,
		logger: logger.With("module", "cli"),
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}

	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("initialize database: %w", err)
	}
	a.db = db
	repos := client.NewRepositories(db)

	provider, err := a.newPinningService(ctx)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	cache := cidcache.New(repos.Metadata, logger)
	local := gateway.NewLocalGateway(repos.Documents)
	gateways := []gateway.Gateway{local}
	for _, base := range c.Gateways {
		gateways = append(gateways, gateway.NewHTTPGateway(base, c.RequestTimeout, c.MaxDocumentBytes))
	}
	fetcher := gateway.NewFetcher(gateways, local, c.FetchConcurrency, logger)
	if c.PreferredGateway != "" {
		fetcher = fetcher.Prefer(c.PreferredGateway)
	}

	engine := reconcile.New(provider, cache, fetcher,
		reconcile.Options{FallbackOnEmpty: c.FallbackOnEmptyRemote}, logger)

	bridge := &wallet.StaticBridge{Network: c.NetworkID, Used: c.WalletAddresses}
	a.authService = services.NewAuthService(bridge, provider, c.DisplayName)

	a.session, err = a.authService.Connect(ctx)
	if err != nil {
		if !errors.Is(err, common.ErrNoAddress) {
			_ = db.Close()
			return nil, err
		}
		a.logger.Warn(ctx, "no wallet address configured, publishing is disabled")
		a.session = services.Session{DisplayName: c.DisplayName}
	}

	deps := services.EntryDeps{
		Session:         a.session,
		Uploader:        provider,
		Unpinner:        provider,
		Reconciler:      engine,
		Fetcher:         fetcher,
		Cache:           cache,
		Documents:       local,
		Logger:          logger,
		UnpinSuperseded: c.UnpinSuperseded,
	}
	if c.ClassifierURL != "" {
		deps.Classifier = classifier.New(c.ClassifierURL, c.ClassifierToken, c.RequestTimeout)
	}
	if c.MintURL != "" {
		deps.Minter = minting.New(c.MintURL, c.MintToken, c.RequestTimeout)
	}
	a.entryService = services.NewEntryService(deps)

	return a, nil
}

func (a *App) newPinningService(ctx context.Context) (pinning.Service, error) {
	c := a.config
	switch c.PinningProvider {
	case config.ProviderS3:
		return pinning.NewS3ClientFromOptions(ctx, pinning.S3Options{
			Endpoint:  c.S3Endpoint,
			Region:    c.S3Region,
			Bucket:    c.S3Bucket,
			AccessKey: c.S3AccessKey,
			SecretKey: c.S3SecretKey,
			Timeout:   c.RequestTimeout,
		}, a.logger)
	default:
		jwt := c.PinataJWT
		if jwt == "" && isTerminal(int(os.Stdin.Fd())) {
			s, err := GetSecret("Pinata JWT (input hidden, empty for read-only)", a.out)
			if err != nil {
				return nil, fmt.Errorf("read pinata jwt: %w", err)
			}
			jwt = s
		}
		return pinning.NewPinataClient(c.PinataAPIURL, jwt, c.RequestTimeout, a.logger), nil
	}
}

func (a *App) Mode() Mode {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.mode
}

func (a *App) setMode(ctx context.Context, mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.logger.Info(ctx, "switched mode", "mode", mode)
	}
}

// getStatus renders the prompt status, e.g. "(addr1q… online)".
func (a *App) getStatus() string {
	s := ""
	if a.session.Address != "" {
		s = shortAddress(a.session.Address) + " "
	}
	if m := a.Mode(); m != "" {
		s += string(m)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// Run starts the online status watcher and the REPL. It blocks until the
// user exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	fmt.Fprintln(a.out, "Welcome to DeDiary (type 'help' for commands)")
	go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)

	runREPL(ctx, a, a.getStatus, a.reader)
}

// Close releases the local database.
func (a *App) Close() {
	if a.db != nil {
		_ = a.db.Close()
	}
}

// StartOnlineStatusWatcher probes the pinning service immediately and then
// every interval until ctx is done, switching between online and offline.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		a.checkOnline(ctx)

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) checkOnline(ctx context.Context) {
	pingCtx, cancel := context.WithTimeout(ctx, a.config.RequestTimeout)
	err := a.authService.Ping(pingCtx)
	cancel()

	if ctx.Err() != nil {
		return
	}
	if err != nil {
		if errors.Is(err, common.ErrAuthFailure) && a.Mode() != ModeOffline {
			a.logger.Warn(ctx, "pinning service rejected credentials", "error", err)
		}
		a.setMode(ctx, ModeOffline)
		return
	}
	a.setMode(ctx, ModeOnline)
}
