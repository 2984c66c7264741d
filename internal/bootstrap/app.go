package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strings"
	"sync"

	"github.com/samber/lo"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"go.uber.org/zap"

	"media-scribe/internal/config"
	"media-scribe/internal/controller"
	"media-scribe/internal/diagnostics"
	"media-scribe/internal/domain"
	"media-scribe/internal/jobs"
	"media-scribe/internal/media"
	"media-scribe/internal/transcribe"

	wailsruntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

// StateEventName is the runtime event carrying each new AppState.
const StateEventName = "state:changed"

// mediaDialogFilters restricts the chooser to video and audio files.
func mediaDialogFilters() []wailsruntime.FileFilter {
	byKind := func(kind domain.MediaKind) string {
		exts := lo.Filter(media.Extensions, func(ext string, _ int) bool {
			return domain.KindOf(ext) == kind
		})
		return strings.Join(lo.Map(exts, func(ext string, _ int) string { return "*." + ext }), ";")
	}

	return []wailsruntime.FileFilter{
		{DisplayName: "Audio and video", Pattern: media.DialogPattern()},
		{DisplayName: "Video", Pattern: byKind(domain.MediaKindVideo)},
		{DisplayName: "Audio", Pattern: byKind(domain.MediaKindAudio)},
	}
}

// App wires configuration, the screen controller and Wails runtime callbacks.
type App struct {
	Settings    domain.Settings
	Store       config.Store
	Controller  *controller.Controller
	Diagnostics domain.DiagnosticReport
	assets      fs.FS
	checker     *diagnostics.Checker
	logger      *zap.Logger

	newTranscriber func(domain.Settings) transcribe.Transcriber

	mu         sync.Mutex
	runtimeCtx context.Context
	stop       context.CancelFunc
}

// dialogPicker opens the native file dialog of the running window.
type dialogPicker struct {
	app *App
}

// PickFile shows the media dialog; an empty path means it was dismissed.
func (p dialogPicker) PickFile(context.Context) (string, error) {
	ctx, err := p.app.runtimeContext()
	if err != nil {
		return "", err
	}

	path, err := wailsruntime.OpenFileDialog(ctx, wailsruntime.OpenDialogOptions{
		Title:   "Pick Audio or Video",
		Filters: mediaDialogFilters(),
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(path), nil
}

// New builds the application with persisted settings and startup diagnostics.
func New() (*App, error) {
	return NewWithAssets(nil)
}

// NewWithAssets builds the application and optionally configures embedded frontend assets.
func NewWithAssets(assets fs.FS) (*App, error) {
	env, err := LoadEnvironment()
	if err != nil {
		return nil, err
	}

	checker := diagnostics.NewChecker()
	app := &App{
		Settings:    env.Settings,
		Store:       env.Store,
		Diagnostics: checker.Run(env.Settings),
		assets:      assets,
		checker:     checker,
		logger:      env.Logger,
	}
	app.newTranscriber = func(settings domain.Settings) transcribe.Transcriber {
		return NewTranscriber(settings, app.logger)
	}
	app.Controller = NewController(env.Settings, dialogPicker{app: app}, env.Logger, app.emitState)

	if app.Diagnostics.HasFailures {
		app.logger.Warn("startup diagnostics reported failures", zap.String("engine", app.Diagnostics.Engine))
	}
	return app, nil
}

// Run starts the controller loop and the Wails desktop application.
func (a *App) Run() error {
	loopCtx, stop := context.WithCancel(context.Background())
	a.mu.Lock()
	a.stop = stop
	a.mu.Unlock()
	defer stop()

	go func() {
		if err := a.Controller.Run(loopCtx); err != nil && !errors.Is(err, context.Canceled) {
			a.logger.Error("controller stopped", zap.Error(err))
		}
	}()

	assetOptions := &assetserver.Options{Handler: a.assetHandler()}
	if a.assets != nil {
		assetOptions.Assets = a.assets
	}

	return wails.Run(&options.App{
		Title:       "Media Transcriber",
		Width:       480,
		Height:      860,
		AssetServer: assetOptions,
		OnStartup:   a.Startup,
		OnShutdown:  a.Shutdown,
		Bind:        []interface{}{a},
	})
}

// assetHandler serves media previews and, without embedded assets, the
// frontend directory from disk.
func (a *App) assetHandler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(media.PreviewPrefix, media.PreviewHandler(a.Settings.ScratchDir))
	if a.assets == nil {
		mux.Handle("/", http.FileServer(http.Dir("./frontend")))
	}
	return mux
}

// Startup stores Wails runtime context for dialogs and push events.
func (a *App) Startup(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.runtimeCtx = ctx
}

// Shutdown stops the controller loop.
func (a *App) Shutdown(context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.runtimeCtx = nil
	if a.stop != nil {
		a.stop()
	}
	_ = a.logger.Sync()
}

// GetState returns the current screen state.
func (a *App) GetState() (domain.AppState, error) {
	return a.Controller.State(context.Background())
}

// PickMedia opens the chooser and records the picked file. Cancelled or
// failed picks leave the screen as it was.
func (a *App) PickMedia() (domain.AppState, error) {
	state, err := a.Controller.PickMedia(context.Background())
	if err != nil && !errors.Is(err, controller.ErrStopped) {
		return a.GetState()
	}
	return state, err
}

// SelectFromHistory makes a previously picked file current.
func (a *App) SelectFromHistory(location string) (domain.AppState, error) {
	return a.Controller.SelectFromHistory(context.Background(), location)
}

// StartTranscription transcribes the current selection in the background.
func (a *App) StartTranscription() (domain.AppState, error) {
	return a.Controller.StartTranscription(context.Background())
}

// StateEvents returns all events with sequence greater than sinceSeq.
func (a *App) StateEvents(sinceSeq int64) []jobs.Event {
	return a.Controller.Events().Since(sinceSeq)
}

// GetDiagnostics returns the latest cached diagnostics report.
func (a *App) GetDiagnostics() domain.DiagnosticReport {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Diagnostics
}

// RefreshDiagnostics reloads settings and reruns dependency checks.
func (a *App) RefreshDiagnostics() (domain.DiagnosticReport, error) {
	settings, err := a.loadSettings()
	if err != nil {
		return domain.DiagnosticReport{}, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.Settings = settings
	a.Diagnostics = a.checker.Run(settings)
	return a.Diagnostics, nil
}

// GetSettings loads and returns the latest persisted settings.
func (a *App) GetSettings() (domain.Settings, error) {
	settings, err := a.loadSettings()
	if err != nil {
		return domain.Settings{}, err
	}

	a.mu.Lock()
	a.Settings = settings
	a.mu.Unlock()

	return settings, nil
}

// SaveSettings normalizes and persists settings, switches the engine for
// later transcriptions and refreshes diagnostics. A new scratch directory
// applies from the next launch.
func (a *App) SaveSettings(settings domain.Settings) (domain.Settings, error) {
	normalized := config.Normalize(settings)
	if err := a.Store.Save(normalized); err != nil {
		return domain.Settings{}, fmt.Errorf("save settings: %w", err)
	}

	if err := a.Controller.SetTranscriber(context.Background(), a.newTranscriber(normalized)); err != nil {
		return domain.Settings{}, fmt.Errorf("switch engine: %w", err)
	}

	a.mu.Lock()
	a.Settings = normalized
	if a.checker != nil {
		a.Diagnostics = a.checker.Run(normalized)
	}
	a.mu.Unlock()

	return normalized, nil
}

func (a *App) loadSettings() (domain.Settings, error) {
	settings, err := a.Store.Load()
	if err != nil {
		return domain.Settings{}, fmt.Errorf("load settings: %w", err)
	}
	return config.ApplyEnv(settings), nil
}

// emitState pushes a snapshot to the frontend while the window is up.
func (a *App) emitState(state domain.AppState) {
	a.mu.Lock()
	ctx := a.runtimeCtx
	a.mu.Unlock()
	if ctx != nil {
		wailsruntime.EventsEmit(ctx, StateEventName, state)
	}
}

// runtimeContext returns current Wails runtime context for dialog APIs.
func (a *App) runtimeContext() (context.Context, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.runtimeCtx == nil {
		return nil, fmt.Errorf("runtime context is not initialized")
	}
	return a.runtimeCtx, nil
}
