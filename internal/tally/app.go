// Package tally wires the domain packages into the services the CLI and
// HTTP server consume.
package tally

import (
	"context"
	"errors"

	"github.com/colonyops/tally/internal/core/config"
	"github.com/colonyops/tally/internal/core/eventbus"
	"github.com/colonyops/tally/internal/core/history"
	"github.com/colonyops/tally/internal/core/voice"
	"github.com/colonyops/tally/internal/data/db"
	"github.com/colonyops/tally/internal/data/stores"
	"github.com/colonyops/tally/internal/oracle/gemini"
)

// App is the central entry point for all tally operations.
// Commands and the server consume App instead of cherry-picking raw dependencies.
type App struct {
	Voice     *VoiceService
	Lists     *ListService
	Snapshots *SnapshotLoader
	History   history.Store
	Doctor    *DoctorService

	Config  *config.Config
	DB      *db.DB
	Bus     *eventbus.EventBus
	Metrics *Metrics
}

// NewApp constructs an App from explicit dependencies. client may be nil, in
// which case oracle calls fail with a service error.
func NewApp(cfg *config.Config, database *db.DB, client *gemini.Client, bus *eventbus.EventBus, metrics *Metrics) *App {
	listStore := stores.NewListStore(database)
	todoStore := stores.NewTodoStore(database)
	historyStore := stores.NewHistoryStore(database)

	var (
		oracle    voice.Oracle      = offlineOracle{}
		synth     voice.Synthesizer = offlineOracle{}
		suggester Suggester
	)
	if client != nil {
		oracle, synth, suggester = client, client, client
	}

	snapshots := NewSnapshotLoader(listStore, todoStore)
	executor := NewExecutor(todoStore, NewTodoSynthesizer(synth), bus, metrics, cfg.Synthesis.SampleSize)

	return &App{
		Voice: NewVoiceService(oracle, snapshots, executor, historyStore, bus, metrics, VoiceOptions{
			Limits: cfg.Capture.Limits(),
			Routes: cfg.Routes,
		}),
		Lists:     NewListService(listStore, todoStore, suggester, cfg.Templates, bus),
		Snapshots: snapshots,
		History:   historyStore,
		Doctor:    NewDoctorService(cfg, database),
		Config:    cfg,
		DB:        database,
		Bus:       bus,
		Metrics:   metrics,
	}
}

var errNoOracle = errors.New("no oracle configured (set GEMINI_API_KEY)")

// offlineOracle stands in when no API key is configured.
type offlineOracle struct{}

func (offlineOracle) ResolveIntent(context.Context, voice.IntentRequest) (voice.RawResponse, error) {
	return voice.RawResponse{}, voice.NewError(voice.KindServiceError, errNoOracle)
}

func (offlineOracle) Synthesize(context.Context, voice.SynthesisRequest) ([]voice.SynthesizedTodo, error) {
	return nil, voice.NewError(voice.KindServiceError, errNoOracle)
}
