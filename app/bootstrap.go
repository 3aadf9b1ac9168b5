package app

import (
	"context"
	"database/sql"
	"time"

	"example/chess-history/app/config"
	"example/chess-history/app/logging"
	"example/chess-history/app/models"
	"example/chess-history/auth"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/gin-gonic/gin"
)

// Deps is everything the binaries share.
type Deps struct {
	Config   *config.Config
	Client   *ChessClient
	Pipeline *Pipeline
	DB       *sql.DB
	Store    TableStore
	SQS      *sqs.Client
	Queue    Enqueuer
}

// Bootstrap loads config, initializes logging and opens the optional
// Postgres and SQS connections. Without QUEUE_URL jobs run in-process.
func Bootstrap(ctx context.Context) (*Deps, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	logging.Init(cfg.Logs)
	log := logging.Named("bootstrap")

	d := &Deps{Config: cfg}
	d.Client = NewChessClient(cfg.ChessCom, nil)
	d.Pipeline = NewPipeline(d.Client)

	d.DB, err = OpenDB(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	if d.DB != nil {
		sink := NewPostgresSink(d.DB)
		if err := sink.EnsureSchema(ctx); err != nil {
			return nil, err
		}
		d.Store = sink
	} else {
		log.Warn().Msg("POSTGRES_URL not set; ingested tables will not be persisted")
	}

	if cfg.QueueURL != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, err
		}
		d.SQS = sqs.NewFromConfig(awsCfg)
		d.Queue = NewSQSQueue(d.SQS, cfg.QueueURL)
	} else {
		log.Info().Msg("QUEUE_URL not set; ingest jobs run in-process")
		d.Queue = RunnerQueue{Run: d.RunJob}
	}
	return d, nil
}

// RunJob ingests and persists one job in-process.
func (d *Deps) RunJob(ctx context.Context, job models.IngestJob) error {
	return ProcessJob(ctx, d.Pipeline, d.Store, job)
}

// Router builds the HTTP surface. No verifier is built when auth is disabled.
func (d *Deps) Router() (*gin.Engine, error) {
	var verifier *auth.Verifier
	if !d.Config.Auth.Disabled {
		v, err := auth.NewVerifier(d.Config.Auth)
		if err != nil {
			return nil, err
		}
		verifier = v
	}
	s := &Server{
		Client:   d.Client,
		Pipeline: d.Pipeline,
		Store:    d.Store,
		Queue:    d.Queue,
		Now:      time.Now,
	}
	guard := auth.Middleware(verifier, auth.MiddlewareConfig{Disabled: d.Config.Auth.Disabled})
	return NewRouter(s, guard), nil
}

func (d *Deps) Close() {
	if d.DB != nil {
		d.DB.Close()
	}
}
