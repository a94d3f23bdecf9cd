package cmd

import (
	"fmt"

	"github.com/matthieukhl/orderdesk/internal/app"
	"github.com/matthieukhl/orderdesk/internal/config"
	"github.com/matthieukhl/orderdesk/internal/database"
	"github.com/matthieukhl/orderdesk/internal/events"
	"github.com/matthieukhl/orderdesk/internal/logging"
	"github.com/matthieukhl/orderdesk/internal/store"
	"github.com/sirupsen/logrus"
)

// session holds everything a command needs. Commands that only inspect the
// database stop after connect; the rest call start to get an App.
type session struct {
	cfg       *config.Config
	logger    *logrus.Logger
	db        *database.DB
	publisher events.Publisher
	app       *app.App
}

func connect() (*session, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}

	db, err := database.NewConnection(&cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &session{cfg: cfg, logger: logger, db: db}, nil
}

// start wires the store, the event publisher and the App on top of an open
// connection.
func (s *session) start() error {
	publisher, err := events.NewPublisher(&s.cfg.Events, s.logger)
	if err != nil {
		return fmt.Errorf("failed to set up events: %w", err)
	}
	s.publisher = publisher
	s.app = app.New(store.New(s.db, s.logger), publisher, s.logger, app.Options{
		TopN: s.cfg.Analysis.TopN,
	})
	return nil
}

// openApp connects, brings the schema up to date and starts the App.
func openApp() (*session, error) {
	s, err := connect()
	if err != nil {
		return nil, err
	}
	if err := s.db.Migrate(); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	if err := s.start(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *session) Close() {
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			s.logger.WithError(err).Warn("failed to close event publisher")
		}
	}
	if err := s.db.Close(); err != nil {
		s.logger.WithError(err).Warn("failed to close database")
	}
}
