// Package container provides dependency injection for all singleton services
package container

import (
	"github.com/formweave/formweave-go/internal/application/services"
	"github.com/formweave/formweave-go/internal/infrastructure/caching"
	"github.com/formweave/formweave-go/internal/infrastructure/messaging"
	"github.com/formweave/formweave-go/internal/infrastructure/observability/logging"
	"github.com/formweave/formweave-go/internal/infrastructure/observability/performance"
	"github.com/formweave/formweave-go/internal/infrastructure/persistence/database"
	formstore "github.com/formweave/formweave-go/internal/infrastructure/persistence/forms"
	"github.com/formweave/formweave-go/pkg/config"
)

// Container holds all singleton services and infrastructure dependencies
type Container struct {
	// Engine Services
	FormService       *services.FormService
	EvaluationService *services.EvaluationService
	SessionService    *services.SessionService
	StateService      *services.StateService
	RepetitionService *services.RepetitionService
	SubmissionService *services.SubmissionService
	AuthService       *services.AuthService

	// Infrastructure Dependencies
	DB             *database.DB
	SessionStore   *caching.SessionStore
	StateRepo      *formstore.StateRepository
	SubmissionRepo *formstore.SubmissionRepository
	Broadcaster    *messaging.Broadcaster
	Logger         *logging.ChanneledLogger
	PerfTracker    *performance.Tracker
}

// NewContainer creates and wires all singleton services
func NewContainer(db *database.DB, logger *logging.ChanneledLogger) *Container {
	perfTracker := performance.NewTracker(performance.DefaultTrackerConfig())

	sessionStore := caching.NewSessionStore(config.MaxSessions, config.SessionTTL, logger)
	stateRepo := formstore.NewStateRepository(db, logger)
	submissionRepo := formstore.NewSubmissionRepository(db, logger)
	broadcaster := messaging.NewBroadcaster(config.WSSendBufferSize, logger)

	formService := services.NewFormService(config.FormsDir, logger)
	evaluationService := services.NewEvaluationService(logger)
	sessionService := services.NewSessionService(sessionStore, stateRepo, formService, evaluationService, logger)
	stateService := services.NewStateService(sessionService, evaluationService, stateRepo, broadcaster, logger)
	repetitionService := services.NewRepetitionService(sessionService, logger)
	submissionService := services.NewSubmissionService(formService, sessionService, submissionRepo, logger)
	authService := services.NewAuthService(config.JWTSecret, config.EditorPassword, config.TokenLifetime, logger)

	return &Container{
		FormService:       formService,
		EvaluationService: evaluationService,
		SessionService:    sessionService,
		StateService:      stateService,
		RepetitionService: repetitionService,
		SubmissionService: submissionService,
		AuthService:       authService,

		DB:             db,
		SessionStore:   sessionStore,
		StateRepo:      stateRepo,
		SubmissionRepo: submissionRepo,
		Broadcaster:    broadcaster,
		Logger:         logger,
		PerfTracker:    perfTracker,
	}
}
