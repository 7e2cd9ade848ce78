package main

import (
	"log/slog"
	"net/http"

	"qanda-service/internal/auth"
	"qanda-service/internal/config"
	"qanda-service/internal/http-server/handlers/auth/login"
	"qanda-service/internal/http-server/handlers/auth/logout"
	"qanda-service/internal/http-server/handlers/auth/me"
	"qanda-service/internal/http-server/handlers/auth/register"
	availCreate "qanda-service/internal/http-server/handlers/availability/create"
	availDelete "qanda-service/internal/http-server/handlers/availability/delete"
	availMine "qanda-service/internal/http-server/handlers/availability/mine"
	availTutor "qanda-service/internal/http-server/handlers/availability/tutor"
	"qanda-service/internal/http-server/handlers/health"
	meetingCancel "qanda-service/internal/http-server/handlers/meetings/cancel"
	meetingComplete "qanda-service/internal/http-server/handlers/meetings/complete"
	meetingCreate "qanda-service/internal/http-server/handlers/meetings/create"
	meetingMine "qanda-service/internal/http-server/handlers/meetings/mine"
	meetingSlots "qanda-service/internal/http-server/handlers/meetings/slots"
	questionAnswer "qanda-service/internal/http-server/handlers/questions/answer"
	questionAnswered "qanda-service/internal/http-server/handlers/questions/answered"
	questionAvailable "qanda-service/internal/http-server/handlers/questions/available"
	questionClaim "qanda-service/internal/http-server/handlers/questions/claim"
	questionCreate "qanda-service/internal/http-server/handlers/questions/create"
	questionGet "qanda-service/internal/http-server/handlers/questions/get"
	questionMine "qanda-service/internal/http-server/handlers/questions/mine"
	"qanda-service/internal/models"
	"qanda-service/internal/notify"
	"qanda-service/pkg/middleware/mwLogger"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
)

// Service is everything the HTTP layer calls.
type Service interface {
	register.Registrar
	login.Authenticator
	me.Profiler

	availCreate.SlotCreator
	availMine.SlotLister
	availTutor.FreeSlotLister
	availDelete.SlotDeleter

	meetingSlots.AvailableSlotLister
	meetingCreate.MeetingScheduler
	meetingMine.MeetingLister
	meetingCancel.MeetingCanceller
	meetingComplete.MeetingCompleter

	questionCreate.QuestionPoster
	questionMine.QuestionLister
	questionAvailable.OpenQuestionLister
	questionAnswered.AnsweredLister
	questionGet.QuestionGetter
	questionClaim.QuestionClaimer
	questionAnswer.QuestionAnswerer
}

func newRouter(log *slog.Logger, cfg *config.Config, service Service, tokens *auth.Manager, registry *notify.Registry) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(mwLogger.New(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)
	router.Use(CORS(cfg.CORSOrigin))
	router.Use(auth.Middleware(tokens))

	student := auth.Require(log, models.RoleStudent)
	tutor := auth.Require(log, models.RoleTutor)
	anyone := auth.Require(log)

	router.Get("/", health.New(registry))
	router.Get("/ws", notify.NewHandler(log, registry, tokens, checkOrigin(cfg.CORSOrigin)))

	// Auth
	router.Post("/auth/{role}/register", register.New(log, service, cfg.Auth.TokenTTL, cfg.Auth.CookieSecure))
	router.Post("/auth/{role}/login", login.New(log, service, cfg.Auth.TokenTTL, cfg.Auth.CookieSecure))
	router.Post("/auth/logout", logout.New(cfg.Auth.CookieSecure))
	router.With(anyone).Get("/auth/me", me.New(log, service))

	// Availability
	router.With(tutor).Post("/availability", availCreate.New(log, service))
	router.With(tutor).Get("/availability/mine", availMine.New(log, service))
	router.Get("/availability/tutor/{tutorId}", availTutor.New(log, service))
	router.With(tutor).Delete("/availability/{id}", availDelete.New(log, service))

	// Meetings
	router.Get("/meetings/available-slots/{subject}", meetingSlots.New(log, service))
	router.With(student).Post("/meetings", meetingCreate.New(log, service))
	router.With(anyone).Get("/meetings/mine", meetingMine.New(log, service))
	router.With(anyone).Put("/meetings/{id}/cancel", meetingCancel.New(log, service))
	router.With(tutor).Put("/meetings/{id}/complete", meetingComplete.New(log, service))

	// Questions
	router.With(student).Post("/questions", questionCreate.New(log, service))
	router.With(student).Get("/questions/mine", questionMine.New(log, service))
	router.With(tutor).Get("/questions/available", questionAvailable.New(log, service))
	router.With(tutor).Get("/questions/answered", questionAnswered.New(log, service))
	router.With(anyone).Get("/questions/{id}", questionGet.New(log, service))
	router.With(tutor).Patch("/questions/{id}/claim", questionClaim.New(log, service))
	router.With(tutor).Post("/questions/{id}/answer", questionAnswer.New(log, service))

	return router
}

func CORS(origin string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Idempotency-Key")
			w.Header().Add("Vary", "Origin")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// checkOrigin admits the configured frontend and non-browser clients.
func checkOrigin(allowed string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || allowed == "*" || origin == allowed || origin == "http://"+r.Host
	}
}
