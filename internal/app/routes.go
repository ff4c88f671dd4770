package app

import (
	"net/http"

	"github.com/cradoe/verime/internal/handler"
	"github.com/cradoe/verime/internal/middleware"
)

func (app *Application) routes() http.Handler {
	mux := http.NewServeMux()

	middlewareRepo := middleware.New(app.errorHandler, app.Logger, app.DB.User(), &app.Config)

	healthHandler := handler.NewHealthCheckHandler(app.errorHandler)

	authHandler := handler.NewAuthHandler(&handler.AuthHandler{
		UserRepo:      app.DB.User(),
		ActivityRepo:  app.DB.Activity(),
		Authenticator: app.Authenticator,
		Helper:        app.helper,
		Mailer:        app.Mailer,
		Config:        &app.Config,
		ErrHandler:    app.errorHandler,
	})

	verificationHandler := handler.NewVerificationHandler(&handler.VerificationHandler{
		Lifecycle:  app.Lifecycle,
		ErrHandler: app.errorHandler,
	})

	screeningHandler := handler.NewScreeningHandler(&handler.ScreeningHandler{
		Assessor:   app.Assessor,
		ErrHandler: app.errorHandler,
	})

	mux.HandleFunc("GET /status", healthHandler.HandleHealthCheck)

	mux.HandleFunc("POST /auth/register", authHandler.HandleAuthRegister)
	mux.HandleFunc("POST /auth/login", authHandler.HandleAuthLogin)
	mux.HandleFunc("POST /auth/otp/request", authHandler.HandleOtpRequest)
	mux.HandleFunc("POST /auth/otp/verify", authHandler.HandleOtpVerify)

	requireAuth := middlewareRepo.RequireAuthenticatedUser

	mux.Handle("POST /verifications", requireAuth(http.HandlerFunc(verificationHandler.HandleSubmitVerification)))
	mux.Handle("GET /verifications/{id}", requireAuth(http.HandlerFunc(verificationHandler.HandleSingleVerification)))
	mux.Handle("POST /verifications/{id}/review", requireAuth(http.HandlerFunc(verificationHandler.HandleReviewVerification)))
	mux.Handle("GET /users/me/verifications", requireAuth(http.HandlerFunc(verificationHandler.HandleMyVerifications)))
	mux.Handle("GET /users/me/approval", requireAuth(http.HandlerFunc(verificationHandler.HandleApprovalStatus)))

	mux.Handle("POST /verifications/{id}/screenings", requireAuth(http.HandlerFunc(screeningHandler.HandleRecordScreening)))
	mux.Handle("GET /verifications/{id}/risk", requireAuth(http.HandlerFunc(screeningHandler.HandleVerificationRisk)))
	mux.Handle("PATCH /screenings/{id}", requireAuth(http.HandlerFunc(screeningHandler.HandleCorrectScreening)))

	return middlewareRepo.LogAccess(middlewareRepo.RecoverPanic(middlewareRepo.Authenticate(mux)))
}
