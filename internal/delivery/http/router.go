package http

import (
	"net/http"

	"eventsapi/internal/delivery/http/controllers"

	httpSwagger "github.com/swaggo/http-swagger"
)

// APIPrefix is the path prefix for every event route.
const APIPrefix = "/api/v3/app"

// NewRouter initializes the HTTP router with all application routes
func NewRouter(eventController *controllers.EventController) *http.ServeMux {
	mux := http.NewServeMux()

	// Events
	mux.HandleFunc("GET "+APIPrefix+"/events", eventController.GetEvents)
	mux.HandleFunc("GET "+APIPrefix+"/events/{id}", eventController.GetEventByID)
	mux.HandleFunc("POST "+APIPrefix+"/events", eventController.CreateEvent)
	mux.HandleFunc("PUT "+APIPrefix+"/events/{id}", eventController.UpdateEvent)
	mux.HandleFunc("DELETE "+APIPrefix+"/events/{id}", eventController.DeleteEvent)

	mux.HandleFunc("GET /health", eventController.Health)

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
