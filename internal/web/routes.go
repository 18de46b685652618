package web

import (
	"github.com/go-chi/chi/v5"

	"github.com/kozaktomas/smart-attendance/internal/web/handlers"
)

func (s *Server) setupRoutes() {
	// Create handlers
	attendanceHandler := handlers.NewAttendanceHandler(s.config, s.ledger, s.store, s.matcher, s.provider)
	studentsHandler := handlers.NewStudentsHandler(s.roster, s.store, s.provider)
	recordsHandler := handlers.NewRecordsHandler(s.ledger)
	statsHandler := handlers.NewStatsHandler(s.ledger)

	// Health check
	s.router.Get("/api/v1/health", handlers.HealthCheck)

	// API routes
	s.router.Route("/api/v1", func(r chi.Router) {
		// Attendance capture
		r.Post("/attendance/recognize", attendanceHandler.Recognize)
		r.Post("/attendance/annotate", attendanceHandler.Annotate)
		r.Post("/attendance/mark", attendanceHandler.Mark)
		r.Get("/attendance/today", attendanceHandler.Today)

		// Reference photos and encodings
		r.Get("/students", studentsHandler.List)
		r.Post("/students", studentsHandler.Upload)
		r.Delete("/students/{filename}", studentsHandler.Delete)
		r.Post("/students/encode", studentsHandler.Encode)
		r.Get("/students/encodings", studentsHandler.Status)

		// Attendance history
		r.Get("/records", recordsHandler.List)
		r.Get("/records/export", recordsHandler.Export)
		r.Delete("/records/{date}", recordsHandler.Clear)

		// Stats
		r.Get("/stats", statsHandler.Get)
	})
}
