// Package middleware provides the HTTP middleware used by the nodelyzer API.
//
// Every middleware has the shape func(http.Handler) http.Handler so they
// chain by nesting:
//
//	handler := middleware.PanicRecovery(logger)(mux)
//	handler = middleware.RequestID()(handler)
//	handler = middleware.Logging(logger)(handler)
//	handler = middleware.CORS(middleware.DefaultCORSConfig())(handler)
package middleware
