package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/marking-system/backend/internal/documents"
	"github.com/marking-system/backend/internal/marking"
	"github.com/marking-system/backend/internal/similarity"
	"github.com/marking-system/backend/internal/storage"
)

// MarkingService is the part of marking.Service the API exposes
type MarkingService interface {
	Register(rollNumber, name, classID string) error
	Upload(rollNumber, classID, assignmentPath, referenceDir string) (*marking.Report, error)
	AssignMarks(rollNumber, classID, marks string) error
	Lookup(rollNumber, classID string) (storage.StudentRecord, bool, error)
	List() ([]storage.StudentRecord, error)
}

// Server exposes the marking service over HTTP. Submission paths are
// resolved inside Root; the server never reads outside it.
type Server struct {
	Service MarkingService
	Root    string
	Logger  *logrus.Entry
	Router  *mux.Router
}

func NewServer(svc MarkingService, root string, logger *logrus.Entry) *Server {
	s := &Server{
		Service: svc,
		Root:    root,
		Logger:  logger,
		Router:  mux.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	api := s.Router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	api.HandleFunc("/students", s.handleRegister).Methods(http.MethodPost)
	api.HandleFunc("/students", s.handleList).Methods(http.MethodGet)
	api.HandleFunc("/classes/{class}/students/{roll}", s.handleLookup).Methods(http.MethodGet)
	api.HandleFunc("/classes/{class}/students/{roll}/submissions", s.handleUpload).Methods(http.MethodPost)
	api.HandleFunc("/classes/{class}/students/{roll}/marks", s.handleMarks).Methods(http.MethodPut)
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context, addr string, readTimeout, shutdownTimeout time.Duration) error {
	server := &http.Server{
		Addr:        addr,
		Handler:     s.Router,
		ReadTimeout: readTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.Logger.Infof("Starting API Server on %s", addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.Logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.Logger.Info("Server gracefully stopped")
	return nil
}

// Requests & Responses

type ErrorResponse struct {
	Error string `json:"error"`
}

type RegisterRequest struct {
	RollNumber string `json:"roll_number"`
	Name       string `json:"name"`
	ClassID    string `json:"class"`
}

type SubmissionRequest struct {
	AssignmentPath string `json:"assignment_path"`
	ReferenceDir   string `json:"reference_dir"`
}

type MarksRequest struct {
	Marks string `json:"marks"`
}

type ListResponse struct {
	Students []storage.StudentRecord `json:"students"`
}

// Handlers

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON"})
		return
	}

	if err := s.Service.Register(req.RollNumber, req.Name, req.ClassID); err != nil {
		s.errorResponse(w, err)
		return
	}

	jsonResponse(w, http.StatusCreated, map[string]string{"status": "registered"})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	records, err := s.Service.List()
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, ListResponse{Students: records})
}

func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	rec, found, err := s.Service.Lookup(vars["roll"], vars["class"])
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	if !found {
		jsonResponse(w, http.StatusNotFound, ErrorResponse{Error: "Student not found"})
		return
	}
	jsonResponse(w, http.StatusOK, rec)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var req SubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON"})
		return
	}

	assignmentPath, err := documents.Confine(s.Root, req.AssignmentPath)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	referenceDir, err := documents.Confine(s.Root, req.ReferenceDir)
	if err != nil {
		s.errorResponse(w, err)
		return
	}

	report, err := s.Service.Upload(vars["roll"], vars["class"], assignmentPath, referenceDir)
	if err != nil {
		s.errorResponse(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, report)
}

func (s *Server) handleMarks(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var req MarksRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON"})
		return
	}

	if err := s.Service.AssignMarks(vars["roll"], vars["class"], req.Marks); err != nil {
		s.errorResponse(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// errorResponse maps service outcomes to status codes. Unexpected errors are
// logged and hidden from the client.
func (s *Server) errorResponse(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrAlreadyExists):
		jsonResponse(w, http.StatusConflict, ErrorResponse{Error: "Student is already registered in this class"})
	case errors.Is(err, storage.ErrNotFound):
		jsonResponse(w, http.StatusNotFound, ErrorResponse{Error: "Student not found"})
	case errors.Is(err, similarity.ErrEmptyCorpus):
		jsonResponse(w, http.StatusUnprocessableEntity, ErrorResponse{Error: "No reference documents to compare with"})
	case errors.Is(err, storage.ErrInvalidKey),
		errors.Is(err, storage.ErrInvalidField),
		errors.Is(err, documents.ErrInvalidPath),
		errors.Is(err, marking.ErrEmptyMarks):
		jsonResponse(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	default:
		s.Logger.WithError(err).Error("Request failed")
		jsonResponse(w, http.StatusInternalServerError, ErrorResponse{Error: "Internal server error"})
	}
}

func jsonResponse(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
