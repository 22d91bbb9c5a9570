package marking

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/marking-system/backend/internal/config"
	"github.com/marking-system/backend/internal/documents"
	"github.com/marking-system/backend/internal/grading"
	"github.com/marking-system/backend/internal/similarity"
	"github.com/marking-system/backend/internal/storage"
)

// ErrEmptyMarks is returned when a manual mark is blank
var ErrEmptyMarks = errors.New("marking: marks must not be empty")

// Service orchestrates registration, plagiarism checks and marking
type Service struct {
	Config *config.Config
	Logger *logrus.Entry
	Store  storage.RecordStore
	Scorer *similarity.Scorer
	Loader *documents.Loader

	// one operation at a time, the store is read and rewritten whole
	mu sync.Mutex
}

// Report is the outcome of an assignment upload
type Report struct {
	RollNumber     string              `json:"roll_number"`
	ClassID        string              `json:"class"`
	AssignmentPath string              `json:"assignment_path"`
	Results        []similarity.Result `json:"results"`
	Highest        float64             `json:"highest_plagiarism"`
	Marks          string              `json:"marks"`
}

func NewService(cfg *config.Config, logger *logrus.Entry, store storage.RecordStore) *Service {
	tokenizer := similarity.Tokenizer{
		MinLength: cfg.Similarity.MinTokenLength,
		Lowercase: cfg.Similarity.Lowercase,
	}
	return &Service{
		Config: cfg,
		Logger: logger,
		Store:  store,
		Scorer: similarity.NewScorer(tokenizer),
		Loader: documents.NewLoader(cfg.Documents),
	}
}

// Register adds a student to a class
func (s *Service) Register(rollNumber, name, classID string) error {
	rollNumber, name, classID = strings.TrimSpace(rollNumber), strings.TrimSpace(name), strings.TrimSpace(classID)

	s.mu.Lock()
	defer s.mu.Unlock()

	log := s.Logger.WithFields(logrus.Fields{"roll_number": rollNumber, "class": classID})
	if err := s.Store.Register(rollNumber, name, classID); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			log.Warn("Student is already registered in this class")
		}
		return err
	}
	log.WithField("name", name).Info("Student registered")
	return nil
}

// Upload checks the assignment at assignmentPath against every reference
// document in referenceDir, bands the highest similarity into a mark and
// stores path, score and mark on the student's record.
func (s *Service) Upload(rollNumber, classID, assignmentPath, referenceDir string) (*Report, error) {
	rollNumber, classID = strings.TrimSpace(rollNumber), strings.TrimSpace(classID)
	assignmentPath, referenceDir = strings.TrimSpace(assignmentPath), strings.TrimSpace(referenceDir)

	s.mu.Lock()
	defer s.mu.Unlock()

	log := s.Logger.WithFields(logrus.Fields{"roll_number": rollNumber, "class": classID})

	if _, found, err := s.Store.Find(rollNumber, classID); err != nil {
		return nil, err
	} else if !found {
		log.Warn("Upload for unknown student rejected")
		return nil, storage.ErrNotFound
	}

	query, err := s.Loader.LoadQuery(assignmentPath)
	if err != nil {
		return nil, err
	}
	references, err := s.Loader.LoadReferences(referenceDir)
	if err != nil {
		return nil, err
	}

	results, err := s.Scorer.Score(query.Content, references)
	if err != nil {
		log.WithField("reference_dir", referenceDir).Warn("No reference documents to compare with")
		return nil, err
	}
	for _, r := range results {
		log.WithField("document", r.ID).Infof("Plagiarism with %s: %.2f%%", r.ID, r.Percentage)
	}

	highest := similarity.Highest(results)
	marks, err := grading.MarkString(highest)
	if err != nil {
		return nil, fmt.Errorf("failed to grade submission: %w", err)
	}

	if err := s.Store.RecordSubmission(rollNumber, classID, assignmentPath, highest, marks); err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"assignment": assignmentPath,
		"plagiarism": fmt.Sprintf("%.2f", highest),
		"marks":      marks,
	}).Info("Submission recorded")

	return &Report{
		RollNumber:     rollNumber,
		ClassID:        classID,
		AssignmentPath: assignmentPath,
		Results:        results,
		Highest:        highest,
		Marks:          marks,
	}, nil
}

// AssignMarks replaces a student's marks without touching the plagiarism result
func (s *Service) AssignMarks(rollNumber, classID, marks string) error {
	rollNumber, classID, marks = strings.TrimSpace(rollNumber), strings.TrimSpace(classID), strings.TrimSpace(marks)
	if marks == "" {
		return ErrEmptyMarks
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.Store.SetMarks(rollNumber, classID, marks); err != nil {
		return err
	}
	s.Logger.WithFields(logrus.Fields{
		"roll_number": rollNumber,
		"class":       classID,
		"marks":       marks,
	}).Info("Marks updated")
	return nil
}

// Lookup returns a student's record, reporting absence through the boolean
func (s *Service) Lookup(rollNumber, classID string) (storage.StudentRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Store.Find(strings.TrimSpace(rollNumber), strings.TrimSpace(classID))
}

// List returns every registered student in table order
func (s *Service) List() ([]storage.StudentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Store.List()
}
