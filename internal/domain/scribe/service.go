package scribe

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// NoteGenerator produces a SOAP note from a transcript.
type NoteGenerator interface {
	GenerateNote(ctx context.Context, transcript string) (string, error)
}

type Service struct {
	generator NoteGenerator
	history   HistoryRepository
	logger    zerolog.Logger
	now       func() time.Time
}

func NewService(generator NoteGenerator, history HistoryRepository, logger zerolog.Logger) *Service {
	return &Service{
		generator: generator,
		history:   history,
		logger:    logger.With().Str("component", "scribe-service").Logger(),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// GenerateNote validates req, generates the note and appends it to the
// history. The note is only returned once it has been stored.
func (s *Service) GenerateNote(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	if req.Transcript == "" {
		return nil, &ValidationError{Field: "transcript", Message: MsgTranscriptRequired}
	}

	note, err := s.generator.GenerateNote(ctx, req.Transcript)
	if err != nil {
		return nil, &UpstreamError{Op: "generate", Err: err}
	}

	patientID := req.PatientID
	if patientID == "" {
		patientID = DefaultPatientID
	}
	rec := &NoteRecord{
		PatientID:  patientID,
		Transcript: req.Transcript,
		SOAPNote:   note,
		Timestamp:  s.now(),
	}
	if err := s.history.Append(ctx, rec); err != nil {
		s.logger.Error().Err(err).
			Str("patient_id", patientID).
			Int("note_length", len(note)).
			Msg("discarding generated note after persistence failure")
		return nil, &PersistenceError{Op: "append", Err: err}
	}

	s.logger.Debug().Str("note_id", rec.ID).Str("patient_id", patientID).Msg("note stored")
	return &GenerateResponse{SOAPNote: note, Confidence: Confidence}, nil
}

// ListHistory returns every stored note, most recent first.
func (s *Service) ListHistory(ctx context.Context) ([]*NoteRecord, error) {
	items, err := s.history.ListAll(ctx)
	if err != nil {
		return nil, &PersistenceError{Op: "list", Err: err}
	}
	if items == nil {
		items = []*NoteRecord{}
	}
	return items, nil
}
