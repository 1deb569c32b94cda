package event

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/felire/audio-medic-api/internal/domain"
	pkgkafka "github.com/felire/audio-medic-api/pkg/kafka"
)

// Kafka topics for audit events.
const (
	TopicMedicRegistered      = "audiomedic.medic.registered"
	TopicMedicPasswordChanged = "audiomedic.medic.password_changed"
	TopicNoteSigned           = "audiomedic.note.signed"
)

const (
	aggregateTypeMedic = "medic"
	aggregateTypeNote  = "soap_note"
	source             = "audio-medic-api"
)

// MedicRegisteredData is the payload for a medic.registered event.
type MedicRegisteredData struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Specialty string `json:"specialty,omitempty"`
}

// MedicPasswordChangedData is the payload for a medic.password_changed event.
type MedicPasswordChangedData struct {
	MedicID int64  `json:"medic_id"`
	Email   string `json:"email"`
}

// NoteSignedData is the payload for a note.signed event.
type NoteSignedData struct {
	NoteID         int64 `json:"note_id"`
	PatientMedicID int64 `json:"patient_medic_id"`
	MedicID        int64 `json:"medic_id"`
}

// Publisher is the narrow interface the services use to emit audit events.
type Publisher interface {
	PublishMedicRegistered(ctx context.Context, medic *domain.Medic) error
	PublishMedicPasswordChanged(ctx context.Context, medic *domain.Medic) error
	PublishNoteSigned(ctx context.Context, note *domain.SoapNote) error
}

// Producer publishes audit events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new audit event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishMedicRegistered publishes a medic.registered event.
func (p *Producer) PublishMedicRegistered(ctx context.Context, medic *domain.Medic) error {
	data := MedicRegisteredData{
		ID:        medic.ID,
		Email:     medic.Email,
		Name:      medic.Name,
		Specialty: medic.Specialty,
	}

	return p.publish(ctx, TopicMedicRegistered, strconv.FormatInt(medic.ID, 10), aggregateTypeMedic, data)
}

// PublishMedicPasswordChanged publishes a medic.password_changed event.
func (p *Producer) PublishMedicPasswordChanged(ctx context.Context, medic *domain.Medic) error {
	data := MedicPasswordChangedData{
		MedicID: medic.ID,
		Email:   medic.Email,
	}

	return p.publish(ctx, TopicMedicPasswordChanged, strconv.FormatInt(medic.ID, 10), aggregateTypeMedic, data)
}

// PublishNoteSigned publishes a note.signed event.
func (p *Producer) PublishNoteSigned(ctx context.Context, note *domain.SoapNote) error {
	data := NoteSignedData{
		NoteID:         note.ID,
		PatientMedicID: note.PatientMedicID,
		MedicID:        note.MedicID,
	}

	return p.publish(ctx, TopicNoteSigned, strconv.FormatInt(note.ID, 10), aggregateTypeNote, data)
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any) error {
	ev, err := pkgkafka.NewEvent(topic, aggregateID, aggregateType, source, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}

	if err := p.kafka.Publish(ctx, topic, ev); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published audit event",
		slog.String("topic", topic),
		slog.String("aggregate_id", aggregateID),
	)

	return nil
}
