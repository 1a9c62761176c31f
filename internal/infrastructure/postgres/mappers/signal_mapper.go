package mappers

import (
	"strings"

	"github.com/LavaJover/shvark-signal-service/internal/domain"
	"github.com/LavaJover/shvark-signal-service/internal/infrastructure/postgres/models"
	"github.com/shopspring/decimal"
)

func ToDomainSignal(model *models.SignalModel) *domain.Signal {
	signal := &domain.Signal{
		ID:               model.ID,
		RawPayload:       model.RawPayload,
		Keyword:          model.Keyword,
		Category:         domain.SignalCategory(model.Category),
		Direction:        domain.Direction(model.Direction),
		Strength:         domain.SignalStrength(model.Strength),
		Symbol:           model.Symbol,
		Timestamp:        model.Timestamp,
		ReceivedAt:       model.ReceivedAt,
		Source:           model.Source,
		Status:           domain.SignalStatus(model.Status),
		ProcessingResult: model.ProcessingResult,
	}
	if model.Price.Valid {
		price := model.Price.Decimal
		signal.Price = &price
	}
	return signal
}

func ToGORMSignal(signal *domain.Signal) *models.SignalModel {
	model := &models.SignalModel{
		ID:               signal.ID,
		RawPayload:       signal.RawPayload,
		Keyword:          signal.Keyword,
		Category:         string(signal.Category),
		Direction:        string(signal.Direction),
		Strength:         string(signal.Strength),
		Symbol:           signal.Symbol,
		Timestamp:        signal.Timestamp,
		ReceivedAt:       signal.ReceivedAt,
		Source:           signal.Source,
		Status:           string(signal.Status),
		ProcessingResult: signal.ProcessingResult,
	}
	if signal.Price != nil {
		model.Price = decimal.NewNullDecimal(*signal.Price)
	}
	return model
}

func ToDomainSentimentReading(model *models.SentimentReadingModel) *domain.SentimentReading {
	reading := &domain.SentimentReading{
		ID:             model.ID,
		Value:          model.Value,
		Classification: model.Classification,
		CapturedAt:     model.CapturedAt,
		Source:         model.Source,
		Note:           model.Note,
	}
	for _, d := range strings.Split(model.AllowedDirections, ",") {
		if d != "" {
			reading.AllowedDirections = append(reading.AllowedDirections, domain.Direction(d))
		}
	}
	return reading
}

func ToGORMSentimentReading(reading *domain.SentimentReading) *models.SentimentReadingModel {
	directions := make([]string, len(reading.AllowedDirections))
	for i, d := range reading.AllowedDirections {
		directions[i] = string(d)
	}
	return &models.SentimentReadingModel{
		ID:                reading.ID,
		Value:             reading.Value,
		Classification:    reading.Classification,
		AllowedDirections: strings.Join(directions, ","),
		CapturedAt:        reading.CapturedAt,
		Source:            reading.Source,
		Note:              reading.Note,
	}
}

func ToGORMAuditLog(log *domain.AuditLog) *models.AuditLogModel {
	return &models.AuditLogModel{
		ID:        log.ID,
		Category:  string(log.Category),
		Subject:   log.Subject,
		Outcome:   log.Outcome,
		Message:   log.Message,
		CreatedAt: log.CreatedAt,
	}
}
