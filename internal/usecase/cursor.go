package usecase

import (
	"encoding/base64"
	"strings"

	"gym-booking/internal/data/entity"
	"gym-booking/internal/schedule"

	"github.com/google/uuid"
)

// History cursors are opaque to clients: base64url("<class date>|<reservation id>")

func encodeHistoryCursor(c entity.HistoryCursor) string {
	return base64.RawURLEncoding.EncodeToString([]byte(c.ClassDate + "|" + c.ID.String()))
}

func decodeHistoryCursor(raw string) (*entity.HistoryCursor, error) {
	if raw == "" {
		return nil, nil
	}

	b, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return nil, invalidField("cursor", "Invalid cursor")
	}

	date, idPart, ok := strings.Cut(string(b), "|")
	if !ok || !schedule.ValidDate(date) {
		return nil, invalidField("cursor", "Invalid cursor")
	}

	id, err := uuid.Parse(idPart)
	if err != nil {
		return nil, invalidField("cursor", "Invalid cursor")
	}

	return &entity.HistoryCursor{ClassDate: date, ID: id}, nil
}
