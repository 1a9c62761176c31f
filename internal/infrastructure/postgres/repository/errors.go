package repository

import (
	"errors"

	"github.com/LavaJover/shvark-signal-service/internal/domain"
	"gorm.io/gorm"
)

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	return err
}
