package repository

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// duplicateMarkers are driver messages for unique violations that the
// dialect's own translator does not recognise (e.g. modernc sqlite).
var duplicateMarkers = []string{
	"UNIQUE constraint failed",
	"Duplicate entry",
	"duplicate key value",
}

// translateError normalises unique violations to gorm.ErrDuplicatedKey.
func translateError(err error) error {
	if err == nil || errors.Is(err, gorm.ErrDuplicatedKey) {
		return err
	}
	msg := err.Error()
	for _, marker := range duplicateMarkers {
		if strings.Contains(msg, marker) {
			return gorm.ErrDuplicatedKey
		}
	}
	return err
}
