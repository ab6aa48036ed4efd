package repository

import "github.com/google/uuid"

// isRowID reports whether id can match a UUID primary key. Anything else
// is answered with sql.ErrNoRows without a round trip, since Postgres
// rejects it as invalid_text_representation.
func isRowID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
