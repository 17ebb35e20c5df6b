package accounts

import (
	"database/sql"
	"fmt"
)

func (r *accountsRepo) Create(tx *sql.Tx) (uint64, error) {
	var id uint64

	err := tx.QueryRow(`
		INSERT INTO accounts DEFAULT VALUES
		RETURNING id
	`).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create account: %w", err)
	}

	return id, nil
}
