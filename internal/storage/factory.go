// File: internal/storage/factory.go
package storage

import (
	"fmt"

	"github.com/psyche-voyage/launchpad/pkg/utils"
)

// NewStorage creates a storage instance based on configuration
func NewStorage(config *StorageConfig) (Storage, error) {
	switch config.Type {
	case "sqlite":
		return NewSQLiteStorage(config), nil
	case "postgres", "postgresql":
		return NewPostgresStorage(config), nil
	default:
		return nil, utils.NewAppError(utils.ErrCodeConfiguration,
			fmt.Sprintf("Unsupported storage type: %s", config.Type))
	}
}
