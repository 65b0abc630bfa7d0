/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package cosmos

import (
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/data/azcosmos"
)

// Config locates a Cosmos DB container.
type Config struct {
	ConnectionString string `yaml:"connection_string"`
	Database         string `yaml:"database"`
	Container        string `yaml:"container"`
}

// NewContainer opens the container described by cfg using its account
// connection string.
func NewContainer(cfg Config) (*azcosmos.ContainerClient, error) {
	if cfg.ConnectionString == "" {
		return nil, fmt.Errorf("cosmos connection string is required")
	}
	client, err := azcosmos.NewClientFromConnectionString(cfg.ConnectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Cosmos DB client: %w", err)
	}
	container, err := client.NewContainer(cfg.Database, cfg.Container)
	if err != nil {
		return nil, fmt.Errorf("failed to open container %s/%s: %w", cfg.Database, cfg.Container, err)
	}
	return container, nil
}
