package storage

import "github.com/johanforsgren/mantella/internal/domain"

type Config struct {
	Credential *domain.Credential `json:"credential,omitempty"`
}
