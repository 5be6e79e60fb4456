package model

import "time"

// Cliente is an optional customer reference attached to comandas.
type Cliente struct {
	ID       string    `gorm:"primaryKey" json:"id"`
	Nome     string    `gorm:"index;not null" json:"nome"`
	Telefone *string   `json:"telefone,omitempty"`
	CriadoEm time.Time `json:"criado_em"`
}
