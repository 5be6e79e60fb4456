package dto

type CriarClienteRequest struct {
	Nome     string  `json:"nome"     validate:"required,min=1"`
	Telefone *string `json:"telefone" validate:"omitempty,min=8"`
}

type AtualizarClienteRequest struct {
	Nome     string  `json:"nome"     validate:"required,min=1"`
	Telefone *string `json:"telefone" validate:"omitempty,min=8"`
}
