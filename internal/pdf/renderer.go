package pdf

import (
	"context"

	"github.com/inklane/inklane/internal/models"
)

// Renderer produces the completed contract artifact.
type Renderer interface {
	// Render returns the PDF bytes for a finalized contract.
	Render(ctx context.Context, contract *models.Contract, signatures []models.Signature) ([]byte, error)
}
