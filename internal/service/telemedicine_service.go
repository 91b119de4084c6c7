package service

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const telemedicineTokenBytes = 16

type TelemedicineLinkGenerator interface {
	Generate(appointmentID uuid.UUID) (string, error)
}

type telemedicineLinkGenerator struct {
	baseURL string
}

func NewTelemedicineLinkGenerator(baseURL string) TelemedicineLinkGenerator {
	return &telemedicineLinkGenerator{baseURL: strings.TrimRight(baseURL, "/")}
}

// Generate returns <base>/<appointment id>/<random url-safe token>. The
// token comes from crypto/rand so links cannot be guessed.
func (g *telemedicineLinkGenerator) Generate(appointmentID uuid.UUID) (string, error) {
	token := make([]byte, telemedicineTokenBytes)
	if _, err := rand.Read(token); err != nil {
		return "", fmt.Errorf("generate telemedicine token: %w", err)
	}
	return fmt.Sprintf("%s/%s/%s", g.baseURL, appointmentID, base64.RawURLEncoding.EncodeToString(token)), nil
}
