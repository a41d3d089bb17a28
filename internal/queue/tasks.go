package queue

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hibiken/asynq"
)

// TypeVerificationEmail es el tipo de tarea para el correo de verificacion.
const TypeVerificationEmail = "email:verify"

type VerificationPayload struct {
	Email string `json:"email"`
	Link  string `json:"link"`
}

func NewVerificationTask(email, link string) (*asynq.Task, error) {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(link) == "" {
		return nil, fmt.Errorf("verification task requires email and link")
	}
	payload, err := json.Marshal(VerificationPayload{Email: email, Link: link})
	if err != nil {
		return nil, fmt.Errorf("marshal verification payload: %w", err)
	}
	return asynq.NewTask(TypeVerificationEmail, payload), nil
}
