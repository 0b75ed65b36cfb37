package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type Appointment struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Analysis string `json:"analysis,omitempty"`
}

// AppointmentService records appointment requests. Requests are only logged.
type AppointmentService struct{}

func NewAppointmentService() *AppointmentService {
	return &AppointmentService{}
}

// Submit logs the request and returns its reference.
func (a *AppointmentService) Submit(ctx context.Context, req Appointment) (string, error) {
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Phone) == "" {
		return "", ErrMissingAppointmentInput
	}

	reference := uuid.New().String()
	logrus.WithFields(logrus.Fields{
		"reference": reference,
		"name":      strings.TrimSpace(req.Name),
		"phone":     strings.TrimSpace(req.Phone),
		"analysis":  len(req.Analysis),
	}).Info("appointment requested")

	return reference, nil
}
