package service

import (
	"github.com/mehrbod2002/coinboard/internal/models"
	"github.com/mehrbod2002/coinboard/internal/repository"
)

type LogService interface {
	LogAction(action, description, ipAddress, requestID string, metadata map[string]interface{}) error
	GetAllLogs(page, limit int) ([]*models.LogEntry, error)
}

type logService struct {
	logRepo repository.LogRepository
}

func NewLogService(logRepo repository.LogRepository) LogService {
	return &logService{logRepo: logRepo}
}

func (s *logService) LogAction(action, description, ipAddress, requestID string, metadata map[string]interface{}) error {
	logEntry := &models.LogEntry{
		Action:      action,
		Description: description,
		IPAddress:   ipAddress,
		RequestID:   requestID,
		Metadata:    metadata,
	}
	return s.logRepo.SaveLog(logEntry)
}

func (s *logService) GetAllLogs(page, limit int) ([]*models.LogEntry, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}
	return s.logRepo.GetAllLogs(page, limit)
}
