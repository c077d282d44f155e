package delete_block

import (
	"context"

	"github.com/groovetime/booking-engine/internal/service/blocks/models"
)

type BlockService interface {
	DeleteBlock(ctx context.Context, req *models.DeleteBlockRequest) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
