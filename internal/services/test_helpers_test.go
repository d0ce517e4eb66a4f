package services_test

import (
	"github.com/tesseract-integrations/tesseract-api/pkg/logger"
)

func init() {
	if err := logger.Initialize(logger.Config{
		Level:       "error",
		Environment: "development",
	}); err != nil {
		panic(err)
	}
}
