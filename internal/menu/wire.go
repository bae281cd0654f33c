package menu

import "go.uber.org/zap"

func NewModule(logger *zap.Logger) *Controller {
	return NewController(Default(), logger)
}
