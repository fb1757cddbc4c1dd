package delivery

import (
	"github.com/m04kA/SMC-WikiControlService/pkg/dbmetrics"
)

// Переиспользуем интерфейсы из dbmetrics для работы с БД
type DBExecutor = dbmetrics.DBExecutor
