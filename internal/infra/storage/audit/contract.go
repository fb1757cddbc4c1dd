package audit

import (
	"github.com/m04kA/SMC-WikiControlService/pkg/dbmetrics"
)

// DBExecutor интерфейс для выполнения запросов к БД
type DBExecutor = dbmetrics.DBExecutor
