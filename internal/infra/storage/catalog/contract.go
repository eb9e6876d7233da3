package catalog

import "github.com/RealTimGFM/ScheduleBooker/pkg/dbmetrics"

// DBExecutor исполнитель запросов (соединение или транзакция из контекста)
type DBExecutor = dbmetrics.DBExecutor
