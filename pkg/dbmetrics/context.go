package dbmetrics

import "context"

type ctxKey int

const executorKey ctxKey = iota

// WithExecutor кладет активную транзакцию в контекст
// Репозитории, получившие такой контекст, выполняют запросы внутри транзакции
func WithExecutor(ctx context.Context, executor TxExecutor) context.Context {
	return context.WithValue(ctx, executorKey, executor)
}

// GetExecutor возвращает executor из контекста, если там есть активная
// транзакция, иначе переданный по умолчанию
func GetExecutor(ctx context.Context, def DBExecutor) DBExecutor {
	if executor, ok := ctx.Value(executorKey).(TxExecutor); ok {
		return executor
	}
	return def
}

// IsInTransaction проверяет, выполняется ли контекст внутри транзакции
func IsInTransaction(ctx context.Context) bool {
	_, ok := ctx.Value(executorKey).(TxExecutor)
	return ok
}
