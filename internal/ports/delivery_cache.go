package ports

import "context"

// DeliveryCache — кэш ключей уже сохранённых записей.
// Требования к реализации: потокобезопасность; доступ по ключу не хуже O(1).
type DeliveryCache interface {
	// Seen — true, если запись с таким ключом уже сохранена и не истекла.
	Seen(ctx context.Context, id string) bool

	// MarkSeen — отметить ключи как сохранённые.
	MarkSeen(ctx context.Context, ids ...string)

	// WarmUp — массовая загрузка кэша (например, при старте).
	// Реализация должна поддерживать отмену контекста.
	WarmUp(ctx context.Context, ids []string) error
}
