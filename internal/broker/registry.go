package broker

import (
	"fmt"
	"sort"
	"sync"
)

var (
	driversMu sync.RWMutex
	drivers   = map[string]Factory{}
)

// Register — регистрирует драйвер клиента брокера под именем ("kafka-go", "kgo", …).
// Вызывается из init() пакета драйвера.
func Register(name string, f Factory) {
	driversMu.Lock()
	defer driversMu.Unlock()
	drivers[name] = f
}

// NewFactory — конструктор клиентов выбранного драйвера.
func NewFactory(name string) (Factory, error) {
	driversMu.RLock()
	defer driversMu.RUnlock()
	if f, ok := drivers[name]; ok {
		return f, nil
	}
	return nil, fmt.Errorf("broker: unsupported driver %q (known: %v)", name, driverNames())
}

// Drivers — имена зарегистрированных драйверов.
func Drivers() []string {
	driversMu.RLock()
	defer driversMu.RUnlock()
	return driverNames()
}

func driverNames() []string {
	names := make([]string, 0, len(drivers))
	for name := range drivers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
