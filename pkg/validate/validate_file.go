package validate

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/Gunvolt24/kbridge/internal/manifest"
	"github.com/Gunvolt24/kbridge/internal/subscription"
)

// Summary — статистика проверки манифеста.
type Summary struct {
	Valid   int
	Invalid int
}

func (s Summary) String() string {
	return fmt.Sprintf("%d valid / %d invalid", s.Valid, s.Invalid)
}

// ValidateFile — загружает манифест и проверяет каждую подписку с дефолтами адаптера.
// На каждую подписку пишет в writer одну строку JSON: слитые свойства или текст ошибки.
func ValidateFile(filePath string, defaults subscription.Properties, ow io.Writer) (Summary, error) {
	var sum Summary

	m, err := manifest.Load(filePath)
	if err != nil {
		return sum, err
	}

	enc := json.NewEncoder(ow)
	for i := range m.Subscriptions {
		res, vErr := ValidateSubscription(&m.Subscriptions[i], defaults)
		if vErr != nil {
			res.Error = vErr.Error()
			sum.Invalid++
		} else {
			sum.Valid++
		}
		if err := enc.Encode(res); err != nil {
			return sum, fmt.Errorf("write result: %w", err)
		}
	}
	return sum, nil
}
