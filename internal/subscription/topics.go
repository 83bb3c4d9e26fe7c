package subscription

import (
	"fmt"
	"regexp"
	"strings"
)

// TopicSelector — то, на что подписывается клиент: либо список топиков, либо шаблон.
// Пустой селектор допустим: подписка валидна, но ничего не получает.
type TopicSelector struct {
	List    []string
	Pattern *regexp.Regexp
}

// IsEmpty — нет ни списка, ни шаблона.
func (s TopicSelector) IsEmpty() bool {
	return len(s.List) == 0 && s.Pattern == nil
}

// IsPattern — подписка по регулярному выражению.
func (s TopicSelector) IsPattern() bool {
	return s.Pattern != nil
}

func (s TopicSelector) String() string {
	switch {
	case s.Pattern != nil:
		return "pattern:" + s.Pattern.String()
	case len(s.List) > 0:
		return "topics:" + strings.Join(s.List, ",")
	default:
		return "empty"
	}
}

// Topics — разрешает селектор подписки.
// Непустой список topics имеет приоритет над topicPattern; пустой шаблон считается отсутствующим.
func (c *Config) Topics() (TopicSelector, error) {
	if list := splitList(c.TopicList); len(list) > 0 {
		return TopicSelector{List: list}, nil
	}

	pattern := strings.TrimSpace(c.TopicPattern)
	if pattern == "" {
		return TopicSelector{}, nil
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return TopicSelector{}, fmt.Errorf("%w %q: %v", ErrInvalidTopicPattern, pattern, err)
	}
	return TopicSelector{Pattern: re}, nil
}
