package broker

import "time"

// Header — заголовок записи; ключи могут повторяться.
type Header struct {
	Key   string
	Value []byte
}

// Record — одна запись из топика. Key/Value — результат десериализаторов подписки,
// RawKey/RawValue — исходные байты.
type Record struct {
	Topic       string
	Partition   int32
	Offset      int64
	LeaderEpoch int32
	Timestamp   time.Time
	Headers     []Header

	RawKey   []byte
	RawValue []byte
	Key      any
	Value    any
}

// Batch — всё, что вернул один вызов Poll; доставляется целиком.
type Batch []Record

// IsEmpty — пустой результат опроса.
func (b Batch) IsEmpty() bool { return len(b) == 0 }

// Len — количество записей.
func (b Batch) Len() int { return len(b) }

// TopicPartition — пара топик/партиция.
type TopicPartition struct {
	Topic     string
	Partition int32
}

// NextOffsets — для каждой партиции смещение, следующее за максимальным в пачке
// (то, что коммитится после успешной доставки).
func (b Batch) NextOffsets() map[TopicPartition]int64 {
	out := make(map[TopicPartition]int64)
	for _, r := range b {
		tp := TopicPartition{Topic: r.Topic, Partition: r.Partition}
		if next := r.Offset + 1; next > out[tp] {
			out[tp] = next
		}
	}
	return out
}

// Topics — уникальные топики пачки в порядке появления.
func (b Batch) Topics() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range b {
		if _, ok := seen[r.Topic]; ok {
			continue
		}
		seen[r.Topic] = struct{}{}
		out = append(out, r.Topic)
	}
	return out
}
