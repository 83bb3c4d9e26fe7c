//go:build integration

package testutil

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

// UniqueTopicAndGroup — уникальные topic/group от базового префикса.
// Пример: base="kbridge-itest" → "kbridge-itest-20250826T010203123456789", "…-group".
func UniqueTopicAndGroup(base string) (topic, group string) {
	s := strings.ReplaceAll(time.Now().UTC().Format("20060102T150405.000000000"), ".", "")
	topic = base + "-" + s
	return topic, topic + "-group"
}

// EnsureTopic — создаёт топик с partitions партициями (уже существующий — не ошибка)
// и ждёт, пока все партиции получат лидера.
func EnsureTopic(ctx context.Context, brokers []string, topic string, partitions int) error {
	client := &kafka.Client{Addr: kafka.TCP(brokers...), Timeout: 10 * time.Second}

	resp, err := client.CreateTopics(ctx, &kafka.CreateTopicsRequest{
		Topics: []kafka.TopicConfig{{Topic: topic, NumPartitions: partitions, ReplicationFactor: 1}},
	})
	if err != nil {
		return fmt.Errorf("create topic %q: %w", topic, err)
	}
	if tErr := resp.Errors[topic]; tErr != nil && !errors.Is(tErr, kafka.TopicAlreadyExists) {
		return fmt.Errorf("create topic %q: %w", topic, tErr)
	}

	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
	for {
		ready, mErr := topicReady(ctx, client, topic, partitions)
		if ready {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("topic %q not ready: %w", topic, errors.Join(ctx.Err(), mErr))
		case <-ticker.C:
		}
	}
}

// ProduceValues — пишет значения в топик (ключ "k<i>", заголовок seq) с подтверждением от всех реплик.
func ProduceValues(ctx context.Context, brokers []string, topic string, values ...string) error {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		RequiredAcks: kafka.RequireAll,
		Balancer:     &kafka.LeastBytes{},
	}
	defer w.Close()

	msgs := make([]kafka.Message, len(values))
	for i, v := range values {
		msgs[i] = kafka.Message{
			Key:     []byte("k" + strconv.Itoa(i)),
			Value:   []byte(v),
			Headers: []kafka.Header{{Key: "seq", Value: []byte(strconv.Itoa(i))}},
		}
	}
	return w.WriteMessages(ctx, msgs...)
}

func topicReady(ctx context.Context, client *kafka.Client, topic string, partitions int) (bool, error) {
	md, err := client.Metadata(ctx, &kafka.MetadataRequest{Topics: []string{topic}})
	if err != nil {
		return false, err
	}
	for _, t := range md.Topics {
		if t.Name != topic {
			continue
		}
		if t.Error != nil {
			return false, t.Error
		}
		if len(t.Partitions) < partitions {
			return false, nil
		}
		for _, p := range t.Partitions {
			if p.Leader.Host == "" {
				return false, nil
			}
		}
		return true, nil
	}
	return false, nil
}
