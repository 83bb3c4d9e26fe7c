//go:generate mockgen -source=../client.go -destination=./mock_consumer.go -package=mocks

package mocks
